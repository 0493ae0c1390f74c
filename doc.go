// Package paperview retrieves bioRxiv manuscripts and turns them into
// figure-centric overviews.
//
// This package implements:
//   - bioRxiv details API client with cursor pagination
//   - JATS XML processing for full-text manuscripts
//   - PDF content extraction (words, figures, tables) for the rest
//   - Local SQLite-based caching and full-text search
//   - RSS/Atom feed subscriptions for new-manuscript monitoring
//
// Manuscripts whose JATS XML carries the article body get their figures
// straight from the hosting server. For metadata-only documents the PDF
// is downloaded and mined: raster tiles are spliced back into logical
// figures, ordered by reading position, and paired with nearby caption
// label candidates.
//
// Basic usage:
//
//	cache, err := paperview.Open("/path/to/cache")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer cache.Close()
//
//	// Fetch metadata and build an overview
//	if _, err := cache.FetchDetail(ctx, "10.1101/339747"); err != nil {
//		log.Fatal(err)
//	}
//	html, err := cache.Overview(ctx, "10.1101/339747", extract.All)
//	if err != nil {
//		log.Fatal(err)
//	}
package paperview
