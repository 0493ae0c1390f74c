package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/paperview/paperview"
	"github.com/paperview/paperview/extract"
	"github.com/paperview/paperview/pdfdoc"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Default cache location
	cacheDir := os.Getenv("PAPERVIEW_CACHE")
	if cacheDir == "" {
		home, _ := os.UserHomeDir()
		cacheDir = filepath.Join(home, ".cache", "paperview")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "fetch", "metadata":
		cmdFetch(ctx, cacheDir, args)
	case "sync":
		cmdSync(ctx, cacheDir, args)
	case "overview":
		cmdOverview(ctx, cacheDir, args)
	case "extract":
		cmdExtract(ctx, cacheDir, args)
	case "feed":
		cmdFeed(ctx, cacheDir, args)
	case "search":
		cmdSearch(ctx, cacheDir, args)
	case "list":
		cmdList(ctx, cacheDir, args)
	case "export":
		cmdExport(ctx, cacheDir, args)
	case "stats":
		cmdStats(ctx, cacheDir, args)
	case "reindex":
		cmdReindex(ctx, cacheDir, args)
	case "serve":
		cmdServe(ctx, cacheDir, args)
	case "help":
		usage()
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
}

func usage() {
	fmt.Println(`paperview - bioRxiv manuscript cache and overview builder

Usage: paperview <command> [options]

Commands:
  fetch      Fetch manuscript metadata by DOI (optionally the PDF)
  sync       Sync manuscript metadata for an interval
  overview   Build (or show) the figure overview for a manuscript
  extract    Run content extraction over a local PDF
  feed       Manage RSS/Atom feed subscriptions
  search     Search cached manuscripts
  list       List cached manuscripts
  export     Export a manuscript citation (BibTeX/RIS)
  stats      Show cache statistics
  reindex    Rebuild the full-text search index
  serve      Start the HTTP job API

Environment:
  PAPERVIEW_CACHE   Cache directory (default: ~/.cache/paperview)
  PAPERVIEW_SERVER  Preprint server, "biorxiv" or "medrxiv" (default: biorxiv)

Examples:
  paperview fetch 10.1101/339747           # Fetch metadata
  paperview fetch -pdf 10.1101/339747      # Fetch metadata + PDF
  paperview sync 2024-01-01/2024-01-07     # Sync a date range
  paperview sync 7d -feeds                 # Last week + feed refresh
  paperview overview 10.1101/339747 -o out.html
  paperview extract paper.pdf              # Mine a local PDF
  paperview feed add https://connect.biorxiv.org/biorxiv_xml.php?subject=all
  paperview search "hippocampus"           # Search cached manuscripts
  paperview serve -port 8080               # Start the job API`)
}

func openCache(cacheDir string) *paperview.Cache {
	cache, err := paperview.Open(cacheDir)
	if err != nil {
		log.Fatalf("open cache: %v", err)
	}
	if server := os.Getenv("PAPERVIEW_SERVER"); server != "" {
		cache.SetServer(server)
	}
	return cache
}

func cmdFetch(ctx context.Context, cacheDir string, args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	pdf := fs.Bool("pdf", false, "Also download the PDF")
	server := fs.String("server", "", `Preprint server ("biorxiv" or "medrxiv")`)
	fs.Parse(args)

	if fs.NArg() == 0 {
		log.Fatal("usage: paperview fetch [options] <doi> [doi...]")
	}

	cache := openCache(cacheDir)
	defer cache.Close()
	if *server != "" {
		cache.SetServer(*server)
	}

	for _, doi := range fs.Args() {
		fmt.Printf("Fetching %s...\n", doi)

		m, err := cache.FetchDetail(ctx, doi)
		if err != nil {
			log.Printf("  error: %v", err)
			continue
		}

		fmt.Printf("  Title: %s\n", m.Title)
		fmt.Printf("  Authors: %s\n", m.Authors)
		fmt.Printf("  Category: %s\n", m.Category)

		if *pdf {
			path, err := cache.DownloadPDF(ctx, doi)
			if err != nil {
				log.Printf("  pdf error: %v", err)
				continue
			}
			fmt.Printf("  PDF: %s\n", path)
		}
		fmt.Println()
	}
}

func cmdSync(ctx context.Context, cacheDir string, args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	feeds := fs.Bool("feeds", false, "Also refresh feed subscriptions")
	server := fs.String("server", "", `Preprint server ("biorxiv" or "medrxiv")`)
	fs.Parse(args)

	if fs.NArg() == 0 {
		log.Fatal("usage: paperview sync [options] <interval>")
	}

	cache := openCache(cacheDir)
	defer cache.Close()
	if *server != "" {
		cache.SetServer(*server)
	}

	opts := &paperview.SyncOptions{
		Interval:     fs.Arg(0),
		RefreshFeeds: *feeds,
		Progress: func(fetched int) {
			fmt.Printf("\rSyncing: %d manuscripts", fetched)
		},
	}

	result, err := cache.Sync(ctx, opts)
	if err != nil {
		log.Fatalf("sync: %v", err)
	}
	fmt.Printf("\nSynced %d manuscripts", result.Manuscripts)
	if *feeds {
		fmt.Printf(", %d new feed articles", result.FeedArticles)
	}
	fmt.Println()
}

func cmdOverview(ctx context.Context, cacheDir string, args []string) {
	fs := flag.NewFlagSet("overview", flag.ExitOnError)
	out := fs.String("o", "", "Write HTML to file (default: stdout)")
	fs.Parse(args)

	if fs.NArg() == 0 {
		log.Fatal("usage: paperview overview [-o out.html] <doi>")
	}

	cache := openCache(cacheDir)
	defer cache.Close()

	html, err := cache.Overview(ctx, fs.Arg(0), extract.All)
	if err != nil {
		log.Fatalf("overview: %v", err)
	}

	if *out == "" {
		fmt.Println(html)
		return
	}
	if err := os.WriteFile(*out, []byte(html), 0644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	fmt.Printf("Wrote %s\n", *out)
}

func cmdExtract(ctx context.Context, cacheDir string, args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	images := fs.Bool("images", true, "Extract images")
	words := fs.Bool("words", true, "Extract words")
	tables := fs.Bool("tables", false, "Extract tables")
	fs.Parse(args)

	if fs.NArg() == 0 {
		log.Fatal("usage: paperview extract [options] <pdf-path>")
	}

	result, err := extractPDF(ctx, fs.Arg(0), extract.Options{
		Images: *images,
		Words:  *words,
		Tables: *tables,
	})
	if err != nil {
		log.Fatalf("extract: %v", err)
	}

	fmt.Printf("Images: %d\n", len(result.Images))
	fmt.Printf("Words:  %d\n", len(result.Words))
	fmt.Printf("Lines:  %d\n", len(result.Lines))
	fmt.Printf("Tables: %d\n", len(result.Tables))
	for _, img := range result.Images {
		fmt.Printf("\nImage %d (page %d)\n", img.Number, img.Page)
		for _, cand := range img.SortedByDistance() {
			fmt.Printf("  label %q distance %.1f\n", cand.Label, cand.Distance)
		}
	}
}

func cmdFeed(ctx context.Context, cacheDir string, args []string) {
	if len(args) == 0 {
		log.Fatal("usage: paperview feed <add|refresh|list|latest|mark> [args]")
	}

	cache := openCache(cacheDir)
	defer cache.Close()

	switch args[0] {
	case "add":
		if len(args) < 2 {
			log.Fatal("usage: paperview feed add <url>")
		}
		feed, err := cache.Subscribe(ctx, args[1])
		if err != nil {
			log.Fatalf("subscribe: %v", err)
		}
		fmt.Printf("Subscribed to %q\n", feed.Title)
	case "refresh":
		added, err := cache.RefreshFeeds(ctx)
		if err != nil {
			log.Fatalf("refresh: %v", err)
		}
		fmt.Printf("%d new articles\n", added)
	case "list":
		feeds, err := cache.ListFeeds(ctx)
		if err != nil {
			log.Fatalf("list feeds: %v", err)
		}
		for _, f := range feeds {
			fmt.Printf("[%d] %s\n    %s\n", f.ID, f.Title, f.URL)
		}
	case "latest":
		fs := flag.NewFlagSet("latest", flag.ExitOnError)
		limit := fs.Int("limit", 10, "Max articles")
		fs.Parse(args[1:])
		articles, err := cache.LatestArticles(ctx, *limit)
		if err != nil {
			log.Fatalf("latest: %v", err)
		}
		for _, a := range articles {
			marker := " "
			if a.Interesting {
				marker = "*"
			}
			fmt.Printf("%s %s  %s\n    %s\n", marker, a.Published.Format("2006-01-02"), a.Title, a.URL)
		}
	case "mark":
		fs := flag.NewFlagSet("mark", flag.ExitOnError)
		off := fs.Bool("off", false, "Clear the interesting flag")
		fs.Parse(args[1:])
		if fs.NArg() == 0 {
			log.Fatal("usage: paperview feed mark [-off] <article-url>")
		}
		if err := cache.MarkInteresting(ctx, fs.Arg(0), !*off); err != nil {
			log.Fatalf("mark: %v", err)
		}
	default:
		log.Fatalf("unknown feed command: %s", args[0])
	}
}

func cmdSearch(ctx context.Context, cacheDir string, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	category := fs.String("category", "", "Filter by category")
	author := fs.String("author", "", "Search by author instead of text")
	limit := fs.Int("limit", 20, "Max results")
	suggest := fs.Bool("suggest", false, "Spell-correct the query against cached titles first")
	fs.Parse(args)

	if fs.NArg() == 0 && *author == "" {
		log.Fatal("usage: paperview search [options] <query>")
	}

	cache := openCache(cacheDir)
	defer cache.Close()

	var results []paperview.Manuscript
	var err error
	if *author != "" {
		results, err = cache.SearchByAuthor(ctx, *author, *limit)
	} else {
		query := fs.Arg(0)
		if *suggest {
			if corrected, err := cache.SuggestQuery(ctx, query); err == nil && corrected != query {
				fmt.Printf("Searching for %q\n", corrected)
				query = corrected
			}
		}
		results, err = cache.Search(ctx, query, *category, *limit)
	}
	if err != nil {
		log.Fatalf("search: %v", err)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return
	}

	for _, m := range results {
		fmt.Printf("[%s] %s\n", m.DOI, m.Title)
		fmt.Printf("  %s\n", m.Authors)
		fmt.Printf("  %s · %s\n\n", m.Date, m.Category)
	}
}

func cmdList(ctx context.Context, cacheDir string, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	category := fs.String("category", "", "Filter by category")
	limit := fs.Int("limit", 20, "Max results")
	offset := fs.Int("offset", 0, "Offset for pagination")
	fs.Parse(args)

	cache := openCache(cacheDir)
	defer cache.Close()

	manuscripts, err := cache.ListManuscripts(ctx, *category, *offset, *limit)
	if err != nil {
		log.Fatalf("list: %v", err)
	}

	if len(manuscripts) == 0 {
		fmt.Println("No manuscripts cached.")
		return
	}

	for _, m := range manuscripts {
		status := ""
		if m.PDFDownloaded {
			status = "[pdf]"
		}
		fmt.Printf("[%s] %s %s\n", m.DOI, m.Title, status)
	}
}

func cmdExport(ctx context.Context, cacheDir string, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "bibtex", "Export format: bibtex or ris")
	fs.Parse(args)

	if fs.NArg() == 0 {
		log.Fatal("usage: paperview export [-format bibtex|ris] <doi>")
	}

	cache := openCache(cacheDir)
	defer cache.Close()

	m, err := cache.GetManuscript(ctx, fs.Arg(0))
	if err != nil {
		log.Fatalf("get manuscript: %v", err)
	}

	switch *format {
	case "bibtex":
		fmt.Print(m.ToBibTeX())
	case "ris":
		fmt.Print(m.ToRIS())
	default:
		log.Fatalf("unknown format: %s", *format)
	}
}

func cmdStats(ctx context.Context, cacheDir string, args []string) {
	cache := openCache(cacheDir)
	defer cache.Close()

	stats, err := cache.Stats(ctx)
	if err != nil {
		log.Fatalf("stats: %v", err)
	}

	fmt.Printf("Cache: %s\n", cacheDir)
	fmt.Printf("Total manuscripts: %d\n", stats.TotalManuscripts)
	fmt.Printf("PDFs downloaded:   %d\n", stats.PDFsDownloaded)
	fmt.Printf("Overviews cached:  %d\n", stats.OverviewsCached)
	fmt.Printf("Feeds:             %d\n", stats.Feeds)
	fmt.Printf("Feed articles:     %d\n", stats.FeedArticles)
}

func cmdReindex(ctx context.Context, cacheDir string, args []string) {
	cache := openCache(cacheDir)
	defer cache.Close()

	fmt.Println("Rebuilding FTS index...")
	if err := cache.RebuildFTSIndex(ctx); err != nil {
		log.Fatalf("reindex fts: %v", err)
	}
	fmt.Println("Done.")
}

// extractPDF mines a local PDF, reporting page progress on stderr.
func extractPDF(ctx context.Context, path string, opts extract.Options) (*extract.Result, error) {
	doc, err := pdfdoc.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var bar *progressbar.ProgressBar
	opts.Progress = func(page, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("extracting"),
				progressbar.OptionShowCount(),
			)
		}
		bar.Set(page)
	}

	result, err := extract.ExtractAll(ctx, doc, opts)
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	return result, err
}
