/*
Command paperview caches bioRxiv manuscripts locally and builds
figure-centric HTML overviews from them.

Metadata comes from the bioRxiv details API. Manuscripts whose JATS XML
carries the full article body get their figures from the hosting server;
for the rest the PDF is downloaded and mined for images, captions, and
tables. Everything lands in a local SQLite cache with full-text search,
and RSS/Atom subscriptions keep the cache fresh.

Usage:

	paperview fetch 10.1101/339747
	paperview sync 2024-01-01/2024-01-07
	paperview overview 10.1101/339747 -o overview.html
	paperview extract paper.pdf
	paperview feed add https://connect.biorxiv.org/biorxiv_xml.php?subject=all
	paperview search "hippocampus"
	paperview serve -port 8080

The cache directory defaults to ~/.cache/paperview and can be moved with
the PAPERVIEW_CACHE environment variable.

The serve command exposes an HTTP job API: POST /start-overview returns
a call id, GET /overview_result/{id} answers 202 until the overview is
ready and then returns the rendered HTML.
*/
package main
