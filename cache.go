package paperview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Cache manages a local cache of manuscripts, downloaded PDFs, rendered
// overviews, and feed subscriptions.
type Cache struct {
	root          string
	db            *gorm.DB
	manuscriptLRU *LRUCache // In-memory cache for manuscripts
	server        string    // "biorxiv" or "medrxiv"
}

// Open opens or creates a cache at the given root directory.
func Open(root string) (*Cache, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	// Create subdirectories
	for _, dir := range []string{"pdf", "tmp"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", dir, err)
		}
	}

	dbPath := filepath.Join(root, "index.db")
	// Use sqlite3 driver for FTS5 support
	dsn := dbPath + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite3",
		DSN:        dsn,
	}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	c := &Cache{
		root:          root,
		db:            db,
		manuscriptLRU: NewLRUCache(10000),
		server:        "biorxiv",
	}
	if err := c.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return c, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// SetServer switches between "biorxiv" and "medrxiv" for API queries.
func (c *Cache) SetServer(server string) {
	c.server = server
}

func (c *Cache) initSchema() error {
	if err := c.db.AutoMigrate(&Manuscript{}, &Feed{}, &FeedArticle{}, &Overview{}, &NegativeResult{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// FTS5 virtual tables and triggers must use raw SQL - GORM doesn't
	// support FTS5.
	ftsSchema := `
	CREATE VIRTUAL TABLE IF NOT EXISTS manuscripts_fts USING fts5(
		title,
		abstract,
		content='manuscripts',
		content_rowid='rowid'
	);

	CREATE TRIGGER IF NOT EXISTS manuscripts_ai AFTER INSERT ON manuscripts BEGIN
		INSERT INTO manuscripts_fts(rowid, title, abstract)
		VALUES (NEW.rowid, NEW.title, NEW.abstract);
	END;

	CREATE TRIGGER IF NOT EXISTS manuscripts_ad AFTER DELETE ON manuscripts BEGIN
		INSERT INTO manuscripts_fts(manuscripts_fts, rowid, title, abstract)
		VALUES ('delete', OLD.rowid, OLD.title, OLD.abstract);
	END;

	CREATE TRIGGER IF NOT EXISTS manuscripts_au AFTER UPDATE ON manuscripts BEGIN
		INSERT INTO manuscripts_fts(manuscripts_fts, rowid, title, abstract)
		VALUES ('delete', OLD.rowid, OLD.title, OLD.abstract);
		INSERT INTO manuscripts_fts(rowid, title, abstract)
		VALUES (NEW.rowid, NEW.title, NEW.abstract);
	END;
	`
	if err := c.db.Exec(ftsSchema).Error; err != nil {
		// FTS5 not available - search will fall back to LIKE queries
		return nil
	}
	return nil
}

// GetManuscript retrieves a manuscript by DOI, consulting the in-memory
// LRU before the database.
func (c *Cache) GetManuscript(ctx context.Context, doi string) (*Manuscript, error) {
	if v, ok := c.manuscriptLRU.Get(doi); ok {
		return v.(*Manuscript), nil
	}

	var m Manuscript
	if err := c.db.WithContext(ctx).First(&m, "doi = ?", doi).Error; err != nil {
		return nil, err
	}
	c.manuscriptLRU.Put(doi, &m)
	return &m, nil
}

// PutManuscript upserts a manuscript and refreshes the LRU entry.
func (c *Cache) PutManuscript(ctx context.Context, m *Manuscript) error {
	now := time.Now()
	m.MetadataUpdated = &now
	if err := c.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("store manuscript: %w", err)
	}
	c.manuscriptLRU.Put(m.DOI, m)
	return nil
}

// ManuscriptExists checks if a manuscript is cached.
func (c *Cache) ManuscriptExists(ctx context.Context, doi string) bool {
	var count int64
	err := c.db.WithContext(ctx).Model(&Manuscript{}).Where("doi = ?", doi).Count(&count).Error
	return err == nil && count > 0
}

// recordNegative caches a failed run so later requests for the same DOI
// can fail fast instead of repeating the work.
func (c *Cache) recordNegative(ctx context.Context, doi, stage string, cause error) {
	rec := &NegativeResult{
		DOI:      doi,
		Stage:    stage,
		Message:  cause.Error(),
		Recorded: time.Now(),
	}
	c.db.WithContext(ctx).Save(rec)
}

// negativeFor returns the recorded failure for a DOI, if any.
func (c *Cache) negativeFor(ctx context.Context, doi string) (*NegativeResult, bool) {
	var rec NegativeResult
	if err := c.db.WithContext(ctx).First(&rec, "doi = ?", doi).Error; err != nil {
		return nil, false
	}
	return &rec, true
}

// ClearNegative drops a cached failure, allowing a retry.
func (c *Cache) ClearNegative(ctx context.Context, doi string) error {
	return c.db.WithContext(ctx).Delete(&NegativeResult{}, "doi = ?", doi).Error
}

// Stats returns cache statistics.
func (c *Cache) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	if err := c.db.WithContext(ctx).Model(&Manuscript{}).Count(&stats.TotalManuscripts).Error; err != nil {
		return nil, err
	}

	if err := c.db.WithContext(ctx).Model(&Manuscript{}).Where("pdf_downloaded = ?", true).Count(&stats.PDFsDownloaded).Error; err != nil {
		return nil, err
	}

	if err := c.db.WithContext(ctx).Model(&Overview{}).Count(&stats.OverviewsCached).Error; err != nil {
		return nil, err
	}

	if err := c.db.WithContext(ctx).Model(&Feed{}).Count(&stats.Feeds).Error; err != nil {
		return nil, err
	}

	if err := c.db.WithContext(ctx).Model(&FeedArticle{}).Count(&stats.FeedArticles).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// CacheStats contains statistics about the cache.
type CacheStats struct {
	TotalManuscripts int64
	PDFsDownloaded   int64
	OverviewsCached  int64
	Feeds            int64
	FeedArticles     int64
}
