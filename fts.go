package paperview

import "context"

// RebuildFTSIndex rebuilds the FTS5 index from all manuscripts.
// Use this after migrating an existing database to FTS5.
// Note: Uses raw SQL because GORM doesn't support FTS5 virtual tables.
func (c *Cache) RebuildFTSIndex(ctx context.Context) error {
	// Delete existing FTS data
	if err := c.db.WithContext(ctx).Exec("DELETE FROM manuscripts_fts").Error; err != nil {
		return err
	}

	// Rebuild from manuscripts table
	return c.db.WithContext(ctx).Exec(`
		INSERT INTO manuscripts_fts(rowid, title, abstract)
		SELECT rowid, title, abstract FROM manuscripts
	`).Error
}
