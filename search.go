package paperview

import (
	"context"
	"sort"
	"strings"

	"github.com/sajari/fuzzy"
)

// Search searches manuscripts by title/abstract text using FTS5, falling
// back to LIKE matching when FTS5 is unavailable.
// Note: Uses raw SQL because GORM doesn't support FTS5 MATCH queries.
func (c *Cache) Search(ctx context.Context, query, category string, limit int) ([]Manuscript, error) {
	if limit <= 0 {
		limit = 20
	}

	sql := `
		SELECT m.*
		FROM manuscripts m
		JOIN manuscripts_fts fts ON m.rowid = fts.rowid
		WHERE manuscripts_fts MATCH ?
	`
	args := []any{query}

	if category != "" {
		sql += " AND m.category = ?"
		args = append(args, category)
	}

	sql += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	var manuscripts []Manuscript
	if err := c.db.WithContext(ctx).Raw(sql, args...).Scan(&manuscripts).Error; err != nil {
		return c.searchLike(ctx, query, category, limit)
	}
	return manuscripts, nil
}

// searchLike is the degraded path for databases built without FTS5.
func (c *Cache) searchLike(ctx context.Context, query, category string, limit int) ([]Manuscript, error) {
	q := c.db.WithContext(ctx).
		Where("title LIKE ? OR abstract LIKE ?", "%"+query+"%", "%"+query+"%")
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var manuscripts []Manuscript
	err := q.Order("date DESC").Limit(limit).Find(&manuscripts).Error
	return manuscripts, err
}

// SearchByAuthor searches manuscripts by author name.
func (c *Cache) SearchByAuthor(ctx context.Context, author string, limit int) ([]Manuscript, error) {
	if limit <= 0 {
		limit = 100
	}

	var manuscripts []Manuscript
	err := c.db.WithContext(ctx).
		Where("authors LIKE ?", "%"+author+"%").
		Order("date DESC").
		Limit(limit).
		Find(&manuscripts).Error
	return manuscripts, err
}

// ListManuscripts lists cached manuscripts, optionally filtered by
// category, newest first.
func (c *Cache) ListManuscripts(ctx context.Context, category string, offset, limit int) ([]Manuscript, error) {
	if limit <= 0 {
		limit = 100
	}

	query := c.db.WithContext(ctx).Model(&Manuscript{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var manuscripts []Manuscript
	err := query.Order("date DESC").Limit(limit).Offset(offset).Find(&manuscripts).Error
	return manuscripts, err
}

// CategoryCount represents a category with its manuscript count.
type CategoryCount struct {
	Name  string
	Count int
}

// ListCategories returns all subject categories with their manuscript
// counts, most populous first.
func (c *Cache) ListCategories(ctx context.Context) ([]CategoryCount, error) {
	rows, err := c.db.WithContext(ctx).Model(&Manuscript{}).
		Select("category, count(*) as n").
		Where("category != ''").
		Group("category").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryCount
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Name, &cc.Count); err != nil {
			return nil, err
		}
		result = append(result, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	return result, nil
}

// SuggestQuery spell-corrects a search query against the vocabulary of
// cached titles. Words with no better candidate pass through unchanged.
func (c *Cache) SuggestQuery(ctx context.Context, query string) (string, error) {
	var manuscripts []Manuscript
	if err := c.db.WithContext(ctx).Select("title").Find(&manuscripts).Error; err != nil {
		return "", err
	}

	model := fuzzy.NewModel()
	model.SetThreshold(1)
	model.SetDepth(2)

	var corpus []string
	for _, m := range manuscripts {
		for _, word := range strings.Fields(strings.ToLower(m.Title)) {
			if len(word) >= 3 {
				corpus = append(corpus, word)
			}
		}
	}
	if len(corpus) == 0 {
		return query, nil
	}
	model.Train(corpus)

	words := strings.Fields(strings.ToLower(query))
	for i, word := range words {
		if corrected := model.SpellCheck(word); corrected != "" {
			words[i] = corrected
		}
	}
	return strings.Join(words, " "), nil
}
