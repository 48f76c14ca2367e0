package listings

import (
	"strings"

	"gorm.io/gorm"

	"github.com/secosha/marketplace/pkg/enums"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Apply composes the search onto tx: the term matches title, description or
// category, each filter is ANDed, the sort gets an id tiebreak, and the result
// is capped at Limit rows.
func Apply(tx *gorm.DB, q Query) *gorm.DB {
	if term := strings.TrimSpace(q.Term); term != "" {
		pattern := containsPattern(term)
		tx = tx.Where(
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}

	f := q.Filters
	if f.Category != nil {
		tx = tx.Where("category = ?", *f.Category)
	}
	if f.Size != nil {
		tx = tx.Where("size = ?", *f.Size)
	}
	if f.Color != nil {
		tx = tx.Where(`LOWER(color) LIKE ? ESCAPE '\'`, containsPattern(*f.Color))
	}
	if f.Condition != nil {
		tx = tx.Where("condition = ?", *f.Condition)
	}
	if f.MinPrice != nil {
		tx = tx.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		tx = tx.Where("price <= ?", *f.MaxPrice)
	}

	switch q.SortOrDefault() {
	case enums.SortPriceAsc:
		tx = tx.Order("price ASC").Order("id ASC")
	case enums.SortPriceDesc:
		tx = tx.Order("price DESC").Order("id DESC")
	default:
		tx = tx.Order("created_at DESC").Order("id DESC")
	}

	return tx.Limit(Limit)
}

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
