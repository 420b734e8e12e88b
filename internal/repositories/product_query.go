// internal/repositories/product_query.go
package repositories

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unique-collection/catalog/internal/models"
	"github.com/unique-collection/catalog/internal/utils"
)

type SortOrder string

const (
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortNewest    SortOrder = "newest"
	SortOldest    SortOrder = "oldest"
)

var sortClauses = map[SortOrder]string{
	SortPriceAsc:  "price ASC, created_at DESC",
	SortPriceDesc: "price DESC, created_at DESC",
	SortNewest:    "created_at DESC",
	SortOldest:    "created_at ASC",
}

// ParseSortOrder maps a sort selector to a known order. Unknown or empty
// selectors mean newest first.
func ParseSortOrder(s string) SortOrder {
	order := SortOrder(s)
	if _, ok := sortClauses[order]; ok {
		return order
	}
	return SortNewest
}

// ProductQuery holds the optional filters for a catalog listing.
type ProductQuery struct {
	utils.PaginationParams
	Category   models.Category
	Size       models.Size
	MinPrice   *float64
	MaxPrice   *float64
	Search     string
	ExcludeIDs []uuid.UUID
	Sort       SortOrder
}

type ProductPage struct {
	Items []models.Product
	Total int64
	Page  int
	Limit int
	Pages int
}

// ParseExcludeIDs accepts raw ids, each possibly comma separated, and keeps
// only the well-formed ones.
func ParseExcludeIDs(raw []string) []uuid.UUID {
	var ids []uuid.UUID
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
	}
	return ids
}

func (q ProductQuery) normalized() ProductQuery {
	q.PaginationParams = utils.NormalizePagination(q.Page, q.Limit, utils.DefaultLimit)
	q.Sort = ParseSortOrder(string(q.Sort))
	return q
}

// apply adds the filter predicates of q to db. Sorting and paging are left
// to the caller so the same scope can be counted.
func (q ProductQuery) apply(db *gorm.DB) *gorm.DB {
	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}

	if q.Size != "" {
		db = sizeMembership(db, q.Size)
	}

	if q.MinPrice != nil {
		db = db.Where("price >= ?", *q.MinPrice)
	}

	if q.MaxPrice != nil {
		db = db.Where("price <= ?", *q.MaxPrice)
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		searchTerm := "%" + strings.ToLower(search) + "%"
		db = db.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", searchTerm, searchTerm)
	}

	if len(q.ExcludeIDs) > 0 {
		db = db.Where("id NOT IN ?", q.ExcludeIDs)
	}

	return db
}

func sizeMembership(db *gorm.DB, size models.Size) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Where("? = ANY(sizes)", string(size))
	}
	// Other dialects hold the quoted array literal, e.g. {"S","M"}, in a
	// text column.
	return db.Where("sizes LIKE ?", `%"`+string(size)+`"%`)
}
