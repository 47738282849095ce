// Package query holds the pagination and sorting model shared by list endpoints.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/tuckshop/backend/internal/apperrors"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage keeps the offset inside a Postgres INTEGER.
	MaxPage = math.MaxInt32 / MaxPageSize
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Page is a validated page request. Sort is always a key from the
// collection's whitelist, never raw caller input.
type Page struct {
	Page     int
	PageSize int
	Sort     string
	Order    Order
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// SortSpec is the whitelist of sort keys for one collection, mapping the
// public key to its SQL column.
type SortSpec struct {
	Columns      map[string]string
	DefaultSort  string
	DefaultOrder Order
}

// Column returns the SQL column for p.Sort.
func (s SortSpec) Column(key string) string {
	if col, ok := s.Columns[key]; ok {
		return col
	}
	return s.Columns[s.DefaultSort]
}

// OrderBy renders a safe ORDER BY clause for p.
func (s SortSpec) OrderBy(p Page) string {
	dir := "ASC"
	if p.Order == Desc {
		dir = "DESC"
	}
	return s.Column(p.Sort) + " " + dir
}

// Parse reads page, pageSize, sort and order from values.
func Parse(values url.Values, spec SortSpec) (Page, error) {
	p := Page{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
		Sort:     spec.DefaultSort,
		Order:    spec.DefaultOrder,
	}

	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Page{}, apperrors.Validation("page", "page must be a positive integer")
		}
		if n > MaxPage {
			return Page{}, apperrors.Validation("page", "page is out of range")
		}
		p.Page = n
	}

	if raw := values.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Page{}, apperrors.Validation("pageSize", "pageSize must be a positive integer")
		}
		if n > MaxPageSize {
			n = MaxPageSize
		}
		p.PageSize = n
	}

	if raw := values.Get("sort"); raw != "" {
		if _, ok := spec.Columns[raw]; !ok {
			return Page{}, apperrors.Validation("sort", "unsupported sort key: "+raw)
		}
		p.Sort = raw
	}

	if raw := strings.ToLower(values.Get("order")); raw != "" {
		switch Order(raw) {
		case Asc, Desc:
			p.Order = Order(raw)
		default:
			return Page{}, apperrors.Validation("order", "order must be asc or desc")
		}
	}

	return p, nil
}

// Result is one page of a collection.
type Result[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

func NewResult[T any](items []T, p Page, total int) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalCount: total,
		TotalPages: TotalPages(total, p.PageSize),
	}
}

func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

var (
	AccountSort = SortSpec{
		Columns: map[string]string{
			"name":      "a.name",
			"createdAt": "a.created_at",
			"balance":   "a.balance",
			"role":      "a.role",
		},
		DefaultSort:  "name",
		DefaultOrder: Asc,
	}
	ItemSort = SortSpec{
		Columns: map[string]string{
			"name":      "i.name",
			"price":     "i.price",
			"createdAt": "i.created_at",
		},
		DefaultSort:  "name",
		DefaultOrder: Asc,
	}
	LedgerSort = SortSpec{
		Columns: map[string]string{
			"createdAt": "t.created_at",
			"amount":    "t.amount",
		},
		DefaultSort:  "createdAt",
		DefaultOrder: Desc,
	}
	SchoolSort = SortSpec{
		Columns: map[string]string{
			"name":      "s.name",
			"createdAt": "s.created_at",
		},
		DefaultSort:  "name",
		DefaultOrder: Asc,
	}
)
