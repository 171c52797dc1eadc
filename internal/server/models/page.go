package models

import "strings"

// Sort orders for listings, by creation time.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Page defaults used when a request omits or garbles a value.
const (
	DefaultPage = 1
	DefaultQty  = 20
)

// Page selects a slice of an owner's resources ordered by creation time.
type Page struct {
	Page  int    `json:"page"`
	Qty   int    `json:"qty"`
	Order string `json:"order"`
}

// Normalize replaces missing or invalid values with defaults. Any order
// other than "asc" is treated as "desc".
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Qty < 1 {
		p.Qty = DefaultQty
	}
	if strings.ToLower(p.Order) == OrderAsc {
		p.Order = OrderAsc
	} else {
		p.Order = OrderDesc
	}
	return p
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Qty
}

// Count reports list sizes: Total across all pages, Current in this one.
type Count struct {
	Total   int `json:"total"`
	Current int `json:"current"`
}

// CollectionList is one page of collections.
type CollectionList struct {
	Info        Page          `json:"info"`
	Count       Count         `json:"count"`
	Collections []*Collection `json:"collections"`
}

// FileList is one page of files.
type FileList struct {
	Info  Page    `json:"info"`
	Count Count   `json:"count"`
	Files []*File `json:"files"`
}

// Profile is the authenticated user's own account summary.
type Profile struct {
	User            *User `json:"user"`
	CollectionCount int   `json:"collectionCount"`
	FileCount       int   `json:"fileCount"`
}
