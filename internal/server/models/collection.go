package models

import "time"

// Collection is a named, owner-scoped group of files. Slug is derived
// from Name and OwnerID and is unique per owner.
type Collection struct {
	ID        string    `json:"id"`
	Name      string    `json:"collectionName"`
	Slug      string    `json:"slug"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CollectionRef is the short form of a collection a file belongs to.
type CollectionRef struct {
	ID   string `json:"id"`
	Name string `json:"collectionName"`
}

// CollectionDetails is a collection with its member files.
type CollectionDetails struct {
	Collection
	Files     []FileRef `json:"files"`
	FileCount int       `json:"fileCount"`
}
