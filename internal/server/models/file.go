// Package models defines server-side data models persisted in the database.
package models

import "time"

// File describes an uploaded document. The bytes live in object storage
// under StorageKey; the record only references them.
type File struct {
	ID      string `json:"id"`
	Name    string `json:"fileName"`
	OwnerID string `json:"ownerId"`

	// StorageKey is the opaque object-storage key. Assigned once, unique.
	StorageKey  string `json:"-"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FileRef is the short form of a file listed inside a collection.
type FileRef struct {
	ID   string `json:"id"`
	Name string `json:"fileName"`
}

// FileDetails is a file together with its collections and signed URLs.
type FileDetails struct {
	File
	Collections []CollectionRef `json:"collections"`
	ViewURL     string          `json:"viewUrl,omitempty"`
	DownloadURL string          `json:"downloadUrl,omitempty"`
}
