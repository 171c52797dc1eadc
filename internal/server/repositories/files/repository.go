package files

import (
	"context"

	"github.com/tijori/tijori/internal/server/models"
)

// Repository persists file records and their collection memberships.
type Repository interface {
	Create(ctx context.Context, f *models.File) error
	GetByID(ctx context.Context, id string) (*models.File, error)
	ListByOwner(ctx context.Context, ownerID, collectionID string, page models.Page) ([]*models.File, error)
	CountByOwner(ctx context.Context, ownerID, collectionID string) (int, error)
	ListCollections(ctx context.Context, fileID string) ([]models.CollectionRef, error)
	AddToCollections(ctx context.Context, fileID string, collectionIDs []string) error
	ClearCollections(ctx context.Context, fileID string) error
	Rename(ctx context.Context, id, name string) (*models.File, error)
	Delete(ctx context.Context, id string) error
}
