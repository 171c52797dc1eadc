package collections

import (
	"context"

	"github.com/tijori/tijori/internal/server/models"
)

// Repository persists collections. It does not check ownership; callers
// compare OwnerID with the requester.
type Repository interface {
	Create(ctx context.Context, c *models.Collection) error
	GetByID(ctx context.Context, id string) (*models.Collection, error)
	GetBySlug(ctx context.Context, ownerID, slug string) (*models.Collection, error)
	ListFiles(ctx context.Context, collectionID string) ([]models.FileRef, error)
	ListByOwner(ctx context.Context, ownerID string, page models.Page) ([]*models.Collection, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	CountOwned(ctx context.Context, ownerID string, ids []string) (int, error)
	Update(ctx context.Context, id, name, slug string) (*models.Collection, error)
	Delete(ctx context.Context, id string) error
}
