package httpapi

import (
	"context"
	"time"

	"github.com/tijori/tijori/internal/server/models"
	"github.com/tijori/tijori/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, email, username, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Authenticate(ctx context.Context, token string) (*services.Session, error)
	IsLive(token string) bool
	Profile(ctx context.Context, userID string) (*models.Profile, error)
	TokenValidity() time.Duration
}

type CollectionService interface {
	Create(ctx context.Context, ownerID, name string) (*models.Collection, error)
	Get(ctx context.Context, ownerID, id string) (*models.CollectionDetails, error)
	List(ctx context.Context, ownerID string, page models.Page) (*models.CollectionList, error)
	Rename(ctx context.Context, ownerID, id, newName string) (*models.Collection, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type FileService interface {
	Upload(ctx context.Context, ownerID string, in services.Upload) (*models.FileDetails, error)
	Get(ctx context.Context, ownerID, id string) (*models.FileDetails, error)
	List(ctx context.Context, ownerID, collectionID string, page models.Page) (*models.FileList, error)
	Rename(ctx context.Context, ownerID, id, newName string) (*models.File, error)
	SetCollections(ctx context.Context, ownerID, fileID string, collectionIDs []string) (*models.FileDetails, error)
	Delete(ctx context.Context, ownerID, id string) error
}

var (
	_ UserService       = (*services.UserService)(nil)
	_ CollectionService = (*services.CollectionService)(nil)
	_ FileService       = (*services.FileService)(nil)
)
