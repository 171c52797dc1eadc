package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/tijori/tijori/internal/common"
	"github.com/tijori/tijori/internal/dbx"
	"github.com/tijori/tijori/internal/logging"
	"github.com/tijori/tijori/internal/server/models"
	"github.com/tijori/tijori/internal/server/repositories/files"
	"github.com/tijori/tijori/internal/server/repositories/repomanager"
)

// BlobStore keeps file contents outside the database.
type BlobStore interface {
	Put(ctx context.Context, ownerID string, r io.Reader, size int64, contentType string) (string, error)
	ViewURL(ctx context.Context, key, name string) (string, error)
	DownloadURL(ctx context.Context, key, name string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewFile describes a file record for contents already in the blob store.
type NewFile struct {
	Name          string
	StorageKey    string
	Size          int64
	ContentType   string
	CollectionIDs []string
}

// Upload describes a file whose contents still have to be stored.
type Upload struct {
	Name          string
	Body          io.Reader
	Size          int64
	ContentType   string
	CollectionIDs []string
}

// FileService manages an owner's files and their collection memberships.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       BlobStore
	log         logging.Logger
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, blobs BlobStore, log logging.Logger) *FileService {
	return &FileService{db: db, repomanager: m, blobs: blobs, log: log}
}

// Create records a stored blob as a file of ownerID and links it to the
// given collections, all of which must belong to ownerID.
func (s *FileService) Create(ctx context.Context, ownerID string, in NewFile) (*models.FileDetails, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.StorageKey == "" {
		return nil, fmt.Errorf("%w: file name and storage key are required", common.ErrorValidation)
	}
	ids := uniqueIDs(in.CollectionIDs)

	details := &models.FileDetails{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := checkOwnedCollections(ctx, s.repomanager.Collections(tx), ownerID, ids); err != nil {
			return err
		}

		repo := s.repomanager.Files(tx)
		f := &models.File{
			Name:        name,
			OwnerID:     ownerID,
			StorageKey:  in.StorageKey,
			ContentType: in.ContentType,
			Size:        in.Size,
		}
		if err := repo.Create(ctx, f); err != nil {
			return err
		}
		if err := repo.AddToCollections(ctx, f.ID, ids); err != nil {
			return err
		}

		refs, err := repo.ListCollections(ctx, f.ID)
		if err != nil {
			return err
		}
		details.File = *f
		details.Collections = refs
		return nil
	})
	if err != nil {
		return nil, mapError(ctx, s.log, "create file", err)
	}

	return details, nil
}

// Upload stores the contents and then records the file. If the record
// cannot be written the stored contents are removed again.
func (s *FileService) Upload(ctx context.Context, ownerID string, in Upload) (*models.FileDetails, error) {
	if strings.TrimSpace(in.Name) == "" || in.Body == nil {
		return nil, fmt.Errorf("%w: file and file name are required", common.ErrorValidation)
	}

	key, err := s.blobs.Put(ctx, ownerID, in.Body, in.Size, in.ContentType)
	if err != nil {
		return nil, mapError(ctx, s.log, "store file contents", err)
	}

	details, err := s.Create(ctx, ownerID, NewFile{
		Name:          in.Name,
		StorageKey:    key,
		Size:          in.Size,
		ContentType:   in.ContentType,
		CollectionIDs: in.CollectionIDs,
	})
	if err != nil {
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), key); derr != nil {
			s.log.Warn(ctx, "orphaned blob", "key", key, "error", derr)
		}
		return nil, err
	}

	s.log.Info(ctx, "file uploaded", "owner", ownerID, "file", details.ID, "size", details.Size)
	return details, nil
}

// Get returns the file, its collections and presigned links to it.
func (s *FileService) Get(ctx context.Context, ownerID, id string) (*models.FileDetails, error) {
	repo := s.repomanager.Files(s.db)

	f, err := ownedFile(ctx, repo, ownerID, id)
	if err != nil {
		return nil, mapError(ctx, s.log, "get file", err)
	}

	refs, err := repo.ListCollections(ctx, f.ID)
	if err != nil {
		return nil, mapError(ctx, s.log, "list file collections", err)
	}

	view, err := s.blobs.ViewURL(ctx, f.StorageKey, f.Name)
	if err != nil {
		return nil, mapError(ctx, s.log, "presign view", err)
	}
	download, err := s.blobs.DownloadURL(ctx, f.StorageKey, f.Name)
	if err != nil {
		return nil, mapError(ctx, s.log, "presign download", err)
	}

	return &models.FileDetails{File: *f, Collections: refs, ViewURL: view, DownloadURL: download}, nil
}

// List returns one page of the owner's files. A non-empty collectionID
// restricts the page to that collection, which must belong to the owner.
func (s *FileService) List(ctx context.Context, ownerID, collectionID string, page models.Page) (*models.FileList, error) {
	page = page.Normalize()

	if collectionID != "" {
		if _, err := ownedCollection(ctx, s.repomanager.Collections(s.db), ownerID, collectionID); err != nil {
			return nil, mapError(ctx, s.log, "get collection", err)
		}
	}

	repo := s.repomanager.Files(s.db)

	total, err := repo.CountByOwner(ctx, ownerID, collectionID)
	if err != nil {
		return nil, mapError(ctx, s.log, "count files", err)
	}

	items, err := repo.ListByOwner(ctx, ownerID, collectionID, page)
	if err != nil {
		return nil, mapError(ctx, s.log, "list files", err)
	}

	return &models.FileList{
		Info:  page,
		Count: models.Count{Total: total, Current: len(items)},
		Files: items,
	}, nil
}

func (s *FileService) Rename(ctx context.Context, ownerID, id, newName string) (*models.File, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("%w: new file name is required", common.ErrorValidation)
	}

	repo := s.repomanager.Files(s.db)

	if _, err := ownedFile(ctx, repo, ownerID, id); err != nil {
		return nil, mapError(ctx, s.log, "get file", err)
	}

	f, err := repo.Rename(ctx, id, newName)
	if err != nil {
		return nil, mapError(ctx, s.log, "rename file", err)
	}
	return f, nil
}

// SetCollections replaces the file's memberships with collectionIDs. Both
// the file and every collection must belong to ownerID.
func (s *FileService) SetCollections(ctx context.Context, ownerID, fileID string, collectionIDs []string) (*models.FileDetails, error) {
	ids := uniqueIDs(collectionIDs)

	details := &models.FileDetails{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)

		f, err := ownedFile(ctx, repo, ownerID, fileID)
		if err != nil {
			return err
		}
		if err := checkOwnedCollections(ctx, s.repomanager.Collections(tx), ownerID, ids); err != nil {
			return err
		}

		if err := repo.ClearCollections(ctx, f.ID); err != nil {
			return err
		}
		if err := repo.AddToCollections(ctx, f.ID, ids); err != nil {
			return err
		}

		refs, err := repo.ListCollections(ctx, f.ID)
		if err != nil {
			return err
		}
		details.File = *f
		details.Collections = refs
		return nil
	})
	if err != nil {
		return nil, mapError(ctx, s.log, "set file collections", err)
	}

	return details, nil
}

// Delete removes the stored contents and then the record.
func (s *FileService) Delete(ctx context.Context, ownerID, id string) error {
	repo := s.repomanager.Files(s.db)

	f, err := ownedFile(ctx, repo, ownerID, id)
	if err != nil {
		return mapError(ctx, s.log, "get file", err)
	}

	if err := s.blobs.Delete(ctx, f.StorageKey); err != nil {
		return mapError(ctx, s.log, "delete file contents", err)
	}

	if err := repo.Delete(ctx, f.ID); err != nil {
		return mapError(ctx, s.log, "delete file", err)
	}

	s.log.Info(ctx, "file deleted", "owner", ownerID, "file", f.ID)
	return nil
}

func ownedFile(ctx context.Context, repo files.Repository, ownerID, id string) (*models.File, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}

	f, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return f, nil
}
