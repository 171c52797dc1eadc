package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tijori/tijori/internal/common"
	"github.com/tijori/tijori/internal/dbx"
	"github.com/tijori/tijori/internal/logging"
	"github.com/tijori/tijori/internal/server/models"
	"github.com/tijori/tijori/internal/server/repositories/collections"
	"github.com/tijori/tijori/internal/server/repositories/repomanager"
)

// CollectionService manages an owner's collections. Collections of other
// owners behave exactly like missing ones.
type CollectionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewCollectionService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *CollectionService {
	return &CollectionService{db: db, repomanager: m, log: log}
}

// Create adds a collection named name. The name must be unique among the
// owner's collections.
func (s *CollectionService) Create(ctx context.Context, ownerID, name string) (*models.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is required", common.ErrorValidation)
	}

	c := &models.Collection{
		Name:    name,
		Slug:    collections.Slug(name, ownerID),
		OwnerID: ownerID,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Collections(tx)

		_, err := repo.GetBySlug(ctx, ownerID, c.Slug)
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		return repo.Create(ctx, c)
	})
	if err != nil {
		return nil, mapError(ctx, s.log, "create collection", err)
	}

	return c, nil
}

func (s *CollectionService) Get(ctx context.Context, ownerID, id string) (*models.CollectionDetails, error) {
	repo := s.repomanager.Collections(s.db)

	c, err := ownedCollection(ctx, repo, ownerID, id)
	if err != nil {
		return nil, mapError(ctx, s.log, "get collection", err)
	}

	refs, err := repo.ListFiles(ctx, c.ID)
	if err != nil {
		return nil, mapError(ctx, s.log, "list collection files", err)
	}

	return &models.CollectionDetails{Collection: *c, Files: refs, FileCount: len(refs)}, nil
}

func (s *CollectionService) List(ctx context.Context, ownerID string, page models.Page) (*models.CollectionList, error) {
	page = page.Normalize()
	repo := s.repomanager.Collections(s.db)

	total, err := repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, mapError(ctx, s.log, "count collections", err)
	}

	items, err := repo.ListByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, mapError(ctx, s.log, "list collections", err)
	}

	return &models.CollectionList{
		Info:        page,
		Count:       models.Count{Total: total, Current: len(items)},
		Collections: items,
	}, nil
}

// Rename changes the collection's name. Renaming to the current name is
// allowed; taking the name of another of the owner's collections is not.
func (s *CollectionService) Rename(ctx context.Context, ownerID, id, newName string) (*models.Collection, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("%w: new collection name is required", common.ErrorValidation)
	}

	var updated *models.Collection
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Collections(tx)

		c, err := ownedCollection(ctx, repo, ownerID, id)
		if err != nil {
			return err
		}

		slug := collections.Slug(newName, ownerID)
		other, err := repo.GetBySlug(ctx, ownerID, slug)
		switch {
		case err == nil && other.ID != c.ID:
			return common.ErrorAlreadyExists
		case err != nil && !errors.Is(err, common.ErrorNotFound):
			return err
		}

		updated, err = repo.Update(ctx, c.ID, newName, slug)
		return err
	})
	if err != nil {
		return nil, mapError(ctx, s.log, "rename collection", err)
	}

	return updated, nil
}

// Delete removes the collection. Member files are kept.
func (s *CollectionService) Delete(ctx context.Context, ownerID, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Collections(tx)

		if _, err := ownedCollection(ctx, repo, ownerID, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	return mapError(ctx, s.log, "delete collection", err)
}

func ownedCollection(ctx context.Context, repo collections.Repository, ownerID, id string) (*models.Collection, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}

	c, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

// checkOwnedCollections fails with common.ErrorNotFound unless every id
// names a collection of ownerID. ids must be deduplicated.
func checkOwnedCollections(ctx context.Context, repo collections.Repository, ownerID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if !validID(id) {
			return common.ErrorNotFound
		}
	}

	n, err := repo.CountOwned(ctx, ownerID, ids)
	if err != nil {
		return err
	}
	if n != len(ids) {
		return common.ErrorNotFound
	}
	return nil
}
