// Package collections implements PostgreSQL storage for collections.
package collections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tijori/tijori/internal/common"
	"github.com/tijori/tijori/internal/dbx"
	"github.com/tijori/tijori/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectCollection = `SELECT id, name, slug, owner_id, created_at, updated_at FROM collections`

func (r *PostgresRepository) Create(ctx context.Context, c *models.Collection) error {
	query :=
		`INSERT INTO collections (name, slug, owner_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, c.Name, c.Slug, c.OwnerID).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	return scanOne(r.db.QueryRowContext(ctx, selectCollection+` WHERE id = $1`, id))
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, ownerID, slug string) (*models.Collection, error) {
	return scanOne(r.db.QueryRowContext(ctx, selectCollection+` WHERE owner_id = $1 AND slug = $2`, ownerID, slug))
}

func (r *PostgresRepository) ListFiles(ctx context.Context, collectionID string) ([]models.FileRef, error) {
	query :=
		`SELECT f.id, f.name FROM files f
		 JOIN collection_files cf ON cf.file_id = f.id
		 WHERE cf.collection_id = $1
		 ORDER BY f.created_at DESC, f.id`

	rows, err := r.db.QueryContext(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.FileRef{}
	for rows.Next() {
		var f models.FileRef
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

// ListByOwner returns one page of the owner's collections. page must be
// normalized.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, page models.Page) ([]*models.Collection, error) {
	query := selectCollection +
		` WHERE owner_id = $1 ORDER BY created_at ` + dbx.OrderKeyword(page.Order) + `, id LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, ownerID, page.Qty, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Collection{}
	for rows.Next() {
		c := &models.Collection{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections WHERE owner_id = $1`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// CountOwned reports how many of ids are collections owned by ownerID.
// ids must not contain duplicates.
func (r *PostgresRepository) CountOwned(ctx context.Context, ownerID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}
	query := `SELECT COUNT(*) FROM collections WHERE owner_id = $1 AND id IN (` + dbx.Placeholders(2, len(ids)) + `)`

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Update renames the collection. A slug taken by another collection of
// the same owner yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Update(ctx context.Context, id, name, slug string) (*models.Collection, error) {
	query :=
		`UPDATE collections SET name = $2, slug = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING id, name, slug, owner_id, created_at, updated_at`

	c, err := scanOne(r.db.QueryRowContext(ctx, query, id, name, slug))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func scanOne(row *sql.Row) (*models.Collection, error) {
	c := &models.Collection{}
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// Slug derives the per-owner unique key of a collection name.
func Slug(name, ownerID string) string {
	return strings.TrimSpace(name) + common.CollectionSlugSeparator + ownerID
}
