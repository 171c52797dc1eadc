// Package files implements PostgreSQL storage for file records.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

const fileColumns = `f.id, f.name, f.owner_id, f.storage_key, f.content_type, f.size, f.created_at, f.updated_at`

func (r *PostgresRepository) Create(ctx context.Context, f *models.File) error {
	query :=
		`INSERT INTO files (name, owner_id, storage_key, content_type, size)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, f.Name, f.OwnerID, f.StorageKey, f.ContentType, f.Size).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	return scanOne(r.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files f WHERE f.id = $1`, id))
}

// ListByOwner returns one page of the owner's files, optionally limited
// to members of collectionID. page must be normalized.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID, collectionID string, page models.Page) ([]*models.File, error) {
	from, args := ownerFilter(ownerID, collectionID)
	n := len(args)
	args = append(args, page.Qty, page.Offset())

	query := `SELECT ` + fileColumns + from +
		fmt.Sprintf(` ORDER BY f.created_at %s, f.id LIMIT $%d OFFSET $%d`, dbx.OrderKeyword(page.Order), n+1, n+2)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.File{}
	for rows.Next() {
		f := &models.File{}
		if err := rows.Scan(&f.ID, &f.Name, &f.OwnerID, &f.StorageKey, &f.ContentType, &f.Size, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByOwner(ctx context.Context, ownerID, collectionID string) (int, error) {
	from, args := ownerFilter(ownerID, collectionID)

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+from, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func ownerFilter(ownerID, collectionID string) (string, []any) {
	if collectionID == "" {
		return ` FROM files f WHERE f.owner_id = $1`, []any{ownerID}
	}
	return ` FROM files f JOIN collection_files cf ON cf.file_id = f.id WHERE f.owner_id = $1 AND cf.collection_id = $2`,
		[]any{ownerID, collectionID}
}

func (r *PostgresRepository) ListCollections(ctx context.Context, fileID string) ([]models.CollectionRef, error) {
	query :=
		`SELECT c.id, c.name FROM collections c
		 JOIN collection_files cf ON cf.collection_id = c.id
		 WHERE cf.file_id = $1
		 ORDER BY c.name, c.id`

	rows, err := r.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.CollectionRef{}
	for rows.Next() {
		var c models.CollectionRef
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

// AddToCollections links the file to every collection in collectionIDs.
// Existing links are left as they are.
func (r *PostgresRepository) AddToCollections(ctx context.Context, fileID string, collectionIDs []string) error {
	query :=
		`INSERT INTO collection_files (collection_id, file_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`

	for _, cid := range collectionIDs {
		if _, err := r.db.ExecContext(ctx, query, cid, fileID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) ClearCollections(ctx context.Context, fileID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM collection_files WHERE file_id = $1`, fileID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Rename(ctx context.Context, id, name string) (*models.File, error) {
	query :=
		`UPDATE files f SET name = $2, updated_at = now()
		 WHERE f.id = $1
		 RETURNING ` + fileColumns

	return scanOne(r.db.QueryRowContext(ctx, query, id, name))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
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

func scanOne(row *sql.Row) (*models.File, error) {
	f := &models.File{}
	err := row.Scan(&f.ID, &f.Name, &f.OwnerID, &f.StorageKey, &f.ContentType, &f.Size, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}
