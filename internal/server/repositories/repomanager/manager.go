package repomanager

import (
	"context"
	"database/sql"

	"github.com/tijori/tijori/internal/dbx"
	"github.com/tijori/tijori/internal/server/repositories/collections"
	"github.com/tijori/tijori/internal/server/repositories/files"
	"github.com/tijori/tijori/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DB or an open transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Collections(db dbx.DBTX) collections.Repository
	Files(db dbx.DBTX) files.Repository
}
