// Package repomanager wires repositories to database handles and owns
// schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/streamvault/streamvault/internal/dbx"
	"github.com/streamvault/streamvault/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so the same
// repository code runs against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
