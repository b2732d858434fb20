// Package migrate applies embedded SQL migrations to the local store.
package migrate

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/and161185/roommaster/migrations"
)

// Up runs all pending migrations from the embedded filesystem.
func Up(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}
