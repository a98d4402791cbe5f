/*
Package sqlitestore implements the store contracts on SQLite using sqlz.
Photos are normalized into child tables for tags, album membership, and
comments so each mutation is a single statement or a short transaction.
*/
package sqlitestore

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/glebarez/sqlite"
	"github.com/rfberaldo/sqlz"
	"github.com/rfberaldo/sqlz/binds"
)

//go:embed sql-migrations
var sqlMigrationsFs embed.FS

/*
Connect opens the SQLite database at dsn and applies the embedded
migrations. Use a DSN such as "file:./data/mediacatalog.db?_pragma=foreign_keys(1)"
so references between tables are enforced.
*/
func Connect(dsn string) (*sqlz.DB, error) {
	var (
		err error
		db  *sqlz.DB
	)

	binds.Register("sqlite", binds.BindByDriver("sqlite3"))

	if db, err = sqlz.Connect("sqlite", dsn); err != nil {
		return nil, fmt.Errorf("error connecting to sqlite database: %w", err)
	}

	// SQLite allows one writer. A single connection keeps transactions from
	// failing to upgrade their locks under concurrent requests.
	db.Pool().SetMaxOpenConns(1)

	if err = Migrate(db); err != nil {
		_ = db.Pool().Close()
		return nil, err
	}

	return db, nil
}

/*
Migrate runs every embedded script whose name starts with "commit", in
file name order. Scripts are written to be re-runnable.
*/
func Migrate(db *sqlz.DB) error {
	var (
		err  error
		dirs []fs.DirEntry
		b    []byte
	)

	if dirs, err = sqlMigrationsFs.ReadDir("sql-migrations"); err != nil {
		return fmt.Errorf("error reading migrations: %w", err)
	}

	for _, d := range dirs {
		if d.IsDir() || !strings.HasPrefix(d.Name(), "commit") {
			continue
		}

		if b, err = fs.ReadFile(sqlMigrationsFs, filepath.Join("sql-migrations", d.Name())); err != nil {
			return fmt.Errorf("error reading migration '%s': %w", d.Name(), err)
		}

		if err = runSqlScript(db, b); err != nil && !isIgnorableError(err) {
			return fmt.Errorf("error running migration '%s': %w", d.Name(), err)
		}

		slog.Debug("applied migration", "name", d.Name())
	}

	return nil
}

func runSqlScript(db *sqlz.DB, script []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err := db.Exec(ctx, string(script))
	return err
}

func isIgnorableError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}

func isConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}

	return time.UnixMilli(ms).UTC()
}
