// Package database is a core.TableService on top of a SQL database (Postgres or SQLite).
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/trezcool/lophoc/core"
	appfs "github.com/trezcool/lophoc/fs"
)

const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

func postgresURL(dbName string, conf core.DatabaseConfig) string {
	sslMode := "require"
	if conf.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.User, conf.Password),
		Host:     conf.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open connects to the configured SQL backend and waits for it to answer.
func Open(conf *core.Config) (*sqlx.DB, error) {
	switch conf.Backend {
	case core.BackendPostgres:
		return OpenPostgres(conf.Database)
	case core.BackendSQLite:
		return OpenSQLite(conf.Database.Path)
	default:
		return nil, errors.Errorf("backend %q is not a SQL database", conf.Backend)
	}
}

func OpenPostgres(conf core.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(EnginePostgres, postgresURL(conf.Name, conf))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db, 30); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens (creating it if needed) the database file at path.
func OpenSQLite(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sqlx.Open(EngineSQLite, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite database")
	}
	if err = ping(db, 1); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB, maxAttempts int) error {
	var err error
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		if attempts < maxAttempts {
			time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}

func exists(db *sqlx.DB, query string, args ...interface{}) (bool, error) {
	var found bool
	err := db.Get(&found, query, args...)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return found, err
}

// CreateIfNotExist creates the configured Postgres database when it is missing.
// It connects to the `postgres` maintenance database with the app credentials.
func CreateIfNotExist(conf core.DatabaseConfig) error {
	db, err := sqlx.Open(EnginePostgres, postgresURL("postgres", conf))
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = ping(db, 30); err != nil {
		return errors.Wrap(err, "pinging database")
	}

	found, err := exists(db, "SELECT true FROM pg_database WHERE datname = $1", conf.Name)
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !found {
		// identifiers cannot be bound as parameters
		if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %q", conf.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// Bootstrap creates the application tables that do not exist yet.
func Bootstrap(ctx context.Context, db *sqlx.DB) error {
	schema, err := fs.ReadFile(appfs.FS, "schema/"+engineOf(db)+".sql")
	if err != nil {
		return errors.Wrap(err, "reading schema")
	}
	if _, err = db.ExecContext(ctx, string(schema)); err != nil {
		return errors.Wrap(err, "applying schema")
	}
	return nil
}

func engineOf(db *sqlx.DB) string {
	if db.DriverName() == EngineSQLite {
		return EngineSQLite
	}
	return EnginePostgres
}
