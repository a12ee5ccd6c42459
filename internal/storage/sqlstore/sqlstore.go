package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"demand-planning/internal/config"
)

//go:embed schema_mysql.sql schema_sqlite.sql
var schemaFS embed.FS

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Storage is the relational store behind ingestion and analytics. Queries
// stay inside the SQL subset shared by MySQL 8 and SQLite.
type Storage struct {
	db     *sql.DB
	driver string
}

func New(cfg config.Storage) (*Storage, error) {
	const op = "storage.sqlstore.New"

	var dsn string
	switch cfg.Driver {
	case DriverMySQL:
		dsn = cfg.MySQLDSN()
	case DriverSQLite:
		dsn = cfg.Path
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("%s: create data directory: %w", op, err)
			}
		}
	default:
		return nil, fmt.Errorf("%s: unknown driver %q", op, cfg.Driver)
	}

	s, err := Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

// Open connects to dsn with the given driver and makes sure the schema exists.
func Open(driver, dsn string) (*Storage, error) {
	const op = "storage.sqlstore.Open"

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if driver == DriverSQLite {
		// a single connection keeps :memory: databases alive and serializes writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	s := &Storage{db: db, driver: driver}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) initSchema(ctx context.Context) error {
	const op = "storage.sqlstore.initSchema"

	schema, err := schemaFS.ReadFile("schema_" + s.driver + ".sql")
	if err != nil {
		return fmt.Errorf("%s: read schema: %w", op, err)
	}

	// the mysql driver rejects multi-statement Exec by default
	for _, stmt := range strings.Split(string(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}
