package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
)

// Store is a SQL implementation of ports.StorageProvider holding the
// plugin_descriptors table.
type Store struct {
	db *sqlx.DB
}

var _ ports.StorageProvider = (*Store)(nil)

// Config holds database connection configuration
type Config struct {
	Driver string // database/sql driver name; only "sqlite" is linked in
	DSN    string // Data source name / connection string
}

var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// New creates a new SQL store with the specified configuration.
func New(cfg Config) (*Store, error) {
	driver := strings.ToLower(cfg.Driver)
	switch driver {
	case "sqlite", "sqlite3":
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := sqlx.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers, and an in-memory database only exists on
	// the connection that created it.
	db.SetMaxOpenConns(1)

	for _, stmt := range sqlitePragmas {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute pragma: %w", err)
		}
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// NewSQLite creates a new SQLite store.
func NewSQLite(dbPath string) (*Store, error) {
	return New(Config{Driver: "sqlite", DSN: dbPath})
}

// DB returns the underlying sqlx.DB for advanced operations
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS plugin_descriptors (
seq INTEGER PRIMARY KEY AUTOINCREMENT,
id TEXT NOT NULL DEFAULT '',
type TEXT NOT NULL,
priority INTEGER NOT NULL DEFAULT 0,
enabled INTEGER NOT NULL DEFAULT 1,
weight REAL,
params TEXT,
created_at INTEGER NOT NULL
)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type descriptorRow struct {
	Seq      int64           `db:"seq"`
	ID       string          `db:"id"`
	Type     string          `db:"type"`
	Priority int             `db:"priority"`
	Enabled  bool            `db:"enabled"`
	Weight   sql.NullFloat64 `db:"weight"`
	Params   sql.NullString  `db:"params"`
}

func (r descriptorRow) descriptor() (domain.Descriptor, error) {
	d := domain.Descriptor{
		ID:       r.ID,
		Type:     r.Type,
		Priority: r.Priority,
	}
	if !r.Enabled {
		enabled := false
		d.Enabled = &enabled
	}
	if r.Weight.Valid {
		w := r.Weight.Float64
		d.Weight = &w
	}
	if r.Params.Valid && r.Params.String != "" {
		if err := json.Unmarshal([]byte(r.Params.String), &d.Params); err != nil {
			return domain.Descriptor{}, fmt.Errorf("descriptor row %d: invalid params: %w", r.Seq, err)
		}
	}
	return d, nil
}

// Descriptors returns the stored descriptors in insertion order.
func (s *Store) Descriptors(ctx context.Context) ([]domain.Descriptor, error) {
	var rows []descriptorRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT seq, id, type, priority, enabled, weight, params FROM plugin_descriptors ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list descriptors: %w", err)
	}

	out := make([]domain.Descriptor, 0, len(rows))
	for _, r := range rows {
		d, err := r.descriptor()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// SaveDescriptors replaces the stored descriptors in one transaction.
func (s *Store) SaveDescriptors(ctx context.Context, descriptors []domain.Descriptor) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plugin_descriptors`); err != nil {
		return fmt.Errorf("failed to clear descriptors: %w", err)
	}

	query := tx.Rebind(`INSERT INTO plugin_descriptors (id, type, priority, enabled, weight, params, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	now := time.Now().UnixNano()
	for _, d := range descriptors {
		var weight sql.NullFloat64
		if d.Weight != nil {
			weight = sql.NullFloat64{Float64: *d.Weight, Valid: true}
		}
		var params sql.NullString
		if len(d.Params) > 0 {
			b, err := json.Marshal(d.Params)
			if err != nil {
				return fmt.Errorf("failed to marshal params of %s: %w", d.Identifier(), err)
			}
			params = sql.NullString{String: string(b), Valid: true}
		}

		if _, err := tx.ExecContext(ctx, query,
			d.ID, d.Type, d.Priority, d.IsEnabled(), weight, params, now); err != nil {
			return fmt.Errorf("failed to save descriptor %s: %w", d.Identifier(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit descriptors: %w", err)
	}
	return nil
}
