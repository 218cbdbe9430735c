package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Config locates the DuckDB database file.
type Config struct {
	DataDir string
	DBName  string
}

// Open opens the DuckDB database under DataDir/duckdb. An empty DataDir
// opens an in-memory database.
func Open(cfg Config) (*sql.DB, error) {
	if cfg.DataDir == "" {
		return sql.Open("duckdb", "")
	}
	duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
	if err := os.MkdirAll(duckdbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create duckdb directory: %w", err)
	}
	name := cfg.DBName
	if name == "" {
		name = "map"
	}
	return sql.Open("duckdb", filepath.Join(duckdbDir, name+".duckdb"))
}

// DuckDB is a LayerStore backed by a layer_state table.
type DuckDB struct {
	db *sql.DB
}

// NewDuckDB creates the layer_state table if needed.
func NewDuckDB(ctx context.Context, db *sql.DB) (*DuckDB, error) {
	const ddl = `CREATE TABLE IF NOT EXISTS layer_state (
		key VARCHAR PRIMARY KEY,
		visible BOOLEAN NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("creating layer_state: %w", err)
	}
	return &DuckDB{db: db}, nil
}

func (d *DuckDB) Visibility(ctx context.Context, key string) (bool, bool, error) {
	var visible bool
	err := d.db.QueryRowContext(ctx, `SELECT visible FROM layer_state WHERE key = ?`, key).Scan(&visible)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("reading layer state %q: %w", key, err)
	}
	return visible, true, nil
}

func (d *DuckDB) SetVisibility(ctx context.Context, key string, visible bool) error {
	_, err := d.db.ExecContext(ctx, `INSERT OR REPLACE INTO layer_state (key, visible) VALUES (?, ?)`, key, visible)
	if err != nil {
		return fmt.Errorf("writing layer state %q: %w", key, err)
	}
	return nil
}

func (d *DuckDB) List(ctx context.Context) ([]Entry, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT key, visible FROM layer_state ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing layer state: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Visible); err != nil {
			return nil, fmt.Errorf("scanning layer state: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (d *DuckDB) Close() error {
	return d.db.Close()
}
