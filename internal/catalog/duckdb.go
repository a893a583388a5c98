// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/andariego-ec/andariego/internal/logging"
)

// DuckDBConfig holds the embedded database settings.
type DuckDBConfig struct {
	// Path is the database file location. Empty means in-memory.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage (e.g. "512MB").
	MaxMemory string `koanf:"max_memory"`

	// Threads limits query parallelism. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// DuckDBStore implements Store on an embedded DuckDB database.
// The catalog is small and read-mostly; DuckDB gives us durable storage
// plus cheap ad-hoc analytics over the same file.
type DuckDBStore struct {
	conn *sql.DB
}

const sitesSchema = `
CREATE TABLE IF NOT EXISTS sites (
	id         BIGINT PRIMARY KEY,
	name       VARCHAR NOT NULL,
	category   VARCHAR NOT NULL,
	province   VARCHAR NOT NULL,
	latitude   DOUBLE,
	longitude  DOUBLE,
	active     BOOLEAN DEFAULT true,
	image_path VARCHAR DEFAULT '',
	created_at TIMESTAMP DEFAULT current_timestamp
)`

// NewDuckDBStore opens (or creates) the catalog database and initializes
// the schema.
func NewDuckDBStore(cfg DuckDBConfig) (*DuckDBStore, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "512MB"
	}

	// Ensure the parent directory exists for file-backed databases.
	if cfg.Path != "" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dbDir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, threads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}

	if _, err := conn.Exec(sitesSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize sites schema: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Msg("Catalog database initialized")

	return &DuckDBStore{conn: conn}, nil
}

// ListActiveSites returns active sites ordered by ID.
func (d *DuckDBStore) ListActiveSites(ctx context.Context) ([]Site, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, name, category, province, latitude, longitude, active, image_path, created_at
		FROM sites
		WHERE active
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active sites: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close sites rows")
		}
	}()

	var sites []Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sites: %w", err)
	}
	if sites == nil {
		sites = []Site{}
	}
	return sites, nil
}

// GetSite returns a site by ID.
func (d *DuckDBStore) GetSite(ctx context.Context, id int64) (*Site, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT id, name, category, province, latitude, longitude, active, image_path, created_at
		FROM sites
		WHERE id = ?`, id)

	s, err := scanSite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSiteNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SeedSites upserts catalog entries inside a single transaction.
func (d *DuckDBStore) SeedSites(ctx context.Context, sites []Site) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO sites (id, name, category, province, latitude, longitude, active, image_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare seed statement: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, s := range sites {
		if _, err := stmt.ExecContext(ctx,
			s.ID, s.Name, string(s.Category), s.Province,
			s.Latitude, s.Longitude, s.Active, s.ImagePath,
		); err != nil {
			return fmt.Errorf("seed site %d: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (d *DuckDBStore) Close() error {
	return d.conn.Close()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(row rowScanner) (*Site, error) {
	var s Site
	var category string
	if err := row.Scan(
		&s.ID, &s.Name, &category, &s.Province,
		&s.Latitude, &s.Longitude, &s.Active, &s.ImagePath, &s.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan site: %w", err)
	}
	s.Category = Category(category)
	return &s, nil
}
