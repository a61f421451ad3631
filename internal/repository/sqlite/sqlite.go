// Package sqlite is a single-file save store for running without a
// database server. It uses the pure Go driver, so no cgo is needed.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/repository"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Store is a SaveStore and Pinger over one SQLite file.
type Store struct {
	db *sql.DB
}

// Open creates the file (and its directory) when missing and applies the
// schema.
func Open(ctx context.Context, path string, logger zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time; SQLite serializes writes anyway
	db.SetMaxOpenConns(1)

	fsys, err := fs.Sub(embedded, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("goose up: %w", err)
	}
	logger.Info().Str("path", path).Msg("sqlite save store ready")
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return repository.Unavailable("sqlite ping", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, sessionID string, data model.SaveData) (string, error) {
	b, err := repository.EncodeSave(data)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saves (handle, data, total_events, last_modified)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (handle) DO UPDATE
		 SET data = excluded.data,
		     total_events = excluded.total_events,
		     last_modified = excluded.last_modified,
		     updated_at = CURRENT_TIMESTAMP`,
		sessionID, string(b), len(data.Events), data.LastModified.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", repository.Unavailable("sqlite save", err)
	}
	return sessionID, nil
}

func (s *Store) Load(ctx context.Context, handle string) (model.SaveData, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM saves WHERE handle = ?`, handle).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SaveData{}, repository.ErrNotFound
	}
	if err != nil {
		return model.SaveData{}, repository.Unavailable("sqlite load", err)
	}
	return repository.DecodeSave([]byte(raw))
}

func (s *Store) Delete(ctx context.Context, handle string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE handle = ?`, handle)
	if err != nil {
		return repository.Unavailable("sqlite delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return repository.Unavailable("sqlite delete", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]repository.SaveInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT handle, last_modified, total_events FROM saves ORDER BY rowid`)
	if err != nil {
		return nil, repository.Unavailable("sqlite list", err)
	}
	defer rows.Close()

	var out []repository.SaveInfo
	for rows.Next() {
		var (
			info     repository.SaveInfo
			modified string
		)
		if err := rows.Scan(&info.Handle, &modified, &info.TotalEvents); err != nil {
			return nil, repository.Unavailable("sqlite list", err)
		}
		// unparsable values leave the zero time
		info.LastModified, _ = time.Parse(time.RFC3339Nano, modified)
		out = append(out, info)
	}
	return out, rows.Err()
}

var (
	_ repository.SaveStore = (*Store)(nil)
	_ repository.Pinger    = (*Store)(nil)
)
