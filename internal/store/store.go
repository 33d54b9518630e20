// Package store persists imported player batches in SQLite so they can be re-scored later
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"

	"github.com/myusername/fm-scout/pkg/models"
)

// ErrNotFound is returned when an import batch does not exist
var ErrNotFound = errors.New("import not found")

// ImportSummary describes one saved import batch
type ImportSummary struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Format      string    `json:"format"`
	PlayerCount int       `json:"player_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store wraps the SQLite database
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer at a time
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS imports (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			format TEXT NOT NULL,
			player_count INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS players (
			import_id TEXT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			payload TEXT NOT NULL,
			PRIMARY KEY (import_id, position)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// SaveImport stores players as a new batch and returns its ID
func (s *Store) SaveImport(ctx context.Context, source, format string, players []models.Player) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, format, player_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, source, format, len(players), time.Now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("failed to insert import: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO players (import_id, position, name, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare player insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range players {
		payload, err := json.Marshal(models.RecordFromPlayer(p))
		if err != nil {
			return "", fmt.Errorf("failed to encode player %q: %w", p.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, id, i, p.Name, string(payload)); err != nil {
			return "", fmt.Errorf("failed to insert player %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit import: %w", err)
	}
	return id, nil
}

// ListImports returns every batch, newest first
func (s *Store) ListImports(ctx context.Context) ([]ImportSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, format, player_count, created_at FROM imports ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	defer rows.Close()

	out := []ImportSummary{}
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// GetImport returns the summary of one batch
func (s *Store) GetImport(ctx context.Context, id string) (ImportSummary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, format, player_count, created_at FROM imports WHERE id = ?`, id)
	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ImportSummary{}, ErrNotFound
	}
	if err != nil {
		return ImportSummary{}, fmt.Errorf("failed to load import: %w", err)
	}
	return sum, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSummary(row scanner) (ImportSummary, error) {
	var sum ImportSummary
	var createdAt int64
	if err := row.Scan(&sum.ID, &sum.Source, &sum.Format, &sum.PlayerCount, &createdAt); err != nil {
		return ImportSummary{}, err
	}
	sum.CreatedAt = time.Unix(0, createdAt).UTC()
	return sum, nil
}

// LoadRecords returns a batch's players as flattened records, in import order
func (s *Store) LoadRecords(ctx context.Context, id string) ([]models.PlayerRecord, error) {
	if _, err := s.GetImport(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM players WHERE import_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	defer rows.Close()

	out := []models.PlayerRecord{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		var rec models.PlayerRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode player: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteImport removes a batch and its players
func (s *Store) DeleteImport(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE import_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete players: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM imports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete import: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted imports: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
