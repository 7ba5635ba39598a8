package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/mixingcompass/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// HSP components and molar volume are nullable: NULL means unknown.
func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS solvents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL COLLATE NOCASE,
		cas TEXT COLLATE NOCASE,
		smiles TEXT,
		molar_volume REAL,
		delta_d REAL,
		delta_p REAL,
		delta_h REAL,
		source_url TEXT,
		source_file TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_solvents_name ON solvents(name);
	CREATE INDEX IF NOT EXISTS idx_solvents_cas ON solvents(cas);
	CREATE INDEX IF NOT EXISTS idx_solvents_source ON solvents(source_file);
	`
	_, err := db.Exec(schema)
	return err
}

const solventColumns = `id, name, cas, smiles, molar_volume, delta_d, delta_p, delta_h,
	source_url, source_file, created_at, updated_at`

const upsertSolvent = `INSERT INTO solvents (` + solventColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		cas = excluded.cas,
		smiles = excluded.smiles,
		molar_volume = excluded.molar_volume,
		delta_d = excluded.delta_d,
		delta_p = excluded.delta_p,
		delta_h = excluded.delta_h,
		source_url = excluded.source_url,
		source_file = excluded.source_file,
		updated_at = excluded.updated_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func upsert(ctx context.Context, e execer, s *models.Solvent, now time.Time) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	_, err := e.ExecContext(ctx, upsertSolvent,
		s.ID, s.Name, nullString(s.CAS), nullString(s.SMILES), nullFloat(s.MolarVolume),
		nullFloat(s.HSP.D), nullFloat(s.HSP.P), nullFloat(s.HSP.H),
		nullString(s.SourceURL), nullString(s.SourceFile), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert solvent %q: %w", s.Name, err)
	}
	return nil
}

// UpsertSolvent inserts a solvent or replaces the record with the same ID.
func (s *SQLiteStorage) UpsertSolvent(ctx context.Context, solvent *models.Solvent) error {
	return upsert(ctx, s.db, solvent, time.Now())
}

// BatchUpsertSolvents upserts multiple solvents in a transaction.
func (s *SQLiteStorage) BatchUpsertSolvents(ctx context.Context, solvents []*models.Solvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, solvent := range solvents {
		if err := upsert(ctx, tx, solvent, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetSolvent returns a solvent by ID.
func (s *SQLiteStorage) GetSolvent(ctx context.Context, id string) (*models.Solvent, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+solventColumns+` FROM solvents WHERE id = ?`, id)
	solvent, err := scanSolvent(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("solvent %w: %s", ErrNotFound, id)
	}
	return solvent, err
}

// FindSolvent returns the solvent whose name or CAS number matches key, ignoring
// case. A name match wins over a CAS match.
func (s *SQLiteStorage) FindSolvent(ctx context.Context, key string) (*models.Solvent, error) {
	key = strings.TrimSpace(key)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+solventColumns+` FROM solvents
		 WHERE name = ? OR cas = ?
		 ORDER BY name = ? DESC LIMIT 1`,
		key, key, key,
	)
	solvent, err := scanSolvent(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("solvent %w: %s", ErrNotFound, key)
	}
	return solvent, err
}

// ListSolvents returns solvents ordered by name with offset and limit.
func (s *SQLiteStorage) ListSolvents(ctx context.Context, offset, limit int) ([]*models.Solvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+solventColumns+` FROM solvents ORDER BY name LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var solvents []*models.Solvent
	for rows.Next() {
		solvent, err := scanSolvent(rows)
		if err != nil {
			return nil, err
		}
		solvents = append(solvents, solvent)
	}
	return solvents, rows.Err()
}

// DeleteSolvent removes a solvent by ID.
func (s *SQLiteStorage) DeleteSolvent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM solvents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("solvent %w: %s", ErrNotFound, id)
	}
	return nil
}

// DeleteBySource removes every solvent imported from sourceFile.
func (s *SQLiteStorage) DeleteBySource(ctx context.Context, sourceFile string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM solvents WHERE source_file = ?`, sourceFile)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM solvents WHERE source_file = ?`, sourceFile); err != nil {
		return nil, err
	}
	return ids, tx.Commit()
}

// CountSolvents returns the total number of solvents.
func (s *SQLiteStorage) CountSolvents(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM solvents`).Scan(&count)
	return count, err
}

// CountComplete returns the number of solvents with all three HSP components.
func (s *SQLiteStorage) CountComplete(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM solvents
		 WHERE delta_d IS NOT NULL AND delta_p IS NOT NULL AND delta_h IS NOT NULL`,
	).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSolvent(row scanner) (*models.Solvent, error) {
	var (
		s                      models.Solvent
		cas, smiles, url, file sql.NullString
		mvol, d, p, h          sql.NullFloat64
	)
	if err := row.Scan(&s.ID, &s.Name, &cas, &smiles, &mvol, &d, &p, &h, &url, &file, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.CAS, s.SMILES, s.SourceURL, s.SourceFile = cas.String, smiles.String, url.String, file.String
	s.MolarVolume = floatPtr(mvol)
	s.HSP.D, s.HSP.P, s.HSP.H = floatPtr(d), floatPtr(p), floatPtr(h)
	return &s, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
