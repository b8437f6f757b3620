package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"cares/internal/model"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLiteReportRepo keeps reports in a local SQLite file. The full record is
// stored as JSON; the listing columns are duplicated for cheap scans.
type SQLiteReportRepo struct {
	db *sql.DB
}

// NewSQLiteReportRepo opens (and creates if needed) the database at path
func NewSQLiteReportRepo(path string) (*SQLiteReportRepo, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("repository: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("repository: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("repository: pragma %q: %w", p, err)
		}
	}

	r := &SQLiteReportRepo{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("repository: migration: %w", err)
	}
	return r, nil
}

// Close closes the underlying database connection.
func (r *SQLiteReportRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteReportRepo) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id         INTEGER PRIMARY KEY,
	timestamp  REAL    NOT NULL,
	child_name TEXT    NOT NULL,
	scores     TEXT    NOT NULL,
	body       TEXT    NOT NULL
);`
	_, err := r.db.Exec(schema)
	return err
}

func (r *SQLiteReportRepo) Save(ctx context.Context, rec *model.ReportRecord) error {
	scores, err := json.Marshal(rec.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO reports (id, timestamp, child_name, scores, body) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp, rec.Child.ChildName, string(scores), string(body))
	if err != nil {
		return fmt.Errorf("insert report %d: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteReportRepo) List(ctx context.Context) ([]model.ReportSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, timestamp, child_name, scores FROM reports ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []model.ReportSummary{}
	for rows.Next() {
		var (
			s      model.ReportSummary
			scores string
		)
		if err := rows.Scan(&s.ID, &s.Timestamp, &s.Child, &scores); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(scores), &s.Scores); err != nil {
			return nil, fmt.Errorf("decode scores of report %d: %w", s.ID, err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *SQLiteReportRepo) GetByID(ctx context.Context, id int64) (*model.ReportRecord, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM reports WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec model.ReportRecord
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, fmt.Errorf("decode report %d: %w", id, err)
	}
	return &rec, nil
}
