package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const weldRecordsSchema = `
CREATE TABLE IF NOT EXISTS weld_records (
	id                     INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id                 TEXT NOT NULL,
	recorded_at            TEXT NOT NULL,
	source_file            TEXT NOT NULL,
	part_number            TEXT,
	report_date            TEXT,
	report_part_contact    TEXT,
	report_part_reduction  TEXT,
	flatness_1             TEXT,
	flatness_2             TEXT,
	angle_deviation        TEXT,
	head_starts_spinning   INTEGER,
	head_starts_descending INTEGER,
	head_start_ascending   INTEGER,
	first_contact          INTEGER,
	part_contact           INTEGER,
	starts_fixing          INTEGER,
	stops_fixing           INTEGER,
	error                  TEXT
);

CREATE INDEX IF NOT EXISTS idx_weld_records_run_id ON weld_records(run_id);
`

// SQLiteSink appends the report to the weld_records table of a SQLite database
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens or creates the database at dbPath
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if _, err := db.Exec(weldRecordsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create weld_records table: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Name() string {
	return "sqlite"
}

// Write inserts every record of r in a single transaction
func (s *SQLiteSink) Write(ctx context.Context, r *Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(weldRecordColumns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO weld_records (%s) VALUES (%s)",
		strings.Join(weldRecordColumns, ", "), placeholders,
	))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	runID := r.RunID.String()
	for _, rec := range r.Records() {
		row := NewWeldRecord(runID, r.CreatedAt, rec)
		if _, err := stmt.ExecContext(ctx, row.values()...); err != nil {
			return fmt.Errorf("failed to insert %s: %w", rec.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
