// Package sqlite keeps an append-only audit log of label applications.
// It is never read back to decide what to label.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ticketlabeler/internal/pipeline"
)

// labelSeparator joins labels in one column. Labels may contain spaces but
// never newlines.
const labelSeparator = "\n"

type Store struct {
	db *sql.DB
}

type LabelApplication = pipeline.LabelApplication

func InitDB(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; pipeline workers share this handle.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS label_applications (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_key  TEXT NOT NULL,
		labels      TEXT NOT NULL,
		llm_provider TEXT DEFAULT '',
		llm_model   TEXT DEFAULT '',
		applied_at  DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_label_applications_applied_at ON label_applications(applied_at);
	CREATE INDEX IF NOT EXISTS idx_label_applications_ticket ON label_applications(ticket_key);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordLabels implements pipeline.Recorder.
func (s *Store) RecordLabels(ctx context.Context, app LabelApplication) error {
	return s.InsertLabelApplication(ctx, app)
}

func (s *Store) InsertLabelApplication(ctx context.Context, app LabelApplication) error {
	if strings.TrimSpace(app.TicketKey) == "" {
		return fmt.Errorf("ticket key is required")
	}
	if len(app.Labels) == 0 {
		return fmt.Errorf("no labels to record for %s", app.TicketKey)
	}
	appliedAt := app.AppliedAt
	if appliedAt.IsZero() {
		appliedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO label_applications (ticket_key, labels, llm_provider, llm_model, applied_at)
		 VALUES (?, ?, ?, ?, ?)`,
		app.TicketKey, strings.Join(app.Labels, labelSeparator), app.Provider, app.Model, appliedAt.UTC(),
	)
	return err
}

// RecentLabelApplications returns up to limit entries, newest first.
func (s *Store) RecentLabelApplications(ctx context.Context, limit int) ([]LabelApplication, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT ticket_key, labels, llm_provider, llm_model, applied_at
		 FROM label_applications
		 ORDER BY applied_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []LabelApplication
	for rows.Next() {
		var app LabelApplication
		var labels string
		if err := rows.Scan(&app.TicketKey, &labels, &app.Provider, &app.Model, &app.AppliedAt); err != nil {
			return nil, err
		}
		app.Labels = strings.Split(labels, labelSeparator)
		apps = append(apps, app)
	}
	return apps, rows.Err()
}
