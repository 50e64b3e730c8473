// Package storage persists detector reports in sqlite so that flagged
// authors can be reviewed after a broadcast ends.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db *sql.DB
}

type Report struct {
	ID         int64
	MessageID  string
	Author     string
	Reason     string
	AvgDelayMS int64
	AvgLength  float64
	CreatedAt  time.Time
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *Store) Migrate() error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			if isIgnorableMigrationError(err) {
				continue
			}
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

func (s *Store) AddReport(ctx context.Context, report Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (message_id, author, reason, avg_delay_ms, avg_length, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, report.MessageID, report.Author, report.Reason, report.AvgDelayMS, report.AvgLength, report.CreatedAt.Unix())
	return err
}

func (s *Store) ListReports(ctx context.Context, since time.Time) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, message_id, author, reason, avg_delay_ms, avg_length, created_at
		FROM reports
		WHERE created_at >= ?
		ORDER BY created_at DESC
	`, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var report Report
		var created int64
		if err := rows.Scan(&report.ID, &report.MessageID, &report.Author, &report.Reason, &report.AvgDelayMS, &report.AvgLength, &created); err != nil {
			return nil, err
		}
		report.CreatedAt = time.Unix(created, 0)
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (s *Store) CountByReason(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT reason, COUNT(*)
		FROM reports
		WHERE created_at >= ?
		GROUP BY reason
	`, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var reason string
		var count int
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, err
		}
		counts[reason] = count
	}
	return counts, rows.Err()
}

func (s *Store) CleanupReports(ctx context.Context, retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	_, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE created_at < ?`, cutoff.Unix())
	return err
}

func isIgnorableMigrationError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "duplicate column name") || strings.Contains(message, "already exists")
}
