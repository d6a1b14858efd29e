package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/psjostrom/springa/internal/model"
)

func (db *DB) InsertFeedback(f model.Feedback) error {
	_, err := db.Exec(
		"INSERT INTO feedback (date, category, effort, felt, note) VALUES (?, ?, ?, ?, ?)",
		f.Date.UTC().Format(time.RFC3339), string(f.Category), f.Effort, f.Felt, f.Note,
	)
	if err != nil {
		return fmt.Errorf("inserting feedback: %w", err)
	}
	return nil
}

// RecentFeedback returns up to limit entries, newest first.
func (db *DB) RecentFeedback(limit int) ([]model.Feedback, error) {
	rows, err := db.Query(
		`SELECT date, category, effort, felt, note
		 FROM feedback
		 ORDER BY date DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying feedback: %w", err)
	}
	defer rows.Close()

	var entries []model.Feedback
	for rows.Next() {
		var f model.Feedback
		var dateStr, category string
		var note sql.NullString

		if err := rows.Scan(&dateStr, &category, &f.Effort, &f.Felt, &note); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}

		f.Category = model.Category(category)
		f.Note = note.String
		if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
			f.Date = t
		}

		entries = append(entries, f)
	}

	return entries, rows.Err()
}
