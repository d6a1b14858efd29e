package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/psjostrom/springa/internal/adapt"
)

// ChangeRecord is one persisted adaptation change.
type ChangeRecord struct {
	RunID     string
	EventID   string
	Reason    adapt.ChangeReason
	Detail    string
	Before    string
	After     string
	CreatedAt time.Time
}

// InsertChanges records every change from one adaptation run.
func (db *DB) InsertChanges(result *adapt.Result) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ev := range result.Events {
		for _, c := range ev.Changes {
			_, err := tx.Exec(
				`INSERT INTO changes (run_id, event_id, reason, detail, before_value, after_value)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				result.RunID, ev.Event.ID, string(c.Reason), c.Detail, c.Before, c.After,
			)
			if err != nil {
				return fmt.Errorf("inserting change: %w", err)
			}
		}
	}

	return tx.Commit()
}

// RecentChanges returns up to limit change records, newest first.
func (db *DB) RecentChanges(limit int) ([]ChangeRecord, error) {
	rows, err := db.Query(
		`SELECT run_id, event_id, reason, detail, before_value, after_value, created_at
		 FROM changes
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying changes: %w", err)
	}
	defer rows.Close()

	var records []ChangeRecord
	for rows.Next() {
		var r ChangeRecord
		var reason, createdStr string
		var before, after sql.NullString

		if err := rows.Scan(&r.RunID, &r.EventID, &reason, &r.Detail, &before, &after, &createdStr); err != nil {
			return nil, fmt.Errorf("scanning change: %w", err)
		}

		r.Reason = adapt.ChangeReason(reason)
		r.Before = before.String
		r.After = after.String
		// SQLite's CURRENT_TIMESTAMP uses a space, not a T.
		if t, err := time.Parse("2006-01-02 15:04:05", createdStr); err == nil {
			r.CreatedAt = t
		}

		records = append(records, r)
	}

	return records, rows.Err()
}
