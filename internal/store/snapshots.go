package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/psjostrom/springa/internal/model"
)

// SaveModel stores a full model snapshot as JSON. Every rebuild appends a
// new row so earlier snapshots stay available for comparison.
func (db *DB) SaveModel(m *model.BGResponseModel) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding model snapshot: %w", err)
	}

	_, err = db.Exec(
		"INSERT INTO model_snapshots (built_at, activities, payload) VALUES (?, ?, ?)",
		m.BuiltAt.UTC().Format(time.RFC3339), m.ActivitiesAnalyzed, string(payload),
	)
	if err != nil {
		return fmt.Errorf("inserting model snapshot: %w", err)
	}
	return nil
}

// LoadLatestModel returns the most recent snapshot, or nil when none has
// been built yet.
func (db *DB) LoadLatestModel() (*model.BGResponseModel, error) {
	var payload string
	err := db.QueryRow(
		"SELECT payload FROM model_snapshots ORDER BY id DESC LIMIT 1",
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying model snapshot: %w", err)
	}

	var m model.BGResponseModel
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, fmt.Errorf("decoding model snapshot: %w", err)
	}
	return &m, nil
}
