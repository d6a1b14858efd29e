package store

import (
	"fmt"
	"time"

	"github.com/psjostrom/springa/internal/model"
)

// InsertObservations stores all observations for one analyzed activity in a
// single transaction, replacing any previous rows for that activity so
// re-analysis stays idempotent.
func (db *DB) InsertObservations(activityID string, obs []model.BGObservation) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM observations WHERE activity_id = ?", activityID); err != nil {
		return fmt.Errorf("clearing old observations: %w", err)
	}

	for _, o := range obs {
		_, err := tx.Exec(
			`INSERT INTO observations (activity_id, category, start_band, entry_slope, hr_zone, rate_per_10min, fuel_rate, elapsed_min, observed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ActivityID, string(o.Category), string(o.StartBand), string(o.EntrySlope),
			int(o.HRZone), o.RatePer10Min, o.FuelRate, o.ElapsedMin,
			o.Timestamp.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting observation: %w", err)
		}
	}

	return tx.Commit()
}

// GetObservations returns all stored observations ordered by time.
func (db *DB) GetObservations() ([]model.BGObservation, error) {
	rows, err := db.Query(
		`SELECT activity_id, category, start_band, entry_slope, hr_zone, rate_per_10min, fuel_rate, elapsed_min, observed_at
		 FROM observations
		 ORDER BY observed_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying observations: %w", err)
	}
	defer rows.Close()

	var obs []model.BGObservation
	for rows.Next() {
		var o model.BGObservation
		var category, band, slope, observedStr string
		var zone int

		if err := rows.Scan(
			&o.ActivityID, &category, &band, &slope, &zone,
			&o.RatePer10Min, &o.FuelRate, &o.ElapsedMin, &observedStr,
		); err != nil {
			return nil, fmt.Errorf("scanning observation: %w", err)
		}

		o.Category = model.Category(category)
		o.StartBand = model.StartBand(band)
		o.EntrySlope = model.SlopeBucket(slope)
		o.HRZone = model.HRZone(zone)
		if t, err := time.Parse(time.RFC3339, observedStr); err == nil {
			o.Timestamp = t
		}

		obs = append(obs, o)
	}

	return obs, rows.Err()
}

// HasActivity reports whether an activity has already been analyzed.
func (db *DB) HasActivity(activityID string) (bool, error) {
	var n int
	err := db.QueryRow(
		"SELECT COUNT(1) FROM observations WHERE activity_id = ?", activityID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking activity: %w", err)
	}
	return n > 0, nil
}
