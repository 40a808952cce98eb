// Package store is the SQLite archive for issued forecasts, daily
// crowd snapshots and fetched holidays. It is injected into its
// consumers; there is no package-level state.
package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/travolabs/crowdcast/internal/models"
)

type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

func New(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{db: db, log: log.With().Str("component", "store").Logger()}
}

// InsertForecast archives one issued heuristic forecast. The row ID
// is assigned here if the caller left it empty.
func (s *Store) InsertForecast(f models.ArchivedForecast) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO forecasts (id, location, forecast_date, overall_level, hourly_json, factors_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, f.ID, f.Location, f.ForecastDate, string(f.OverallLevel), f.HourlyJSON, f.FactorsJSON)
	return err
}

// RecentForecasts returns the newest archived forecasts for a
// location, most recent first.
func (s *Store) RecentForecasts(location string, limit int) ([]models.ArchivedForecast, error) {
	rows, err := s.db.Query(`
		SELECT id, location, forecast_date, overall_level, hourly_json, factors_json, created_at
		FROM forecasts
		WHERE location = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, location, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forecasts []models.ArchivedForecast
	for rows.Next() {
		var f models.ArchivedForecast
		var level string
		if err := rows.Scan(&f.ID, &f.Location, &f.ForecastDate, &level, &f.HourlyJSON, &f.FactorsJSON, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.OverallLevel = models.CrowdLevel(level)
		forecasts = append(forecasts, f)
	}
	return forecasts, rows.Err()
}

// InsertSnapshot records one daily crowd snapshot; a snapshot already
// present for (location, date) is left untouched.
func (s *Store) InsertSnapshot(row models.SnapshotRow) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO crowd_history (id, location, record_date, average_level, peak_hours_json, total_visitors)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(location, record_date) DO NOTHING
	`, row.ID, row.Location, row.RecordDate, string(row.AverageLevel), row.PeakHoursJSON, row.TotalVisitors)
	return err
}

// HasSnapshot reports whether a snapshot exists for the day.
func (s *Store) HasSnapshot(location, recordDate string) (bool, error) {
	var one int
	err := s.db.QueryRow(`
		SELECT 1 FROM crowd_history WHERE location = ? AND record_date = ?
	`, location, recordDate).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetSnapshots returns archived snapshots for a location in
// [fromDate, toDate], oldest first. Dates are "2006-01-02" strings.
func (s *Store) GetSnapshots(location, fromDate, toDate string) ([]models.SnapshotRow, error) {
	rows, err := s.db.Query(`
		SELECT id, location, record_date, average_level, peak_hours_json, total_visitors, created_at
		FROM crowd_history
		WHERE location = ? AND record_date >= ? AND record_date <= ?
		ORDER BY record_date ASC
	`, location, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []models.SnapshotRow
	for rows.Next() {
		var r models.SnapshotRow
		var level string
		if err := rows.Scan(&r.ID, &r.Location, &r.RecordDate, &level, &r.PeakHoursJSON, &r.TotalVisitors, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.AverageLevel = models.CrowdLevel(level)
		snapshots = append(snapshots, r)
	}
	return snapshots, rows.Err()
}

// HolidayRow is one persisted holiday date.
type HolidayRow struct {
	Date string
	Name string
}

// UpsertHoliday persists a fetched holiday so the calendar survives
// restarts without refetching.
func (s *Store) UpsertHoliday(date time.Time, name string) error {
	_, err := s.db.Exec(`
		INSERT INTO holidays (date, name, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET name = excluded.name, fetched_at = excluded.fetched_at
	`, date.Format("2006-01-02"), name, time.Now().UTC())
	return err
}

// ListHolidays returns all persisted holidays.
func (s *Store) ListHolidays() ([]HolidayRow, error) {
	rows, err := s.db.Query(`SELECT date, name FROM holidays ORDER BY date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []HolidayRow
	for rows.Next() {
		var h HolidayRow
		if err := rows.Scan(&h.Date, &h.Name); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
