package models

import (
	"time"
)

// CrowdLevel is the ordinal visitor-density category. The classifier
// path only ever emits the lower three levels; the heuristic and
// history paths use all four.
type CrowdLevel string

const (
	LevelLow      CrowdLevel = "low"
	LevelModerate CrowdLevel = "moderate"
	LevelHigh     CrowdLevel = "high"
	LevelVeryHigh CrowdLevel = "very_high"
)

// Levels lists all crowd levels in ascending order. The index of a
// level in this slice is its class ordinal for the classifier.
var Levels = []CrowdLevel{LevelLow, LevelModerate, LevelHigh, LevelVeryHigh}

// Score maps a level onto [0,1] for trend averaging.
func (l CrowdLevel) Score() float64 {
	switch l {
	case LevelLow:
		return 0.25
	case LevelModerate:
		return 0.5
	case LevelHigh:
		return 0.75
	case LevelVeryHigh:
		return 1.0
	}
	return 0
}

// Ordinal returns the class index of the level, or -1 if unknown.
func (l CrowdLevel) Ordinal() int {
	for i, lvl := range Levels {
		if lvl == l {
			return i
		}
	}
	return -1
}

// Valid reports whether l is one of the known levels.
func (l CrowdLevel) Valid() bool {
	return l.Ordinal() >= 0
}

// Monument is a supported location in the trained prediction path.
type Monument struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Prediction is the trained-path response for a single point in time.
type Prediction struct {
	MonumentID      string     `json:"monument_id"`
	PredictionTime  time.Time  `json:"prediction_time"`
	CrowdLevel      CrowdLevel `json:"crowd_level"`
	Confidence      float64    `json:"confidence"`
	WaitTimeMinutes int        `json:"wait_time_minutes"`
}

// HourlyPrediction is one hour of a heuristic forecast. Ephemeral,
// never persisted on its own.
type HourlyPrediction struct {
	Hour            int        `json:"hour"`
	CrowdLevel      CrowdLevel `json:"crowd_level"`
	WaitTimeMinutes int        `json:"wait_time_minutes"`
}

// PredictionFactor is a human-readable contributing factor. Impact is
// explanatory only and carries no weight in the computation.
type PredictionFactor struct {
	Name        string  `json:"name"`
	Impact      float64 `json:"impact"`
	Description string  `json:"description"`
}

// CrowdForecast is the heuristic-path response for a day.
type CrowdForecast struct {
	Location          string             `json:"location"`
	Date              string             `json:"date"`
	OverallCrowdLevel CrowdLevel         `json:"overall_crowd_level"`
	HourlyPredictions []HourlyPrediction `json:"hourly_predictions"`
	Factors           []PredictionFactor `json:"factors"`
	LastUpdated       time.Time          `json:"last_updated"`
}

// HistoricalDataPoint is one synthetic day of crowd history.
type HistoricalDataPoint struct {
	Date          string     `json:"date"`
	AverageLevel  CrowdLevel `json:"average_crowd_level"`
	PeakHours     []int      `json:"peak_hours"`
	TotalVisitors int        `json:"total_visitors"`
}

// CrowdTrends summarises a history range.
type CrowdTrends struct {
	WeekdayAvg float64 `json:"weekday_avg"`
	WeekendAvg float64 `json:"weekend_avg"`
	BusiestDay string  `json:"busiest_day"`
}

// CrowdHistory is the aggregator response.
type CrowdHistory struct {
	Location   string                `json:"location"`
	FromDate   string                `json:"from_date"`
	ToDate     string                `json:"to_date"`
	DataPoints []HistoricalDataPoint `json:"data_points"`
	Trends     CrowdTrends           `json:"trends"`
}

// TimetablePoint is one entry of the classifier-side historical
// series served by /crowds/historical.
type TimetablePoint struct {
	Timestamp  time.Time  `json:"timestamp"`
	CrowdLevel CrowdLevel `json:"crowd_level"`
}

// TimetableSeries is the /crowds/historical response.
type TimetableSeries struct {
	MonumentID string           `json:"monument_id"`
	DataPoints []TimetablePoint `json:"data_points"`
}

// PredictRequest is the trained-path request body.
type PredictRequest struct {
	MonumentID string `json:"monument_id" validate:"required"`
	Month      int    `json:"month" validate:"required,min=1,max=12"`
	Day        int    `json:"day" validate:"required,min=1,max=31"`
	Time       string `json:"time" validate:"required"`
}

// TimetableRequest is the /crowds/historical request body.
type TimetableRequest struct {
	MonumentID string    `json:"monument_id" validate:"required"`
	StartDate  time.Time `json:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" validate:"required"`
}

// ForecastRequest is the heuristic-path request. It arrives either as
// a JSON body (POST) or query parameters (GET).
type ForecastRequest struct {
	Location string `json:"location" validate:"required"`
	Date     string `json:"date,omitempty"`
	TimeFrom *int   `json:"time_from,omitempty" validate:"omitempty,min=0,max=23"`
	TimeTo   *int   `json:"time_to,omitempty" validate:"omitempty,min=0,max=23"`
}

// ArchivedForecast is a heuristic forecast as stored in the archive.
type ArchivedForecast struct {
	ID           string
	Location     string
	ForecastDate string
	OverallLevel CrowdLevel
	HourlyJSON   string
	FactorsJSON  string
	CreatedAt    time.Time
}

// SnapshotRow is a persisted daily crowd snapshot.
type SnapshotRow struct {
	ID            string
	Location      string
	RecordDate    string
	AverageLevel  CrowdLevel
	PeakHoursJSON string
	TotalVisitors int
	CreatedAt     time.Time
}
