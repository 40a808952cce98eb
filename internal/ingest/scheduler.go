// Package ingest runs the periodic background jobs: daily crowd
// snapshots into the archive and holiday calendar refreshes.
package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/travolabs/crowdcast/internal/crowd"
	"github.com/travolabs/crowdcast/internal/holidays"
	"github.com/travolabs/crowdcast/internal/metrics"
	"github.com/travolabs/crowdcast/internal/models"
	"github.com/travolabs/crowdcast/internal/store"
)

type Scheduler struct {
	store     *store.Store
	history   *crowd.HistoryGenerator
	calendar  *holidays.Calendar
	feed      *holidays.Client
	locations []string
	log       zerolog.Logger

	snapshotInterval time.Duration
	holidayInterval  time.Duration
}

// NewScheduler wires the background jobs. feed may be nil, which
// disables remote holiday refresh while keeping snapshots running.
func NewScheduler(st *store.Store, history *crowd.HistoryGenerator, calendar *holidays.Calendar, feed *holidays.Client, locations []string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		store:            st,
		history:          history,
		calendar:         calendar,
		feed:             feed,
		locations:        locations,
		log:              log.With().Str("component", "scheduler").Logger(),
		snapshotInterval: time.Hour,
		holidayInterval:  12 * time.Hour,
	}
}

// Run executes each job once, then loops on tickers until the
// context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.SnapshotOnce()
	s.refreshHolidays(ctx)

	snapshotTicker := time.NewTicker(s.snapshotInterval)
	holidayTicker := time.NewTicker(s.holidayInterval)
	defer snapshotTicker.Stop()
	defer holidayTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("shutting down")
			return
		case <-snapshotTicker.C:
			s.SnapshotOnce()
		case <-holidayTicker.C:
			s.refreshHolidays(ctx)
		}
	}
}

// SnapshotOnce writes today's snapshot for every location that does
// not have one yet. Failures are logged per location and do not stop
// the sweep.
func (s *Scheduler) SnapshotOnce() {
	today := time.Now().UTC().Format("2006-01-02")
	for _, location := range s.locations {
		exists, err := s.store.HasSnapshot(location, today)
		if err != nil {
			s.log.Error().Err(err).Str("location", location).Msg("check snapshot")
			continue
		}
		if exists {
			continue
		}

		point := s.history.DayPoint(time.Now().UTC())
		peaks, _ := json.Marshal(point.PeakHours)
		row := models.SnapshotRow{
			Location:      location,
			RecordDate:    point.Date,
			AverageLevel:  point.AverageLevel,
			PeakHoursJSON: string(peaks),
			TotalVisitors: point.TotalVisitors,
		}
		if err := s.store.InsertSnapshot(row); err != nil {
			s.log.Error().Err(err).Str("location", location).Msg("insert snapshot")
			continue
		}
		metrics.SnapshotsWritten.Inc()
	}
}

// refreshHolidays pulls the current and next year from the feed,
// merges into the calendar and persists. Feed failures leave the
// calendar's existing entries untouched.
func (s *Scheduler) refreshHolidays(ctx context.Context) {
	if s.feed == nil {
		return
	}

	year := time.Now().UTC().Year()
	for _, y := range []int{year, year + 1} {
		fetched, err := s.feed.Fetch(ctx, y)
		if err != nil {
			s.log.Warn().Err(err).Int("year", y).Msg("holiday feed fetch failed")
			continue
		}
		s.calendar.Merge(fetched)
		for _, h := range fetched {
			if err := s.store.UpsertHoliday(h.Date, h.Name); err != nil {
				s.log.Error().Err(err).Str("holiday", h.Name).Msg("persist holiday")
			}
		}
		s.log.Info().Int("year", y).Int("count", len(fetched)).Msg("holiday calendar refreshed")
	}
}
