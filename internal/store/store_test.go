package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/travolabs/crowdcast/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := New(db, zerolog.Nop())
	if err := s.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	if err := s.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestForecastRoundTrip(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	f := models.ArchivedForecast{
		Location:     "Eiffel Tower",
		ForecastDate: "2026-08-28",
		OverallLevel: models.LevelHigh,
		HourlyJSON:   `[{"hour":10,"crowd_level":"high"}]`,
		FactorsJSON:  `[{"name":"Weekend","impact":0.7}]`,
	}
	if err := s.InsertForecast(f); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.InsertForecast(models.ArchivedForecast{
		Location:     "Louvre Museum",
		ForecastDate: "2026-08-28",
		OverallLevel: models.LevelLow,
	}); err != nil {
		t.Fatalf("insert other location: %v", err)
	}

	got, err := s.RecentForecasts("Eiffel Tower", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d forecasts, want 1", len(got))
	}
	if got[0].ID == "" {
		t.Error("row ID not assigned")
	}
	if got[0].OverallLevel != models.LevelHigh {
		t.Errorf("level = %q", got[0].OverallLevel)
	}
	if got[0].HourlyJSON != f.HourlyJSON {
		t.Errorf("hourly json = %q", got[0].HourlyJSON)
	}
}

func TestSnapshotConflictKeepsFirst(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	first := models.SnapshotRow{
		Location:      "pyr_giza",
		RecordDate:    "2026-08-27",
		AverageLevel:  models.LevelModerate,
		PeakHoursJSON: `[11,14]`,
		TotalVisitors: 3200,
	}
	if err := s.InsertSnapshot(first); err != nil {
		t.Fatalf("insert: %v", err)
	}

	dup := first
	dup.AverageLevel = models.LevelVeryHigh
	dup.TotalVisitors = 9999
	if err := s.InsertSnapshot(dup); err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}

	got, err := s.GetSnapshots("pyr_giza", "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(got))
	}
	if got[0].TotalVisitors != 3200 {
		t.Errorf("visitors = %d, want original row kept", got[0].TotalVisitors)
	}
}

func TestHasSnapshot(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	ok, err := s.HasSnapshot("luxor", "2026-08-27")
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if ok {
		t.Fatal("snapshot reported before insert")
	}

	if err := s.InsertSnapshot(models.SnapshotRow{
		Location:     "luxor",
		RecordDate:   "2026-08-27",
		AverageLevel: models.LevelLow,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ok, err = s.HasSnapshot("luxor", "2026-08-27")
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if !ok {
		t.Fatal("snapshot not reported after insert")
	}
}

func TestSnapshotRangeOrdering(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	for _, date := range []string{"2026-08-03", "2026-08-01", "2026-08-02", "2026-07-31"} {
		if err := s.InsertSnapshot(models.SnapshotRow{
			Location:     "karnak",
			RecordDate:   date,
			AverageLevel: models.LevelModerate,
		}); err != nil {
			t.Fatalf("insert %s: %v", date, err)
		}
	}

	got, err := s.GetSnapshots("karnak", "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d snapshots, want 3 inside range", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].RecordDate <= got[i-1].RecordDate {
			t.Fatalf("snapshots out of order: %q after %q", got[i].RecordDate, got[i-1].RecordDate)
		}
	}
}

func TestHolidayUpsert(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	day := time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC)
	if err := s.UpsertHoliday(day, "Bastille Day"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertHoliday(day, "Fête nationale"); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.ListHolidays()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d holidays, want 1", len(got))
	}
	if got[0].Date != "2026-07-14" || got[0].Name != "Fête nationale" {
		t.Errorf("row = %+v", got[0])
	}
}
