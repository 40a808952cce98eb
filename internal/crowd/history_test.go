package crowd

import (
	"math/rand"
	"testing"
	"time"

	"github.com/travolabs/crowdcast/internal/models"
)

func TestHistoryGenerator_RangeAndOrder(t *testing.T) {
	t.Parallel()
	g := NewHistoryGenerator(rand.New(rand.NewSource(1)))

	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	history := g.Generate("pyr_giza", from, to)

	if got, want := len(history.DataPoints), 10; got != want {
		t.Fatalf("%d data points, want %d", got, want)
	}
	if history.DataPoints[0].Date != "2026-06-01" {
		t.Errorf("first date %q", history.DataPoints[0].Date)
	}
	if history.DataPoints[9].Date != "2026-06-10" {
		t.Errorf("last date %q", history.DataPoints[9].Date)
	}
	if history.FromDate != "2026-06-01" || history.ToDate != "2026-06-10" {
		t.Errorf("range %q..%q", history.FromDate, history.ToDate)
	}
}

func TestHistoryGenerator_ClampsTo90Days(t *testing.T) {
	t.Parallel()
	g := NewHistoryGenerator(rand.New(rand.NewSource(2)))

	// A 400-day request keeps the most recent 90 days ending at to.
	to := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -399)
	history := g.Generate("luxor", from, to)

	if got := len(history.DataPoints); got != 90 {
		t.Fatalf("%d data points, want exactly 90", got)
	}
	if last := history.DataPoints[89].Date; last != "2026-08-01" {
		t.Errorf("last date %q, want 2026-08-01", last)
	}
	if history.FromDate != to.AddDate(0, 0, -89).Format("2006-01-02") {
		t.Errorf("from date %q not truncated from the start", history.FromDate)
	}
}

func TestHistoryGenerator_SwapsReversedRange(t *testing.T) {
	t.Parallel()
	g := NewHistoryGenerator(rand.New(rand.NewSource(3)))

	from := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	history := g.Generate("karnak", from, to)

	if history.FromDate != "2026-06-01" || history.ToDate != "2026-06-10" {
		t.Errorf("reversed range not swapped: %q..%q", history.FromDate, history.ToDate)
	}
	if len(history.DataPoints) != 10 {
		t.Errorf("%d data points, want 10", len(history.DataPoints))
	}
}

func TestHistoryGenerator_PointInvariants(t *testing.T) {
	t.Parallel()
	g := NewHistoryGenerator(rand.New(rand.NewSource(4)))

	to := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	history := g.Generate("philae", to.AddDate(0, 0, -59), to)

	for _, p := range history.DataPoints {
		if !p.AverageLevel.Valid() {
			t.Fatalf("invalid level %q on %s", p.AverageLevel, p.Date)
		}
		if len(p.PeakHours) < 2 || len(p.PeakHours) > 4 {
			t.Fatalf("%d peak hours on %s, want 2-4", len(p.PeakHours), p.Date)
		}
		for i, hour := range p.PeakHours {
			if hour < 10 || hour > 18 {
				t.Fatalf("peak hour %d on %s outside 10-18", hour, p.Date)
			}
			if i > 0 && p.PeakHours[i-1] >= hour {
				t.Fatalf("peak hours %v on %s not sorted distinct", p.PeakHours, p.Date)
			}
		}

		window := visitorRanges[p.AverageLevel]
		lo := int(float64(window[0]) * 0.8)
		hi := int(float64(window[1]) * 1.2)
		if p.TotalVisitors < lo || p.TotalVisitors > hi {
			t.Fatalf("visitors %d on %s outside jittered window [%d,%d] for %q",
				p.TotalVisitors, p.Date, lo, hi, p.AverageLevel)
		}
	}
}

func TestComputeTrends(t *testing.T) {
	t.Parallel()
	// 2026-06-01 is a Monday; the 6th and 7th are the weekend.
	points := []models.HistoricalDataPoint{
		{Date: "2026-06-01", AverageLevel: models.LevelLow},
		{Date: "2026-06-02", AverageLevel: models.LevelModerate},
		{Date: "2026-06-06", AverageLevel: models.LevelHigh},
		{Date: "2026-06-07", AverageLevel: models.LevelVeryHigh},
	}

	trends := computeTrends(points)
	if want := 0.38; trends.WeekdayAvg != want { // (0.25+0.5)/2 rounded
		t.Errorf("weekday avg = %v, want %v", trends.WeekdayAvg, want)
	}
	if want := 0.88; trends.WeekendAvg != want { // (0.75+1.0)/2 rounded
		t.Errorf("weekend avg = %v, want %v", trends.WeekendAvg, want)
	}
	if trends.BusiestDay != "2026-06-07" {
		t.Errorf("busiest day = %q", trends.BusiestDay)
	}
}

func TestComputeTrends_TieKeepsFirst(t *testing.T) {
	t.Parallel()
	points := []models.HistoricalDataPoint{
		{Date: "2026-06-01", AverageLevel: models.LevelHigh},
		{Date: "2026-06-02", AverageLevel: models.LevelHigh},
	}
	if got := computeTrends(points).BusiestDay; got != "2026-06-01" {
		t.Errorf("busiest day = %q, want first of the tie", got)
	}
}

func TestComputeTrends_Empty(t *testing.T) {
	t.Parallel()
	trends := computeTrends(nil)
	if trends.WeekdayAvg != 0 || trends.WeekendAvg != 0 || trends.BusiestDay != "" {
		t.Errorf("empty input should produce zero trends, got %+v", trends)
	}
}
