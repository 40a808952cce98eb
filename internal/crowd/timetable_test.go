package crowd

import (
	"math/rand"
	"testing"
	"time"

	"github.com/travolabs/crowdcast/internal/models"
)

func TestTimetableGenerator_Generate(t *testing.T) {
	t.Parallel()
	g := NewTimetableGenerator(rand.New(rand.NewSource(1)))

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	series, err := g.Generate("pyr_giza", start, end)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if series.MonumentID != "pyr_giza" {
		t.Errorf("monument = %q", series.MonumentID)
	}
	// 5 days x 5 slots with a fifth dropped on average.
	if n := len(series.DataPoints); n < 10 || n > 25 {
		t.Fatalf("%d points for 5 days", n)
	}

	var prev time.Time
	for _, p := range series.DataPoints {
		if !p.Timestamp.After(prev) {
			t.Fatalf("timestamps not strictly increasing at %v", p.Timestamp)
		}
		prev = p.Timestamp

		hour := p.Timestamp.Hour()
		if hour < 8 || hour > 20 || (hour-8)%3 != 0 {
			t.Fatalf("unexpected slot hour %d", hour)
		}
		if !p.CrowdLevel.Valid() {
			t.Fatalf("invalid level %q", p.CrowdLevel)
		}
	}
}

func TestTimetableGenerator_RejectsReversedRange(t *testing.T) {
	t.Parallel()
	g := NewTimetableGenerator(rand.New(rand.NewSource(2)))

	start := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := g.Generate("luxor", start, end)
	if err == nil || !IsValidationError(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestTimetableGenerator_SingleDay(t *testing.T) {
	t.Parallel()
	g := NewTimetableGenerator(rand.New(rand.NewSource(3)))

	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	series, err := g.Generate("sphinx", day, day)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if n := len(series.DataPoints); n > 5 {
		t.Fatalf("%d points for one day, want at most 5", n)
	}
}

func TestTimetableLevelBuckets(t *testing.T) {
	t.Parallel()
	g := NewTimetableGenerator(rand.New(rand.NewSource(4)))

	// Off-peak slots never draw high; peak slots never draw low.
	for i := 0; i < 500; i++ {
		if lvl := g.levelAtHour(20); lvl != models.LevelLow && lvl != models.LevelModerate {
			t.Fatalf("off-peak hour produced %q", lvl)
		}
		if lvl := g.levelAtHour(11); lvl != models.LevelHigh && lvl != models.LevelModerate {
			t.Fatalf("peak hour produced %q", lvl)
		}
	}
}
