package holidays

import (
	"testing"
	"time"
)

func TestCalendarFixedSet(t *testing.T) {
	t.Parallel()
	c := NewCalendar()

	fixed := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range fixed {
		if !c.IsHoliday(d) {
			t.Errorf("IsHoliday(%s) = false", d.Format("01-02"))
		}
	}

	ordinary := []time.Time{
		time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range ordinary {
		if c.IsHoliday(d) {
			t.Errorf("IsHoliday(%s) = true", d.Format("01-02"))
		}
	}
}

func TestCalendarAddAndMerge(t *testing.T) {
	t.Parallel()
	c := NewCalendar()

	bastille := time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC)
	if c.IsHoliday(bastille) {
		t.Fatal("Bastille Day known before Add")
	}
	c.Add(bastille, "Bastille Day")
	if !c.IsHoliday(bastille) {
		t.Fatal("Bastille Day unknown after Add")
	}

	c.Merge([]Holiday{
		{Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), Name: "Labour Day"},
		{Date: time.Date(2026, 11, 11, 0, 0, 0, 0, time.UTC), Name: "Armistice Day"},
	})
	if got := c.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	if !c.IsHoliday(time.Date(2027, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("merged holiday should match by calendar day across years")
	}
}
