// Package holidays tracks the public-holiday dates that shift crowd
// predictions onto the holiday probability table.
package holidays

import (
	"sync"
	"time"
)

// fixedDates are the built-in holidays, month/day pairs observed in
// every year. Not locale-aware.
var fixedDates = [][2]int{
	{1, 1},   // New Year's Day
	{7, 4},   // Independence Day
	{12, 25}, // Christmas Day
}

// Calendar answers holiday lookups. It always contains the fixed set
// and can be extended at runtime with dates from a remote feed;
// extension never removes the fixed set.
type Calendar struct {
	mu    sync.RWMutex
	extra map[string]string // "01-02" day key -> holiday name
}

func NewCalendar() *Calendar {
	return &Calendar{extra: make(map[string]string)}
}

// IsHoliday reports whether the date falls on a known holiday.
func (c *Calendar) IsHoliday(date time.Time) bool {
	for _, md := range fixedDates {
		if int(date.Month()) == md[0] && date.Day() == md[1] {
			return true
		}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.extra[date.Format("01-02")]
	return ok
}

// Add registers an extra holiday by its calendar day.
func (c *Calendar) Add(date time.Time, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extra[date.Format("01-02")] = name
}

// Merge registers all entries from a fetched holiday set.
func (c *Calendar) Merge(entries []Holiday) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, h := range entries {
		c.extra[h.Date.Format("01-02")] = h.Name
	}
}

// Len returns the number of extra (non-fixed) holidays tracked.
func (c *Calendar) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.extra)
}
