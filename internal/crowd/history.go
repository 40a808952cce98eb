package crowd

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/travolabs/crowdcast/internal/models"
)

// maxHistoryDays caps the aggregator output: a wider request keeps
// the most recent days ending at the requested to-date.
const maxHistoryDays = 90

// visitorRanges gives the inclusive daily visitor range per level
// before the ±20% jitter.
var visitorRanges = map[models.CrowdLevel][2]int{
	models.LevelLow:      {500, 1000},
	models.LevelModerate: {1000, 2500},
	models.LevelHigh:     {2500, 5000},
	models.LevelVeryHigh: {5000, 10000},
}

// HistoryGenerator synthesises day-by-day crowd history. There is no
// real dataset behind it; points are generated fresh per request and
// never cached.
type HistoryGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewHistoryGenerator(rng *rand.Rand) *HistoryGenerator {
	return &HistoryGenerator{rng: rng}
}

// Generate produces the history for [from, to] with trend summary.
// Reversed ranges are swapped rather than rejected.
func (g *HistoryGenerator) Generate(location string, from, to time.Time) *models.CrowdHistory {
	from = truncateDay(from)
	to = truncateDay(to)
	if from.After(to) {
		from, to = to, from
	}
	if to.Sub(from) >= maxHistoryDays*24*time.Hour {
		from = to.AddDate(0, 0, -(maxHistoryDays - 1))
	}

	g.mu.Lock()
	var points []models.HistoricalDataPoint
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		points = append(points, g.dayPoint(day))
	}
	g.mu.Unlock()

	return &models.CrowdHistory{
		Location:   location,
		FromDate:   from.Format("2006-01-02"),
		ToDate:     to.Format("2006-01-02"),
		DataPoints: points,
		Trends:     computeTrends(points),
	}
}

// DayPoint synthesises a single day, for the snapshot scheduler.
func (g *HistoryGenerator) DayPoint(day time.Time) models.HistoricalDataPoint {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dayPoint(truncateDay(day))
}

func (g *HistoryGenerator) dayPoint(day time.Time) models.HistoricalDataPoint {
	probs := weekdayProbs
	if isWeekend(day) {
		probs = weekendProbs
	}
	level := sampleLevel(g.rng, probs)

	// 2-4 distinct peak hours in the 10:00-18:00 window.
	peakCount := 2 + g.rng.Intn(3)
	peaks := g.rng.Perm(9)[:peakCount]
	for i := range peaks {
		peaks[i] += 10
	}
	sort.Ints(peaks)

	window := visitorRanges[level]
	base := window[0] + g.rng.Intn(window[1]-window[0]+1)
	jitter := 0.8 + g.rng.Float64()*0.4
	visitors := int(float64(base) * jitter)

	return models.HistoricalDataPoint{
		Date:          day.Format("2006-01-02"),
		AverageLevel:  level,
		PeakHours:     peaks,
		TotalVisitors: visitors,
	}
}

// computeTrends averages mapped scores over the weekday and weekend
// subsets and picks the single busiest day, first encounter winning
// ties.
func computeTrends(points []models.HistoricalDataPoint) models.CrowdTrends {
	var trends models.CrowdTrends
	var weekdaySum, weekendSum float64
	var weekdayN, weekendN int
	bestScore := 0.0

	for _, p := range points {
		day, _ := time.Parse("2006-01-02", p.Date)
		score := p.AverageLevel.Score()
		if isWeekend(day) {
			weekendSum += score
			weekendN++
		} else {
			weekdaySum += score
			weekdayN++
		}
		if score > bestScore {
			bestScore = score
			trends.BusiestDay = p.Date
		}
	}
	if weekdayN > 0 {
		trends.WeekdayAvg = round2(weekdaySum / float64(weekdayN))
	}
	if weekendN > 0 {
		trends.WeekendAvg = round2(weekendSum / float64(weekendN))
	}
	return trends
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
