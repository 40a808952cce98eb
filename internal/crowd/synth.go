package crowd

import (
	"math/rand"
	"time"

	"github.com/travolabs/crowdcast/internal/models"
)

// The generator bootstraps the classifier in the absence of any real
// visit history. Labels come from a weighted sum of three normalized
// sub-factors plus noise; this is a known limitation, not a model of
// anything observed.

const (
	timeOfDayWeight = 0.3
	seasonalWeight  = 0.4
	dayOfWeekWeight = 0.3

	labelNoise = 0.2

	moderateThreshold = 0.4
	highThreshold     = 0.7

	// Labels need a concrete weekday for month/day pairs, so samples
	// are pinned to one non-leap reference year.
	referenceYear = 2023
)

// seasonalFactor holds a fixed per-month crowd weight in [0,1],
// January first. Peaks in northern-hemisphere summer and December.
var seasonalFactor = [12]float64{
	0.35, 0.35, 0.5, 0.6, 0.65, 0.8,
	1.0, 1.0, 0.7, 0.6, 0.45, 0.9,
}

// dayOfWeekFactor holds a fixed per-weekday crowd weight in [0,1],
// Sunday first to match time.Weekday.
var dayOfWeekFactor = [7]float64{
	1.0, 0.4, 0.35, 0.35, 0.4, 0.55, 0.95,
}

// LabeledVisit is one synthetic training sample.
type LabeledVisit struct {
	Location string
	Month    int
	Day      int
	Hour     int
	Minute   int
	Level    models.CrowdLevel
}

// GenerateTrainingData produces n labeled samples over the given
// location set. Days are restricted to 1-28 so every (month, day)
// pair is valid without month-length bookkeeping.
func GenerateTrainingData(rng *rand.Rand, locations []string, n int) []LabeledVisit {
	samples := make([]LabeledVisit, 0, n)
	for range n {
		v := LabeledVisit{
			Location: locations[rng.Intn(len(locations))],
			Month:    1 + rng.Intn(12),
			Day:      1 + rng.Intn(28),
			Hour:     rng.Intn(24),
			Minute:   rng.Intn(60),
		}
		v.Level = labelFor(rng, v)
		samples = append(samples, v)
	}
	return samples
}

func labelFor(rng *rand.Rand, v LabeledVisit) models.CrowdLevel {
	factor := timeOfDayWeight*timeOfDayFactor(v.Hour) +
		seasonalWeight*seasonalFactor[v.Month-1] +
		dayOfWeekWeight*dayOfWeekFactor[weekdayOf(v.Month, v.Day)]
	factor += rng.Float64()*2*labelNoise - labelNoise

	switch {
	case factor < moderateThreshold:
		return models.LevelLow
	case factor < highThreshold:
		return models.LevelModerate
	default:
		return models.LevelHigh
	}
}

// timeOfDayFactor scores peak-window membership: mid-day is busiest,
// shoulders moderate, off-hours quiet.
func timeOfDayFactor(hour int) float64 {
	switch {
	case hour >= 10 && hour <= 16:
		return 1.0
	case hour >= 8 && hour <= 9, hour >= 17 && hour <= 18:
		return 0.6
	default:
		return 0.2
	}
}

func weekdayOf(month, day int) time.Weekday {
	return time.Date(referenceYear, time.Month(month), day, 0, 0, 0, 0, time.UTC).Weekday()
}
