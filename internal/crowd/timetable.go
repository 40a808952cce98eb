package crowd

import (
	"math/rand"
	"sync"
	"time"

	"github.com/travolabs/crowdcast/internal/models"
)

// TimetableGenerator synthesises the classifier-side historical
// series: 3-hourly points between 08:00 and 20:00 with random
// dropout, levels keyed to peak/shoulder/off-peak hour buckets.
type TimetableGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewTimetableGenerator(rng *rand.Rand) *TimetableGenerator {
	return &TimetableGenerator{rng: rng}
}

// Generate builds the series for [start, end]. End before start is a
// validation error on this path, not a swap.
func (g *TimetableGenerator) Generate(monumentID string, start, end time.Time) (*models.TimetableSeries, error) {
	if end.Before(start) {
		return nil, validationf("end date must be after start date")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var points []models.TimetablePoint
	for day := truncateDay(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		for hour := 8; hour <= 20; hour += 3 {
			// Skip a fifth of the points so the series has gaps like
			// a real sensor feed.
			if g.rng.Float64() < 0.2 {
				continue
			}
			points = append(points, models.TimetablePoint{
				Timestamp:  day.Add(time.Duration(hour) * time.Hour),
				CrowdLevel: g.levelAtHour(hour),
			})
		}
	}

	return &models.TimetableSeries{
		MonumentID: monumentID,
		DataPoints: points,
	}, nil
}

func (g *TimetableGenerator) levelAtHour(hour int) models.CrowdLevel {
	r := g.rng.Float64()
	switch hour {
	case 10, 11, 14, 15: // peak
		if r < 0.7 {
			return models.LevelHigh
		}
		return models.LevelModerate
	case 8, 9, 16, 17: // shoulder
		switch {
		case r < 0.6:
			return models.LevelModerate
		case r < 0.8:
			return models.LevelHigh
		default:
			return models.LevelLow
		}
	default: // off-peak
		if r < 0.6 {
			return models.LevelLow
		}
		return models.LevelModerate
	}
}
