package crowd

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/travolabs/crowdcast/internal/metrics"
	"github.com/travolabs/crowdcast/internal/models"
)

// Base crowd-level distributions by day type, indexed by level
// ordinal (low, moderate, high, very_high).
var (
	weekdayProbs = [4]float64{0.4, 0.3, 0.2, 0.1}
	weekendProbs = [4]float64{0.1, 0.3, 0.4, 0.2}
	holidayProbs = [4]float64{0.05, 0.15, 0.3, 0.5}
)

// decorativeFactors is the pool of presentation-only factors; 1-2 are
// sampled per forecast and carry no weight in the computation.
var decorativeFactors = []models.PredictionFactor{
	{Name: "Local Event", Impact: 0.6, Description: "A local event is taking place nearby"},
	{Name: "Good Weather", Impact: 0.5, Description: "Pleasant weather conditions attract more visitors"},
	{Name: "School Break", Impact: 0.7, Description: "School holidays increase family visits"},
	{Name: "Off-Season", Impact: -0.6, Description: "Current travel season has fewer tourists"},
}

// HolidayChecker reports whether a date is a public holiday.
type HolidayChecker interface {
	IsHoliday(date time.Time) bool
}

// HeuristicPredictor is the rule-table alternative to the trained
// model: per-day-type base probabilities, popularity shift, hourly
// multipliers, and weighted random sampling per hour.
type HeuristicPredictor struct {
	popular  map[string]struct{}
	holidays HolidayChecker
	log      zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewHeuristicPredictor builds a predictor with the given popular
// location allowlist. The rng is injected so tests can seed the
// sampler and assert statistically.
func NewHeuristicPredictor(popular []string, holidays HolidayChecker, rng *rand.Rand, log zerolog.Logger) *HeuristicPredictor {
	set := make(map[string]struct{}, len(popular))
	for _, loc := range popular {
		set[loc] = struct{}{}
	}
	return &HeuristicPredictor{
		popular:  set,
		holidays: holidays,
		rng:      rng,
		log:      log.With().Str("component", "heuristic").Logger(),
	}
}

// Predict builds an hourly forecast over [fromHour, toHour] inclusive.
// Unknown locations are served with the default tables rather than
// rejected.
func (h *HeuristicPredictor) Predict(location string, date time.Time, fromHour, toHour int) (*models.CrowdForecast, error) {
	if fromHour < 0 || fromHour > 23 || toHour < 0 || toHour > 23 {
		return nil, validationf("hour range %d-%d out of bounds", fromHour, toHour)
	}
	if fromHour > toHour {
		return nil, validationf("time_from %d is after time_to %d", fromHour, toHour)
	}

	weekend := isWeekend(date)
	holiday := h.holidays.IsHoliday(date)
	_, popular := h.popular[location]

	base := weekdayProbs
	switch {
	case holiday:
		base = holidayProbs
	case weekend:
		base = weekendProbs
	}
	if popular {
		base = shiftPopular(base)
	}

	h.mu.Lock()
	hourly := make([]models.HourlyPrediction, 0, toHour-fromHour+1)
	for hour := fromHour; hour <= toHour; hour++ {
		probs := hourProbabilities(base, hour)
		level := sampleLevel(h.rng, probs)
		hourly = append(hourly, models.HourlyPrediction{
			Hour:            hour,
			CrowdLevel:      level,
			WaitTimeMinutes: drawWait(h.rng, level),
		})
	}
	factors := h.buildFactors(weekend, holiday, popular)
	h.mu.Unlock()

	overall := modeLevel(hourly)
	metrics.PredictionsTotal.WithLabelValues("heuristic", string(overall)).Inc()

	return &models.CrowdForecast{
		Location:          location,
		Date:              date.Format("2006-01-02"),
		OverallCrowdLevel: overall,
		HourlyPredictions: hourly,
		Factors:           factors,
		LastUpdated:       time.Now().UTC(),
	}, nil
}

// shiftPopular moves probability mass toward the higher levels for
// allowlisted locations.
func shiftPopular(probs [4]float64) [4]float64 {
	probs[0] = max(0.05, probs[0]-0.2)
	probs[2] += 0.1
	probs[3] += 0.1
	return probs
}

// hourProbabilities applies the time-of-day multiplier and
// renormalizes so the distribution sums to 1.
func hourProbabilities(base [4]float64, hour int) [4]float64 {
	factor := 1.0
	switch {
	case hour < 10 || hour > 18:
		factor = 0.7
	case hour >= 12 && hour <= 14:
		factor = 1.3
	}

	var probs [4]float64
	total := 0.0
	for i, p := range base {
		probs[i] = min(1.0, p*factor)
		total += probs[i]
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs
}

// sampleLevel draws a level from the distribution. Sampling, not
// argmax: two identical requests may disagree hour by hour.
func sampleLevel(rng *rand.Rand, probs [4]float64) models.CrowdLevel {
	r := rng.Float64()
	acc := 0.0
	for i, p := range probs {
		acc += p
		if r < acc {
			return models.Levels[i]
		}
	}
	return models.Levels[len(models.Levels)-1]
}

// modeLevel returns the most frequent hourly level, breaking ties by
// first encounter.
func modeLevel(hourly []models.HourlyPrediction) models.CrowdLevel {
	counts := make(map[models.CrowdLevel]int, 4)
	for _, hp := range hourly {
		counts[hp.CrowdLevel]++
	}
	best := models.LevelLow
	bestCount := 0
	for _, hp := range hourly {
		if counts[hp.CrowdLevel] > bestCount {
			best = hp.CrowdLevel
			bestCount = counts[hp.CrowdLevel]
		}
	}
	return best
}

func (h *HeuristicPredictor) buildFactors(weekend, holiday, popular bool) []models.PredictionFactor {
	var factors []models.PredictionFactor
	if weekend {
		factors = append(factors, models.PredictionFactor{
			Name: "Weekend", Impact: 0.7,
			Description: "Weekend days typically see higher visitor numbers",
		})
	}
	if holiday {
		factors = append(factors, models.PredictionFactor{
			Name: "Holiday", Impact: 0.9,
			Description: "Public holiday significantly increases crowd levels",
		})
	}
	if popular {
		factors = append(factors, models.PredictionFactor{
			Name: "Popular Attraction", Impact: 0.8,
			Description: "This is one of the most visited attractions in the area",
		})
	}

	pool := make([]models.PredictionFactor, len(decorativeFactors))
	copy(pool, decorativeFactors)
	for range 1 + h.rng.Intn(2) {
		i := h.rng.Intn(len(pool))
		factors = append(factors, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return factors
}

func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
