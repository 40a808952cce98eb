package crowd

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/travolabs/crowdcast/internal/metrics"
	"github.com/travolabs/crowdcast/internal/models"
)

// daysInMonth is the fixed validation table. February always allows
// 29: the request carries no year, so validation is leap-year-agnostic.
var daysInMonth = [13]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// waitWindows gives the inclusive wait-time range per level, minutes.
var waitWindows = map[models.CrowdLevel][2]int{
	models.LevelLow:      {5, 15},
	models.LevelModerate: {15, 30},
	models.LevelHigh:     {30, 60},
	models.LevelVeryHigh: {60, 120},
}

// Predictor serves trained-path predictions. The model loads at most
// once per process; the first request pays for any retrain.
type Predictor struct {
	trainer *Trainer
	log     zerolog.Logger

	mu    sync.Mutex
	model *ModelArtifact
	rng   *rand.Rand
}

// NewPredictor wires a predictor over the trainer. The rng drives the
// randomized wait-time draw and is injected so tests can seed it.
func NewPredictor(trainer *Trainer, rng *rand.Rand, log zerolog.Logger) *Predictor {
	return &Predictor{
		trainer: trainer,
		rng:     rng,
		log:     log.With().Str("component", "predictor").Logger(),
	}
}

// Predict classifies crowd level for a monument at month/day/clock.
// Confidence is the maximum class probability. Wait time is drawn
// from the class window, so it is deliberately not a deterministic
// function of the prediction.
func (p *Predictor) Predict(monumentID string, month, day int, clock string) (*models.Prediction, error) {
	if err := ValidateDate(month, day); err != nil {
		return nil, err
	}
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return nil, err
	}

	model, err := p.load()
	if err != nil {
		return nil, err
	}

	features := model.Encoder.Encode(monumentID, month, day, hour, minute)
	class, probs := model.Forest.Predict(features)
	level := levelForClass(class)

	p.mu.Lock()
	wait := drawWait(p.rng, level)
	p.mu.Unlock()

	metrics.PredictionsTotal.WithLabelValues("trained", string(level)).Inc()

	now := time.Now()
	return &models.Prediction{
		MonumentID:      monumentID,
		PredictionTime:  time.Date(now.Year(), time.Month(month), day, hour, minute, 0, 0, time.UTC),
		CrowdLevel:      level,
		Confidence:      probs[class],
		WaitTimeMinutes: wait,
	}, nil
}

func (p *Predictor) load() (*ModelArtifact, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.model != nil {
		return p.model, nil
	}
	model, err := p.trainer.Load()
	if err != nil {
		return nil, err
	}
	p.model = model
	return model, nil
}

// ValidateDate checks day against the fixed days-in-month table.
func ValidateDate(month, day int) error {
	if month < 1 || month > 12 {
		return validationf("invalid month %d", month)
	}
	if day < 1 || day > daysInMonth[month] {
		return validationf("invalid day %d for month %d", day, month)
	}
	return nil
}

// ParseClock parses a strict HH:MM clock with hour 0-23, minute 0-59.
func ParseClock(clock string) (hour, minute int, err error) {
	hh, mm, found := strings.Cut(clock, ":")
	if !found {
		return 0, 0, validationf("invalid time format %q, use HH:MM (e.g. 14:30)", clock)
	}
	hour, err = strconv.Atoi(hh)
	if err != nil {
		return 0, 0, validationf("invalid time format %q, use HH:MM (e.g. 14:30)", clock)
	}
	minute, err = strconv.Atoi(mm)
	if err != nil {
		return 0, 0, validationf("invalid time format %q, use HH:MM (e.g. 14:30)", clock)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, validationf("time %q out of range, hour 0-23 and minute 0-59", clock)
	}
	return hour, minute, nil
}

func drawWait(rng *rand.Rand, level models.CrowdLevel) int {
	window := waitWindows[level]
	return window[0] + rng.Intn(window[1]-window[0]+1)
}
