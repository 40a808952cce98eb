package crowd

import (
	"encoding/gob"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/travolabs/crowdcast/internal/metrics"
	"github.com/travolabs/crowdcast/internal/models"
)

const (
	// The synthetic labeller only produces the lower three levels.
	trainedClasses = 3

	defaultTrainingSamples = 2000
)

// ModelArtifact is the persisted (classifier, encoder) pair. It has
// no version field and no invalidation policy: changing the location
// set requires retraining, which `crowdcast train` forces.
type ModelArtifact struct {
	Forest    *Forest
	Encoder   *FeatureEncoder
	Samples   int
	TrainedAt time.Time
}

// Trainer fits and persists the crowd model. Load self-heals: a
// missing or unreadable artifact retrains and re-persists rather than
// surfacing an error.
type Trainer struct {
	path      string
	locations []string
	samples   int
	seed      int64
	log       zerolog.Logger
}

// NewTrainer returns a trainer persisting to path. The seed fixes
// both the synthetic dataset and the forest fit, so a given
// (locations, samples, seed) triple always produces the same
// artifact. samples <= 0 selects the default.
func NewTrainer(path string, locations []string, samples int, seed int64, log zerolog.Logger) *Trainer {
	if samples <= 0 {
		samples = defaultTrainingSamples
	}
	return &Trainer{
		path:      path,
		locations: locations,
		samples:   samples,
		seed:      seed,
		log:       log.With().Str("component", "trainer").Logger(),
	}
}

// Train fits a fresh artifact without touching disk.
func (t *Trainer) Train() (*ModelArtifact, error) {
	if len(t.locations) == 0 {
		return nil, fmt.Errorf("train: no locations configured")
	}

	start := time.Now()
	rng := rand.New(rand.NewSource(t.seed))

	visits := GenerateTrainingData(rng, t.locations, t.samples)
	encoder := NewFeatureEncoder(t.locations)

	features := make([][]float64, len(visits))
	labels := make([]int, len(visits))
	for i, v := range visits {
		features[i] = encoder.Encode(v.Location, v.Month, v.Day, v.Hour, v.Minute)
		labels[i] = v.Level.Ordinal()
	}

	forest := TrainForest(rng, features, labels, trainedClasses)
	elapsed := time.Since(start)
	metrics.ModelTrainSeconds.Observe(elapsed.Seconds())

	t.log.Info().
		Int("samples", len(visits)).
		Int("trees", len(forest.Trees)).
		Dur("elapsed", elapsed).
		Msg("model trained")

	return &ModelArtifact{
		Forest:    forest,
		Encoder:   encoder,
		Samples:   len(visits),
		TrainedAt: time.Now().UTC(),
	}, nil
}

// Save writes the artifact via a temp file and rename so a reader
// never observes a half-written artifact.
func (t *Trainer) Save(artifact *ModelArtifact) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(t.path), "model-*.gob")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(artifact); err != nil {
		tmp.Close()
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

// Load returns the persisted artifact, retraining and re-persisting
// when it is missing or unreadable. Retrains are logged and counted
// but never propagate to the caller as load failures.
func (t *Trainer) Load() (*ModelArtifact, error) {
	artifact, err := t.read()
	if err == nil {
		return artifact, nil
	}

	reason := "corrupt"
	if os.IsNotExist(err) {
		reason = "missing"
	}
	metrics.ModelRetrainsTotal.WithLabelValues(reason).Inc()
	t.log.Warn().Err(err).Str("reason", reason).Msg("model artifact unavailable, retraining")

	artifact, err = t.Train()
	if err != nil {
		return nil, err
	}
	if err := t.Save(artifact); err != nil {
		// The in-memory model still serves requests; only the next
		// process start pays for the failed persist.
		t.log.Error().Err(err).Msg("persist retrained model")
	}
	return artifact, nil
}

func (t *Trainer) read() (*ModelArtifact, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var artifact ModelArtifact
	if err := gob.NewDecoder(f).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if artifact.Forest == nil || artifact.Encoder == nil {
		return nil, fmt.Errorf("artifact missing forest or encoder")
	}
	return &artifact, nil
}

// levelForClass maps a classifier ordinal back onto the shared enum.
func levelForClass(class int) models.CrowdLevel {
	if class < 0 || class >= len(models.Levels) {
		return models.LevelModerate
	}
	return models.Levels[class]
}
