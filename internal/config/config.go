// Package config layers service configuration: built-in defaults, an
// optional YAML file, then CROWDCAST_-prefixed environment variables.
package config

import (
	"errors"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Addr            string `koanf:"addr"`
	DBPath          string `koanf:"db_path"`
	ModelPath       string `koanf:"model_path"`
	Seed            int64  `koanf:"seed"`
	TrainingSamples int    `koanf:"training_samples"`

	Monuments        []string `koanf:"monuments"`
	PopularLocations []string `koanf:"popular_locations"`

	HolidayFeedEnabled bool   `koanf:"holiday_feed_enabled"`
	HolidayFeedURL     string `koanf:"holiday_feed_url"`
	HolidayCountry     string `koanf:"holiday_country"`

	AllowedOrigins []string `koanf:"allowed_origins"`
	RateLimit      int      `koanf:"rate_limit"`
}

// Default returns the built-in configuration. The monument set is the
// fixed list the model is trained against; changing it requires a
// retrain (`crowdcast train`).
func Default() *Config {
	return &Config{
		Addr:            ":8080",
		DBPath:          "data/crowdcast.db",
		ModelPath:       "data/crowd_model.gob",
		Seed:            42,
		TrainingSamples: 2000,
		Monuments: []string{
			"pyr_giza",
			"sphinx",
			"luxor",
			"karnak",
			"abu_simbel",
			"valley_kings",
			"philae",
			"hatshepsut",
		},
		PopularLocations: []string{
			"Eiffel Tower",
			"Louvre Museum",
			"Colosseum",
			"Statue of Liberty",
			"Great Wall of China",
			"Taj Mahal",
			"Machu Picchu",
			"Pyramids of Giza",
		},
		HolidayFeedEnabled: false,
		HolidayCountry:     "US",
		AllowedOrigins:     []string{"*"},
		RateLimit:          120,
	}
}

// Load builds a Config by layering defaults, an optional YAML file,
// and environment variables. Precedence (low -> high):
//  1. Default()
//  2. file (YAML) when path is non-empty
//  3. env (prefix CROWDCAST_, e.g. CROWDCAST_ADDR, CROWDCAST_DB_PATH)
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	envProvider := env.Provider("CROWDCAST_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "crowdcast_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if len(cfg.Monuments) == 0 {
		return nil, errors.New("at least one monument must be configured")
	}
	return &cfg, nil
}
