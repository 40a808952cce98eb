package main

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/travolabs/crowdcast/internal/api"
	"github.com/travolabs/crowdcast/internal/config"
	"github.com/travolabs/crowdcast/internal/crowd"
	"github.com/travolabs/crowdcast/internal/holidays"
	"github.com/travolabs/crowdcast/internal/ingest"
	"github.com/travolabs/crowdcast/internal/store"
)

type cli struct {
	Config string `help:"Path to YAML config file." type:"path" env:"CROWDCAST_CONFIG"`
	Debug  bool   `help:"Enable debug logging."`

	Serve    serveCmd    `cmd:"" default:"1" help:"Run the HTTP API server."`
	Train    trainCmd    `cmd:"" help:"Train the crowd model and write the artifact."`
	Snapshot snapshotCmd `cmd:"" help:"Write today's crowd snapshots and exit."`
}

type appContext struct {
	cfg *config.Config
	log zerolog.Logger
}

type serveCmd struct {
	Addr string `help:"Listen address, overrides config." placeholder:":8080"`
}

type trainCmd struct{}

type snapshotCmd struct{}

func main() {
	var flags cli
	ktx := kong.Parse(&flags,
		kong.Name("crowdcast"),
		kong.Description("Crowd-level forecasting service for tourist monuments."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	logger := newLogger(flags.Debug)

	cfg, err := config.Load(flags.Config)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	err = ktx.Run(&appContext{cfg: cfg, log: logger})
	if err != nil {
		logger.Fatal().Err(err).Msg(ktx.Command())
	}
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	if isatty() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func isatty() bool {
	info, err := os.Stderr.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func openStore(cfg *config.Config, log zerolog.Logger) (*store.Store, *sql.DB, error) {
	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db, log)
	if err := st.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return st, db, nil
}

func (c *serveCmd) Run(app *appContext) error {
	cfg := app.cfg
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}

	st, db, err := openStore(cfg, app.log)
	if err != nil {
		return err
	}
	defer db.Close()

	calendar := holidays.NewCalendar()
	seedCalendar(st, calendar, app.log)

	var feed *holidays.Client
	if cfg.HolidayFeedEnabled {
		feed = holidays.NewClient(cfg.HolidayFeedURL, cfg.HolidayCountry)
	}

	trainer := crowd.NewTrainer(cfg.ModelPath, cfg.Monuments, cfg.TrainingSamples, cfg.Seed, app.log)
	predictor := crowd.NewPredictor(trainer, rand.New(rand.NewSource(time.Now().UnixNano())), app.log)
	heuristic := crowd.NewHeuristicPredictor(cfg.PopularLocations, calendar, rand.New(rand.NewSource(time.Now().UnixNano())), app.log)
	history := crowd.NewHistoryGenerator(rand.New(rand.NewSource(time.Now().UnixNano())))
	timetable := crowd.NewTimetableGenerator(rand.New(rand.NewSource(time.Now().UnixNano())))

	scheduler := ingest.NewScheduler(st, history, calendar, feed, cfg.Monuments, app.log)
	server := api.NewServer(predictor, heuristic, history, timetable, st, api.Options{
		Addr:           cfg.Addr,
		Monuments:      cfg.Monuments,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
	}, app.log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go scheduler.Run(ctx)

	app.log.Info().Str("addr", cfg.Addr).Msg("starting server")
	return server.Run(ctx)
}

func (c *trainCmd) Run(app *appContext) error {
	trainer := crowd.NewTrainer(app.cfg.ModelPath, app.cfg.Monuments, app.cfg.TrainingSamples, app.cfg.Seed, app.log)
	artifact, err := trainer.Train()
	if err != nil {
		return err
	}
	if err := trainer.Save(artifact); err != nil {
		return err
	}
	app.log.Info().Str("path", app.cfg.ModelPath).Msg("model artifact written")
	return nil
}

func (c *snapshotCmd) Run(app *appContext) error {
	st, db, err := openStore(app.cfg, app.log)
	if err != nil {
		return err
	}
	defer db.Close()

	history := crowd.NewHistoryGenerator(rand.New(rand.NewSource(time.Now().UnixNano())))
	calendar := holidays.NewCalendar()
	scheduler := ingest.NewScheduler(st, history, calendar, nil, app.cfg.Monuments, app.log)
	scheduler.SnapshotOnce()
	app.log.Info().Msg("snapshots written")
	return nil
}

// seedCalendar loads previously fetched holidays so the calendar is
// warm before the first feed refresh.
func seedCalendar(st *store.Store, calendar *holidays.Calendar, log zerolog.Logger) {
	rows, err := st.ListHolidays()
	if err != nil {
		log.Warn().Err(err).Msg("load persisted holidays")
		return
	}
	for _, row := range rows {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			continue
		}
		calendar.Add(date, row.Name)
	}
}
