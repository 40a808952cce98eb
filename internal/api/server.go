// Package api exposes the crowd prediction service over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/travolabs/crowdcast/internal/crowd"
	"github.com/travolabs/crowdcast/internal/store"
)

// Options carries the server's collaborators and tunables.
type Options struct {
	Addr           string
	Monuments      []string
	AllowedOrigins []string
	RateLimit      int // requests per minute per IP; 0 disables
}

type Server struct {
	predictor *crowd.Predictor
	heuristic *crowd.HeuristicPredictor
	history   *crowd.HistoryGenerator
	timetable *crowd.TimetableGenerator
	store     *store.Store
	opts      Options
	validate  *validator.Validate
	log       zerolog.Logger
}

func NewServer(
	predictor *crowd.Predictor,
	heuristic *crowd.HeuristicPredictor,
	history *crowd.HistoryGenerator,
	timetable *crowd.TimetableGenerator,
	st *store.Store,
	opts Options,
	log zerolog.Logger,
) *Server {
	return &Server{
		predictor: predictor,
		heuristic: heuristic,
		history:   history,
		timetable: timetable,
		store:     st,
		opts:      opts,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		log:       log.With().Str("component", "api").Logger(),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api/crowds", func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.opts.RateLimit, time.Minute))
		}
		r.Use(s.requestMetrics)

		r.Post("/predict", s.handlePredict)
		r.Get("/monuments", s.handleMonuments)
		r.Post("/historical", s.handleTimetable)
		r.Get("/prediction", s.handleForecast)
		r.Post("/prediction", s.handleForecast)
		r.Get("/history", s.handleHistory)
	})

	return r
}

// Run serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
