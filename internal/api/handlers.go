package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/travolabs/crowdcast/internal/crowd"
	"github.com/travolabs/crowdcast/internal/models"
)

const (
	dateLayout      = "2006-01-02"
	defaultFromHour = 8
	defaultToHour   = 20
	defaultHistDays = 30
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req models.PredictRequest
	if !s.decode(w, r, &req) {
		return
	}

	prediction, err := s.predictor.Predict(req.MonumentID, req.Month, req.Day, req.Time)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

func (s *Server) handleMonuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Monuments)
}

func (s *Server) handleTimetable(w http.ResponseWriter, r *http.Request) {
	var req models.TimetableRequest
	if !s.decode(w, r, &req) {
		return
	}

	series, err := s.timetable.Generate(req.MonumentID, req.StartDate, req.EndDate)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req models.ForecastRequest
	if r.Method == http.MethodGet {
		req.Location = r.URL.Query().Get("location")
		req.Date = r.URL.Query().Get("date")
		var ok bool
		if req.TimeFrom, ok = queryHour(w, r, "time_from"); !ok {
			return
		}
		if req.TimeTo, ok = queryHour(w, r, "time_to"); !ok {
			return
		}
		if err := s.validate.Struct(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}
	} else if !s.decode(w, r, &req) {
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, use YYYY-MM-DD")
			return
		}
		date = parsed
	}
	fromHour, toHour := defaultFromHour, defaultToHour
	if req.TimeFrom != nil {
		fromHour = *req.TimeFrom
	}
	if req.TimeTo != nil {
		toHour = *req.TimeTo
	}

	forecast, err := s.heuristic.Predict(req.Location, date, fromHour, toHour)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.archiveForecast(forecast)
	writeJSON(w, http.StatusOK, forecast)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		writeError(w, http.StatusBadRequest, "location is required")
		return
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -(defaultHistDays - 1))
	if v := r.URL.Query().Get("to_date"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to_date, use YYYY-MM-DD")
			return
		}
		to = parsed
		from = to.AddDate(0, 0, -(defaultHistDays - 1))
	}
	if v := r.URL.Query().Get("from_date"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from_date, use YYYY-MM-DD")
			return
		}
		from = parsed
	}

	writeJSON(w, http.StatusOK, s.history.Generate(location, from, to))
}

// archiveForecast records an issued forecast; failures are logged and
// never fail the request.
func (s *Server) archiveForecast(forecast *models.CrowdForecast) {
	hourly, _ := json.Marshal(forecast.HourlyPredictions)
	factors, _ := json.Marshal(forecast.Factors)
	err := s.store.InsertForecast(models.ArchivedForecast{
		Location:     forecast.Location,
		ForecastDate: forecast.Date,
		OverallLevel: forecast.OverallCrowdLevel,
		HourlyJSON:   string(hourly),
		FactorsJSON:  string(factors),
	})
	if err != nil {
		s.log.Error().Err(err).Str("location", forecast.Location).Msg("archive forecast")
	}
}

// decode unmarshals and validates a JSON request body, writing a 400
// and returning false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	if crowd.IsValidationError(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Error().Err(err).Msg("handler failure")
	writeError(w, http.StatusInternalServerError, err.Error())
}

func queryHour(w http.ResponseWriter, r *http.Request, key string) (*int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, true
	}
	hour, err := strconv.Atoi(v)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+key)
		return nil, false
	}
	return &hour, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
