// Package web exposes the pin HTTP API: CRUD on pins, the tag/open-now
// filtered listing, a schedule preview for recurring pins and an
// iCalendar feed of the pin set.
package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pinmap/internal/config"
	"pinmap/internal/datetime"
	"pinmap/internal/ics"
	appLog "pinmap/internal/log"
	"pinmap/internal/model"
	"pinmap/internal/schedule"
	"pinmap/internal/store"
	"pinmap/internal/visibility"
)

// Server provides the HTTP API over a pin store.
type Server struct {
	cfg   *config.Config
	store *store.Store
	mux   *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, st *store.Store) *Server {
	s := &Server{
		cfg:   cfg,
		store: st,
		mux:   http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler, wrapped with basic auth
// when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Treat empty username or password as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="pinmap", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/pins", s.handlePins)
	s.mux.HandleFunc("/api/pins.ics", s.handleFeed)
	s.mux.HandleFunc("/api/pins/", s.handlePinByID)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handlePins serves the collection endpoints.
//
// GET /api/pins?tag=food&time=now
//   - tag:  keep only pins carrying the tag
//   - time: "now" keeps only pins open now or opening within the
//     configured lookahead window, each judged in its own timezone
//
// POST /api/pins creates a pin after validating its schedule fields.
func (s *Server) handlePins(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listPins(w, r)
	case http.MethodPost:
		s.createPin(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listPins(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.Filter{Tag: q.Get("tag")}
	if q.Get("time") == string(model.TimeNow) {
		filter.Time = model.TimeNow
	}

	pins := visibility.FilterPinsAt(s.store.List(), filter, s.cfg.LookaheadHours, time.Now())

	appLog.Debug("api pins list",
		"tag", filter.Tag,
		"time", string(filter.Time),
		"result_count", len(pins),
	)
	writeJSON(w, http.StatusOK, pinsResponse{Pins: pins})
}

func (s *Server) createPin(w http.ResponseWriter, r *http.Request) {
	var p model.Pin
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg, ok := validatePin(p); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := s.store.Create(p)
	if err != nil {
		appLog.Error("api pin create failed", err)
		writeError(w, http.StatusInternalServerError, "failed to store pin")
		return
	}
	appLog.Info("pin created", "id", created.ID, "title", created.Title, "pin_type", string(created.Kind))
	writeJSON(w, http.StatusCreated, created)
}

// handlePinByID serves /api/pins/{id} and /api/pins/{id}/occurrences.
func (s *Server) handlePinByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/pins/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if sub == "occurrences" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.pinOccurrences(w, r, id)
		return
	}
	if sub != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, ok := s.store.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "pin not found")
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		s.updatePin(w, r, id)
	case http.MethodDelete:
		if err := s.store.Delete(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "pin not found")
				return
			}
			appLog.Error("api pin delete failed", err, "id", id)
			writeError(w, http.StatusInternalServerError, "failed to delete pin")
			return
		}
		appLog.Info("pin deleted", "id", id)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) updatePin(w http.ResponseWriter, r *http.Request, id string) {
	var p model.Pin
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg, ok := validatePin(p); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := s.store.Update(id, p)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "pin not found")
			return
		}
		appLog.Error("api pin update failed", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to update pin")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// pinOccurrences previews the upcoming concrete openings of a
// scheduled pin.
//
// GET /api/pins/{id}/occurrences?days=7
func (s *Server) pinOccurrences(w http.ResponseWriter, r *http.Request, id string) {
	p, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "pin not found")
		return
	}
	if strings.TrimSpace(p.ScheduleRule) == "" {
		writeError(w, http.StatusBadRequest, "pin has no recurrence rule")
		return
	}

	days := parseIntDefault(r.URL.Query().Get("days"), 7)
	if days <= 0 {
		days = 7
	}

	occs, err := schedule.Upcoming(p, time.Now(), days, 100)
	if err != nil {
		appLog.Error("api pin occurrences failed", err, "id", id)
		writeError(w, http.StatusUnprocessableEntity, "failed to expand schedule")
		return
	}

	writeJSON(w, http.StatusOK, occurrencesResponse{
		PinID:       p.ID,
		Timezone:    p.Timezone,
		Days:        days,
		Occurrences: occs,
	})
}

// handleFeed serves the pin set as an iCalendar document.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	loc := resolveLocationOrUTC(s.cfg.Timezone)
	feed, err := ics.Feed(s.store.List(), loc)
	if err != nil {
		writeError(w, http.StatusNotFound, "no schedules to export")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(feed))
}

// validatePin rejects schedule fields the open-now filter would have
// to fail closed on, so broken rules never enter the store through the
// API.
func validatePin(p model.Pin) (string, bool) {
	if strings.TrimSpace(p.Title) == "" {
		return "title is required", false
	}
	if p.Timezone != "" {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			return "unknown schedule_timezone", false
		}
	}

	scheduled := p.Kind == model.KindScheduled || strings.TrimSpace(p.ScheduleRule) != ""
	if scheduled {
		if err := schedule.ValidateRule(p.ScheduleRule); err != nil {
			return "invalid schedule_rrule: " + err.Error(), false
		}
		if p.StartTime != "" {
			if _, ok := datetime.ParseTimeOfDay(p.StartTime); !ok {
				return "invalid start_time: want sentinel-dated HH:MM", false
			}
		}
		if p.EndTime != "" {
			if _, ok := datetime.ParseTimeOfDay(p.EndTime); !ok {
				return "invalid end_time: want sentinel-dated HH:MM", false
			}
		}
		return "", true
	}

	if p.StartTime != "" {
		if _, ok := datetime.ParseDateTime(p.StartTime); !ok {
			return "invalid start_time: want YYYY-MM-DDTHH:MM[:SS]", false
		}
	}
	if p.EndTime != "" {
		if _, ok := datetime.ParseDateTime(p.EndTime); !ok {
			return "invalid end_time: want YYYY-MM-DDTHH:MM[:SS]", false
		}
	}
	return "", true
}

// pinsResponse is the JSON response shape for GET /api/pins.
type pinsResponse struct {
	Pins []model.Pin `json:"pins"`
}

// occurrencesResponse is the JSON response shape for the schedule
// preview endpoint.
type occurrencesResponse struct {
	PinID       string                `json:"pin_id"`
	Timezone    string                `json:"timezone"`
	Days        int                   `json:"days"`
	Occurrences []schedule.Occurrence `json:"occurrences"`
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func resolveLocationOrUTC(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to UTC", err, "name", name)
		return time.UTC
	}
	return loc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
