package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fortuna/courtside/internal/logger"
	"github.com/fortuna/courtside/internal/service"
	"github.com/fortuna/courtside/internal/store"
)

const internalMessage = "Internal Server Error"

// Options carries the optional collaborators of the handlers.
type Options struct {
	Cache     service.Cache
	CacheTTL  time.Duration
	Publisher service.Publisher
	// CacheHealth pings the cache backend; nil when caching is disabled.
	CacheHealth func(ctx context.Context) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db            *store.Database
	cacheHealth   func(ctx context.Context) error
	teamService   *service.TeamService
	playerService *service.PlayerService
	gameService   *service.GameService
	statsService  *service.StatsService
	log           *logger.Logger
}

// NewHandler creates a new handler
func NewHandler(db *store.Database, opts Options, log *logger.Logger) *Handler {
	if opts.Cache == nil {
		opts.Cache = service.NopCache()
	}
	if opts.Publisher == nil {
		opts.Publisher = service.NopPublisher()
	}
	return &Handler{
		db:            db,
		cacheHealth:   opts.CacheHealth,
		teamService:   service.NewTeamService(db, opts.Cache, log),
		playerService: service.NewPlayerService(db, opts.Cache, log),
		gameService:   service.NewGameService(db, opts.Cache, log),
		statsService:  service.NewStatsService(db, opts.Cache, opts.CacheTTL, opts.Publisher, log),
		log:           log.With("component", "rest"),
	}
}

// HealthCheck reports database and cache reachability
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]string{
		"status":   "healthy",
		"service":  "courtside",
		"database": "ok",
		"cache":    "disabled",
	}

	if err := h.db.HealthCheck(r.Context()); err != nil {
		h.log.Warn("database health check failed", "error", err)
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = "unreachable"
	}
	if h.cacheHealth != nil {
		body["cache"] = "ok"
		if err := h.cacheHealth(r.Context()); err != nil {
			h.log.Warn("cache health check failed", "error", err)
			body["cache"] = "unreachable"
		}
	}

	respondJSON(w, status, body)
}

// TestConnection runs a trivial query against the database
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	var result int
	if err := h.db.DB().WithContext(r.Context()).Raw("SELECT 1").Scan(&result).Error; err != nil {
		h.fail(w, r, service.Internal(fmt.Errorf("test connection: %w", err)))
		return
	}
	respondJSON(w, http.StatusOK, fmt.Sprintf("Connection successful. Result: %d", result))
}

// pathID parses an integer mux variable. The route regex guarantees digits,
// so only overflow can fail here.
func pathID(r *http.Request, name string) (int, error) {
	return strconv.Atoi(mux.Vars(r)[name])
}

// decode reads a JSON body into dst.
func decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return service.BadRequest("invalid request body")
	}
	return nil
}

// fail maps a service error onto an HTTP response. Internal causes are
// logged, never returned.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		svcErr = service.Internal(err)
	}

	switch svcErr.Kind {
	case service.KindNotFound:
		respondError(w, http.StatusNotFound, svcErr.Message)
	case service.KindBadRequest:
		respondError(w, http.StatusBadRequest, svcErr.Message)
	default:
		h.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFrom(r.Context()),
			"error", err,
		)
		respondError(w, http.StatusInternalServerError, internalMessage)
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondCreated writes 201 with a Location header
func respondCreated(w http.ResponseWriter, location string, data interface{}) {
	w.Header().Set("Location", location)
	respondJSON(w, http.StatusCreated, data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":  message,
		"status": status,
	})
}
