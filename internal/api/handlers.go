package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/greyfable/masterlist/internal/audit"
	"github.com/greyfable/masterlist/internal/auth"
	"github.com/greyfable/masterlist/internal/config"
	"github.com/greyfable/masterlist/internal/metrics"
	"github.com/greyfable/masterlist/internal/repository"
)

// Handlers carries the shared dependencies for all HTTP handlers
type Handlers struct {
	cfg        *config.Config
	logger     *slog.Logger
	users      *repository.UserRepository
	sessions   *repository.SessionRepository
	characters *repository.CharacterRepository
	settings   *repository.SettingsRepository
	activity   *audit.Recorder
	auth       *auth.Authenticator
	metrics    *metrics.Metrics
}

// HandlersConfig bundles the dependencies for New
type HandlersConfig struct {
	Config     *config.Config
	Logger     *slog.Logger
	Users      *repository.UserRepository
	Sessions   *repository.SessionRepository
	Characters *repository.CharacterRepository
	Settings   *repository.SettingsRepository
	Activity   *audit.Recorder
	Auth       *auth.Authenticator
	Metrics    *metrics.Metrics
}

func NewHandlers(cfg HandlersConfig) *Handlers {
	return &Handlers{
		cfg:        cfg.Config,
		logger:     cfg.Logger,
		users:      cfg.Users,
		sessions:   cfg.Sessions,
		characters: cfg.Characters,
		settings:   cfg.Settings,
		activity:   cfg.Activity,
		auth:       cfg.Auth,
		metrics:    cfg.Metrics,
	}
}

// Health check
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON parses a request body, returning false after writing the
// error response itself.
func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
