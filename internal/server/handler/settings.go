package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/boredraw/internal/domain"
)

// SettingsHandler serves and updates the runtime calculation settings.
type SettingsHandler struct {
	settings domain.SettingsStore
	defaults domain.Settings
	logger   *slog.Logger
}

// NewSettingsHandler creates a SettingsHandler. defaults are returned when no
// settings row has been saved yet.
func NewSettingsHandler(settings domain.SettingsStore, defaults domain.Settings, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		defaults: defaults,
		logger:   logHandler(logger, "settings"),
	}
}

// GetSettings returns the current calculation settings.
// GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	stored, err := h.settings.Get(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, h.defaults)
			return
		}
		h.logger.ErrorContext(r.Context(), "get settings failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// settingsPayload is the PUT body. Pointers distinguish absent fields from
// explicit zeroes; absent fields keep their current values.
type settingsPayload struct {
	BackStake          *float64 `json:"back_stake"`
	CommissionDiscount *float64 `json:"commission_discount"`
	Retention          *float64 `json:"retention"`
	WebhookURL         *string  `json:"webhook_url"`
}

// UpdateSettings validates and persists new calculation settings. The next
// scan pass picks them up; no restart is needed.
// PUT /api/settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var payload settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	current, err := h.settings.Get(r.Context())
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			h.logger.ErrorContext(r.Context(), "get settings failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "failed to load settings")
			return
		}
		current = h.defaults
	}

	if payload.BackStake != nil {
		current.BackStake = *payload.BackStake
	}
	if payload.CommissionDiscount != nil {
		current.CommissionDiscount = *payload.CommissionDiscount
	}
	if payload.Retention != nil {
		current.Retention = *payload.Retention
	}
	if payload.WebhookURL != nil {
		current.WebhookURL = *payload.WebhookURL
	}

	if err := validateSettings(current); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.settings.Put(r.Context(), current); err != nil {
		h.logger.ErrorContext(r.Context(), "put settings failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	stored, err := h.settings.Get(r.Context())
	if err != nil {
		stored = current
	}
	writeJSON(w, http.StatusOK, stored)
}

func validateSettings(s domain.Settings) error {
	if s.BackStake <= 0 {
		return fmt.Errorf("back_stake must be > 0, got %g", s.BackStake)
	}
	if s.CommissionDiscount < 0 || s.CommissionDiscount > 100 {
		return fmt.Errorf("commission_discount must be 0-100, got %g", s.CommissionDiscount)
	}
	if s.Retention < 0 || s.Retention > 100 {
		return fmt.Errorf("retention must be 0-100, got %g", s.Retention)
	}
	return nil
}
