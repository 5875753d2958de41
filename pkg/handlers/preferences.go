package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/models"
	"github.com/ekaya-inc/schemaforge/pkg/services"
)

// PreferencesHandler reads and updates translation preferences.
type PreferencesHandler struct {
	session *services.Session
	logger  *zap.Logger
}

// NewPreferencesHandler creates a preferences handler.
func NewPreferencesHandler(session *services.Session, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{session: session, logger: logger}
}

// RegisterRoutes registers the preferences handler's routes on the given mux.
func (h *PreferencesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/preferences", h.Get)
	mux.HandleFunc("PUT /api/preferences", h.Put)
}

// Get handles GET /api/preferences
// Returns 412 until preferences have been set.
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	prefs := h.session.Preferences()
	if prefs == nil {
		if err := ErrorResponse(w, http.StatusPreconditionFailed, "preferences_not_set", "Preferences have not been set"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	writeOK(w, prefs, h.logger)
}

// Put handles PUT /api/preferences
// Validates, activates and persists the preferences in the body.
func (h *PreferencesHandler) Put(w http.ResponseWriter, r *http.Request) {
	prefs := models.NewDefaultPreferences()
	if !decodeBody(w, r, &prefs, h.logger) {
		return
	}
	if err := h.session.SavePreferences(prefs); err != nil {
		writeError(w, err, "save_preferences_failed", h.logger)
		return
	}
	writeOK(w, prefs, h.logger)
}
