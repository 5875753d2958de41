package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/models"
	"github.com/ekaya-inc/schemaforge/pkg/services"
)

// ConnectRequest opens a connection through one catalog adapter. Config is
// passed to the adapter as is.
type ConnectRequest struct {
	Adapter string         `json:"adapter"`
	Config  map[string]any `json:"config"`
}

// FetchRequest starts a describe batch over Objects.
type FetchRequest struct {
	Mode    models.FetchMode `json:"mode"`
	Objects []string         `json:"objects"`
}

// OrgHandler serves org connections, object listings and fetch batches.
type OrgHandler struct {
	session *services.Session
	logger  *zap.Logger
}

// NewOrgHandler creates an org handler.
func NewOrgHandler(session *services.Session, logger *zap.Logger) *OrgHandler {
	return &OrgHandler{session: session, logger: logger}
}

// RegisterRoutes registers the org handler's routes on the given mux.
func (h *OrgHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/adapters", h.ListAdapters)
	mux.HandleFunc("GET /api/orgs", h.ListConnections)
	mux.HandleFunc("POST /api/orgs", h.Connect)
	mux.HandleFunc("DELETE /api/orgs/{org}", h.Disconnect)
	mux.HandleFunc("GET /api/orgs/{org}/objects", h.ListObjects)
	mux.HandleFunc("POST /api/orgs/{org}/fetch", h.Fetch)
}

// ListAdapters handles GET /api/adapters
func (h *OrgHandler) ListAdapters(w http.ResponseWriter, r *http.Request) {
	writeOK(w, h.session.AdapterTypes(), h.logger)
}

// ListConnections handles GET /api/orgs
func (h *OrgHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	writeOK(w, h.session.Connections(), h.logger)
}

// Connect handles POST /api/orgs
func (h *OrgHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	if req.Adapter == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_adapter", "adapter is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	info, err := h.session.Connect(r.Context(), req.Adapter, req.Config)
	if err != nil {
		writeError(w, err, "connect_failed", h.logger)
		return
	}
	writeOK(w, info, h.logger)
}

// Disconnect handles DELETE /api/orgs/{org}
func (h *OrgHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Disconnect(r.PathValue("org")); err != nil {
		writeError(w, err, "disconnect_failed", h.logger)
		return
	}
	writeOK(w, nil, h.logger)
}

// ListObjects handles GET /api/orgs/{org}/objects
// Returns every object with the org profile and recommended selection.
func (h *OrgHandler) ListObjects(w http.ResponseWriter, r *http.Request) {
	objects, err := h.session.DescribeOrgObjects(r.Context(), r.PathValue("org"))
	if err != nil {
		writeError(w, err, "list_objects_failed", h.logger)
		return
	}
	writeOK(w, objects, h.logger)
}

// Fetch handles POST /api/orgs/{org}/fetch
// Streams the batch's events as Server-Sent Events. Closing the stream
// cancels the batch.
func (h *OrgHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var req FetchRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	if req.Mode == "" {
		req.Mode = models.FetchModeSchema
	}
	if !req.Mode.IsValid() {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_mode", fmt.Sprintf("unknown mode %q", req.Mode)); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	orgID := r.PathValue("org")
	var (
		batch *services.Batch
		err   error
	)
	if req.Mode == models.FetchModeRecipe {
		batch, err = h.session.BuildRecipeForObjects(r.Context(), orgID, req.Objects)
	} else {
		batch, err = h.session.BuildSchemaForObjects(r.Context(), orgID, req.Objects)
	}
	if err != nil {
		writeError(w, err, "fetch_failed", h.logger)
		return
	}

	flusher := startSSE(w, h.logger)
	if flusher == nil {
		batch.Cancel()
		return
	}

	for event := range batch.Events() {
		data, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("Failed to marshal event", zap.Error(err))
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}
