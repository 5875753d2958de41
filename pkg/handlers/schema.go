package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/services"
)

// maxDocumentBytes caps uploaded schema documents.
const maxDocumentBytes = 32 << 20

// PathRequest names a file on the server's filesystem.
type PathRequest struct {
	Path string `json:"path"`
}

// RecipeRequest selects the objects of a recipe. With Path set the recipe
// is written to disk instead of returned.
type RecipeRequest struct {
	Selections []services.RecipeSelection `json:"selections"`
	Path       string                     `json:"path,omitempty"`
}

// MigrationRequest writes the accumulated schema as a migration.
type MigrationRequest struct {
	Dialect string `json:"dialect,omitempty"`
	Name    string `json:"name"`
}

// SchemaHandler serves the accumulated schema, recipes and migrations.
type SchemaHandler struct {
	session *services.Session
	logger  *zap.Logger
}

// NewSchemaHandler creates a schema handler.
func NewSchemaHandler(session *services.Session, logger *zap.Logger) *SchemaHandler {
	return &SchemaHandler{session: session, logger: logger}
}

// RegisterRoutes registers the schema handler's routes on the given mux.
func (h *SchemaHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/schema", h.GetSchema)
	mux.HandleFunc("PUT /api/schema", h.PutSchema)
	mux.HandleFunc("POST /api/schema/save", h.SaveSchema)
	mux.HandleFunc("POST /api/schema/load", h.LoadSchema)
	mux.HandleFunc("POST /api/recipe", h.Recipe)
	mux.HandleFunc("POST /api/migrations", h.WriteMigration)
}

// GetSchema handles GET /api/schema
// Returns the accumulated schema document.
func (h *SchemaHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	data, err := h.session.SerializeSchema()
	if err != nil {
		writeError(w, err, "serialize_schema_failed", h.logger)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// PutSchema handles PUT /api/schema
// Replaces the accumulated schema with the document in the body.
func (h *SchemaHandler) PutSchema(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Failed to read request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	doc, err := h.session.LoadSchemaFromDocument(body)
	if err != nil {
		writeError(w, err, "load_schema_failed", h.logger)
		return
	}
	writeOK(w, map[string]int{"objects": len(doc)}, h.logger)
}

// SaveSchema handles POST /api/schema/save
func (h *SchemaHandler) SaveSchema(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !decodeBody(w, r, &req, h.logger) || !requirePath(w, req.Path, h.logger) {
		return
	}
	path, err := h.session.SaveSchema(req.Path)
	if err != nil {
		writeError(w, err, "save_schema_failed", h.logger)
		return
	}
	writeOK(w, PathRequest{Path: path}, h.logger)
}

// LoadSchema handles POST /api/schema/load
func (h *SchemaHandler) LoadSchema(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !decodeBody(w, r, &req, h.logger) || !requirePath(w, req.Path, h.logger) {
		return
	}
	doc, err := h.session.LoadSchema(req.Path)
	if err != nil {
		writeError(w, err, "load_schema_failed", h.logger)
		return
	}
	writeOK(w, map[string]int{"objects": len(doc)}, h.logger)
}

// Recipe handles POST /api/recipe
// Returns the recipe as YAML, or writes it to the requested path.
func (h *SchemaHandler) Recipe(w http.ResponseWriter, r *http.Request) {
	var req RecipeRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	if req.Path != "" {
		path, err := h.session.SaveRecipe(req.Path, req.Selections)
		if err != nil {
			writeError(w, err, "save_recipe_failed", h.logger)
			return
		}
		writeOK(w, PathRequest{Path: path}, h.logger)
		return
	}

	data, err := h.session.SerializeRecipe(req.Selections)
	if err != nil {
		writeError(w, err, "recipe_failed", h.logger)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(data)
}

// WriteMigration handles POST /api/migrations
func (h *SchemaHandler) WriteMigration(w http.ResponseWriter, r *http.Request) {
	var req MigrationRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	if req.Name == "" {
		req.Name = "schema"
	}

	files, err := h.session.WriteMigration(req.Dialect, req.Name)
	if err != nil {
		writeError(w, err, "write_migration_failed", h.logger)
		return
	}
	writeOK(w, files, h.logger)
}

func requirePath(w http.ResponseWriter, path string, logger *zap.Logger) bool {
	if path != "" {
		return true
	}
	if err := ErrorResponse(w, http.StatusBadRequest, "missing_path", "path is required"); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
	return false
}
