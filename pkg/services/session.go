package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/adapters/catalog"
	"github.com/ekaya-inc/schemaforge/pkg/apperrors"
	"github.com/ekaya-inc/schemaforge/pkg/logging"
	"github.com/ekaya-inc/schemaforge/pkg/migration"
	"github.com/ekaya-inc/schemaforge/pkg/models"
	"github.com/ekaya-inc/schemaforge/pkg/translate"
)

// SessionConfig holds the tunables a Session reads from configuration.
type SessionConfig struct {
	FetchMaxConcurrent int
	ForceText          bool
	RecipeDefaultCount int
	MigrationDir       string
	MigrationDialect   string
	PluralizeTables    bool
}

// Session owns the state of one working session: open org connections, the
// active preferences, the accumulator and the running batch.
type Session struct {
	mu          sync.Mutex
	connections map[string]catalog.Connection
	prefs       *models.Preferences
	active      *Batch

	factory      catalog.ConnectionFactory
	store        PreferencesStore
	notifier     Notifier
	orchestrator *FetchOrchestrator
	acc          *Accumulator
	migrations   *migration.Writer
	cfg          SessionConfig
	logger       *zap.Logger
}

// NewSession creates a session. Preferences start unset; callers load them
// from the store and pass them to SetPreferences.
func NewSession(factory catalog.ConnectionFactory, store PreferencesStore, notifier Notifier, cfg SessionConfig, logger *zap.Logger) *Session {
	if cfg.RecipeDefaultCount < 1 {
		cfg.RecipeDefaultCount = 10
	}
	if cfg.MigrationDialect == "" {
		cfg.MigrationDialect = migration.DialectPostgres
	}
	return &Session{
		connections:  make(map[string]catalog.Connection),
		factory:      factory,
		store:        store,
		notifier:     notifier,
		orchestrator: NewFetchOrchestrator(notifier, cfg.FetchMaxConcurrent, translate.Options{ForceText: cfg.ForceText}, logger),
		acc:          NewAccumulator(),
		migrations:   migration.NewWriter(cfg.MigrationDir, logger),
		cfg:          cfg,
		logger:       logger.Named("session"),
	}
}

// SetPreferences validates and installs prefs for subsequent batches.
func (s *Session) SetPreferences(prefs models.Preferences) error {
	if err := prefs.Validate(); err != nil {
		notify(s.notifier, SenderPreferences, models.SeverityError, "Invalid preferences: %v", err)
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidDocument, err)
	}
	s.mu.Lock()
	s.prefs = &prefs
	s.mu.Unlock()
	return nil
}

// Preferences returns a copy of the active preferences, or nil when unset.
func (s *Session) Preferences() *models.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prefs == nil {
		return nil
	}
	p := *s.prefs
	return &p
}

// SavePreferences validates prefs, persists them and makes them active.
func (s *Session) SavePreferences(prefs models.Preferences) error {
	if err := s.SetPreferences(prefs); err != nil {
		return err
	}
	if err := s.store.Save(&prefs); err != nil {
		notify(s.notifier, SenderPreferences, models.SeverityError, "Failed to save preferences: %v", err)
		return err
	}
	notify(s.notifier, SenderPreferences, models.SeveritySuccess, "Preferences saved")
	return nil
}

// Connect opens a connection through the adapter registered as adapterType
// and remembers it by org ID. An existing connection to the same org is
// closed first.
func (s *Session) Connect(ctx context.Context, adapterType string, config map[string]any) (models.OrgConnection, error) {
	conn, err := s.factory.NewConnection(ctx, adapterType, config)
	if err != nil {
		notify(s.notifier, SenderCatalog, models.SeverityError, "Connection failed: %s", logging.SanitizeError(err))
		return models.OrgConnection{}, err
	}

	orgID := conn.OrgID()
	s.mu.Lock()
	previous := s.connections[orgID]
	s.connections[orgID] = conn
	s.mu.Unlock()

	if previous != nil && previous != conn {
		if err := previous.Close(); err != nil {
			s.logger.Warn("Failed to close replaced connection", zap.String("org_id", orgID), zap.Error(err))
		}
	}

	info := conn.Info()
	s.logger.Info("Connected to org", zap.String("org_id", orgID), zap.String("adapter", adapterType))
	notify(s.notifier, SenderCatalog, models.SeveritySuccess, "Connected to org %s", orgID)
	return info, nil
}

// Disconnect closes and forgets the connection to orgID.
func (s *Session) Disconnect(orgID string) error {
	s.mu.Lock()
	conn, ok := s.connections[orgID]
	delete(s.connections, orgID)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrUnknownConnection, orgID)
	}
	if err := conn.Close(); err != nil {
		notify(s.notifier, SenderCatalog, models.SeverityWarning, "Closing org %s: %s", orgID, logging.SanitizeError(err))
		return err
	}
	notify(s.notifier, SenderCatalog, models.SeverityInfo, "Disconnected from org %s", orgID)
	return nil
}

// Connections lists the open connections sorted by org ID.
func (s *Session) Connections() []models.OrgConnection {
	s.mu.Lock()
	conns := make([]catalog.Connection, 0, len(s.connections))
	for _, c := range s.connections {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	infos := make([]models.OrgConnection, 0, len(conns))
	for _, c := range conns {
		infos = append(infos, c.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].OrgID < infos[j].OrgID })
	return infos
}

// AdapterTypes lists the registered catalog adapters.
func (s *Session) AdapterTypes() []catalog.AdapterInfo {
	return s.factory.ListTypes()
}

func (s *Session) connection(orgID string) (catalog.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.connections[orgID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownConnection, orgID)
	}
	return conn, nil
}

// DescribeOrgObjects lists the objects of orgID with the inferred org
// profile and the recommended selection.
func (s *Session) DescribeOrgObjects(ctx context.Context, orgID string) (*models.OrgObjects, error) {
	conn, err := s.connection(orgID)
	if err != nil {
		notify(s.notifier, SenderCatalog, models.SeverityError, "Not connected to org %s", orgID)
		return nil, err
	}

	objects, err := conn.DescribeGlobal(ctx)
	if err != nil {
		notify(s.notifier, SenderCatalog, models.SeverityError, "Failed to list objects: %s", logging.SanitizeError(err))
		return nil, err
	}

	result := ProfileOrg(orgID, objects, conn.LimitInfo())
	notify(s.notifier, SenderCatalog, models.SeverityInfo, "Found %d objects (%s org)", len(objects), result.Profile)
	return result, nil
}

// BuildSchemaForObjects starts a schema-mode batch over objectNames.
func (s *Session) BuildSchemaForObjects(ctx context.Context, orgID string, objectNames []string) (*Batch, error) {
	return s.startBatch(ctx, orgID, objectNames, models.FetchModeSchema)
}

// BuildRecipeForObjects starts a recipe-mode batch over objectNames.
func (s *Session) BuildRecipeForObjects(ctx context.Context, orgID string, objectNames []string) (*Batch, error) {
	return s.startBatch(ctx, orgID, objectNames, models.FetchModeRecipe)
}

// startBatch cancels any running batch and starts a new one. Results of the
// cancelled batch never reach the accumulator.
func (s *Session) startBatch(ctx context.Context, orgID string, objectNames []string, mode models.FetchMode) (*Batch, error) {
	prefs := s.Preferences()
	if prefs == nil {
		notify(s.notifier, SenderSchema, models.SeverityError, "Set preferences before building a %s", mode)
		return nil, apperrors.ErrPreferencesNotSet
	}

	conn, err := s.connection(orgID)
	if err != nil {
		notify(s.notifier, SenderCatalog, models.SeverityError, "Not connected to org %s", orgID)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelActiveLocked("superseded")

	batch, err := s.orchestrator.Start(ctx, conn, objectNames, mode, prefs, s.acc)
	if err != nil {
		notify(s.notifier, SenderSchema, models.SeverityError, "Failed to start batch: %v", err)
		return nil, err
	}
	s.active = batch
	return batch, nil
}

// CancelActiveBatch stops the running batch, if any.
func (s *Session) CancelActiveBatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelActiveLocked("cancelled")
}

// cancelActiveLocked cancels the active batch and forgets it. A batch that
// was still running is logged with how far it got. Must be called with s.mu
// held.
func (s *Session) cancelActiveLocked(reason string) {
	if s.active == nil {
		return
	}
	b := s.active
	s.active = nil
	running := b.State() == models.BatchRunning
	b.Cancel()
	if !running {
		return
	}
	succeeded, failed, total := b.Summary()
	s.logger.Info("Stopped running batch",
		zap.String("batch_id", b.ID.String()),
		zap.String("reason", reason),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
		zap.Int("total", total))
}

// SchemaDocument returns the accumulated columns.
func (s *Session) SchemaDocument() models.SchemaDocument {
	return s.acc.SchemaDocument()
}

// SerializeSchema renders the accumulated columns as a JSON document.
func (s *Session) SerializeSchema() ([]byte, error) {
	data, err := EncodeSchemaDocument(s.acc.SchemaDocument())
	if err != nil {
		notify(s.notifier, SenderSchema, models.SeverityError, "Failed to serialize schema: %v", err)
		return nil, err
	}
	return data, nil
}

// SerializeRecipe renders the accumulated generation rules as a recipe.
func (s *Session) SerializeRecipe(selections []RecipeSelection) ([]byte, error) {
	data, err := EncodeRecipe(s.acc.RecipeDocument(), selections, s.cfg.RecipeDefaultCount)
	if err != nil {
		notify(s.notifier, SenderRecipe, models.SeverityError, "Failed to build recipe: %v", err)
		return nil, err
	}
	return data, nil
}

// LoadSchemaFromDocument replaces the accumulator contents with a validated
// document. Any running batch is cancelled. An invalid document leaves the
// accumulator untouched.
func (s *Session) LoadSchemaFromDocument(data []byte) (models.SchemaDocument, error) {
	doc, err := DecodeSchemaDocument(data)
	if err != nil {
		notify(s.notifier, SenderFile, models.SeverityError, "Schema document rejected: %v", err)
		return nil, err
	}

	s.mu.Lock()
	s.cancelActiveLocked("schema loaded")
	s.acc.Load(doc)
	s.mu.Unlock()

	notify(s.notifier, SenderFile, models.SeveritySuccess, "Loaded schema with %d objects", len(doc))
	return doc, nil
}

// SaveSchema writes the serialized schema to path, adding ".json" when the
// path has no such suffix. It returns the path written.
func (s *Session) SaveSchema(path string) (string, error) {
	path = withSuffix(path, ".json")
	data, err := s.SerializeSchema()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		notify(s.notifier, SenderSave, models.SeverityError, "Failed to save schema to %s: %v", path, err)
		return "", fmt.Errorf("save schema: %w", err)
	}
	notify(s.notifier, SenderSave, models.SeveritySuccess, "Schema saved to %s", path)
	return path, nil
}

// LoadSchema reads a schema document from path.
func (s *Session) LoadSchema(path string) (models.SchemaDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		notify(s.notifier, SenderFile, models.SeverityError, "Failed to read %s: %v", path, err)
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return s.LoadSchemaFromDocument(data)
}

// SaveRecipe writes the recipe for selections to path, adding ".yml" when
// the path has no YAML suffix.
func (s *Session) SaveRecipe(path string, selections []RecipeSelection) (string, error) {
	path = withSuffix(path, ".yml", ".yaml")
	data, err := s.SerializeRecipe(selections)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		notify(s.notifier, SenderSave, models.SeverityError, "Failed to save recipe to %s: %v", path, err)
		return "", fmt.Errorf("save recipe: %w", err)
	}
	notify(s.notifier, SenderSave, models.SeveritySuccess, "Recipe saved to %s", path)
	return path, nil
}

// WriteMigration renders the accumulated schema for dialect (the configured
// dialect when empty) and writes it as the next migration called name.
func (s *Session) WriteMigration(dialect, name string) (migration.Files, error) {
	if dialect == "" {
		dialect = s.cfg.MigrationDialect
	}
	d, err := migration.DialectFor(dialect)
	if err != nil {
		notify(s.notifier, SenderMigration, models.SeverityError, "%v", err)
		return migration.Files{}, err
	}

	doc := s.acc.SchemaDocument()
	if len(doc) == 0 {
		notify(s.notifier, SenderMigration, models.SeverityWarning, "No schema to migrate")
		return migration.Files{}, fmt.Errorf("no schema loaded: %w", apperrors.ErrNotFound)
	}

	script, err := migration.Render(doc, d, migration.Options{PluralizeTables: s.cfg.PluralizeTables})
	if err != nil {
		notify(s.notifier, SenderMigration, models.SeverityError, "Failed to render migration: %v", err)
		return migration.Files{}, err
	}

	files, err := s.migrations.Write(name, script)
	if err != nil {
		notify(s.notifier, SenderMigration, models.SeverityError, "Failed to write migration: %v", err)
		return migration.Files{}, err
	}
	notify(s.notifier, SenderMigration, models.SeveritySuccess, "Wrote migration %s", files.Up)
	return files, nil
}

// Close cancels the running batch and closes every connection.
func (s *Session) Close() error {
	s.mu.Lock()
	s.cancelActiveLocked("closing")
	conns := s.connections
	s.connections = make(map[string]catalog.Connection)
	s.mu.Unlock()

	var errs []error
	for orgID, conn := range conns {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", orgID, err))
		}
	}
	return errors.Join(errs...)
}

// withSuffix appends suffix unless the path's extension already matches it
// or one of the alternates, ignoring case.
func withSuffix(path, suffix string, alternates ...string) string {
	ext := filepath.Ext(path)
	for _, candidate := range append([]string{suffix}, alternates...) {
		if strings.EqualFold(ext, candidate) {
			return path
		}
	}
	return path + suffix
}
