package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/schemaforge/pkg/models"
)

// PreferencesStore persists translation preferences as YAML.
type PreferencesStore interface {
	Load() (*models.Preferences, error)
	Save(prefs *models.Preferences) error
	Path() string
}

type preferencesStore struct {
	path   string
	logger *zap.Logger
}

// NewPreferencesStore creates a store backed by the file at path.
func NewPreferencesStore(path string, logger *zap.Logger) PreferencesStore {
	return &preferencesStore{
		path:   path,
		logger: logger.Named("preferences"),
	}
}

func (s *preferencesStore) Path() string {
	return s.path
}

// Load reads the stored preferences. Keys missing from the file keep their
// default values; a missing file yields the defaults.
func (s *preferencesStore) Load() (*models.Preferences, error) {
	prefs := models.NewDefaultPreferences()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("no stored preferences, using defaults", zap.String("path", s.path))
		return &prefs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}

	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("parse preferences %s: %w", s.path, err)
	}
	if err := prefs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid preferences %s: %w", s.path, err)
	}
	return &prefs, nil
}

func (s *preferencesStore) Save(prefs *models.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create preferences directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}

	s.logger.Info("Saved preferences", zap.String("path", s.path))
	return nil
}
