// Package file implements an offline catalog connection that reads saved
// describe results from a directory. The directory holds global.json with
// the describeGlobal reply and one <Object>.json per described object.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/adapters/catalog"
	"github.com/ekaya-inc/schemaforge/pkg/apperrors"
	"github.com/ekaya-inc/schemaforge/pkg/models"
)

// AdapterType is the registry key for this adapter.
const AdapterType = "file"

// GlobalFile is the name of the object listing inside the directory.
const GlobalFile = "global.json"

// Config contains the offline catalog options.
type Config struct {
	Dir   string
	OrgID string
}

// FromMap creates a Config from a generic config map.
func FromMap(config map[string]any) (*Config, error) {
	cfg := &Config{
		Dir:   catalog.StringValue(config, "dir"),
		OrgID: catalog.StringValue(config, "org_id"),
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	if cfg.OrgID == "" {
		cfg.OrgID = "file:" + filepath.Base(filepath.Clean(cfg.Dir))
	}
	return cfg, nil
}

// Adapter serves describe results from disk.
type Adapter struct {
	cfg    *Config
	logger *zap.Logger
}

// NewAdapter checks that the directory exists.
func NewAdapter(cfg *Config, logger *zap.Logger) (*Adapter, error) {
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("open catalog directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open catalog directory: %s is not a directory", cfg.Dir)
	}
	return &Adapter{cfg: cfg, logger: logger.Named("file-catalog")}, nil
}

func (a *Adapter) OrgID() string { return a.cfg.OrgID }

func (a *Adapter) Info() models.OrgConnection {
	return models.OrgConnection{OrgID: a.cfg.OrgID, Adapter: AdapterType}
}

// DescribeGlobal reads global.json. Both the raw describeGlobal reply
// ({"sobjects": [...]}) and a bare list are accepted.
func (a *Adapter) DescribeGlobal(ctx context.Context) ([]models.GlobalObject, error) {
	data, err := a.read(GlobalFile)
	if err != nil {
		return nil, fmt.Errorf("describe global: %w", err)
	}

	var wrapped struct {
		SObjects []models.GlobalObject `json:"sobjects"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.SObjects != nil {
		return wrapped.SObjects, nil
	}
	var list []models.GlobalObject
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("describe global: parse %s: %w", GlobalFile, err)
	}
	return list, nil
}

// Describe reads <objectName>.json.
func (a *Adapter) Describe(ctx context.Context, objectName string) (*models.ObjectDescribe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if objectName == "" || strings.ContainsAny(objectName, `/\`) || objectName != filepath.Base(objectName) {
		return nil, fmt.Errorf("describe %q: invalid object name", objectName)
	}

	data, err := a.read(objectName + ".json")
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", objectName, err)
	}
	var d models.ObjectDescribe
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("describe %s: parse: %w", objectName, err)
	}
	if d.Name == "" {
		d.Name = objectName
	}
	return &d, nil
}

func (a *Adapter) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(a.cfg.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, apperrors.ErrNotFound)
	}
	return data, err
}

func (a *Adapter) LimitInfo() *models.LimitInfo { return nil }

func (a *Adapter) Close() error { return nil }

func init() {
	catalog.Register(catalog.AdapterRegistration{
		Info: catalog.AdapterInfo{
			Type:        AdapterType,
			DisplayName: "Saved describe files",
			Description: "Read describe results exported to a local directory",
		},
		Factory: func(ctx context.Context, config map[string]any, logger *zap.Logger) (catalog.Connection, error) {
			cfg, err := FromMap(config)
			if err != nil {
				return nil, err
			}
			return NewAdapter(cfg, logger)
		},
	})
}

var _ catalog.Connection = (*Adapter)(nil)
