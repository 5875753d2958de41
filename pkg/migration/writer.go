package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/golang-migrate/migrate/v4/source"
	"go.uber.org/zap"
)

// Files are the paths of one written migration.
type Files struct {
	Version uint   `json:"version"`
	Up      string `json:"up"`
	Down    string `json:"down"`
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

// Writer writes migrations into a directory using golang-migrate's
// NNNN_name.up.sql / NNNN_name.down.sql naming.
type Writer struct {
	dir    string
	logger *zap.Logger
}

// NewWriter creates a writer for dir. The directory is created on the first
// write.
func NewWriter(dir string, logger *zap.Logger) *Writer {
	return &Writer{dir: dir, logger: logger.Named("migration")}
}

// Dir returns the migrations directory.
func (w *Writer) Dir() string {
	return w.dir
}

// NextVersion returns one past the highest version already in the directory.
func (w *Writer) NextVersion() (uint, error) {
	entries, err := os.ReadDir(w.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read migrations directory: %w", err)
	}

	var highest uint
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m, err := source.Parse(entry.Name())
		if err != nil {
			continue
		}
		if m.Version > highest {
			highest = m.Version
		}
	}
	return highest + 1, nil
}

// Write stores script as the next migration called name.
func (w *Writer) Write(name string, script Script) (Files, error) {
	slug := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return Files{}, fmt.Errorf("migration name %q has no usable characters", name)
	}

	version, err := w.NextVersion()
	if err != nil {
		return Files{}, err
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("create migrations directory: %w", err)
	}

	base := fmt.Sprintf("%04d_%s", version, slug)
	files := Files{
		Version: version,
		Up:      filepath.Join(w.dir, base+".up.sql"),
		Down:    filepath.Join(w.dir, base+".down.sql"),
	}

	if err := os.WriteFile(files.Up, []byte(script.Up), 0o644); err != nil {
		return Files{}, fmt.Errorf("write %s: %w", files.Up, err)
	}
	if err := os.WriteFile(files.Down, []byte(script.Down), 0o644); err != nil {
		return Files{}, fmt.Errorf("write %s: %w", files.Down, err)
	}

	w.logger.Info("Wrote migration",
		zap.Uint("version", version),
		zap.String("up", files.Up),
		zap.String("down", files.Down))
	return files, nil
}
