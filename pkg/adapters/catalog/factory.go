package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/apperrors"
)

// ConnectionFactory opens catalog connections by adapter type.
type ConnectionFactory interface {
	// NewConnection opens a connection using the adapter registered for
	// adapterType.
	NewConnection(ctx context.Context, adapterType string, config map[string]any) (Connection, error)

	// ListTypes returns info for all registered adapter types.
	ListTypes() []AdapterInfo
}

type registryFactory struct {
	logger *zap.Logger
}

// NewConnectionFactory returns a factory backed by the global registry.
func NewConnectionFactory(logger *zap.Logger) ConnectionFactory {
	return &registryFactory{logger: logger}
}

func (f *registryFactory) NewConnection(ctx context.Context, adapterType string, config map[string]any) (Connection, error) {
	factory := GetFactory(adapterType)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedAdapter, adapterType)
	}
	return factory(ctx, config, f.logger)
}

func (f *registryFactory) ListTypes() []AdapterInfo {
	return RegisteredAdapters()
}

var _ ConnectionFactory = (*registryFactory)(nil)
