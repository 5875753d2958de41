package salesforce

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/adapters/catalog"
)

// AdapterType is the registry key for this adapter.
const AdapterType = "salesforce"

func init() {
	catalog.Register(catalog.AdapterRegistration{
		Info: catalog.AdapterInfo{
			Type:        AdapterType,
			DisplayName: "Salesforce",
			Description: "Connect with an OAuth password login or an existing session",
		},
		Factory: func(ctx context.Context, config map[string]any, logger *zap.Logger) (catalog.Connection, error) {
			cfg, err := FromMap(config)
			if err != nil {
				return nil, err
			}
			return NewAdapter(ctx, cfg, nil, logger)
		},
	})
}
