// Package catalog defines the connection to a remote metadata catalog and the
// registry of adapters that can open one.
package catalog

import (
	"context"

	"github.com/ekaya-inc/schemaforge/pkg/models"
)

// Connection is an authenticated session against one org's metadata catalog.
// Implementations must be safe for concurrent Describe calls.
type Connection interface {
	// OrgID returns the identifier of the connected org.
	OrgID() string

	// Info describes the connection without secrets.
	Info() models.OrgConnection

	// DescribeGlobal lists every object in the org.
	DescribeGlobal(ctx context.Context) ([]models.GlobalObject, error)

	// Describe returns the fields and child relationships of one object.
	Describe(ctx context.Context, objectName string) (*models.ObjectDescribe, error)

	// LimitInfo returns the API usage reported by the most recent response,
	// or nil if the catalog does not report limits.
	LimitInfo() *models.LimitInfo

	// Close ends the session.
	Close() error
}
