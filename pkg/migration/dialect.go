// Package migration renders schema documents into SQL migrations laid out
// for golang-migrate.
package migration

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ekaya-inc/schemaforge/pkg/models"
)

// Dialect renders column types and identifiers for one SQL database.
type Dialect interface {
	// Name returns the dialect identifier used in configuration.
	Name() string

	// QuoteIdentifier quotes a table, column or index name.
	QuoteIdentifier(name string) string

	// ColumnType returns the SQL type for col.
	ColumnType(col models.ColumnDescriptor) string

	// BoolLiteral renders a boolean default.
	BoolLiteral(v bool) string

	// DropTable returns a statement dropping table if it exists.
	DropTable(table string) string
}

// Supported dialect names.
const (
	DialectPostgres  = "postgres"
	DialectSQLServer = "sqlserver"
)

var dialects = map[string]Dialect{
	DialectPostgres:  postgresDialect{},
	DialectSQLServer: sqlServerDialect{},
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported migration dialect %q (want one of %s)", name, strings.Join(Dialects(), ", "))
	}
	return d, nil
}

// Dialects returns the supported dialect names sorted.
func Dialects() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// escapeStringLiteral doubles single quotes for use inside '...'.
func escapeStringLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func sizeOr(size, fallback int) int {
	if size > 0 {
		return size
	}
	return fallback
}
