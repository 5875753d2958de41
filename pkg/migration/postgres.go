package migration

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/schemaforge/pkg/models"
)

type postgresDialect struct{}

func (postgresDialect) Name() string { return DialectPostgres }

func (postgresDialect) QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (postgresDialect) ColumnType(col models.ColumnDescriptor) string {
	switch col.Type {
	case models.ColumnString:
		return fmt.Sprintf("varchar(%d)", sizeOr(col.Size, 255))
	case models.ColumnBinary:
		return "bytea"
	case models.ColumnBoolean:
		return "boolean"
	case models.ColumnInteger:
		return "integer"
	case models.ColumnBigInteger:
		return "bigint"
	case models.ColumnDate:
		return "date"
	case models.ColumnDateTime:
		return "timestamp"
	case models.ColumnDecimal:
		if col.Precision > 0 {
			return fmt.Sprintf("numeric(%d,%d)", col.Precision, col.Scale)
		}
		return "numeric"
	case models.ColumnFloat:
		return "double precision"
	case models.ColumnTime:
		return "time"
	case models.ColumnReference:
		return fmt.Sprintf("char(%d)", sizeOr(col.Size, 18))
	default:
		return "text"
	}
}

func (postgresDialect) BoolLiteral(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

func (d postgresDialect) DropTable(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", d.QuoteIdentifier(table))
}
