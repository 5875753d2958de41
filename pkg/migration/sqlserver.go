package migration

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/schemaforge/pkg/models"
)

type sqlServerDialect struct{}

func (sqlServerDialect) Name() string { return DialectSQLServer }

// QuoteIdentifier matches QUOTENAME: square brackets with ] escaped as ]].
func (sqlServerDialect) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (sqlServerDialect) ColumnType(col models.ColumnDescriptor) string {
	switch col.Type {
	case models.ColumnString:
		size := sizeOr(col.Size, 255)
		if size > 4000 {
			return "nvarchar(max)"
		}
		return fmt.Sprintf("nvarchar(%d)", size)
	case models.ColumnBinary:
		return "varbinary(max)"
	case models.ColumnBoolean:
		return "bit"
	case models.ColumnInteger:
		return "int"
	case models.ColumnBigInteger:
		return "bigint"
	case models.ColumnDate:
		return "date"
	case models.ColumnDateTime:
		return "datetime2"
	case models.ColumnDecimal:
		if col.Precision > 0 {
			return fmt.Sprintf("decimal(%d,%d)", col.Precision, col.Scale)
		}
		return "decimal(18,2)"
	case models.ColumnFloat:
		return "float"
	case models.ColumnTime:
		return "time"
	case models.ColumnReference:
		return fmt.Sprintf("nchar(%d)", sizeOr(col.Size, 18))
	default:
		return "nvarchar(max)"
	}
}

func (sqlServerDialect) BoolLiteral(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func (d sqlServerDialect) DropTable(table string) string {
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL DROP TABLE %s;",
		escapeStringLiteral(d.QuoteIdentifier(table)), d.QuoteIdentifier(table))
}
