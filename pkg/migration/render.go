package migration

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/ekaya-inc/schemaforge/pkg/models"
)

// Options controls table naming.
type Options struct {
	// PluralizeTables names each table after the plural of its object.
	PluralizeTables bool
}

// Script is the pair of statements for one migration.
type Script struct {
	Up   string
	Down string
}

// TableName returns the table name used for object.
func TableName(object string, opts Options) string {
	if opts.PluralizeTables {
		return inflection.Plural(object)
	}
	return object
}

// Render builds a migration creating one table per object in doc. Tables
// are created in object name order and dropped in reverse.
func Render(doc models.SchemaDocument, d Dialect, opts Options) (Script, error) {
	if len(doc) == 0 {
		return Script{}, fmt.Errorf("schema document has no objects")
	}

	objects := make([]string, 0, len(doc))
	for name := range doc {
		objects = append(objects, name)
	}
	sort.Strings(objects)

	var up strings.Builder
	tables := make([]string, 0, len(objects))
	for i, object := range objects {
		table := TableName(object, opts)
		tables = append(tables, table)
		if i > 0 {
			up.WriteString("\n")
		}
		if err := writeTable(&up, d, table, doc[object]); err != nil {
			return Script{}, fmt.Errorf("object %s: %w", object, err)
		}
	}

	var down strings.Builder
	for i := len(tables) - 1; i >= 0; i-- {
		down.WriteString(d.DropTable(tables[i]))
		down.WriteString("\n")
	}

	return Script{Up: up.String(), Down: down.String()}, nil
}

// orderedColumns returns the column names with Id first and the rest sorted.
func orderedColumns(cols map[string]models.ColumnDescriptor) []string {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if (names[i] == "Id") != (names[j] == "Id") {
			return names[i] == "Id"
		}
		return names[i] < names[j]
	})
	return names
}

func writeTable(b *strings.Builder, d Dialect, table string, cols map[string]models.ColumnDescriptor) error {
	if len(cols) == 0 {
		return fmt.Errorf("no columns")
	}

	names := orderedColumns(cols)
	lines := make([]string, 0, len(names))
	var indexed []string

	for _, name := range names {
		col := cols[name]
		def, err := columnDefinition(d, col)
		if err != nil {
			return fmt.Errorf("column %s: %w", name, err)
		}
		lines = append(lines, "    "+def)
		if col.Index && name != "Id" {
			indexed = append(indexed, name)
		}
	}

	fmt.Fprintf(b, "CREATE TABLE %s (\n%s\n);\n", d.QuoteIdentifier(table), strings.Join(lines, ",\n"))

	for _, name := range indexed {
		index := strings.ToLower("idx_" + table + "_" + name)
		fmt.Fprintf(b, "CREATE INDEX %s ON %s (%s);\n",
			d.QuoteIdentifier(index), d.QuoteIdentifier(table), d.QuoteIdentifier(name))
	}
	return nil
}

func columnDefinition(d Dialect, col models.ColumnDescriptor) (string, error) {
	quoted := d.QuoteIdentifier(col.Name)
	parts := []string{quoted, d.ColumnType(col)}

	if col.Name == "Id" {
		parts = append(parts, "PRIMARY KEY")
	}

	if col.HasDefault && col.Default != nil {
		lit, err := literal(d, col.Default)
		if err != nil {
			return "", err
		}
		parts = append(parts, "DEFAULT "+lit)
	}

	if col.Type == models.ColumnEnum && len(col.Values) > 0 {
		quotedValues := make([]string, len(col.Values))
		for i, v := range col.Values {
			quotedValues[i] = "'" + escapeStringLiteral(v) + "'"
		}
		parts = append(parts, fmt.Sprintf("CHECK (%s IN (%s))", quoted, strings.Join(quotedValues, ", ")))
	}

	return strings.Join(parts, " "), nil
}

func literal(d Dialect, v any) (string, error) {
	switch val := v.(type) {
	case string:
		return "'" + escapeStringLiteral(val) + "'", nil
	case bool:
		return d.BoolLiteral(val), nil
	case float64:
		return fmt.Sprintf("%g", val), nil
	case float32, int, int32, int64:
		return fmt.Sprintf("%v", val), nil
	default:
		return "", fmt.Errorf("unsupported default value %T", v)
	}
}
