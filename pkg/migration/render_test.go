package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/schemaforge/pkg/models"
)

func contactDocument() models.SchemaDocument {
	return models.SchemaDocument{
		"Contact": {
			"Id":        {Name: "Id", Type: models.ColumnReference, Size: 18},
			"LastName":  {Name: "LastName", Type: models.ColumnString, Size: 80},
			"AccountId": {Name: "AccountId", Type: models.ColumnReference, Size: 18, Target: []string{"Account"}, Index: true},
			"LeadSource": {
				Name: "LeadSource", Type: models.ColumnEnum,
				Values: []string{"Web", "Partner's", ""}, Index: true,
			},
			"DoNotCall":   {Name: "DoNotCall", Type: models.ColumnBoolean, HasDefault: true, Default: false},
			"Description": {Name: "Description", Type: models.ColumnText},
			"Amount__c":   {Name: "Amount__c", Type: models.ColumnDecimal, Precision: 18, Scale: 2},
		},
	}
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("Postgres")
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, d.Name())

	d, err = DialectFor("sqlserver")
	require.NoError(t, err)
	assert.Equal(t, DialectSQLServer, d.Name())

	_, err = DialectFor("oracle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres, sqlserver")
}

func TestRender_Postgres(t *testing.T) {
	d, _ := DialectFor(DialectPostgres)

	script, err := Render(contactDocument(), d, Options{})
	require.NoError(t, err)

	lines := strings.Split(script.Up, "\n")
	assert.Equal(t, `CREATE TABLE "Contact" (`, lines[0])
	assert.Equal(t, `    "Id" char(18) PRIMARY KEY,`, lines[1])
	assert.Equal(t, `    "AccountId" char(18),`, lines[2])
	assert.Equal(t, `    "Amount__c" numeric(18,2),`, lines[3])
	assert.Equal(t, `    "Description" text,`, lines[4])
	assert.Equal(t, `    "DoNotCall" boolean DEFAULT FALSE,`, lines[5])
	assert.Equal(t, `    "LastName" varchar(80),`, lines[6])
	assert.Equal(t, `    "LeadSource" text CHECK ("LeadSource" IN ('Web', 'Partner''s', ''))`, lines[7])
	assert.Equal(t, `);`, lines[8])
	assert.Contains(t, script.Up, `CREATE INDEX "idx_contact_accountid" ON "Contact" ("AccountId");`)
	assert.Contains(t, script.Up, `CREATE INDEX "idx_contact_leadsource" ON "Contact" ("LeadSource");`)

	assert.Equal(t, "DROP TABLE IF EXISTS \"Contact\";\n", script.Down)
}

func TestRender_SQLServer(t *testing.T) {
	d, _ := DialectFor(DialectSQLServer)

	script, err := Render(contactDocument(), d, Options{})
	require.NoError(t, err)

	assert.Contains(t, script.Up, "CREATE TABLE [Contact] (")
	assert.Contains(t, script.Up, "[Id] nchar(18) PRIMARY KEY,")
	assert.Contains(t, script.Up, "[DoNotCall] bit DEFAULT 0,")
	assert.Contains(t, script.Up, "[LastName] nvarchar(80),")
	assert.Contains(t, script.Up, "[Description] nvarchar(max),")
	assert.Contains(t, script.Up, "[Amount__c] decimal(18,2),")
	assert.Contains(t, script.Down, "DROP TABLE [Contact];")
}

func TestRender_TableOrderAndPluralize(t *testing.T) {
	doc := models.SchemaDocument{
		"Opportunity": {"Id": {Name: "Id", Type: models.ColumnReference, Size: 18}},
		"Account":     {"Id": {Name: "Id", Type: models.ColumnReference, Size: 18}},
	}
	d, _ := DialectFor(DialectPostgres)

	script, err := Render(doc, d, Options{PluralizeTables: true})
	require.NoError(t, err)

	assert.Less(t, strings.Index(script.Up, `"Accounts"`), strings.Index(script.Up, `"Opportunities"`))
	assert.Equal(t, "DROP TABLE IF EXISTS \"Opportunities\";\nDROP TABLE IF EXISTS \"Accounts\";\n", script.Down)
}

func TestRender_Errors(t *testing.T) {
	d, _ := DialectFor(DialectPostgres)

	_, err := Render(models.SchemaDocument{}, d, Options{})
	assert.Error(t, err)

	_, err = Render(models.SchemaDocument{"Empty": {}}, d, Options{})
	assert.ErrorContains(t, err, "object Empty")

	_, err = Render(models.SchemaDocument{
		"Odd": {"X": {Name: "X", Type: models.ColumnString, HasDefault: true, Default: []string{"a"}}},
	}, d, Options{})
	assert.ErrorContains(t, err, "unsupported default value")
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		dialect string
		in      string
		want    string
	}{
		{DialectPostgres, "Account", `"Account"`},
		{DialectPostgres, `we"ird`, `"we""ird"`},
		{DialectSQLServer, "Account", "[Account]"},
		{DialectSQLServer, "we]ird", "[we]]ird]"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.in, func(t *testing.T) {
			d, err := DialectFor(tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.QuoteIdentifier(tt.in))
		})
	}
}

func TestOrderedColumns(t *testing.T) {
	cols := map[string]models.ColumnDescriptor{"b": {}, "Id": {}, "A": {}}
	assert.Equal(t, []string{"Id", "A", "b"}, orderedColumns(cols))
}
