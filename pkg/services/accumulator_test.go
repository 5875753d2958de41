package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/schemaforge/pkg/models"
)

func TestAccumulator_DropsStaleBatches(t *testing.T) {
	acc := NewAccumulator()
	first, second := uuid.New(), uuid.New()

	acc.Reset(first, models.FetchModeSchema)
	assert.True(t, acc.Put(first, &models.ObjectSchema{Name: "Account", Columns: map[string]models.ColumnDescriptor{}}))

	acc.Reset(second, models.FetchModeRecipe)
	assert.Equal(t, 0, acc.Len(), "reset clears entries")
	assert.False(t, acc.Put(first, &models.ObjectSchema{Name: "Contact"}))
	assert.True(t, acc.Put(second, &models.ObjectSchema{Name: "Lead", Rules: map[string]models.GenerationRule{}}))

	assert.Equal(t, []string{"Lead"}, acc.Names())
	assert.Equal(t, second, acc.BatchID())
	assert.Equal(t, models.FetchModeRecipe, acc.Mode())
}

func TestAccumulator_Documents(t *testing.T) {
	acc := NewAccumulator()
	id := uuid.New()
	acc.Reset(id, models.FetchModeSchema)
	acc.Put(id, &models.ObjectSchema{
		Name:    "Account",
		Columns: map[string]models.ColumnDescriptor{"Name": {Name: "Name", Type: models.ColumnString, Size: 255}},
	})
	acc.Put(id, &models.ObjectSchema{
		Name:  "Contact",
		Rules: map[string]models.GenerationRule{"FirstName": {Field: "FirstName", Kind: models.RuleLiteral}},
	})

	schema := acc.SchemaDocument()
	require.Len(t, schema, 1)
	assert.Equal(t, 255, schema["Account"]["Name"].Size)

	// Copies are detached from the stored entries.
	schema["Account"]["Name"] = models.ColumnDescriptor{Name: "Name", Type: models.ColumnText}
	got, ok := acc.Get("Account")
	require.True(t, ok)
	assert.Equal(t, models.ColumnString, got.Columns["Name"].Type)

	recipe := acc.RecipeDocument()
	require.Len(t, recipe, 1)
	assert.Contains(t, recipe["Contact"], "FirstName")
}

func TestAccumulator_Load(t *testing.T) {
	acc := NewAccumulator()
	running := uuid.New()
	acc.Reset(running, models.FetchModeRecipe)

	acc.Load(models.SchemaDocument{
		"Account": {"Id": {Name: "Id", Type: models.ColumnReference, Size: 18}},
	})

	assert.NotEqual(t, running, acc.BatchID())
	assert.Equal(t, models.FetchModeSchema, acc.Mode())
	assert.False(t, acc.Put(running, &models.ObjectSchema{Name: "Late"}), "in-flight batch is superseded")
	assert.Equal(t, []string{"Account"}, acc.Names())
}
