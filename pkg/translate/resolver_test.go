package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ekaya-inc/schemaforge/pkg/models"
)

func TestResolve_BaseTable(t *testing.T) {
	tests := []struct {
		sourceType string
		expected   models.ColumnType
	}{
		{"base64", models.ColumnText},
		{"boolean", models.ColumnBoolean},
		{"byte", models.ColumnBinary},
		{"combobox", models.ColumnString},
		{"currency", models.ColumnDecimal},
		{"date", models.ColumnDate},
		{"datetime", models.ColumnDateTime},
		{"double", models.ColumnDecimal},
		{"id", models.ColumnReference},
		{"int", models.ColumnInteger},
		{"long", models.ColumnBigInteger},
		{"multipicklist", models.ColumnString},
		{"picklist", models.ColumnEnum},
		{"reference", models.ColumnReference},
		{"textarea", models.ColumnText},
		{"time", models.ColumnTime},
		{"Picklist", models.ColumnEnum},
		{"address", models.ColumnText},
		{"anyType", models.ColumnText},
		{"", models.ColumnText},
	}

	prefs := models.NewDefaultPreferences()
	for _, tt := range tests {
		t.Run(tt.sourceType, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.sourceType, &prefs))
		})
	}
}

func TestResolve_Overrides(t *testing.T) {
	prefs := models.NewDefaultPreferences()
	prefs.Picklists.Type = models.PicklistAsString
	assert.Equal(t, models.ColumnString, Resolve("picklist", &prefs))
	assert.Equal(t, models.ColumnReference, Resolve("reference", &prefs))

	prefs = models.NewDefaultPreferences()
	prefs.Lookups.Type = models.LookupAsString
	assert.Equal(t, models.ColumnEnum, Resolve("picklist", &prefs))
	assert.Equal(t, models.ColumnString, Resolve("reference", &prefs))
	assert.Equal(t, models.ColumnString, Resolve("id", &prefs))
}

func TestResolve_NoLeakAcrossCalls(t *testing.T) {
	asString := models.NewDefaultPreferences()
	asString.Picklists.Type = models.PicklistAsString
	asString.Lookups.Type = models.LookupAsString
	native := models.NewDefaultPreferences()

	for name := range baseTypes {
		first := Resolve(name, &native)
		_ = Resolve(name, &asString)
		assert.Equal(t, first, Resolve(name, &native), "type %s leaked an override", name)
		assert.Equal(t, Resolve(name, &asString), Resolve(name, &asString))
	}
	assert.Equal(t, models.ColumnEnum, Resolve("picklist", &native))
	assert.Equal(t, models.ColumnReference, Resolve("reference", &native))
}

func TestIsKnownType(t *testing.T) {
	assert.True(t, IsKnownType("Currency"))
	assert.True(t, IsKnownType("reference"))
	assert.False(t, IsKnownType("location"))
	assert.False(t, IsKnownType(""))
}
