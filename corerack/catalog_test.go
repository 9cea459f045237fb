package corerack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Registry_registerAndCreate(t *testing.T) {
	r := NewRegistry()
	err := r.Register(CatalogEntry{TypeID: "vco", Name: "VCO", Category: "Oscillators"}, newVCO)
	require.NoError(t, err)
	assert.True(t, r.Has("vco"))

	m, err := r.Create("vco", 44100)
	require.NoError(t, err)
	assert.NotNil(t, m)

	_, err = r.Create("nope", 44100)
	var unknown *ErrUnknownType
	assert.ErrorAs(t, err, &unknown)
}

func Test_Registry_duplicateRegistrationFails(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(CatalogEntry{TypeID: "vco"}, newVCO))
	err := r.Register(CatalogEntry{TypeID: "vco"}, newVCO)
	var dup *ErrNameInUse
	assert.ErrorAs(t, err, &dup)
}

func Test_RegisterBuiltins_registersAllTenTypes(t *testing.T) {
	r := newTestRegistry()
	for _, typeID := range []string{
		"vco", "lfo", "noise", "vca", "mixer", "svf", "adsr",
		"unit_delay", "external_input", "stereo_output",
	} {
		assert.True(t, r.Has(typeID), "expected %s to be registered", typeID)
	}
}

func Test_Catalog_groupsByFirstSeenCategoryOrder(t *testing.T) {
	r := newTestRegistry()
	resp := r.Catalog()
	assert.Equal(t, []string{"Oscillators", "Amplifiers", "Filters", "Modulators", "Utility"}, resp.Categories)
	assert.Len(t, resp.Modules, 10)
}

func Test_Search_exactTypeIDScoresHighest(t *testing.T) {
	r := newTestRegistry()
	hits := r.Search("vco")
	require.NotEmpty(t, hits)
	assert.Equal(t, "vco", hits[0].TypeID)
}

func Test_Search_keywordMatch(t *testing.T) {
	r := newTestRegistry()
	hits := r.Search("feedback")
	require.NotEmpty(t, hits)
	assert.Equal(t, "unit_delay", hits[0].TypeID)
}

func Test_Search_noMatchReturnsEmpty(t *testing.T) {
	r := newTestRegistry()
	hits := r.Search("zzz_no_such_module")
	assert.Empty(t, hits)
}

func Test_ByCategory(t *testing.T) {
	r := newTestRegistry()
	entries := r.ByCategory("Utility")
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.TypeID)
	}
	assert.Equal(t, []string{"unit_delay", "external_input", "stereo_output"}, ids)
}
