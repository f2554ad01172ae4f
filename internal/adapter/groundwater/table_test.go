package groundwater

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadWells(t *testing.T) *Table {
	t.Helper()
	table, err := Load("testdata/wells.json")
	require.NoError(t, err)
	return table
}

func TestLoad(t *testing.T) {
	table := loadWells(t)
	assert.Equal(t, 5, table.Len())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/nope.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open groundwater table")
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"not":"an array"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode groundwater table")
}

func TestLookup(t *testing.T) {
	table := loadWells(t)

	tests := []struct {
		name      string
		lat       float64
		wantVill  string
		wantDepth float64
		known     bool
	}{
		{"exact latitude", 12.9719, "Indiranagar", 8.4, true},
		{"nearest of two candidates", 12.9700, "Whitefield", 21.3, true},
		{"WL column fallback", 18.49, "Hadapsar", 4.2, true},
		{"non-numeric level is unknown", 10.12, "Aluva", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := table.Lookup(tt.lat)
			require.NoError(t, err)
			assert.Equal(t, tt.wantVill, rec.RegionalDepth)

			d, ok := rec.Depth.Get()
			assert.Equal(t, tt.known, ok)
			assert.Equal(t, tt.wantDepth, d)
		})
	}
}

func TestLookup_OutsideTolerance(t *testing.T) {
	table := loadWells(t)

	_, err := table.Lookup(12.90)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = table.Lookup(0)
	assert.ErrorIs(t, err, domain.ErrNotFound, "rows with null latitude never match")
}

func TestLookupDistrict(t *testing.T) {
	table := loadWells(t)

	rec, err := table.LookupDistrict("  pune ")
	require.NoError(t, err)
	assert.Equal(t, "Basalt", rec.AquiferType)

	rec, err = table.LookupDistrict("NORTH GOA")
	require.NoError(t, err)
	assert.Equal(t, "Mapusa", rec.RegionalDepth)
	assert.Equal(t, 0.0, rec.Latitude)

	// Records without a latitude still serialize.
	_, err = json.Marshal(rec)
	assert.NoError(t, err)

	_, err = table.LookupDistrict("Atlantis")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = table.LookupDistrict("")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCell_Unmarshal(t *testing.T) {
	var rows []row
	require.NoError(t, json.Unmarshal([]byte(`[{"LATITUDE":" 12.5 ","WL":7,"BLOCK":null}]`), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, cell("12.5"), rows[0].Latitude)
	assert.Equal(t, cell("7"), rows[0].WL)
	assert.Equal(t, cell(""), rows[0].Block)
}
