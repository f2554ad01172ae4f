package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Report(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-name", "Asha Rao", "-location", "Indiranagar",
		"-roof", "100", "-open-space", "50", "-dwellers", "4",
		"-rainfall", "1000", "-rainfall-unit", "annual", "-depth", "8", "-soil", "Loamy Soil",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var report struct {
		FullName string `json:"full_name"`
		Runoff   struct {
			AnnualM3 float64 `json:"annual_m3"`
		} `json:"runoff"`
		Suitability struct {
			Value int `json:"value"`
		} `json:"suitability"`
		SuitabilityBand string `json:"suitability_band"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, "Asha Rao", report.FullName)
	assert.InDelta(t, 85.0, report.Runoff.AnnualM3, 1e-9)
	assert.Equal(t, 85, report.Suitability.Value)
	assert.Equal(t, "good", report.SuitabilityBand)
}

func TestRun_ResultsWithoutName(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-roof", "100", "-dwellers", "4"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var results map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &results))
	assert.Contains(t, results, "runoff")
	assert.NotContains(t, results, "full_name")
}

func TestRun_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad rainfall", []string{"-rainfall", "lots"}},
		{"bad unit", []string{"-rainfall", "10", "-rainfall-unit", "weekly"}},
		{"bad depth", []string{"-depth", "deep"}},
		{"bad soil", []string{"-soil", "Moon Dust"}},
		{"unknown flag", []string{"-colour", "blue"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, 2, run(tt.args, &stdout, &stderr))
			assert.Empty(t, stdout.String())
			assert.NotEmpty(t, stderr.String())
		})
	}
}
