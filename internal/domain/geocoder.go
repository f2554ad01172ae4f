package domain

import (
	"context"
	"strings"
	"time"
)

// Address holds the components returned by a reverse geocoding provider.
type Address struct {
	Road        string `json:"road,omitempty"`
	Suburb      string `json:"suburb,omitempty"`
	District    string `json:"district,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Text formats the address as the location line printed on reports,
// e.g. "MG Road Indiranagar, Bengaluru Urban, Karnataka, India".
func (a Address) Text() string {
	street := strings.TrimSpace(a.Road + " " + a.Suburb)
	var parts []string
	for _, p := range []string{street, a.District, a.State, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return a.DisplayName
	}
	return strings.Join(parts, ", ")
}

// Geocoder resolves free-text locations and coordinates.
type Geocoder interface {
	// Search converts a location string to coordinates. Returns ErrNotFound
	// when the provider has no match.
	Search(ctx context.Context, text string) (Coordinates, error)

	// Reverse converts coordinates to address components.
	Reverse(ctx context.Context, lat, lon float64) (Address, error)
}

// RainfallArchive serves historical daily precipitation totals in mm.
type RainfallArchive interface {
	FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) ([]float64, error)
}

// GroundwaterRecord is one surveyed well from the groundwater level table.
type GroundwaterRecord struct {
	Latitude      float64 `json:"latitude"`
	Depth         Depth   `json:"depth_to_water_m"`
	AquiferType   string  `json:"aquifer_type,omitempty"`
	RegionalDepth string  `json:"regional_depth,omitempty"`
	District      string  `json:"district,omitempty"`
}

// GroundwaterTable looks up surveyed water levels.
type GroundwaterTable interface {
	// Lookup returns the record nearest to lat within the table tolerance,
	// or ErrNotFound.
	Lookup(lat float64) (GroundwaterRecord, error)

	// LookupDistrict matches a district name case-insensitively.
	LookupDistrict(name string) (GroundwaterRecord, error)
}

// ReportSink hands a finished report to a downstream consumer.
type ReportSink interface {
	Publish(ctx context.Context, report AssessmentReport) error
}

// ReportRenderer turns a report into a document.
type ReportRenderer interface {
	Render(report AssessmentReport) ([]byte, error)
	ContentType() string
}
