package assessment

import (
	"context"
	"errors"

	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
)

// Source records where an input came from.
type Source string

const (
	SourceProvided    Source = "provided"
	SourceMissing     Source = "missing"
	SourceFailed      Source = "failed"
	SourceForward     Source = "forward"
	SourceReverse     Source = "reverse"
	SourceArchive     Source = "archive"
	SourceArchiveNone Source = "archive_empty"
	SourceTable       Source = "table"
	SourceDistrict    Source = "table_district"
)

// Sources reports how each auto-fillable input was obtained.
type Sources struct {
	Location    Source `json:"location"`
	Rainfall    Source `json:"rainfall"`
	Groundwater Source `json:"groundwater"`
}

// enrichLocation fills whichever of coordinates or location text is missing.
// The district from a reverse lookup is returned for groundwater fallback.
func (s *Service) enrichLocation(ctx context.Context, id domain.Identity) (domain.Identity, string, Source) {
	hasCoords := id.Location != nil
	hasText := id.LocationText != ""

	switch {
	case hasCoords && hasText:
		return id, "", SourceProvided
	case s.geocoder == nil:
		if hasCoords || hasText {
			return id, "", SourceProvided
		}
		return id, "", SourceMissing

	// Forward geocode: location text → coordinates.
	case !hasCoords && hasText:
		coords, err := s.geocoder.Search(ctx, id.LocationText)
		if err != nil {
			s.logger.Warn("forward geocoding failed", "location", id.LocationText, "error", err)
			return id, "", SourceFailed
		}
		id.Location = &coords
		return id, "", SourceForward

	// Reverse geocode: coordinates → location text.
	case hasCoords:
		addr, err := s.geocoder.Reverse(ctx, id.Location.Lat, id.Location.Lon)
		if err != nil {
			s.logger.Warn("reverse geocoding failed", "lat", id.Location.Lat, "lon", id.Location.Lon, "error", err)
			return id, "", SourceFailed
		}
		id.LocationText = addr.Text()
		return id, addr.District, SourceReverse
	}
	return id, "", SourceMissing
}

// enrichRainfall fetches archive rainfall when none was submitted.
func (s *Service) enrichRainfall(ctx context.Context, raw domain.RawRainfall, loc *domain.Coordinates) (domain.RawRainfall, Source) {
	if raw.Value != nil {
		return raw, SourceProvided
	}
	if s.archive == nil || loc == nil {
		return raw, SourceMissing
	}

	fetched, err := s.Rainfall(ctx, loc.Lat, loc.Lon)
	if err != nil {
		s.logger.Warn("rainfall archive failed", "lat", loc.Lat, "lon", loc.Lon, "error", err)
		return raw, SourceFailed
	}
	if fetched.Value == nil {
		return raw, SourceArchiveNone
	}
	return fetched, SourceArchive
}

// enrichGroundwater looks up depth to water when none was submitted, by
// latitude first and district second.
func (s *Service) enrichGroundwater(depth domain.Depth, loc *domain.Coordinates, district string) (domain.Depth, Source) {
	if depth.Known() {
		return depth, SourceProvided
	}
	if s.groundwater == nil {
		return depth, SourceMissing
	}

	if loc != nil {
		rec, err := s.groundwater.Lookup(loc.Lat)
		if err == nil && rec.Depth.Known() {
			return rec.Depth, SourceTable
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("groundwater lookup failed", "lat", loc.Lat, "error", err)
		}
	}
	if district != "" {
		rec, err := s.groundwater.LookupDistrict(district)
		if err == nil && rec.Depth.Known() {
			return rec.Depth, SourceDistrict
		}
	}
	return depth, SourceMissing
}
