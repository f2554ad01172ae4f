package http

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/rainwater-estimator-service/internal/assessment"
	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type rainfallResponse struct {
	Raw       domain.RawRainfall       `json:"raw"`
	Canonical domain.CanonicalRainfall `json:"canonical"`
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	out, ok := s.assess(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.deps.Renderer == nil {
		s.writeError(w, assessment.ErrNotConfigured)
		return
	}
	out, ok := s.assess(w, r)
	if !ok {
		return
	}

	data, err := s.deps.Renderer.Render(*out.Report)
	if err != nil {
		s.logger.Error("render report failed", "report_id", out.Report.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "render report failed"})
		return
	}
	w.Header().Set("Content-Type", s.deps.Renderer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rwh-report-%s.xlsx"`, out.Report.ID))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // client may have gone away
}

// assess decodes the request and runs it. On failure the response has
// already been written.
func (s *Server) assess(w http.ResponseWriter, r *http.Request) (assessment.Outcome, bool) {
	var req assessment.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return assessment.Outcome{}, false
	}
	out, err := s.deps.Assessor.Assess(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return out, false
	}
	return out, true
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "q is required"})
		return
	}
	coords, err := s.deps.Assessor.Search(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coords)
}

func (s *Server) handleReverse(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseLatLon(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	addr, err := s.deps.Assessor.Reverse(r.Context(), lat, lon)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		domain.Address
		Text string `json:"text"`
	}{addr, addr.Text()})
}

func (s *Server) handleRainfall(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseLatLon(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	raw, err := s.deps.Assessor.Rainfall(r.Context(), lat, lon)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rainfallResponse{Raw: raw, Canonical: domain.NormalizeRainfall(raw)})
}

func (s *Server) handleGroundwater(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var (
		rec domain.GroundwaterRecord
		err error
	)
	switch {
	case query.Get("lat") != "":
		lat, perr := parseCoord(query.Get("lat"), "lat", 90)
		if perr != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: perr.Error()})
			return
		}
		rec, err = s.deps.Assessor.GroundwaterByLatitude(lat)
	case strings.TrimSpace(query.Get("district")) != "":
		rec, err = s.deps.Assessor.GroundwaterByDistrict(query.Get("district"))
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "lat or district is required"})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// writeError maps service errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var missing *domain.MissingDataError
	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Field: missing.Field})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		s.logger.Warn("upstream request failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	case errors.Is(err, assessment.ErrNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func parseLatLon(r *http.Request) (float64, float64, error) {
	q := r.URL.Query()
	lat, err := parseCoord(q.Get("lat"), "lat", 90)
	if err != nil {
		return 0, 0, err
	}
	lon, err := parseCoord(q.Get("lon"), "lon", 180)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

func parseCoord(raw, name string, limit float64) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < -limit || v > limit {
		return 0, fmt.Errorf("%s must be a number between %g and %g", name, -limit, limit)
	}
	return v, nil
}
