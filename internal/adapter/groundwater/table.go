// Package groundwater serves depth-to-water readings from a surveyed well
// table exported as JSON.
package groundwater

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
)

// LatitudeTolerance is the widest latitude gap, in degrees, accepted as a match.
const LatitudeTolerance = 0.05

// Table implements domain.GroundwaterTable over an in-memory record set.
type Table struct {
	entries []entry
}

type entry struct {
	record      domain.GroundwaterRecord
	hasLatitude bool
}

// Load reads a table from a JSON file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open groundwater table: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a JSON array of well records. Rows without a usable
// latitude are kept for district lookups.
func Parse(r io.Reader) (*Table, error) {
	var rows []row
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode groundwater table: %w", err)
	}

	t := &Table{entries: make([]entry, 0, len(rows))}
	for _, rw := range rows {
		t.entries = append(t.entries, rw.entry())
	}
	return t, nil
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.entries) }

// Lookup returns the record with the closest latitude strictly within
// LatitudeTolerance of lat.
func (t *Table) Lookup(lat float64) (domain.GroundwaterRecord, error) {
	best := -1
	bestGap := LatitudeTolerance
	for i, e := range t.entries {
		if !e.hasLatitude {
			continue
		}
		if gap := math.Abs(e.record.Latitude - lat); gap < bestGap {
			best, bestGap = i, gap
		}
	}
	if best < 0 {
		return domain.GroundwaterRecord{}, fmt.Errorf("groundwater near latitude %.4f: %w", lat, domain.ErrNotFound)
	}
	return t.entries[best].record, nil
}

// LookupDistrict returns the first record whose district matches name,
// ignoring case and surrounding space.
func (t *Table) LookupDistrict(name string) (domain.GroundwaterRecord, error) {
	name = strings.TrimSpace(name)
	if name != "" {
		for _, e := range t.entries {
			if strings.EqualFold(e.record.District, name) {
				return e.record, nil
			}
		}
	}
	return domain.GroundwaterRecord{}, fmt.Errorf("groundwater for district %q: %w", name, domain.ErrNotFound)
}

// row mirrors the survey export. Numeric columns arrive as numbers or strings
// depending on the exporter.
type row struct {
	Latitude cell `json:"LATITUDE"`
	WLMbgl   cell `json:"WL(mbgl)"`
	WL       cell `json:"WL"`
	Block    cell `json:"BLOCK"`
	Village  cell `json:"VILLAGE"`
	District cell `json:"DISTRICT"`
}

func (r row) entry() entry {
	lat, err := strconv.ParseFloat(string(r.Latitude), 64)
	hasLatitude := err == nil && !math.IsNaN(lat) && !math.IsInf(lat, 0)
	if !hasLatitude {
		lat = 0
	}

	depth := domain.UnknownDepth()
	level := r.WLMbgl
	if level == "" {
		level = r.WL
	}
	if m, err := strconv.ParseFloat(string(level), 64); err == nil {
		depth = domain.KnownDepth(m)
	}

	return entry{
		record: domain.GroundwaterRecord{
			Latitude:      lat,
			Depth:         depth,
			AquiferType:   string(r.Block),
			RegionalDepth: string(r.Village),
			District:      string(r.District),
		},
		hasLatitude: hasLatitude,
	}
}

// cell accepts a JSON string, number, or null and keeps its trimmed text.
type cell string

func (c *cell) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*c = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*c = cell(strings.TrimSpace(str))
		return nil
	}
	*c = cell(s)
	return nil
}
