// Package corpus loads the flattened 49 CFR Hazardous Materials Table
// and serves regex lookups over it. The table is immutable reference
// data: it is parsed at most once per process and never invalidated.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
)

// Store is a lazily loaded, read-only view of the regulatory table.
type Store struct {
	path string

	once sync.Once
	rows []hazmat.RegulatoryRow
	err  error
}

// NewStore returns a Store backed by the flattened HMT JSON at path.
// The file is not touched until the first lookup.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// NewStoreFromRows returns a Store pre-populated with rows. Tests use
// this to substitute fixtures without filesystem access.
func NewStoreFromRows(rows []hazmat.RegulatoryRow) *Store {
	s := &Store{rows: rows}
	s.once.Do(func() {})
	return s
}

// Rows returns every corpus row, loading the backing file on first use.
func (s *Store) Rows() ([]hazmat.RegulatoryRow, error) {
	s.once.Do(func() {
		data, err := os.ReadFile(s.path)
		if err != nil {
			s.err = fmt.Errorf("failed to read regulatory table %s: %w", s.path, err)
			return
		}
		if err := json.Unmarshal(data, &s.rows); err != nil {
			s.err = fmt.Errorf("failed to parse regulatory table %s: %w", s.path, err)
			return
		}
		logging.Infof("Loaded regulatory table: %d entries from %s", len(s.rows), s.path)
	})
	return s.rows, s.err
}

// LookupOptions narrows a FindByBaseName lookup.
type LookupOptions struct {
	// PackingGroup, when non-empty, requires an exact packing group.
	PackingGroup string
	// Qualifier, when non-nil, must match the row qualifier text.
	Qualifier *regexp.Regexp
}

// FindByBaseName returns the first row whose base name matches pattern
// and which satisfies opts, or nil when nothing matches.
func (s *Store) FindByBaseName(pattern *regexp.Regexp, opts LookupOptions) (*hazmat.RegulatoryRow, error) {
	rows, err := s.Rows()
	if err != nil {
		return nil, err
	}
	for i := range rows {
		row := &rows[i]
		if !pattern.MatchString(row.BaseName) {
			continue
		}
		if opts.PackingGroup != "" && row.PackingGroup != opts.PackingGroup {
			continue
		}
		if opts.Qualifier != nil && !opts.Qualifier.MatchString(row.Qualifier) {
			continue
		}
		return row, nil
	}
	return nil, nil
}

// FindByIDNumber returns the row carrying the given UN/NA identifier,
// or nil when absent.
func (s *Store) FindByIDNumber(id string) (*hazmat.RegulatoryRow, error) {
	rows, err := s.Rows()
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].IDNumber == id {
			return &rows[i], nil
		}
	}
	return nil, nil
}

// Filter returns every row passing the gating filter. A nil filter
// returns all rows.
func (s *Store) Filter(g *hazmat.GatingFilter) ([]hazmat.RegulatoryRow, error) {
	rows, err := s.Rows()
	if err != nil {
		return nil, err
	}
	if g == nil {
		return rows, nil
	}
	var out []hazmat.RegulatoryRow
	for i := range rows {
		if g.Matches(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out, nil
}
