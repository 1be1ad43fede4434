// Package refdata loads the auxiliary reference files the confidence
// synthesizer consults: the ERG guide table and the historical-shipment
// log. Both are immutable within a process and lazily parsed once.
package refdata

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
)

// ERGStore maps UN numbers to Emergency Response Guidebook guide
// numbers for first responders.
type ERGStore struct {
	path string

	once   sync.Once
	guides map[string]string
	err    error
}

// NewERGStore returns a store backed by the ERG lookup table at path.
func NewERGStore(path string) *ERGStore {
	return &ERGStore{path: path}
}

// NewERGStoreFromMap returns a pre-populated store for tests.
func NewERGStoreFromMap(guides map[string]string) *ERGStore {
	s := &ERGStore{guides: guides}
	s.once.Do(func() {})
	return s
}

// Guide returns the ERG guide number for a UN number, or "" when the
// table has no entry or could not be loaded. A missing table degrades
// to no ERG citations rather than failing the classification.
func (s *ERGStore) Guide(unNumber string) string {
	s.once.Do(func() {
		data, err := os.ReadFile(s.path)
		if err != nil {
			s.err = fmt.Errorf("failed to read ERG table %s: %w", s.path, err)
			logging.Warnf("ERG guide lookups disabled: %v", s.err)
			return
		}
		if err := json.Unmarshal(data, &s.guides); err != nil {
			s.err = fmt.Errorf("failed to parse ERG table %s: %w", s.path, err)
			logging.Warnf("ERG guide lookups disabled: %v", s.err)
			return
		}
		logging.Infof("Loaded ERG table: %d guides from %s", len(s.guides), s.path)
	})
	if s.err != nil || s.guides == nil {
		return ""
	}
	return s.guides[unNumber]
}
