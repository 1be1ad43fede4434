package refdata

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
)

// ShipmentRecord is one historical shipment that was previously
// resolved to a UN number by an operator.
type ShipmentRecord struct {
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	UNNumber    string `json:"un_number"`
}

// HistoryStore serves corroboration lookups over the historical-
// shipment log.
type HistoryStore struct {
	path string

	once    sync.Once
	records []ShipmentRecord
	err     error
}

// NewHistoryStore returns a store backed by the shipment log at path.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

// NewHistoryStoreFromRecords returns a pre-populated store for tests.
func NewHistoryStoreFromRecords(records []ShipmentRecord) *HistoryStore {
	s := &HistoryStore{records: records}
	s.once.Do(func() {})
	return s
}

func (s *HistoryStore) load() {
	s.once.Do(func() {
		data, err := os.ReadFile(s.path)
		if err != nil {
			s.err = fmt.Errorf("failed to read shipment history %s: %w", s.path, err)
			logging.Warnf("Historical corroboration disabled: %v", s.err)
			return
		}
		if err := json.Unmarshal(data, &s.records); err != nil {
			s.err = fmt.Errorf("failed to parse shipment history %s: %w", s.path, err)
			logging.Warnf("Historical corroboration disabled: %v", s.err)
			return
		}
		logging.Infof("Loaded shipment history: %d records from %s", len(s.records), s.path)
	})
}

// CorroborationCount returns how many past shipments of the same SKU,
// or with a fuzzy product-name match, resolved to unNumber. A missing
// or unreadable log yields zero, never an error.
func (s *HistoryStore) CorroborationCount(sku, productName, unNumber string) int {
	s.load()
	if s.err != nil || unNumber == "" {
		return 0
	}
	name := strings.ToLower(strings.TrimSpace(productName))
	count := 0
	for _, rec := range s.records {
		if rec.UNNumber != unNumber {
			continue
		}
		if sku != "" && rec.SKU == sku {
			count++
			continue
		}
		if name != "" && fuzzyNameMatch(name, strings.ToLower(rec.ProductName)) {
			count++
		}
	}
	return count
}

// fuzzyNameMatch reports whether two product names plausibly describe
// the same product: containment either way, or a majority token overlap.
func fuzzyNameMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	at := strings.Fields(a)
	bt := strings.Fields(b)
	if len(at) == 0 || len(bt) == 0 {
		return false
	}
	set := make(map[string]bool, len(at))
	for _, t := range at {
		set[t] = true
	}
	shared := 0
	for _, t := range bt {
		if set[t] {
			shared++
		}
	}
	smaller := len(at)
	if len(bt) < smaller {
		smaller = len(bt)
	}
	return shared*2 > smaller
}
