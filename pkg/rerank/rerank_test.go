package rerank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/vectorindex"
)

func candidate(id, base, qualifier string, score float64) vectorindex.Candidate {
	return vectorindex.Candidate{
		Row: hazmat.RegulatoryRow{
			IDNumber:  id,
			BaseName:  base,
			Qualifier: qualifier,
		},
		Score: score,
	}
}

func TestRerankBoostsInRangeConcentration(t *testing.T) {
	candidates := []vectorindex.Candidate{
		candidate("UN2796", "Sulfuric acid", "with not more than 51 percent acid", 0.70),
		candidate("UN1830", "Sulfuric acid", "with more than 51 percent acid", 0.68),
	}
	top, changed := Rerank(candidates, "Sulfuric Acid 93%", 10)
	require.NotEmpty(t, top)
	assert.Equal(t, "UN1830", top[0].Row.IDNumber)
	assert.True(t, changed)
}

func TestRerankDemotesConflictingRange(t *testing.T) {
	candidates := []vectorindex.Candidate{
		candidate("UN1791-strong", "Hypochlorite solutions", "with more than 16% available chlorine", 0.70),
		candidate("UN1791-weak", "Hypochlorite solutions", "with not less than 5% but not more than 16% available chlorine", 0.66),
	}
	top, changed := Rerank(candidates, "Sodium Hypochlorite 12.5%", 10)
	require.NotEmpty(t, top)
	assert.Equal(t, "UN1791-weak", top[0].Row.IDNumber)
	assert.True(t, changed)
}

func TestRerankNoConcentrationIsStable(t *testing.T) {
	candidates := []vectorindex.Candidate{
		candidate("A", "Acetone", "", 0.9),
		candidate("B", "Acetonitrile", "", 0.8),
	}
	top, changed := Rerank(candidates, "Acetone", 10)
	require.Len(t, top, 2)
	assert.Equal(t, "A", top[0].Row.IDNumber)
	assert.False(t, changed)
}

func TestRerankTruncatesToTopK(t *testing.T) {
	var candidates []vectorindex.Candidate
	for i := 0; i < 50; i++ {
		candidates = append(candidates, candidate("X", "Entry", "", float64(50-i)/50))
	}
	top, _ := Rerank(candidates, "Entry 10%", 10)
	assert.Len(t, top, 10)
}

func TestRerankEmptyInput(t *testing.T) {
	top, changed := Rerank(nil, "anything", 10)
	assert.Nil(t, top)
	assert.False(t, changed)
}

func TestParseConcentrationRange(t *testing.T) {
	tests := []struct {
		in     string
		lo, hi float64
		ok     bool
	}{
		{"with more than 51 percent acid", 51, 100, true},
		{"with more than 51% acid", 51, 100, true},
		{"with not more than 51% acid", 0, 51, true},
		{"with not less than 5% but not more than 16% available chlorine", 5, 16, true},
		{"10% to 20% solution", 10, 20, true},
		{"with less than 30% acid", 0, 30, true},
		{"no concentration here", 0, 100, false},
	}
	for _, tt := range tests {
		lo, hi, ok := parseConcentrationRange(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.lo, lo, tt.in)
			assert.Equal(t, tt.hi, hi, tt.in)
		}
	}
}

func TestApplyOverridesPromotesEthylAcetate(t *testing.T) {
	candidates := []vectorindex.Candidate{
		candidate("UN1993", "Flammable liquids, n.o.s.", "", 0.8),
		candidate("UN1173", "Ethyl acetate", "", 0.7),
	}
	out, name := ApplyOverrides(candidates, "Ethyl Acetate tech grade")
	require.Len(t, out, 2)
	assert.Equal(t, "UN1173", out[0].Row.IDNumber)
	assert.Equal(t, "UN1993", out[1].Row.IDNumber)
	assert.Equal(t, "ethyl-acetate", name)
}

func TestApplyOverridesAlreadyTopIsNoop(t *testing.T) {
	candidates := []vectorindex.Candidate{
		candidate("UN1208", "Hexanes", "", 0.9),
		candidate("UN1993", "Flammable liquids, n.o.s.", "", 0.8),
	}
	out, name := ApplyOverrides(candidates, "n-Hexane 95%")
	assert.Equal(t, "UN1208", out[0].Row.IDNumber)
	assert.Empty(t, name, "no override is reported when the entry already leads")
}

func TestApplyOverridesDrainCleanerQualifier(t *testing.T) {
	candidates := []vectorindex.Candidate{
		candidate("UN2796", "Sulfuric acid", "with not more than 51 percent acid", 0.9),
		candidate("UN1830", "Sulfuric acid", "with more than 51 percent acid", 0.8),
	}
	out, name := ApplyOverrides(candidates, "Liquid Fire Drain Cleaner")
	assert.Equal(t, "UN1830", out[0].Row.IDNumber)
	assert.Equal(t, "sulfuric-drain-cleaner", name)
}

func TestApplyOverridesNoFamilyMatch(t *testing.T) {
	candidates := []vectorindex.Candidate{
		candidate("UN1090", "Acetone", "", 0.9),
	}
	out, name := ApplyOverrides(candidates, "Acetone 99%")
	assert.Equal(t, "UN1090", out[0].Row.IDNumber)
	assert.Empty(t, name)
}
