package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/corpus"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
)

func TestDatabaseClassifierFailedConnectionIsNotCached(t *testing.T) {
	cfg := config.Default()
	cfg.Database.PostgresDSN = ""
	dc := NewDatabaseClassifier(cfg)
	ctx := context.Background()

	_, err := dc.Classify(ctx, "SKU-1", "Propylene Glycol USP")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres_dsn")

	// Simulate the row store coming back; the earlier failure must not
	// have been cached, so the next call builds the pipeline and the
	// non-hazard rule fires before any retrieval.
	dc.rows.mu.Lock()
	dc.rows.store = corpus.NewStoreFromRows(nil)
	dc.rows.mu.Unlock()

	c, err := dc.Classify(ctx, "SKU-1", "Propylene Glycol USP")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, hazmat.SourceRuleNonHazard, c.Source)
}
