package classifier

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/corpus"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/hazmat"
	"github.com/Alliance-Chemical/order-management-sub004/pkg/observability/logging"
)

// hmtRow mirrors one record of the hmt table.
type hmtRow struct {
	IDNumber        string         `db:"id_number"`
	BaseName        string         `db:"base_name"`
	Qualifier       sql.NullString `db:"qualifier"`
	ClassOrDivision string         `db:"class_or_division"`
	PackingGroup    sql.NullString `db:"packing_group"`
	LabelCodes      sql.NullString `db:"label_codes"`
	ERGGuide        sql.NullString `db:"erg_guide"`
	VesselStowage   sql.NullString `db:"vessel_stowage"`
}

const hmtQuery = `
SELECT id_number, base_name, qualifier, class_or_division,
       packing_group, label_codes, erg_guide, vessel_stowage
FROM hmt
ORDER BY id_number`

// pgRowStore loads the regulatory table from Postgres once and serves
// it through a corpus.Store. Connection failures surface to the
// caller; the orchestrator owns the fallback.
type pgRowStore struct {
	dsn     string
	timeout time.Duration

	mu    sync.Mutex
	store *corpus.Store
}

func newPGRowStore(cfg config.DatabaseConfig) *pgRowStore {
	return &pgRowStore{
		dsn:     cfg.PostgresDSN,
		timeout: time.Duration(cfg.ConnectTimeoutSeconds) * time.Second,
	}
}

// corpusStore returns the loaded store, connecting on first use. Only
// a successful load is cached, so a transient outage heals on a later
// call instead of poisoning the process.
func (s *pgRowStore) corpusStore(ctx context.Context) (*corpus.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		return s.store, nil
	}
	if s.dsn == "" {
		return nil, fmt.Errorf("postgres_dsn is not configured")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	db, err := sqlx.ConnectContext(ctx, "pgx", s.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to hmt database: %w", err)
	}
	defer db.Close()

	var raw []hmtRow
	if err := db.SelectContext(ctx, &raw, hmtQuery); err != nil {
		return nil, fmt.Errorf("failed to load hmt table: %w", err)
	}
	rows := make([]hazmat.RegulatoryRow, len(raw))
	for i, r := range raw {
		rows[i] = hazmat.RegulatoryRow{
			IDNumber:        r.IDNumber,
			BaseName:        r.BaseName,
			Qualifier:       r.Qualifier.String,
			ClassOrDivision: r.ClassOrDivision,
			PackingGroup:    r.PackingGroup.String,
			ERGGuide:        r.ERGGuide.String,
			VesselStowage:   r.VesselStowage.String,
		}
		if r.LabelCodes.String != "" {
			rows[i].LabelCodes = strings.Split(r.LabelCodes.String, ",")
		}
	}
	s.store = corpus.NewStoreFromRows(rows)
	logging.Infof("Loaded hmt table from database: %d rows", len(rows))
	return s.store, nil
}
