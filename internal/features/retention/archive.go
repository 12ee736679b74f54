package retention

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go-listings/internal/config"
	"go-listings/internal/features/property"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Archiver copies retired rows into an external SQL archive table. The sink
// is optional; when unconfigured the archive strategy degrades to a soft
// delete with an "archived" reason.
type Archiver struct {
	Driver string // "postgres" or "mysql"
	DSN    string
	Table  string
}

func NewArchiver(cfg *config.Config) *Archiver {
	return &Archiver{
		Driver: cfg.ArchiveDriver,
		DSN:    cfg.ArchiveDSN,
		Table:  cfg.ArchiveTable,
	}
}

func (a *Archiver) Enabled() bool {
	return a.Driver != "" && a.DSN != ""
}

// Archive upserts the given rows into the archive table, keyed on the
// natural key so re-archiving is idempotent.
func (a *Archiver) Archive(ctx context.Context, props []property.Property) error {
	if len(props) == 0 {
		return nil
	}

	db, err := sql.Open(a.Driver, a.DSN)
	if err != nil {
		return fmt.Errorf("failed to open archive connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping archive database: %w", err)
	}

	archivedAt := time.Now().UTC()
	for _, p := range props {
		query := a.upsertQuery()
		args := []interface{}{
			p.ExternalID,
			p.SourceID.Hex(),
			p.City,
			p.Neighborhood,
			p.Price,
			p.PropertyType,
			p.DealType,
			p.Sector,
			p.Description,
			p.SyncedAt,
			archivedAt,
		}

		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to archive property %s: %w", p.ExternalID, err)
		}
	}

	return nil
}

func (a *Archiver) upsertQuery() string {
	columns := "external_id, source_id, city, neighborhood, price, property_type, deal_type, sector, description, synced_at, archived_at"

	if a.Driver == "postgres" {
		return fmt.Sprintf(
			`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (external_id, source_id) DO UPDATE SET
			city = EXCLUDED.city, neighborhood = EXCLUDED.neighborhood, price = EXCLUDED.price,
			property_type = EXCLUDED.property_type, deal_type = EXCLUDED.deal_type, sector = EXCLUDED.sector,
			description = EXCLUDED.description, synced_at = EXCLUDED.synced_at, archived_at = EXCLUDED.archived_at`,
			a.Table, columns,
		)
	}

	// MySQL
	return fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		city = VALUES(city), neighborhood = VALUES(neighborhood), price = VALUES(price),
		property_type = VALUES(property_type), deal_type = VALUES(deal_type), sector = VALUES(sector),
		description = VALUES(description), synced_at = VALUES(synced_at), archived_at = VALUES(archived_at)`,
		a.Table, columns,
	)
}
