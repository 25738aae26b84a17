package buildio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/oceandata/hydromon/internal/str"
	"github.com/oceandata/hydromon/pkg/ent/model"
)

// resetDB resets the database to a clean state.
func (b *buildio) resetDB() error {
	var err error
	var rows pgx.Rows
	slog.Info("Resetting database")
	qs := []string{
		"DROP SCHEMA IF EXISTS public CASCADE",
		"CREATE SCHEMA public",
		"GRANT ALL ON SCHEMA public TO postgres",
		fmt.Sprintf("GRANT ALL ON SCHEMA public TO %s", b.cfg.PgUser),
		"COMMENT ON SCHEMA public IS 'standard public schema'",
	}
	for i := range qs {
		rows, err = b.db.Query(context.Background(), qs[i])
		if err != nil {
			slog.Error("Cannot reset database", "error", err, "query", qs[i])
			return err
		}
		rows.Close()
	}

	slog.Info("Database did reset successfully")
	return nil
}

func (b *buildio) truncateTable(tbls ...string) error {
	var err error
	for _, tbl := range tbls {
		_, err = b.db.Exec(context.Background(), "TRUNCATE TABLE "+tbl)
		if err != nil {
			slog.Error("cannot truncate table", "table", tbl, "error", err)
			return err
		}
	}
	return nil
}

func (b *buildio) insertRows(
	tbl string,
	columns []string,
	rows [][]any,
) (int64, error) {
	copyCount, err := b.db.CopyFrom(
		context.Background(),
		pgx.Identifier{tbl},
		columns,
		pgx.CopyFromRows(rows),
	)

	return int64(copyCount), err
}

func (b *buildio) saveSites(sites []model.Site) error {
	if len(sites) == 0 {
		return nil
	}
	vals := make([]string, len(sites))
	for i, v := range sites {
		vals[i] = fmt.Sprintf("('%s', %s, %s, %s)",
			v.ID,
			str.QuoteString(v.Location),
			str.QuoteString(v.Basin),
			str.QuoteString(v.SectionName),
		)
	}

	q := fmt.Sprintf(
		`INSERT INTO sites (id, location, basin, section_name) VALUES %s
			ON CONFLICT DO NOTHING`,
		strings.Join(vals, ","),
	)
	rows, err := b.db.Query(context.Background(), q)
	if err != nil {
		slog.Error("save sites failed", "error", err)
		return err
	}
	rows.Close()
	return nil
}

func (b *buildio) saveHydroData(hd []model.HydroData) (int64, error) {
	columns := []string{
		"location", "basin", "section_name", "site_id", "date",
		"category", "water_temperature", "p_h", "dissolved_oxygen",
		"conductivity", "turbidity", "permanganate_index",
		"ammonia_nitrogen", "total_phosphorus", "total_nitrogen",
		"chlorophyll", "algae_density", "site_condition",
	}
	rows := make([][]any, len(hd))
	for i, v := range hd {
		rows[i] = []any{
			v.Location, v.Basin, v.SectionName, v.SiteID, v.Date,
			v.Category, v.WaterTemperature, v.PH, v.DissolvedOxygen,
			v.Conductivity, v.Turbidity, v.PermanganateIndex,
			v.AmmoniaNitrogen, v.TotalPhosphorus, v.TotalNitrogen,
			v.Chlorophyll, v.AlgaeDensity, v.SiteCondition,
		}
	}
	return b.insertRows("hydro_data", columns, rows)
}

func (b *buildio) saveFish(fs []model.Fish) (int64, error) {
	columns := []string{
		"species", "weight", "length1", "length2", "length3",
		"height", "width",
	}
	rows := make([][]any, len(fs))
	for i, v := range fs {
		rows[i] = []any{
			v.Species, v.Weight, v.Length1, v.Length2, v.Length3,
			v.Height, v.Width,
		}
	}
	return b.insertRows("fish", columns, rows)
}
