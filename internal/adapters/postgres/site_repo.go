package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aitorzubi/obratrace/internal/core/domain"
	"github.com/aitorzubi/obratrace/internal/pkg/geospatial"
)

// SiteRepo implements ports.SiteRepository. A site is stored as one row
// with its vertex list as JSONB plus one ledger row per progress entry;
// Save writes the whole snapshot in a single transaction (last write wins).
type SiteRepo struct {
	db *DB
}

func NewSiteRepo(db *DB) *SiteRepo { return &SiteRepo{db: db} }

func (r *SiteRepo) Save(ctx context.Context, site *domain.Site) error {
	points, err := json.Marshal(site.Points)
	if err != nil {
		return fmt.Errorf("marshal points: %w", err)
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO sites (id, name, created_at, points, is_closed,
		                   perimeter_meters, vertex_count, walk_time_minutes,
		                   commitment_per_day, custom_tile_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, points = EXCLUDED.points, is_closed = EXCLUDED.is_closed,
		    perimeter_meters = EXCLUDED.perimeter_meters, vertex_count = EXCLUDED.vertex_count,
		    walk_time_minutes = EXCLUDED.walk_time_minutes,
		    commitment_per_day = EXCLUDED.commitment_per_day,
		    custom_tile_url = EXCLUDED.custom_tile_url
	`, site.ID, site.Name, site.CreatedAt, points, site.IsClosed,
		site.Metrics.PerimeterMeters, site.Metrics.VertexCount, site.Metrics.EstimatedWalkTimeMinutes,
		site.ContractorCommitmentPerDay, site.CustomTileURL)
	if err != nil {
		return fmt.Errorf("upsert site: %w", err)
	}

	// The ledger is append-only: existing rows only ever change status.
	batch := &pgx.Batch{}
	for pos, e := range site.DailyProgress {
		batch.Queue(`
			INSERT INTO progress_entries (id, site_id, position, entry_date, meters_completed, status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status
		`, e.ID, site.ID, pos, e.Date, e.MetersCompleted, string(e.Status), e.Notes)
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		for range site.DailyProgress {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("upsert ledger: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("close batch: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *SiteRepo) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	site, err := r.scanSite(r.db.Pool.QueryRow(ctx, `
		SELECT id, name, created_at, points, is_closed,
		       perimeter_meters, vertex_count, walk_time_minutes,
		       commitment_per_day, custom_tile_url
		FROM sites WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: site %s", domain.ErrNotFound, id)
		}
		return nil, err
	}

	if err := r.loadLedger(ctx, site); err != nil {
		return nil, err
	}
	return site, nil
}

func (r *SiteRepo) List(ctx context.Context) ([]domain.Site, error) {
	return r.querySites(ctx, `
		SELECT id, name, created_at, points, is_closed,
		       perimeter_meters, vertex_count, walk_time_minutes,
		       commitment_per_day, custom_tile_url
		FROM sites ORDER BY created_at DESC
	`)
}

// ListNear filters on the first traced vertex using a degree bounding box
// around the query point. Good enough for a "sites around me" listing.
func (r *SiteRepo) ListNear(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]domain.Site, error) {
	minLat, minLng, maxLat, maxLng := geospatial.BoundingBox(lat, lng, radiusMeters)
	return r.querySites(ctx, `
		SELECT id, name, created_at, points, is_closed,
		       perimeter_meters, vertex_count, walk_time_minutes,
		       commitment_per_day, custom_tile_url
		FROM sites
		WHERE jsonb_array_length(points) > 0
		  AND (points->0->>'lat')::float8 BETWEEN $1 AND $2
		  AND (points->0->>'lng')::float8 BETWEEN $3 AND $4
		ORDER BY created_at DESC
		LIMIT $5
	`, minLat, maxLat, minLng, maxLng, limit)
}

func (r *SiteRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: site %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *SiteRepo) querySites(ctx context.Context, sql string, args ...any) ([]domain.Site, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []domain.Site
	for rows.Next() {
		site, err := r.scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, *site)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sites {
		if err := r.loadLedger(ctx, &sites[i]); err != nil {
			return nil, err
		}
	}
	return sites, nil
}

func (r *SiteRepo) scanSite(row pgx.Row) (*domain.Site, error) {
	var site domain.Site
	var points []byte
	if err := row.Scan(&site.ID, &site.Name, &site.CreatedAt, &points, &site.IsClosed,
		&site.Metrics.PerimeterMeters, &site.Metrics.VertexCount, &site.Metrics.EstimatedWalkTimeMinutes,
		&site.ContractorCommitmentPerDay, &site.CustomTileURL); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(points, &site.Points); err != nil {
		return nil, fmt.Errorf("unmarshal points: %w", err)
	}
	return &site, nil
}

func (r *SiteRepo) loadLedger(ctx context.Context, site *domain.Site) error {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, entry_date, meters_completed, status, notes
		FROM progress_entries WHERE site_id = $1 ORDER BY position
	`, site.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.ProgressEntry
		var status string
		if err := rows.Scan(&e.ID, &e.Date, &e.MetersCompleted, &status, &e.Notes); err != nil {
			return err
		}
		e.Status = domain.EntryStatus(status)
		site.DailyProgress = append(site.DailyProgress, e)
	}
	return rows.Err()
}
