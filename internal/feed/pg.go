package feed

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rahatbaksh/bulk-order-api/internal/pricing"
)

// PGQueries implements Queries against the feeds table.
type PGQueries struct {
	Pool *pgxpool.Pool
}

const feedColumns = `id, name, scope, COALESCE(product_id, 0), COALESCE(variant_ids, '{}'), enabled, tiers, created_at, updated_at`

func (q *PGQueries) ListFeeds(ctx context.Context) ([]Feed, error) {
	rows, err := q.Pool.Query(ctx, `SELECT `+feedColumns+` FROM feeds ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFeeds(rows)
}

func (q *PGQueries) GetFeed(ctx context.Context, id int64) (Feed, error) {
	rows, err := q.Pool.Query(ctx, `SELECT `+feedColumns+` FROM feeds WHERE id = $1`, id)
	if err != nil {
		return Feed{}, err
	}
	defer rows.Close()
	feeds, err := scanFeeds(rows)
	if err != nil {
		return Feed{}, err
	}
	if len(feeds) == 0 {
		return Feed{}, ErrNotFound
	}
	return feeds[0], nil
}

func (q *PGQueries) InsertFeed(ctx context.Context, f Feed) (Feed, error) {
	tiers, err := json.Marshal(f.Tiers)
	if err != nil {
		return Feed{}, err
	}
	row := q.Pool.QueryRow(ctx, `INSERT INTO feeds (name, scope, product_id, variant_ids, enabled, tiers)
VALUES ($1, $2, NULLIF($3, 0), $4, $5, $6)
RETURNING `+feedColumns,
		f.Name, f.Scope, f.ProductID, f.VariantIDs, f.Enabled, tiers)
	return scanFeed(row)
}

func (q *PGQueries) UpdateFeed(ctx context.Context, f Feed) (Feed, error) {
	tiers, err := json.Marshal(f.Tiers)
	if err != nil {
		return Feed{}, err
	}
	row := q.Pool.QueryRow(ctx, `UPDATE feeds
SET name = $2, scope = $3, product_id = NULLIF($4, 0), variant_ids = $5, enabled = $6, tiers = $7, updated_at = now()
WHERE id = $1
RETURNING `+feedColumns,
		f.ID, f.Name, f.Scope, f.ProductID, f.VariantIDs, f.Enabled, tiers)
	out, err := scanFeed(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Feed{}, ErrNotFound
	}
	return out, err
}

func (q *PGQueries) SetFeedEnabled(ctx context.Context, id int64, enabled string) error {
	tag, err := q.Pool.Exec(ctx, `UPDATE feeds SET enabled = $2, updated_at = now() WHERE id = $1`, id, enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *PGQueries) GlobalFeeds(ctx context.Context) ([]Feed, error) {
	rows, err := q.Pool.Query(ctx, `SELECT `+feedColumns+` FROM feeds WHERE scope = $1 ORDER BY id ASC`, ScopeGlobal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFeeds(rows)
}

func (q *PGQueries) FeedsByProducts(ctx context.Context, productIDs []int64) ([]Feed, error) {
	rows, err := q.Pool.Query(ctx, `SELECT `+feedColumns+` FROM feeds
WHERE scope = $1 AND product_id = ANY($2)
ORDER BY id ASC`, ScopeProduct, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFeeds(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(row rowScanner) (Feed, error) {
	var f Feed
	var tiers []byte
	err := row.Scan(&f.ID, &f.Name, &f.Scope, &f.ProductID, &f.VariantIDs, &f.Enabled, &tiers, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return Feed{}, err
	}
	if len(tiers) > 0 {
		if err := json.Unmarshal(tiers, &f.Tiers); err != nil {
			return Feed{}, err
		}
	}
	if f.Tiers == nil {
		f.Tiers = []pricing.Tier{}
	}
	return f, nil
}

func scanFeeds(rows pgx.Rows) ([]Feed, error) {
	var out []Feed
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
