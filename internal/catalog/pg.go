package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGQueries implements the catalog queries against the products and
// product_variants tables. Variants are fetched with one batched query per
// page, never per product.
type PGQueries struct {
	Pool *pgxpool.Pool
}

func (q *PGQueries) SearchProducts(ctx context.Context, term string, limit int) ([]Product, error) {
	rows, err := q.Pool.Query(ctx, `SELECT id, title, COALESCE(thumbnail, ''), COALESCE(categories, '{}')
FROM products
WHERE title ILIKE '%' || $1 || '%'
ORDER BY id DESC
LIMIT $2`, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	return q.withVariants(ctx, products)
}

func (q *PGQueries) CountProducts(ctx context.Context, term string) (int64, error) {
	var total int64
	err := q.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM products
WHERE $1 = '' OR title ILIKE '%' || $1 || '%'`, term).Scan(&total)
	return total, err
}

func (q *PGQueries) ListProducts(ctx context.Context, term string, limit, offset int) ([]Product, error) {
	rows, err := q.Pool.Query(ctx, `SELECT id, title, COALESCE(thumbnail, ''), COALESCE(categories, '{}')
FROM products
WHERE $1 = '' OR title ILIKE '%' || $1 || '%'
ORDER BY id DESC
LIMIT $2 OFFSET $3`, term, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	return q.withVariants(ctx, products)
}

func (q *PGQueries) withVariants(ctx context.Context, products []Product) ([]Product, error) {
	if len(products) == 0 {
		return products, nil
	}
	ids := make([]int64, 0, len(products))
	index := make(map[int64]int, len(products))
	for i, p := range products {
		ids = append(ids, p.ID)
		index[p.ID] = i
	}
	rows, err := q.Pool.Query(ctx, `SELECT product_id, id,
	COALESCE(variation_title, 'Default'),
	unit_price_cents,
	COALESCE(sku, ''),
	COALESCE(stock_status, 'in-stock'),
	COALESCE(payment_kind, 'onetime'),
	manage_stock,
	COALESCE(available, 0)
FROM product_variants
WHERE product_id = ANY($1)
ORDER BY product_id, id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var productID int64
		var v Variant
		if err := rows.Scan(&productID, &v.ID, &v.VariationTitle, &v.UnitPriceCents, &v.SKU,
			&v.StockStatus, &v.PaymentKind, &v.ManageStock, &v.Available); err != nil {
			return nil, err
		}
		if i, ok := index[productID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	return products, rows.Err()
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Thumbnail, &p.Categories); err != nil {
			return nil, err
		}
		if p.Categories == nil {
			p.Categories = []string{}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
