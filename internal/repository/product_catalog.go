package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/canteen-order/internal/db"
	"github.com/nikolayk812/canteen-order/internal/port"
	"github.com/samber/lo"
)

// ProductCatalog reads merchant ownership from the catalog's products table.
// The table is owned by the catalog service and never written here.
type ProductCatalog struct {
	q *db.Queries
}

var _ port.ProductCatalog = (*ProductCatalog)(nil)

func NewProductCatalog(pool *pgxpool.Pool) *ProductCatalog {
	return &ProductCatalog{
		q: db.New(pool),
	}
}

// MerchantsOf maps every product id to its merchant id. Unknown ids fail the
// whole lookup with port.ErrProductNotFound.
func (c *ProductCatalog) MerchantsOf(ctx context.Context, productIDs []int64) (map[int64]int64, error) {
	ids := lo.Uniq(productIDs)
	if len(ids) == 0 {
		return map[int64]int64{}, nil
	}

	rows, err := c.q.GetProductMerchants(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("q.GetProductMerchants: %w", err)
	}

	result := lo.SliceToMap(rows, func(row db.GetProductMerchantsRow) (int64, int64) {
		return row.ID, row.MerchantID
	})

	missing := lo.Filter(ids, func(id int64, _ int) bool {
		_, ok := result[id]
		return !ok
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("products %v: %w", missing, port.ErrProductNotFound)
	}

	return result, nil
}
