package repository_test

import (
	"github.com/nikolayk812/canteen-order/internal/port"
	"github.com/nikolayk812/canteen-order/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runs inside the order suite to share its container
func (suite *orderRepositorySuite) TestProductCatalogMerchantsOf() {
	ctx := suite.T().Context()

	_, err := suite.pool.Exec(ctx, `INSERT INTO products (id, merchant_id, name, price)
		VALUES (101, 11, 'braised pork', 18.00), (102, 11, 'rice', 2.00), (201, 22, 'noodles', 12.50)`)
	suite.Require().NoError(err)

	defer func() {
		_, err := suite.pool.Exec(ctx, "TRUNCATE TABLE products")
		suite.NoError(err)
	}()

	catalog := repository.NewProductCatalog(suite.pool)

	tests := []struct {
		name       string
		productIDs []int64
		want       map[int64]int64
		wantIs     error
	}{
		{
			name:       "two merchants: ok",
			productIDs: []int64{101, 201},
			want:       map[int64]int64{101: 11, 201: 22},
		},
		{
			name:       "repeated ids: ok",
			productIDs: []int64{101, 102, 101},
			want:       map[int64]int64{101: 11, 102: 11},
		},
		{
			name: "no ids: empty",
			want: map[int64]int64{},
		},
		{
			name:       "unknown id: not found",
			productIDs: []int64{101, 999},
			wantIs:     port.ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()

			got, err := catalog.MerchantsOf(t.Context(), tt.productIDs)
			if tt.wantIs != nil {
				require.ErrorIs(t, err, tt.wantIs)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.want, got)
		})
	}
}
