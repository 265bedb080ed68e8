package postgres_test

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Houeta/price-sentinel/internal/repository/postgres"
)

// newMockedRepo creates a repository with a mocked database connection.
func newMockedRepo(t *testing.T) (*postgres.Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := postgres.NewForTest(mockDB)

	t.Cleanup(func() { mockDB.Close() })

	return repo, mock
}

var productColumns = []string{"id", "name", "url", "price", "created_at", "updated_at"}

func TestRepository_UpsertProduct(t *testing.T) {
	ctx := t.Context()
	now := time.Now()

	t.Run("insert_new_product", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		rows := sqlmock.NewRows(append(productColumns, "inserted")).
			AddRow(int64(1), "Milk 1L", "https://shop.example/milk", nil, now, now, true)
		mock.ExpectQuery("INSERT INTO products").
			WithArgs("Milk 1L", "https://shop.example/milk").
			WillReturnRows(rows)

		product, created, err := repo.UpsertProduct(ctx, "Milk 1L", "https://shop.example/milk")

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, int64(1), product.ID)
		assert.Equal(t, "Milk 1L", product.Name)
		assert.Nil(t, product.Price)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update_existing_product", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		rows := sqlmock.NewRows(append(productColumns, "inserted")).
			AddRow(int64(1), "Milk 1L Fresh", "https://shop.example/milk", 10.50, now, now, false)
		mock.ExpectQuery("INSERT INTO products").
			WithArgs("Milk 1L Fresh", "https://shop.example/milk").
			WillReturnRows(rows)

		product, created, err := repo.UpsertProduct(ctx, "Milk 1L Fresh", "https://shop.example/milk")

		require.NoError(t, err)
		assert.False(t, created)
		require.NotNil(t, product.Price)
		assert.InDelta(t, 10.50, *product.Price, 1e-9)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error_on_query", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		expectedErr := errors.New("db connection lost")
		mock.ExpectQuery("INSERT INTO products").WillReturnError(expectedErr)

		_, _, err := repo.UpsertProduct(ctx, "Milk 1L", "https://shop.example/milk")

		require.Error(t, err)
		assert.Contains(t, err.Error(), expectedErr.Error())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_ListProducts(t *testing.T) {
	ctx := t.Context()
	now := time.Now()

	t.Run("returns_all_products", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		rows := sqlmock.NewRows(productColumns).
			AddRow(int64(2), "Eggs 10pcs", "https://shop.example/eggs", 8.90, now, now).
			AddRow(int64(1), "Milk 1L", "https://shop.example/milk", nil, now, now)
		mock.ExpectQuery("SELECT id, name, url, price, created_at, updated_at FROM products").
			WillReturnRows(rows)

		products, err := repo.ListProducts(ctx)

		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "Eggs 10pcs", products[0].Name)
		require.NotNil(t, products[0].Price)
		assert.InDelta(t, 8.90, *products[0].Price, 1e-9)
		assert.Nil(t, products[1].Price)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error_on_query", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectQuery("SELECT id, name, url, price, created_at, updated_at FROM products").
			WillReturnError(errors.New("db connection lost"))

		_, err := repo.ListProducts(ctx)

		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
