package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCatalog(t *testing.T) *Repository {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	repo, err := NewRepository(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	err = repo.RunMigrations("./migrations")
	require.NoError(t, err)

	_, err = repo.db.Exec(
		`INSERT INTO products (id, name, price) VALUES (1, 'Novel', 14.99), (2, 'Laptop', 999.00)`)
	require.NoError(t, err)

	return repo
}

func TestGetProduct(t *testing.T) {
	repo := setupTestCatalog(t)

	p, err := repo.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Novel", p.Name)
	assert.Equal(t, 14.99, p.Price)
}

func TestGetProduct_NotFound(t *testing.T) {
	repo := setupTestCatalog(t)

	_, err := repo.GetProduct(context.Background(), 42)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
