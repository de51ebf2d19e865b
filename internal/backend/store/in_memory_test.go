package store

import (
	"context"
	"testing"

	"github.com/abgdnv/catalog/internal/backend/errors"
	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedInMemory(t *testing.T) (CatalogStore, catalog.Product, catalog.Store) {
	t.Helper()
	ctx := context.Background()
	s := NewInMemoryStore()
	p, err := s.CreateProduct(ctx, catalog.Product{Nombre: "Leche", Precio: 2.5, Tipo: catalog.Perecedero})
	require.NoError(t, err)
	st, err := s.CreateStore(ctx, catalog.Store{Nombre: "Centro", Ciudad: "BOG", Direccion: "Calle 1"})
	require.NoError(t, err)
	return s, p, st
}

func Test_InMemory_CreateAssignsSequentialIDs(t *testing.T) {
	// given
	s, p, st := seedInMemory(t)
	// when
	p2, err := s.CreateProduct(context.Background(), catalog.Product{ID: "ignored", Nombre: "Arroz", Precio: 1, Tipo: catalog.NoPerecedero})
	// then
	require.NoError(t, err)
	assert.Equal(t, catalog.ID("1"), p.ID)
	assert.Equal(t, catalog.ID("2"), st.ID)
	assert.Equal(t, catalog.ID("3"), p2.ID)

	products, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []catalog.Product{p, p2}, products, "list keeps creation order")
}

func Test_InMemory_Find(t *testing.T) {
	s, p, st := seedInMemory(t)
	ctx := context.Background()

	found, err := s.FindProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, found)

	_, err = s.FindProduct(ctx, st.ID)
	assert.ErrorIs(t, err, errors.ErrProductNotFound, "ids are not shared between collections")

	_, err = s.FindStore(ctx, "404")
	assert.ErrorIs(t, err, errors.ErrStoreNotFound)
}

func Test_InMemory_Update(t *testing.T) {
	testCases := []struct {
		name        string
		id          func(p catalog.Product) catalog.ID
		expectError error
	}{
		{
			name: "Success - replaces every field",
			id:   func(p catalog.Product) catalog.ID { return p.ID },
		},
		{
			name:        "Error - unknown id",
			id:          func(catalog.Product) catalog.ID { return "404" },
			expectError: errors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s, p, _ := seedInMemory(t)
			id := tc.id(p)
			// when
			updated, err := s.UpdateProduct(context.Background(), id, catalog.Product{ID: "other", Nombre: "Leche entera", Precio: 3, Tipo: catalog.Perecedero})
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, id, updated.ID, "path id wins over body id")
			found, err := s.FindProduct(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, "Leche entera", found.Nombre)
		})
	}
}

func Test_InMemory_Associations(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - create is idempotent", func(t *testing.T) {
		s, p, st := seedInMemory(t)
		created, err := s.CreateAssociation(ctx, p.ID, st.ID)
		require.NoError(t, err)
		assert.True(t, created)
		created, err = s.CreateAssociation(ctx, p.ID, st.ID)
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("Error - unknown ids", func(t *testing.T) {
		s, p, st := seedInMemory(t)
		_, err := s.CreateAssociation(ctx, "404", st.ID)
		assert.ErrorIs(t, err, errors.ErrProductNotFound)
		_, err = s.CreateAssociation(ctx, p.ID, "404")
		assert.ErrorIs(t, err, errors.ErrStoreNotFound)
	})

	t.Run("Success - delete reports whether the pair existed", func(t *testing.T) {
		s, p, st := seedInMemory(t)
		_, err := s.CreateAssociation(ctx, p.ID, st.ID)
		require.NoError(t, err)
		removed, err := s.DeleteAssociation(ctx, p.ID, st.ID)
		require.NoError(t, err)
		assert.True(t, removed)
		removed, err = s.DeleteAssociation(ctx, p.ID, st.ID)
		require.NoError(t, err)
		assert.False(t, removed)
	})
}

func Test_InMemory_DeleteCascadesAssociations(t *testing.T) {
	ctx := context.Background()

	t.Run("Store - removes pairs of that store only", func(t *testing.T) {
		// given
		s, p, st := seedInMemory(t)
		other, err := s.CreateStore(ctx, catalog.Store{Nombre: "Norte", Ciudad: "MED", Direccion: "Carrera 7"})
		require.NoError(t, err)
		_, err = s.CreateAssociation(ctx, p.ID, st.ID)
		require.NoError(t, err)
		_, err = s.CreateAssociation(ctx, p.ID, other.ID)
		require.NoError(t, err)
		// when
		removed, err := s.DeleteStore(ctx, st.ID)
		// then
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)
		created, err := s.CreateAssociation(ctx, p.ID, other.ID)
		require.NoError(t, err)
		assert.False(t, created, "pair with the surviving store is intact")
		_, err = s.FindStore(ctx, st.ID)
		assert.ErrorIs(t, err, errors.ErrStoreNotFound)
	})

	t.Run("Product - unknown id", func(t *testing.T) {
		s, _, _ := seedInMemory(t)
		_, err := s.DeleteProduct(ctx, "404")
		assert.ErrorIs(t, err, errors.ErrProductNotFound)
	})

	t.Run("Product - removes its pairs", func(t *testing.T) {
		s, p, st := seedInMemory(t)
		_, err := s.CreateAssociation(ctx, p.ID, st.ID)
		require.NoError(t, err)
		removed, err := s.DeleteProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)
		products, err := s.ListProducts(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
	})
}
