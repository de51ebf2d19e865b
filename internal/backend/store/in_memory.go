package store

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/abgdnv/catalog/internal/backend/errors"
	"github.com/abgdnv/catalog/internal/catalog"
)

// inMemory implements CatalogStore with slices and a set of pairs. IDs are sequential numbers.
type inMemory struct {
	mu       sync.RWMutex
	products []catalog.Product
	stores   []catalog.Store
	pairs    map[catalog.Pair]struct{}
	nextID   int
}

// NewInMemoryStore creates a new, empty CatalogStore.
func NewInMemoryStore() CatalogStore {
	return &inMemory{
		pairs:  make(map[catalog.Pair]struct{}),
		nextID: 1,
	}
}

func (s *inMemory) newID() catalog.ID {
	id := catalog.ID(strconv.Itoa(s.nextID))
	s.nextID++
	return id
}

func (s *inMemory) ListProducts(_ context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products), nil
}

func (s *inMemory) FindProduct(_ context.Context, id catalog.ID) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.products, id)
	if i < 0 {
		return catalog.Product{}, errors.ErrProductNotFound
	}
	return s.products[i], nil
}

func (s *inMemory) CreateProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.newID()
	s.products = append(s.products, p)
	return p, nil
}

func (s *inMemory) UpdateProduct(_ context.Context, id catalog.ID, p catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.products, id)
	if i < 0 {
		return catalog.Product{}, errors.ErrProductNotFound
	}
	p.ID = id
	s.products[i] = p
	return p, nil
}

func (s *inMemory) DeleteProduct(_ context.Context, id catalog.ID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.products, id)
	if i < 0 {
		return 0, errors.ErrProductNotFound
	}
	s.products = slices.Delete(s.products, i, i+1)
	return s.dropPairs(func(p catalog.Pair) bool { return p.ProductID == id }), nil
}

func (s *inMemory) ListStores(_ context.Context) ([]catalog.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.stores), nil
}

func (s *inMemory) FindStore(_ context.Context, id catalog.ID) (catalog.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.stores, id)
	if i < 0 {
		return catalog.Store{}, errors.ErrStoreNotFound
	}
	return s.stores[i], nil
}

func (s *inMemory) CreateStore(_ context.Context, st catalog.Store) (catalog.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.ID = s.newID()
	s.stores = append(s.stores, st)
	return st, nil
}

func (s *inMemory) UpdateStore(_ context.Context, id catalog.ID, st catalog.Store) (catalog.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.stores, id)
	if i < 0 {
		return catalog.Store{}, errors.ErrStoreNotFound
	}
	st.ID = id
	s.stores[i] = st
	return st, nil
}

func (s *inMemory) DeleteStore(_ context.Context, id catalog.ID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.stores, id)
	if i < 0 {
		return 0, errors.ErrStoreNotFound
	}
	s.stores = slices.Delete(s.stores, i, i+1)
	return s.dropPairs(func(p catalog.Pair) bool { return p.StoreID == id }), nil
}

func (s *inMemory) CreateAssociation(_ context.Context, productID, storeID catalog.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.products, productID) < 0 {
		return false, errors.ErrProductNotFound
	}
	if indexOf(s.stores, storeID) < 0 {
		return false, errors.ErrStoreNotFound
	}
	key := catalog.Pair{ProductID: productID, StoreID: storeID}
	if _, ok := s.pairs[key]; ok {
		return false, nil
	}
	s.pairs[key] = struct{}{}
	return true, nil
}

func (s *inMemory) DeleteAssociation(_ context.Context, productID, storeID catalog.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := catalog.Pair{ProductID: productID, StoreID: storeID}
	if _, ok := s.pairs[key]; !ok {
		return false, nil
	}
	delete(s.pairs, key)
	return true, nil
}

// dropPairs must be called with the write lock held.
func (s *inMemory) dropPairs(match func(catalog.Pair) bool) int64 {
	var n int64
	for p := range s.pairs {
		if match(p) {
			delete(s.pairs, p)
			n++
		}
	}
	return n
}

func indexOf[T catalog.Entity](items []T, id catalog.ID) int {
	return slices.IndexFunc(items, func(it T) bool { return it.Key() == id })
}
