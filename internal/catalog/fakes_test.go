package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
)

var errBackendDown = errors.New("backend down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCollection is an in-memory EntityGateway that counts calls.
// Not thread-safe, should be used in sequential tests only.
type fakeCollection[T Entity] struct {
	items   []T
	nextID  int
	setID   func(T, ID) T
	listErr error
	err     error
	calls   map[string]int
}

func newFakeCollection[T Entity](setID func(T, ID) T, items ...T) *fakeCollection[T] {
	return &fakeCollection[T]{items: items, nextID: 100, setID: setID, calls: map[string]int{}}
}

func (f *fakeCollection[T]) List(_ context.Context) ([]T, error) {
	f.calls["list"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]T, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeCollection[T]) Create(_ context.Context, rec T) (T, error) {
	f.calls["create"]++
	if f.err != nil {
		var zero T
		return zero, f.err
	}
	f.nextID++
	rec = f.setID(rec, ID(strconv.Itoa(f.nextID)))
	f.items = append(f.items, rec)
	return rec, nil
}

func (f *fakeCollection[T]) Update(_ context.Context, id ID, rec T) (T, error) {
	f.calls["update"]++
	if f.err != nil {
		var zero T
		return zero, f.err
	}
	rec = f.setID(rec, id)
	for i, it := range f.items {
		if it.Key() == id {
			f.items[i] = rec
		}
	}
	return rec, nil
}

func (f *fakeCollection[T]) Delete(_ context.Context, id ID) error {
	f.calls["delete"]++
	if f.err != nil {
		return f.err
	}
	kept := f.items[:0]
	for _, it := range f.items {
		if it.Key() != id {
			kept = append(kept, it)
		}
	}
	f.items = kept
	return nil
}

// fakeGateway implements Gateway over two fake collections.
type fakeGateway struct {
	products *fakeCollection[Product]
	stores   *fakeCollection[Store]
	assocErr error
	created  []Pair
	deleted  []Pair
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		products: newFakeCollection(func(p Product, id ID) Product { p.ID = id; return p }),
		stores:   newFakeCollection(func(s Store, id ID) Store { s.ID = id; return s }),
	}
}

func (g *fakeGateway) Products() EntityGateway[Product] { return g.products }
func (g *fakeGateway) Stores() EntityGateway[Store] { return g.stores }

func (g *fakeGateway) CreateAssociation(_ context.Context, productID, storeID ID) error {
	if g.assocErr != nil {
		return g.assocErr
	}
	g.created = append(g.created, Pair{ProductID: productID, StoreID: storeID})
	return nil
}

func (g *fakeGateway) DeleteAssociation(_ context.Context, productID, storeID ID) error {
	if g.assocErr != nil {
		return g.assocErr
	}
	g.deleted = append(g.deleted, Pair{ProductID: productID, StoreID: storeID})
	return nil
}

var (
	leche  = Product{ID: "1", Nombre: "Leche", Precio: 2.5, Tipo: Perecedero}
	arroz  = Product{ID: "2", Nombre: "Arroz", Precio: 1.2, Tipo: NoPerecedero}
	centro = Store{ID: "9", Nombre: "Centro", Ciudad: "BOG", Direccion: "Calle 1"}
	norte  = Store{ID: "10", Nombre: "Norte", Ciudad: "MED", Direccion: "Carrera 7"}
)
