package catalog

import (
	"context"
	"iter"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Gateway is everything the session needs from the backend.
type Gateway interface {
	AssociationGateway
	Products() EntityGateway[Product]
	Stores() EntityGateway[Store]
}

// Session is one operator's view of the catalog.
type Session struct {
	Products     *Repository[Product]
	Stores       *Repository[Store]
	Associations *AssociationCache
}

// NewSession wires the repositories to the association cache so deletes reconcile it.
func NewSession(gw Gateway, logger *slog.Logger) *Session {
	s := &Session{
		Products:     NewProductRepository(gw.Products(), logger),
		Stores:       NewStoreRepository(gw.Stores(), logger),
		Associations: NewAssociationCache(gw, logger),
	}
	s.Products.OnDelete(s.Associations)
	s.Stores.OnDelete(s.Associations)
	return s
}

// Load refreshes both collections concurrently.
func (s *Session) Load(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Products.Refresh(gCtx) })
	g.Go(func() error { return s.Stores.Refresh(gCtx) })
	return g.Wait()
}

// Associated yields the resolvable associations against the current snapshots.
func (s *Session) Associated() iter.Seq[Resolved] {
	return s.Associations.ListResolved(s.Products, s.Stores)
}
