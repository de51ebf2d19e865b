package catalog

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"
)

// AssociationGateway is the write-only association endpoint pair of the backend.
type AssociationGateway interface {
	CreateAssociation(ctx context.Context, productID, storeID ID) error
	DeleteAssociation(ctx context.Context, productID, storeID ID) error
}

// AssociationCache is the set of (product, store) pairs observed during the session.
// The backend has no read endpoint for associations, so this set is only ever built
// from successful associate and disassociate calls. Pairs keep insertion order.
type AssociationCache struct {
	gw     AssociationGateway
	logger *slog.Logger

	mu    sync.RWMutex
	pairs []Pair
	index map[Pair]struct{}
}

// NewAssociationCache returns an empty cache.
func NewAssociationCache(gw AssociationGateway, logger *slog.Logger) *AssociationCache {
	return &AssociationCache{
		gw:     gw,
		logger: logger.With("component", "associations"),
		index:  make(map[Pair]struct{}),
	}
}

// Associate links a product to a store. Both ids are required; a missing one fails with
// a SelectionError without calling the backend. Associating a known pair again is a no-op.
func (c *AssociationCache) Associate(ctx context.Context, productID, storeID ID) error {
	if err := requireSelection(productID, storeID); err != nil {
		return err
	}
	if err := c.gw.CreateAssociation(ctx, productID, storeID); err != nil {
		c.logger.WarnContext(ctx, "associate failed", "product_id", productID, "store_id", storeID, "error", err)
		return asRemote(fmt.Sprintf("associate %s %s", productID, storeID), err)
	}
	p := Pair{ProductID: productID, StoreID: storeID}
	c.mu.Lock()
	if _, ok := c.index[p]; !ok {
		c.index[p] = struct{}{}
		c.pairs = append(c.pairs, p)
	}
	c.mu.Unlock()
	c.logger.DebugContext(ctx, "associated", "product_id", productID, "store_id", storeID)
	return nil
}

// Disassociate removes the link on the backend and forgets the pair if it was known.
func (c *AssociationCache) Disassociate(ctx context.Context, productID, storeID ID) error {
	if err := requireSelection(productID, storeID); err != nil {
		return err
	}
	if err := c.gw.DeleteAssociation(ctx, productID, storeID); err != nil {
		c.logger.WarnContext(ctx, "disassociate failed", "product_id", productID, "store_id", storeID, "error", err)
		return asRemote(fmt.Sprintf("disassociate %s %s", productID, storeID), err)
	}
	c.remove(func(p Pair) bool { return p.ProductID == productID && p.StoreID == storeID })
	c.logger.DebugContext(ctx, "disassociated", "product_id", productID, "store_id", storeID)
	return nil
}

// ReconcileOnEntityDeleted drops every pair that references the deleted entity.
// It never calls the backend.
func (c *AssociationCache) ReconcileOnEntityDeleted(kind Kind, id ID) {
	var n int
	switch kind {
	case KindProduct:
		n = c.remove(func(p Pair) bool { return p.ProductID == id })
	case KindStore:
		n = c.remove(func(p Pair) bool { return p.StoreID == id })
	default:
		return
	}
	if n > 0 {
		c.logger.Debug("reconciled after delete", "kind", string(kind), "id", id, "removed", n)
	}
}

func (c *AssociationCache) remove(match func(Pair) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	before := len(c.pairs)
	c.pairs = slices.DeleteFunc(c.pairs, func(p Pair) bool {
		if match(p) {
			delete(c.index, p)
			return true
		}
		return false
	})
	return before - len(c.pairs)
}

// Contains reports whether the pair is known.
func (c *AssociationCache) Contains(productID, storeID ID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.index[Pair{ProductID: productID, StoreID: storeID}]
	return ok
}

// Len returns the number of known pairs, dangling ones included.
func (c *AssociationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pairs)
}

// Pairs returns a copy of the known pairs in insertion order.
func (c *AssociationCache) Pairs() []Pair {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.pairs)
}

// ListResolved yields the known pairs whose product and store both resolve.
// Pairs with a dangling id are skipped, not removed. Each iteration starts
// from the pairs known at that moment.
func (c *AssociationCache) ListResolved(products Lookup[Product], stores Lookup[Store]) iter.Seq[Resolved] {
	return func(yield func(Resolved) bool) {
		for _, p := range c.Pairs() {
			product, ok := products.Find(p.ProductID)
			if !ok {
				continue
			}
			store, ok := stores.Find(p.StoreID)
			if !ok {
				continue
			}
			if !yield(Resolved{Product: product, Store: store}) {
				return
			}
		}
	}
}

func requireSelection(productID, storeID ID) error {
	var missing []string
	if productID == "" {
		missing = append(missing, string(KindProduct))
	}
	if storeID == "" {
		missing = append(missing, string(KindStore))
	}
	if len(missing) > 0 {
		return &SelectionError{Missing: missing}
	}
	return nil
}
