package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// EntityGateway is the remote collection a Repository mirrors.
type EntityGateway[T Entity] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id ID, rec T) (T, error)
	Delete(ctx context.Context, id ID) error
}

// DeleteListener is notified after an entity was deleted on the backend.
type DeleteListener interface {
	ReconcileOnEntityDeleted(kind Kind, id ID)
}

// Lookup resolves an id against the current snapshot of a collection.
type Lookup[T Entity] interface {
	Find(id ID) (T, bool)
}

// Repository holds the last fetched snapshot of one collection.
// Create and Update refetch the collection after the write; Delete removes the
// item locally as soon as the backend acknowledges it.
type Repository[T Entity] struct {
	kind      Kind
	gw        EntityGateway[T]
	validate  func(T) FieldErrors
	logger    *slog.Logger
	listeners []DeleteListener

	mu    sync.RWMutex
	items []T
}

// NewRepository creates a Repository for kind backed by gw.
func NewRepository[T Entity](kind Kind, gw EntityGateway[T], validate func(T) FieldErrors, logger *slog.Logger) *Repository[T] {
	return &Repository[T]{
		kind:     kind,
		gw:       gw,
		validate: validate,
		logger:   logger.With("component", "repository", "kind", string(kind)),
	}
}

// NewProductRepository creates the product Repository.
func NewProductRepository(gw EntityGateway[Product], logger *slog.Logger) *Repository[Product] {
	return NewRepository(KindProduct, gw, ValidateProduct, logger)
}

// NewStoreRepository creates the store Repository.
func NewStoreRepository(gw EntityGateway[Store], logger *slog.Logger) *Repository[Store] {
	return NewRepository(KindStore, gw, ValidateStore, logger)
}

// OnDelete registers l to be notified after every successful Delete.
func (r *Repository[T]) OnDelete(l DeleteListener) {
	r.listeners = append(r.listeners, l)
}

// Kind returns the collection kind.
func (r *Repository[T]) Kind() Kind { return r.kind }

// Items returns a copy of the current snapshot in server order.
func (r *Repository[T]) Items() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.items)
}

// Len returns the number of items in the snapshot.
func (r *Repository[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Find returns the item with the given id.
func (r *Repository[T]) Find(id ID) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, it := range r.items {
		if it.Key() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Refresh replaces the snapshot with the backend's current list.
// On failure the snapshot is left unchanged and a FetchError is returned.
func (r *Repository[T]) Refresh(ctx context.Context) error {
	items, err := r.gw.List(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "refresh failed", "error", err)
		return &FetchError{Kind: r.kind, Err: err}
	}
	r.mu.Lock()
	r.items = items
	r.mu.Unlock()
	r.logger.DebugContext(ctx, "snapshot refreshed", "count", len(items))
	return nil
}

// Create validates rec, sends it to the backend and refetches the collection so the
// snapshot carries the server-assigned id. Nothing is inserted locally before that.
// If the write succeeds but the refetch fails, the created record is returned with a FetchError.
func (r *Repository[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if errs := r.validate(rec); len(errs) > 0 {
		return zero, &ValidationError{Fields: errs}
	}
	created, err := r.gw.Create(ctx, rec)
	if err != nil {
		r.logger.WarnContext(ctx, "create failed", "error", err)
		return zero, asRemote(fmt.Sprintf("create %s", r.kind), err)
	}
	r.logger.DebugContext(ctx, "created", "id", created.Key())
	return created, r.Refresh(ctx)
}

// Update validates rec, replaces the record with the given id on the backend and refetches.
func (r *Repository[T]) Update(ctx context.Context, id ID, rec T) (T, error) {
	var zero T
	if id == "" {
		return zero, &SelectionError{Missing: []string{string(r.kind)}}
	}
	if errs := r.validate(rec); len(errs) > 0 {
		return zero, &ValidationError{Fields: errs}
	}
	updated, err := r.gw.Update(ctx, id, rec)
	if err != nil {
		r.logger.WarnContext(ctx, "update failed", "id", id, "error", err)
		return zero, asRemote(fmt.Sprintf("update %s %s", r.kind, id), err)
	}
	r.logger.DebugContext(ctx, "updated", "id", id)
	return updated, r.Refresh(ctx)
}

// Delete removes the record on the backend, then drops it from the snapshot and tells
// the listeners so they can forget references to it.
func (r *Repository[T]) Delete(ctx context.Context, id ID) error {
	if id == "" {
		return &SelectionError{Missing: []string{string(r.kind)}}
	}
	if err := r.gw.Delete(ctx, id); err != nil {
		r.logger.WarnContext(ctx, "delete failed", "id", id, "error", err)
		return asRemote(fmt.Sprintf("delete %s %s", r.kind, id), err)
	}
	r.mu.Lock()
	r.items = slices.DeleteFunc(r.items, func(it T) bool { return it.Key() == id })
	r.mu.Unlock()
	r.logger.DebugContext(ctx, "deleted", "id", id)

	for _, l := range r.listeners {
		l.ReconcileOnEntityDeleted(r.kind, id)
	}
	return nil
}
