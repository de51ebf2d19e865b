// Package service provides the catalog business logic on top of a CatalogStore.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/catalog/internal/backend/store"
	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// CatalogService defines the operations exposed by the REST transport.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	// FindProduct returns ErrProductNotFound if no product exists with the given ID.
	FindProduct(ctx context.Context, id catalog.ID) (catalog.Product, error)
	CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id catalog.ID, p catalog.Product) (catalog.Product, error)
	// DeleteProduct also removes every association of the product.
	DeleteProduct(ctx context.Context, id catalog.ID) error

	ListStores(ctx context.Context) ([]catalog.Store, error)
	FindStore(ctx context.Context, id catalog.ID) (catalog.Store, error)
	CreateStore(ctx context.Context, s catalog.Store) (catalog.Store, error)
	UpdateStore(ctx context.Context, id catalog.ID, s catalog.Store) (catalog.Store, error)
	DeleteStore(ctx context.Context, id catalog.ID) error

	// Associate is idempotent: linking an already linked pair succeeds without an event.
	Associate(ctx context.Context, productID, storeID catalog.ID) error
	// Disassociate succeeds for pairs that were never linked.
	Disassociate(ctx context.Context, productID, storeID catalog.ID) error
}

// Service implements CatalogService and publishes an event after every successful write.
type Service struct {
	store     store.CatalogStore
	publisher messaging.Publisher
	logger    *slog.Logger
	writes    metric.Int64Counter
	now       func() time.Time
}

// NewService creates a new instance of CatalogService.
func NewService(catalogStore store.CatalogStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("catalogd")
	writes, err := meter.Int64Counter("catalog_writes", metric.WithDescription("Total number of catalog writes by kind and operation"))
	if err != nil {
		panic(fmt.Sprintf("failed to create catalog_writes counter: %v", err))
	}
	return &Service{
		store:     catalogStore,
		publisher: publisher,
		logger:    logger.With("component", "catalog_service"),
		writes:    writes,
		now:       time.Now,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.store.ListProducts(ctx)
}

func (s *Service) FindProduct(ctx context.Context, id catalog.ID) (catalog.Product, error) {
	return s.store.FindProduct(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	created, err := s.store.CreateProduct(ctx, p)
	if err != nil {
		return catalog.Product{}, err
	}
	s.productSaved(ctx, created, events.OpCreated)
	return created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id catalog.ID, p catalog.Product) (catalog.Product, error) {
	updated, err := s.store.UpdateProduct(ctx, id, p)
	if err != nil {
		return catalog.Product{}, err
	}
	s.productSaved(ctx, updated, events.OpUpdated)
	return updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id catalog.ID) error {
	removed, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	s.count(ctx, catalog.KindProduct, "deleted")
	s.publish(ctx, events.EntityDeletedEvent{
		Carrier:      carrier(ctx),
		Kind:         string(catalog.KindProduct),
		ID:           string(id),
		Associations: removed,
		At:           s.now(),
	})
	return nil
}

func (s *Service) ListStores(ctx context.Context) ([]catalog.Store, error) {
	return s.store.ListStores(ctx)
}

func (s *Service) FindStore(ctx context.Context, id catalog.ID) (catalog.Store, error) {
	return s.store.FindStore(ctx, id)
}

func (s *Service) CreateStore(ctx context.Context, st catalog.Store) (catalog.Store, error) {
	created, err := s.store.CreateStore(ctx, st)
	if err != nil {
		return catalog.Store{}, err
	}
	s.storeSaved(ctx, created, events.OpCreated)
	return created, nil
}

func (s *Service) UpdateStore(ctx context.Context, id catalog.ID, st catalog.Store) (catalog.Store, error) {
	updated, err := s.store.UpdateStore(ctx, id, st)
	if err != nil {
		return catalog.Store{}, err
	}
	s.storeSaved(ctx, updated, events.OpUpdated)
	return updated, nil
}

func (s *Service) DeleteStore(ctx context.Context, id catalog.ID) error {
	removed, err := s.store.DeleteStore(ctx, id)
	if err != nil {
		return err
	}
	s.count(ctx, catalog.KindStore, "deleted")
	s.publish(ctx, events.EntityDeletedEvent{
		Carrier:      carrier(ctx),
		Kind:         string(catalog.KindStore),
		ID:           string(id),
		Associations: removed,
		At:           s.now(),
	})
	return nil
}

func (s *Service) Associate(ctx context.Context, productID, storeID catalog.ID) error {
	created, err := s.store.CreateAssociation(ctx, productID, storeID)
	if err != nil {
		return err
	}
	if !created {
		s.logger.DebugContext(ctx, "association already present", "product_id", productID, "store_id", storeID)
		return nil
	}
	s.count(ctx, "asociacion", "created")
	s.publish(ctx, events.AssociationEvent{
		Carrier:   carrier(ctx),
		ProductID: string(productID),
		StoreID:   string(storeID),
		At:        s.now(),
	})
	return nil
}

func (s *Service) Disassociate(ctx context.Context, productID, storeID catalog.ID) error {
	removed, err := s.store.DeleteAssociation(ctx, productID, storeID)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}
	s.count(ctx, "asociacion", "deleted")
	s.publish(ctx, events.AssociationEvent{
		Carrier:   carrier(ctx),
		ProductID: string(productID),
		StoreID:   string(storeID),
		Removed:   true,
		At:        s.now(),
	})
	return nil
}

func (s *Service) productSaved(ctx context.Context, p catalog.Product, op events.Op) {
	s.count(ctx, catalog.KindProduct, string(op))
	s.publish(ctx, events.ProductSavedEvent{
		Carrier:   carrier(ctx),
		ProductID: string(p.ID),
		Op:        op,
		Nombre:    p.Nombre,
		Precio:    p.Precio,
		Tipo:      string(p.Tipo),
		At:        s.now(),
	})
}

func (s *Service) storeSaved(ctx context.Context, st catalog.Store, op events.Op) {
	s.count(ctx, catalog.KindStore, string(op))
	s.publish(ctx, events.StoreSavedEvent{
		Carrier:   carrier(ctx),
		StoreID:   string(st.ID),
		Op:        op,
		Nombre:    st.Nombre,
		Ciudad:    st.Ciudad,
		Direccion: st.Direccion,
		At:        s.now(),
	})
}

// publish never fails the write: the store is the source of truth.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "subject", event.Subject(), "error", err)
	}
}

func (s *Service) count(ctx context.Context, kind catalog.Kind, op string) {
	s.writes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("op", op),
	))
}

func carrier(ctx context.Context) events.Carrier {
	c := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, c)
	return events.Carrier(c)
}
