// Package rest provides the HTTP handlers of the catalog backend.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	backenderrors "github.com/abgdnv/catalog/internal/backend/errors"
	"github.com/abgdnv/catalog/internal/backend/service"
	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service  service.CatalogService
	products entityHandler[catalog.Product]
	stores   entityHandler[catalog.Store]
	logger   *slog.Logger
}

// NewHandler creates a new instance of Handler with the provided service.
func NewHandler(svc service.CatalogService, logger *slog.Logger) *Handler {
	logger = logger.With("component", "rest")
	return &Handler{
		service: svc,
		products: entityHandler[catalog.Product]{
			kind:     catalog.KindProduct,
			list:     svc.ListProducts,
			find:     svc.FindProduct,
			create:   svc.CreateProduct,
			update:   svc.UpdateProduct,
			remove:   svc.DeleteProduct,
			validate: catalog.ValidateProduct,
			logger:   logger,
		},
		stores: entityHandler[catalog.Store]{
			kind:     catalog.KindStore,
			list:     svc.ListStores,
			find:     svc.FindStore,
			create:   svc.CreateStore,
			update:   svc.UpdateStore,
			remove:   svc.DeleteStore,
			validate: catalog.ValidateStore,
			logger:   logger,
		},
		logger: logger,
	}
}

// RegisterRoutes registers the HTTP routes of the catalog.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/productos", func(r chi.Router) {
		h.products.register(r, func(r chi.Router) {
			r.Post("/tiendas/{storeId}", h.Associate)
			r.Delete("/tiendas/{storeId}", h.Disassociate)
		})
	})
	r.Route("/tiendas", func(r chi.Router) {
		h.stores.register(r)
	})
	r.Get("/healthz", h.HealthCheck)
}

// Associate links a product and a store. Linking twice is not an error.
func (h *Handler) Associate(w http.ResponseWriter, r *http.Request) {
	productID, storeID, ok := h.pairParams(w, r)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to associate", "product_id", productID, "store_id", storeID)
	if err := h.service.Associate(r.Context(), productID, storeID); err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to associate product and store")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Disassociate unlinks a product and a store. Unlinking an absent pair is not an error.
func (h *Handler) Disassociate(w http.ResponseWriter, r *http.Request) {
	productID, storeID, ok := h.pairParams(w, r)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to disassociate", "product_id", productID, "store_id", storeID)
	if err := h.service.Disassociate(r.Context(), productID, storeID); err != nil {
		respondServiceError(w, r, h.logger, err, "Failed to disassociate product and store")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pairParams(w http.ResponseWriter, r *http.Request) (catalog.ID, catalog.ID, bool) {
	productID, ok := web.PathParam(w, r, h.logger, "id")
	if !ok {
		return "", "", false
	}
	storeID, ok := web.PathParam(w, r, h.logger, "storeId")
	if !ok {
		return "", "", false
	}
	return catalog.ID(productID), catalog.ID(storeID), true
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// entityHandler serves the collection routes of one entity kind.
type entityHandler[T catalog.Entity] struct {
	kind     catalog.Kind
	list     func(ctx context.Context) ([]T, error)
	find     func(ctx context.Context, id catalog.ID) (T, error)
	create   func(ctx context.Context, rec T) (T, error)
	update   func(ctx context.Context, id catalog.ID, rec T) (T, error)
	remove   func(ctx context.Context, id catalog.ID) error
	validate func(T) catalog.FieldErrors
	logger   *slog.Logger
}

// register mounts the collection and item routes. extra adds routes below /{id}.
func (e entityHandler[T]) register(r chi.Router, extra ...func(chi.Router)) {
	r.Get("/", e.List)
	r.Post("/", e.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", e.Find)
		r.Put("/", e.Update)
		r.Delete("/", e.Delete)
		for _, fn := range extra {
			fn(r)
		}
	})
}

func (e entityHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	items, err := e.list(r.Context())
	if err != nil {
		respondServiceError(w, r, e.logger, err, fmt.Sprintf("Failed to list %s", e.kind))
		return
	}
	if items == nil {
		items = []T{}
	}
	e.logger.DebugContext(r.Context(), "Listed records", "kind", e.kind, "count", len(items))
	web.RespondJSON(w, e.logger, http.StatusOK, items)
}

func (e entityHandler[T]) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathParam(w, r, e.logger, "id")
	if !ok {
		return
	}
	found, err := e.find(r.Context(), catalog.ID(id))
	if err != nil {
		respondServiceError(w, r, e.logger, err, fmt.Sprintf("Failed to retrieve %s %s", e.kind, id))
		return
	}
	web.RespondJSON(w, e.logger, http.StatusOK, found)
}

func (e entityHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	rec, ok := e.decode(w, r)
	if !ok {
		return
	}
	created, err := e.create(r.Context(), rec)
	if err != nil {
		respondServiceError(w, r, e.logger, err, fmt.Sprintf("Failed to create %s", e.kind))
		return
	}
	e.logger.InfoContext(r.Context(), "Record created", "kind", e.kind, "id", created.Key())
	web.RespondJSON(w, e.logger, http.StatusCreated, created)
}

// Update replaces the record at the path id. An id in the body is ignored.
func (e entityHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathParam(w, r, e.logger, "id")
	if !ok {
		return
	}
	rec, ok := e.decode(w, r)
	if !ok {
		return
	}
	updated, err := e.update(r.Context(), catalog.ID(id), rec)
	if err != nil {
		respondServiceError(w, r, e.logger, err, fmt.Sprintf("Failed to update %s %s", e.kind, id))
		return
	}
	e.logger.InfoContext(r.Context(), "Record updated", "kind", e.kind, "id", id)
	web.RespondJSON(w, e.logger, http.StatusOK, updated)
}

func (e entityHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathParam(w, r, e.logger, "id")
	if !ok {
		return
	}
	if err := e.remove(r.Context(), catalog.ID(id)); err != nil {
		respondServiceError(w, r, e.logger, err, fmt.Sprintf("Failed to delete %s %s", e.kind, id))
		return
	}
	e.logger.InfoContext(r.Context(), "Record deleted", "kind", e.kind, "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (e entityHandler[T]) decode(w http.ResponseWriter, r *http.Request) (T, bool) {
	var rec T
	if err := web.DecodeJSON(r, &rec); err != nil {
		e.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, e.logger, http.StatusBadRequest, "Invalid request body")
		return rec, false
	}
	if fields := e.validate(rec); len(fields) > 0 {
		e.logger.WarnContext(r.Context(), "Validation errors occurred", "kind", e.kind, "errors", fields)
		web.RespondValidation(w, e.logger, fields)
		return rec, false
	}
	return rec, true
}

func respondServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, message string) {
	switch {
	case errors.Is(err, backenderrors.ErrProductNotFound), errors.Is(err, backenderrors.ErrStoreNotFound):
		logger.WarnContext(r.Context(), "Record not found", "error", err)
		web.RespondError(w, logger, http.StatusNotFound, err.Error())
	default:
		logger.ErrorContext(r.Context(), message, "error", err)
		web.RespondError(w, logger, http.StatusInternalServerError, message)
	}
}
