package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/abgdnv/catalog/internal/catalog"
)

// Resource is one REST collection, such as /productos, exposed as a catalog.EntityGateway.
type Resource[T catalog.Entity] struct {
	c    *Client
	path string
}

// NewResource binds the collection at path on c.
func NewResource[T catalog.Entity](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path}
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	data, err := r.c.do(ctx, http.MethodGet, nil, r.path)
	if err != nil {
		return nil, err
	}
	items := []T{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, r.decodeErr(http.MethodGet, err)
	}
	return items, nil
}

// Create posts rec and returns the stored record. A backend that answers with an empty
// body gets rec echoed back; the caller refetches anyway.
func (r *Resource[T]) Create(ctx context.Context, rec T) (T, error) {
	data, err := r.c.do(ctx, http.MethodPost, rec, r.path)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.decodeOne(http.MethodPost, data, rec)
}

func (r *Resource[T]) Update(ctx context.Context, id catalog.ID, rec T) (T, error) {
	data, err := r.c.do(ctx, http.MethodPut, rec, r.path, string(id))
	if err != nil {
		var zero T
		return zero, err
	}
	return r.decodeOne(http.MethodPut, data, rec)
}

func (r *Resource[T]) Delete(ctx context.Context, id catalog.ID) error {
	_, err := r.c.do(ctx, http.MethodDelete, nil, r.path, string(id))
	return err
}

func (r *Resource[T]) decodeOne(method string, data []byte, fallback T) (T, error) {
	if len(data) == 0 {
		return fallback, nil
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, r.decodeErr(method, err)
	}
	return out, nil
}

func (r *Resource[T]) decodeErr(method string, err error) error {
	return &catalog.RemoteError{Op: method + " /" + r.path, Err: fmt.Errorf("decode response: %w", err)}
}
