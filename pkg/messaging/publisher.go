// Package messaging defines the events the catalog backend emits and the publisher contract.
package messaging

import (
	"context"
)

// Subjects published by the catalog backend. All live under the catalog.> wildcard.
const (
	SubjectWildcard           = "catalog.>"
	ProductSavedSubject       = "catalog.productos.saved"
	ProductDeletedSubject     = "catalog.productos.deleted"
	StoreSavedSubject         = "catalog.tiendas.saved"
	StoreDeletedSubject       = "catalog.tiendas.deleted"
	AssociationCreatedSubject = "catalog.asociaciones.created"
	AssociationDeletedSubject = "catalog.asociaciones.deleted"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
