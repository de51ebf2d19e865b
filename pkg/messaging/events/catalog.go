package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/catalog/pkg/messaging"
)

// Op tells whether a saved entity was created or updated.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
)

// Carrier holds the propagated trace context of the request that caused the event.
type Carrier map[string]string

type ProductSavedEvent struct {
	Carrier   Carrier   `json:"carrier,omitempty"`
	ProductID string    `json:"product_id"`
	Op        Op        `json:"op"`
	Nombre    string    `json:"nombre"`
	Precio    float64   `json:"precio"`
	Tipo      string    `json:"tipo"`
	At        time.Time `json:"at"`
}

func (e ProductSavedEvent) Subject() string { return messaging.ProductSavedSubject }

func (e ProductSavedEvent) Payload() ([]byte, error) { return json.Marshal(e) }

type StoreSavedEvent struct {
	Carrier   Carrier   `json:"carrier,omitempty"`
	StoreID   string    `json:"store_id"`
	Op        Op        `json:"op"`
	Nombre    string    `json:"nombre"`
	Ciudad    string    `json:"ciudad"`
	Direccion string    `json:"direccion"`
	At        time.Time `json:"at"`
}

func (e StoreSavedEvent) Subject() string { return messaging.StoreSavedSubject }

func (e StoreSavedEvent) Payload() ([]byte, error) { return json.Marshal(e) }

// EntityDeletedEvent is emitted for product and store deletes. Associations removed by the
// cascade are counted so consumers do not need a second event per pair.
type EntityDeletedEvent struct {
	Carrier      Carrier   `json:"carrier,omitempty"`
	Kind         string    `json:"kind"`
	ID           string    `json:"id"`
	Associations int64     `json:"associations_removed"`
	At           time.Time `json:"at"`
}

func (e EntityDeletedEvent) Subject() string {
	if e.Kind == "tienda" {
		return messaging.StoreDeletedSubject
	}
	return messaging.ProductDeletedSubject
}

func (e EntityDeletedEvent) Payload() ([]byte, error) { return json.Marshal(e) }

type AssociationEvent struct {
	Carrier   Carrier   `json:"carrier,omitempty"`
	ProductID string    `json:"product_id"`
	StoreID   string    `json:"store_id"`
	Removed   bool      `json:"-"`
	At        time.Time `json:"at"`
}

func (e AssociationEvent) Subject() string {
	if e.Removed {
		return messaging.AssociationDeletedSubject
	}
	return messaging.AssociationCreatedSubject
}

func (e AssociationEvent) Payload() ([]byte, error) { return json.Marshal(e) }
