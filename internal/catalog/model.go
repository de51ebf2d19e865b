// Package catalog holds the client-side state of the catalog: the product and store
// repositories, the association cache and the validation rules applied before any write.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a backend-assigned identifier. The backend may send it as a JSON number or a string,
// the client always handles it as an opaque string.
type ID string

// UnmarshalJSON accepts both numeric and string identifiers.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid identifier %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes canonical integers back as numbers so numeric backends get what they sent.
func (id ID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// Kind names an entity collection.
type Kind string

const (
	KindProduct Kind = "producto"
	KindStore   Kind = "tienda"
)

// Tipo is the product perishability class.
type Tipo string

const (
	Perecedero   Tipo = "Perecedero"
	NoPerecedero Tipo = "NoPerecedero"
)

// ParseTipo normalizes user input such as "no perecedero" or "NO_PERECEDERO".
// Unknown values are returned unchanged so validation can report them.
func ParseTipo(s string) Tipo {
	key := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case "perecedero":
		return Perecedero
	case "noperecedero":
		return NoPerecedero
	}
	return Tipo(strings.TrimSpace(s))
}

// Product is a catalog product.
type Product struct {
	ID     ID      `json:"id,omitempty"`
	Nombre string  `json:"nombre" validate:"notblank"`
	Precio float64 `json:"precio" validate:"finite,gte=0"`
	Tipo   Tipo    `json:"tipo"   validate:"required,oneof=Perecedero NoPerecedero"`
}

// Key returns the product identifier.
func (p Product) Key() ID { return p.ID }

// Store is a physical store. Ciudad is a three character city code.
type Store struct {
	ID        ID     `json:"id,omitempty"`
	Nombre    string `json:"nombre"    validate:"notblank"`
	Ciudad    string `json:"ciudad"    validate:"notblank,len=3"`
	Direccion string `json:"direccion" validate:"notblank"`
}

// Key returns the store identifier.
func (s Store) Key() ID { return s.ID }

// Entity is the set of records a Repository can hold.
type Entity interface {
	Product | Store
	Key() ID
}

// Pair is one known association between a product and a store.
type Pair struct {
	ProductID ID `json:"productId"`
	StoreID   ID `json:"storeId"`
}

// Resolved is an association whose ids both resolve in their repositories.
type Resolved struct {
	Product Product `json:"product"`
	Store   Store   `json:"store"`
}
