package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ValidateStore(t *testing.T) {
	testCases := []struct {
		name     string
		store    Store
		expected FieldErrors
	}{
		{
			name:     "Success - valid store",
			store:    Store{Nombre: "Centro", Ciudad: "BOG", Direccion: "Calle 1"},
			expected: FieldErrors{},
		},
		{
			name:  "Error - every field missing",
			store: Store{},
			expected: FieldErrors{
				"nombre":    "El nombre es obligatorio.",
				"ciudad":    "La ciudad es obligatoria.",
				"direccion": "La dirección es obligatoria.",
			},
		},
		{
			name:     "Error - blank nombre after trim",
			store:    Store{Nombre: "   ", Ciudad: "BOG", Direccion: "Calle 1"},
			expected: FieldErrors{"nombre": "El nombre es obligatorio."},
		},
		{
			name:     "Error - ciudad too short",
			store:    Store{Nombre: "Centro", Ciudad: "BO", Direccion: "Calle 1"},
			expected: FieldErrors{"ciudad": "El código de ciudad debe tener 3 caracteres."},
		},
		{
			name:     "Error - ciudad too long",
			store:    Store{Nombre: "Centro", Ciudad: "BOGO", Direccion: "Calle 1"},
			expected: FieldErrors{"ciudad": "El código de ciudad debe tener 3 caracteres."},
		},
		{
			name:     "Success - ciudad counts characters, not bytes",
			store:    Store{Nombre: "Centro", Ciudad: "ÑÓÁ", Direccion: "Calle 1"},
			expected: FieldErrors{},
		},
		{
			name:     "Success - ciudad counts characters, not words",
			store:    Store{Nombre: "Centro", Ciudad: "A B", Direccion: "Calle 1"},
			expected: FieldErrors{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			got := ValidateStore(tc.store)
			// then
			assert.Equal(t, tc.expected, got)
		})
	}
}

func Test_ValidateProduct(t *testing.T) {
	testCases := []struct {
		name     string
		nombre   string
		precio   string
		tipo     string
		expected []string
	}{
		{name: "Success - perecedero", nombre: "Leche", precio: "2.5", tipo: "Perecedero"},
		{name: "Success - free product", nombre: "Muestra", precio: "0", tipo: "NoPerecedero"},
		{name: "Success - form spelling of tipo", nombre: "Arroz", precio: "1", tipo: "No perecedero"},
		{name: "Error - empty form", expected: []string{"nombre", "precio", "tipo"}},
		{name: "Error - non-numeric precio", nombre: "Leche", precio: "abc", tipo: "Perecedero", expected: []string{"precio"}},
		{name: "Error - negative precio", nombre: "Leche", precio: "-1", tipo: "Perecedero", expected: []string{"precio"}},
		{name: "Error - unknown tipo", nombre: "Leche", precio: "1", tipo: "Congelado", expected: []string{"tipo"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			_, errs := ParseProduct(tc.nombre, tc.precio, tc.tipo)
			// then
			keys := make([]string, 0, len(errs))
			for k := range errs {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tc.expected, keys)
		})
	}
}

func Test_ValidateField(t *testing.T) {
	// given
	s := Store{Nombre: "", Ciudad: "BO", Direccion: ""}

	// when
	msg, invalid, err := ValidateField(s, "ciudad")

	// then
	require.NoError(t, err)
	assert.True(t, invalid)
	assert.Equal(t, "El código de ciudad debe tener 3 caracteres.", msg)

	s.Ciudad = "BOG"
	msg, invalid, err = ValidateField(s, "ciudad")
	require.NoError(t, err)
	assert.False(t, invalid, "the other invalid fields must not leak into the ciudad result")
	assert.Empty(t, msg)

	_, _, err = ValidateField(s, "telefono")
	assert.Error(t, err)
}

func Test_ParseTipo(t *testing.T) {
	assert.Equal(t, Perecedero, ParseTipo(" perecedero "))
	assert.Equal(t, NoPerecedero, ParseTipo("No perecedero"))
	assert.Equal(t, NoPerecedero, ParseTipo("NO_PERECEDERO"))
	assert.Equal(t, Tipo("Congelado"), ParseTipo("Congelado"))
}
