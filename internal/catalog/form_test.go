package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreForm(gw *fakeGateway) (*Form[Store], *Repository[Store]) {
	repo := NewStoreRepository(gw.stores, discardLogger())
	return NewForm(StoreCodec, repo), repo
}

func Test_FormState_String(t *testing.T) {
	assert.Equal(t, "closed", Closed().String())
	assert.Equal(t, "creating", Creating().String())
	assert.Equal(t, "editing(5)", Editing("5").String())
	assert.Equal(t, "viewing(5)", Viewing("5").String())
	assert.True(t, Viewing("5").ReadOnly())
	assert.False(t, Editing("5").ReadOnly())
}

func Test_Form_SetRevalidatesOnlyThatField(t *testing.T) {
	// given
	form, _ := newStoreForm(newFakeGateway())
	form.OpenCreate()
	_, err := form.Submit(context.Background())
	require.ErrorIs(t, err, ErrValidation)
	require.Len(t, form.Errors(), 3)

	// when
	require.NoError(t, form.Set("ciudad", "BO"))

	// then
	assert.Equal(t, "El código de ciudad debe tener 3 caracteres.", form.Errors()["ciudad"])
	assert.Contains(t, form.Errors(), "nombre")

	// when
	require.NoError(t, form.Set("ciudad", "BOG"))

	// then
	assert.NotContains(t, form.Errors(), "ciudad")
	assert.Len(t, form.Errors(), 2)
}

func Test_Form_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - create closes the form", func(t *testing.T) {
		gw := newFakeGateway()
		form, repo := newStoreForm(gw)
		form.OpenCreate()
		require.NoError(t, form.Set("nombre", "Sur"))
		require.NoError(t, form.Set("ciudad", "CAL"))
		require.NoError(t, form.Set("direccion", "Av 3"))

		saved, err := form.Submit(ctx)

		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, ModeClosed, form.State().Mode())
		assert.Equal(t, 1, repo.Len())
	})

	t.Run("Success - edit updates the selected id", func(t *testing.T) {
		gw := newFakeGateway()
		gw.stores.items = []Store{centro}
		form, repo := newStoreForm(gw)
		require.NoError(t, repo.Refresh(ctx))
		require.NoError(t, form.OpenEdit(centro))
		assert.Equal(t, Editing(centro.ID), form.State())
		require.NoError(t, form.Set("direccion", "Calle 99"))

		_, err := form.Submit(ctx)

		require.NoError(t, err)
		got, ok := repo.Find(centro.ID)
		require.True(t, ok)
		assert.Equal(t, "Calle 99", got.Direccion)
		assert.Equal(t, 1, gw.stores.calls["update"])
	})

	t.Run("Error - remote failure keeps values", func(t *testing.T) {
		gw := newFakeGateway()
		gw.stores.err = errBackendDown
		form, _ := newStoreForm(gw)
		form.OpenCreate()
		require.NoError(t, form.Set("nombre", "Sur"))
		require.NoError(t, form.Set("ciudad", "CAL"))
		require.NoError(t, form.Set("direccion", "Av 3"))

		_, err := form.Submit(ctx)

		assert.ErrorIs(t, err, ErrRemote)
		assert.Equal(t, ModeCreating, form.State().Mode())
		assert.Equal(t, "Sur", form.Values()["nombre"])
	})

	t.Run("Error - validation never calls the backend", func(t *testing.T) {
		gw := newFakeGateway()
		form, _ := newStoreForm(gw)
		form.OpenCreate()
		require.NoError(t, form.Set("ciudad", "BO"))

		_, err := form.Submit(ctx)

		assert.ErrorIs(t, err, ErrValidation)
		assert.Zero(t, gw.stores.calls["create"])
	})
}

func Test_Form_ClosedAndReadOnly(t *testing.T) {
	form, _ := newStoreForm(newFakeGateway())

	assert.ErrorIs(t, form.Set("nombre", "x"), ErrFormClosed)
	_, err := form.Submit(context.Background())
	assert.ErrorIs(t, err, ErrFormClosed)

	require.NoError(t, form.OpenView(centro))
	assert.Equal(t, "BOG", form.Values()["ciudad"])
	assert.ErrorIs(t, form.Set("nombre", "x"), ErrFormReadOnly)
	_, err = form.Submit(context.Background())
	assert.ErrorIs(t, err, ErrFormReadOnly)

	assert.ErrorIs(t, form.OpenEdit(Store{Nombre: "sin id"}), ErrSelection)

	form.OpenCreate()
	assert.Error(t, form.Set("telefono", "123"))
}

func Test_ProductCodec_RoundTrip(t *testing.T) {
	values := ProductCodec.Encode(leche)
	assert.Equal(t, map[string]string{"nombre": "Leche", "precio": "2.5", "tipo": "Perecedero"}, values)

	got := ProductCodec.Decode(values)
	got.ID = leche.ID
	assert.Equal(t, leche, got)
}
