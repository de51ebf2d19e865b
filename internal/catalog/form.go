package catalog

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
)

// Mode is the state of an entity form.
type Mode int

const (
	ModeClosed Mode = iota
	ModeCreating
	ModeEditing
	ModeViewing
)

func (m Mode) String() string {
	switch m {
	case ModeClosed:
		return "closed"
	case ModeCreating:
		return "creating"
	case ModeEditing:
		return "editing"
	case ModeViewing:
		return "viewing"
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// FormState is Closed, Creating, Editing(id) or Viewing(id).
// Editing and Viewing always carry an id.
type FormState struct {
	mode Mode
	id   ID
}

// Closed is the state of a form that shows nothing.
func Closed() FormState { return FormState{mode: ModeClosed} }

// Creating is the state of a blank form that will create a new record on submit.
func Creating() FormState { return FormState{mode: ModeCreating} }

// Editing is the state of a form prefilled with record id that will update it on submit.
func Editing(id ID) FormState { return FormState{mode: ModeEditing, id: id} }

// Viewing is the read-only state showing record id.
func Viewing(id ID) FormState { return FormState{mode: ModeViewing, id: id} }

func (s FormState) Mode() Mode { return s.mode }

// ID returns the record being edited or viewed, empty otherwise.
func (s FormState) ID() ID { return s.id }

// ReadOnly reports whether Set and Submit are refused.
func (s FormState) ReadOnly() bool { return s.mode == ModeViewing }

func (s FormState) String() string {
	if s.id == "" {
		return s.mode.String()
	}
	return fmt.Sprintf("%s(%s)", s.mode, s.id)
}

var (
	ErrFormClosed   = errors.New("form is closed")
	ErrFormReadOnly = errors.New("form is read-only")
)

// Codec converts between a record and the raw string values of its form.
type Codec[T Entity] struct {
	Fields   []string
	Decode   func(values map[string]string) T
	Encode   func(rec T) map[string]string
	Validate func(rec T) FieldErrors
}

// ProductCodec binds the nombre, precio and tipo fields.
var ProductCodec = Codec[Product]{
	Fields: []string{"nombre", "precio", "tipo"},
	Decode: func(v map[string]string) Product {
		p, _ := ParseProduct(v["nombre"], v["precio"], v["tipo"])
		return p
	},
	Encode: func(p Product) map[string]string {
		return map[string]string{
			"nombre": p.Nombre,
			"precio": strconv.FormatFloat(p.Precio, 'f', -1, 64),
			"tipo":   string(p.Tipo),
		}
	},
	Validate: ValidateProduct,
}

// StoreCodec binds the nombre, ciudad and direccion fields.
var StoreCodec = Codec[Store]{
	Fields: []string{"nombre", "ciudad", "direccion"},
	Decode: func(v map[string]string) Store {
		return Store{Nombre: v["nombre"], Ciudad: v["ciudad"], Direccion: v["direccion"]}
	},
	Encode: func(s Store) map[string]string {
		return map[string]string{"nombre": s.Nombre, "ciudad": s.Ciudad, "direccion": s.Direccion}
	},
	Validate: ValidateStore,
}

// Writer is the write side of a Repository.
type Writer[T Entity] interface {
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id ID, rec T) (T, error)
}

// Form is the editing state of one create/edit/view dialog.
type Form[T Entity] struct {
	codec  Codec[T]
	repo   Writer[T]
	state  FormState
	values map[string]string
	errors FieldErrors
}

// NewForm returns a closed form.
func NewForm[T Entity](codec Codec[T], repo Writer[T]) *Form[T] {
	f := &Form[T]{codec: codec, repo: repo}
	f.Close()
	return f
}

func (f *Form[T]) State() FormState { return f.state }

// Values returns a copy of the raw field values.
func (f *Form[T]) Values() map[string]string { return maps.Clone(f.values) }

// Errors returns a copy of the current field errors.
func (f *Form[T]) Errors() FieldErrors { return maps.Clone(f.errors) }

// OpenCreate opens an empty form for a new record.
func (f *Form[T]) OpenCreate() {
	f.reset(Creating(), f.blank())
}

// OpenEdit opens the form on an existing record.
func (f *Form[T]) OpenEdit(rec T) error {
	if rec.Key() == "" {
		return &SelectionError{Missing: []string{"id"}}
	}
	f.reset(Editing(rec.Key()), f.codec.Encode(rec))
	return nil
}

// OpenView opens the form read-only on an existing record.
func (f *Form[T]) OpenView(rec T) error {
	if rec.Key() == "" {
		return &SelectionError{Missing: []string{"id"}}
	}
	f.reset(Viewing(rec.Key()), f.codec.Encode(rec))
	return nil
}

// Close discards values and errors.
func (f *Form[T]) Close() {
	f.reset(Closed(), f.blank())
}

func (f *Form[T]) reset(state FormState, values map[string]string) {
	f.state = state
	f.values = values
	f.errors = FieldErrors{}
}

func (f *Form[T]) blank() map[string]string {
	v := make(map[string]string, len(f.codec.Fields))
	for _, name := range f.codec.Fields {
		v[name] = ""
	}
	return v
}

// Set changes one field and re-validates only that field, so its error clears as soon
// as the value becomes valid while errors on other fields are left as they were.
func (f *Form[T]) Set(field, value string) error {
	switch f.state.mode {
	case ModeClosed:
		return ErrFormClosed
	case ModeViewing:
		return ErrFormReadOnly
	}
	if _, ok := f.values[field]; !ok {
		return fmt.Errorf("unknown field %q", field)
	}
	f.values[field] = value
	msg, invalid, err := ValidateField(f.codec.Decode(f.values), field)
	if err != nil {
		return err
	}
	if invalid {
		f.errors[field] = msg
	} else {
		delete(f.errors, field)
	}
	return nil
}

// Submit validates every field and then creates or updates the record depending on the
// state. The form closes on success and stays open with its values on failure.
func (f *Form[T]) Submit(ctx context.Context) (T, error) {
	var zero T
	switch f.state.mode {
	case ModeClosed:
		return zero, ErrFormClosed
	case ModeViewing:
		return zero, ErrFormReadOnly
	}
	rec := f.codec.Decode(f.values)
	f.errors = f.codec.Validate(rec)
	if len(f.errors) > 0 {
		return zero, &ValidationError{Fields: f.Errors()}
	}

	var (
		saved T
		err   error
	)
	if f.state.mode == ModeEditing {
		saved, err = f.repo.Update(ctx, f.state.id, rec)
	} else {
		saved, err = f.repo.Create(ctx, rec)
	}
	if err != nil && !errors.Is(err, ErrFetch) {
		return zero, err
	}
	f.Close()
	return saved, err
}
