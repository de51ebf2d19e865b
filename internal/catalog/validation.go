package catalog

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a JSON field name to a human-readable message.
type FieldErrors map[string]string

var validate = newValidator()

// messages are keyed by "<field>.<tag>".
var messages = map[string]string{
	"nombre.notblank":    "El nombre es obligatorio.",
	"ciudad.notblank":    "La ciudad es obligatoria.",
	"ciudad.len":         "El código de ciudad debe tener 3 caracteres.",
	"direccion.notblank": "La dirección es obligatoria.",
	"precio.finite":      "El precio debe ser numérico.",
	"precio.gte":         "El precio no puede ser negativo.",
	"tipo.required":      "El tipo es obligatorio.",
	"tipo.oneof":         "El tipo debe ser Perecedero o NoPerecedero.",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("register validation: %v", err))
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// ValidateStore returns an error for every Store field that breaks a rule.
func ValidateStore(s Store) FieldErrors { return validateRecord(s) }

// ValidateProduct returns an error for every Product field that breaks a rule.
func ValidateProduct(p Product) FieldErrors { return validateRecord(p) }

func validateRecord(rec any) FieldErrors {
	out := FieldErrors{}
	err := validate.Struct(rec)
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return out
}

func message(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	return fmt.Sprintf("El campo %s no es válido (%s).", field, tag)
}

// ValidateField re-validates a single field of rec. It returns the message for that field
// and whether the field is currently invalid; other fields are not inspected.
func ValidateField[T Entity](rec T, field string) (string, bool, error) {
	rv := reflect.ValueOf(rec)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if jsonName(sf) != field {
			continue
		}
		tag := sf.Tag.Get("validate")
		if tag == "" {
			return "", false, nil
		}
		err := validate.Var(rv.Field(i).Interface(), tag)
		if err == nil {
			return "", false, nil
		}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return message(field, verrs[0].Tag()), true, nil
		}
		return "", false, err
	}
	return "", false, fmt.Errorf("unknown field %q", field)
}

// ParseProduct builds a Product from raw form input. A price that is not a number is
// reported as a precio field error.
func ParseProduct(nombre, precio, tipo string) (Product, FieldErrors) {
	p := Product{Nombre: nombre, Precio: parsePrecio(precio), Tipo: ParseTipo(tipo)}
	return p, ValidateProduct(p)
}

func parsePrecio(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
