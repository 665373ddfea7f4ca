package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/fiscal-coupon-api/internal/model"
	"github.com/fairyhunter13/fiscal-coupon-api/pkg/document"
)

// Violation is a single failed constraint on a request field.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Message renders the violation the way it is surfaced to API callers.
func (v Violation) Message() string {
	return "invalid request: " + v.Field + " " + v.Reason
}

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
//
// Field names in validation errors are the JSON names of the request DTOs.
func New() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Register custom "notblank" validator - rejects whitespace-only strings
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return strings.TrimSpace(str) != ""
	})

	// cpf and cnpj expect digits-only input; request DTOs sanitize first.
	_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String && document.ValidCPF(fl.Field().String())
	})
	_ = v.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String && document.ValidCNPJ(fl.Field().String())
	})

	// cents accepts amounts the valor column stores without rounding.
	_ = v.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			return model.ValidAmount(fl.Field().Float())
		default:
			return false
		}
	})

	return v
}

// Violations flattens a validator error into field/reason pairs, in struct
// field order. Errors that did not come from the validator yield a single
// request-level violation.
func Violations(err error) []Violation {
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []Violation{{Field: "body", Reason: "is invalid"}}
	}

	out := make([]Violation, 0, len(ve))
	for _, fe := range ve {
		out = append(out, Violation{Field: fe.Field(), Reason: reason(fe)})
	}
	return out
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "cannot be whitespace only"
	case "max":
		return "exceeds maximum length of " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	case "cents":
		return "must have at most two decimal places"
	case "cpf":
		return "is not a valid CPF"
	case "cnpj":
		return "is not a valid CNPJ"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "is invalid"
	}
}
