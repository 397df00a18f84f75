package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/hotelops/backend/internal/interfaces/http/dto"
)

// SetupValidator configures gin's validator: JSON names in errors and the
// cashier vocabulary tags payment_method, income_category and shift_type.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	tags := map[string]validator.Func{
		"payment_method": func(fl validator.FieldLevel) bool {
			return cashier.PaymentMethod(fl.Field().String()).IsValid()
		},
		"income_category": func(fl validator.FieldLevel) bool {
			return cashier.IncomeCategory(fl.Field().String()).IsValid()
		},
		"shift_type": func(fl validator.FieldLevel) bool {
			return cashier.ShiftType(fl.Field().String()).IsValid()
		},
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}

// ValidationDetails converts binding errors into per-field details.
// It returns nil when err is not a validator error (for example malformed JSON).
func ValidationDetails(err error) []dto.ValidationDetail {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := fieldPath(e)
		details = append(details, dto.ValidationDetail{
			Field:   field,
			Message: field + " " + validationMessage(e),
		})
	}
	return details
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read like lines[0].method.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		if e.Kind() == reflect.String {
			return "must be at most " + e.Param() + " characters"
		}
		return "must be at most " + e.Param()
	case "min":
		return "must be at least " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "uuid":
		return "must be a valid UUID"
	case "datetime":
		return "must be a date in " + e.Param() + " format"
	case "oneof":
		return "must be one of: " + e.Param()
	case "payment_method", "income_category", "shift_type":
		return fmt.Sprintf("%q is not a valid %s", e.Value(), e.Tag())
	default:
		return "is invalid"
	}
}
