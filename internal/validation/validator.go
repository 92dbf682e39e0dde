package validation

import (
	"errors"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneShape = regexp.MustCompile(`^\+?[\d\s-]{10,}$`)
	whitespace = regexp.MustCompile(`\s`)
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	v.RegisterValidation("trimrequired", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// trimmin passes on blank input so it can guard optional fields too.
	v.RegisterValidation("trimmin", func(fl validator.FieldLevel) bool {
		value := strings.TrimSpace(fl.Field().String())
		if value == "" {
			return true
		}
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf8.RuneCountInString(value) >= n
	})

	v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})

	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if strings.TrimSpace(value) == "" {
			return true
		}
		return IsPhone(value)
	})

	v.RegisterValidation("floors", func(fl validator.FieldLevel) bool {
		return IsFloorCount(fl.Field().String())
	})

	return &Validator{v: v}
}

// IsEmail reports whether value has a local@domain.tld shape.
func IsEmail(value string) bool {
	return emailShape.MatchString(value)
}

// IsPhone checks value after all whitespace has been removed.
func IsPhone(value string) bool {
	return phoneShape.MatchString(whitespace.ReplaceAllString(value, ""))
}

// IsFloorCount accepts any finite number >= 1.
func IsFloorCount(value string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return f >= 1
}

func (v *Validator) Struct(s interface{}) error {
	return v.v.Struct(s)
}

func (v *Validator) ValidationErrors(err error) validator.ValidationErrors {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// Fields validates s and returns one message per failing field. The result
// is empty, never nil, when s is valid.
func (v *Validator) Fields(s interface{}) FieldErrors {
	out := FieldErrors{}
	err := v.v.Struct(s)
	if err == nil {
		return out
	}
	errs := v.ValidationErrors(err)
	if errs == nil {
		out["form"] = "Invalid form"
		return out
	}
	for _, fe := range errs {
		out[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return out
}
