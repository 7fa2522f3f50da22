package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
)

// DateLayout is the only accepted calendar date format (dd/mm/yyyy).
const DateLayout = "02/01/2006"

var (
	datePattern  = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// Validator provides validation functionality
type Validator interface {
	Validate(obj interface{}) error
	ValidateField(field string, value interface{}, rules string) error
}

type validate struct {
	engine   *validator.Validate
	messages map[string]string
}

// New returns a validator with the clinic-specific tags registered:
// notblank, ddmmyyyy, phone10 and posint.
func New() Validator {
	engine := validator.New(validator.WithRequiredStructEnabled())

	engine.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	custom := map[string]validator.Func{
		"notblank": func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
		"ddmmyyyy": func(fl validator.FieldLevel) bool {
			return IsDate(fl.Field().String())
		},
		"phone10": func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		},
		"posint": func(fl validator.FieldLevel) bool {
			_, err := ParseQuantity(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range custom {
		if err := engine.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}

	return &validate{
		engine: engine,
		messages: map[string]string{
			"required": "%s is required",
			"notblank": "%s must not be blank",
			"ddmmyyyy": "%s must be a valid date in dd/mm/yyyy format",
			"phone10":  "%s must be exactly 10 digits",
			"posint":   "%s must be a positive integer",
			"gt":       "%s must be greater than %s",
			"max":      "%s must not exceed %s characters",
			"min":      "%s must be at least %s characters long",
		},
	}
}

func (v *validate) Validate(obj interface{}) error {
	return v.translate(v.engine.Struct(obj), "")
}

func (v *validate) ValidateField(field string, value interface{}, rules string) error {
	return v.translate(v.engine.Var(value, rules), field)
}

// translate turns the first validation failure into a ValidationFailed error
// naming the offending field.
func (v *validate) translate(err error, field string) error {
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}

	fe := errs[0]
	name := field
	if name == "" {
		name = fe.Field()
	}

	tmpl, ok := v.messages[fe.Tag()]
	if !ok {
		return apperrors.ValidationFailed(name, fmt.Sprintf("%s failed %s validation", name, fe.Tag()))
	}
	if fe.Param() != "" {
		return apperrors.ValidationFailed(name, fmt.Sprintf(tmpl, name, fe.Param()))
	}
	return apperrors.ValidationFailed(name, fmt.Sprintf(tmpl, name))
}

// ParseDate parses a dd/mm/yyyy string into a calendar date, rejecting
// both malformed strings and impossible dates such as 31/02/2024.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("date %q is not in dd/mm/yyyy format", s)
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not a valid calendar date: %w", s, err)
	}
	return d, nil
}

// IsDate reports whether s is a valid dd/mm/yyyy calendar date.
func IsDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// ParseQuantity parses a prescription quantity. Surrounding whitespace is
// ignored; the value must be a positive integer that fits the 32-bit
// quantity column.
func ParseQuantity(s string) (int, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("quantity %q is too large", s)
	}
	if err != nil {
		return 0, fmt.Errorf("quantity %q is not an integer", s)
	}
	n := int(v)
	if n <= 0 {
		return 0, fmt.Errorf("quantity %d is not positive", n)
	}
	return n, nil
}
