// Package validation rejects input that the unescaped CSV formats cannot
// store faithfully, before any read or write happens.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/statuslog/internal/ir"
)

// Error describes every rejected field of one input value.
type Error struct {
	// Subject names what was being validated, e.g. a key or "subject".
	Subject string

	// Fields lists the rejected fields with a reason each.
	Fields []FieldError
}

// FieldError is one rejected field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Subject, strings.Join(parts, "; "))
}

// IsValidationError returns true if err is or wraps a *Error.
func IsValidationError(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

// Validator checks records, keys and subject names.
//
// Thread-safety: Validator is safe for concurrent use.
type Validator struct {
	v        *validator.Validate
	statuses []string
}

// New returns a Validator accepting the given status catalogue.
// An empty catalogue falls back to ir.DefaultStatuses.
func New(statuses []string) *Validator {
	if len(statuses) == 0 {
		statuses = ir.DefaultStatuses
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for empty tags or nil functions.
	_ = v.RegisterValidation("csvfield", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), ",\r\n")
	})
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v, statuses: slices.Clone(statuses)}
}

// Statuses returns the accepted status catalogue.
func (val *Validator) Statuses() []string {
	return slices.Clone(val.statuses)
}

// Record validates rec's fields and that its status is in the catalogue.
func (val *Validator) Record(subject string, rec ir.Record) error {
	var fields []FieldError
	if err := val.v.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate %s: %w", subject, err)
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Reason: reason(fe.Tag())})
		}
	}
	if rec.Status != "" && !slices.Contains(val.statuses, rec.Status) {
		fields = append(fields, FieldError{
			Field:  "status",
			Reason: fmt.Sprintf("unknown status %q (want one of %s)", rec.Status, strings.Join(val.statuses, ", ")),
		})
	}
	if len(fields) > 0 {
		return &Error{Subject: subject, Fields: fields}
	}
	return nil
}

// Subject validates a subject name and returns its normalised form.
func (val *Validator) Subject(name string) (string, error) {
	norm := ir.NormalizeSubject(name)
	if err := val.v.Var(norm, "required,csvfield"); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return "", &Error{Subject: "subject", Fields: []FieldError{{Field: "subject", Reason: reason(verrs[0].Tag())}}}
		}
		return "", fmt.Errorf("validate subject: %w", err)
	}
	return norm, nil
}

// Key validates a composite key and returns it with its subject normalised.
func (val *Validator) Key(raw string) (ir.Key, error) {
	subject, date, err := ir.ParseKey(strings.TrimSpace(raw))
	if err != nil {
		return "", &Error{Subject: "key", Fields: []FieldError{{Field: "key", Reason: err.Error()}}}
	}
	subject, err = val.Subject(subject)
	if err != nil {
		return "", err
	}
	return ir.MakeKey(subject, date), nil
}

// Entry validates both the key and the record of e.
func (val *Validator) Entry(e ir.Entry) (ir.Entry, error) {
	key, err := val.Key(string(e.Key))
	if err != nil {
		return ir.Entry{}, err
	}
	if err := val.Record(string(key), e.Record); err != nil {
		return ir.Entry{}, err
	}
	return ir.Entry{Key: key, Record: e.Record}, nil
}

func reason(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "csvfield":
		return "must not contain commas or line breaks"
	case "singleline":
		return "must not contain line breaks"
	default:
		return "failed " + tag
	}
}
