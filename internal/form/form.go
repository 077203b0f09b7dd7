// Package form parses text form inputs into typed values.
package form

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"policyvault/internal/format"
)

var (
	ErrMissing       = errors.New("missing field")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// FieldError ties a parse failure to the input it came from.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Code is the API error code for a parse failure.
func Code(err error) string {
	var fe *FieldError
	switch {
	case errors.As(err, &fe) && errors.Is(err, ErrMissing):
		return "missing_field:" + fe.Field
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	}
	return "invalid_request"
}

// Value is a text input. JSON numbers are accepted and kept as their literal text.
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = Value(n.String())
	return nil
}

func (v Value) Trimmed() string {
	return strings.TrimSpace(string(v))
}

func Required(field string, v Value) (string, error) {
	s := v.Trimmed()
	if s == "" {
		return "", &FieldError{Field: field, Err: ErrMissing}
	}
	return s, nil
}

// Optional returns nil for blank input.
func Optional(v Value) *string {
	s := v.Trimmed()
	if s == "" {
		return nil
	}
	return &s
}

// Amount parses a required finite non-negative number.
func Amount(field string, v Value) (float64, error) {
	s, err := Required(field, v)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0, &FieldError{Field: field, Err: ErrInvalidAmount}
	}
	return n, nil
}

// OptionalAmount is Amount for inputs that may be left blank.
func OptionalAmount(field string, v Value) (*float64, error) {
	if v.Trimmed() == "" {
		return nil, nil
	}
	n, err := Amount(field, v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Date parses a required YYYY-MM-DD input.
func Date(field string, v Value) (time.Time, error) {
	s, err := Required(field, v)
	if err != nil {
		return time.Time{}, err
	}
	t, err := format.ParseDateFromInput(s)
	if err != nil {
		return time.Time{}, &FieldError{Field: field, Err: ErrInvalidDate}
	}
	return t, nil
}
