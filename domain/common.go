package domain

import (
	"errors"
	"sort"
	"strings"
)

const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

var (
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedParseBody      = "failed to parse request body"
	MessageFailedParseID        = "failed to parse id"
	MessageInternalServerError  = "internal server error"

	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	ErrTokenInvalid    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenRevoked    = errors.New("token has been revoked")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
	ErrParseID         = errors.New("invalid id")
)

type PageQuery struct {
	Page  int
	Limit int
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// FieldError binds a validation failure to the request field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects field errors. errors.Is matches any contained sentinel.
type ValidationErrors []*FieldError

func (v *ValidationErrors) Add(field string, err error) {
	*v = append(*v, &FieldError{Field: field, Err: err})
}

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, fe := range v {
		errs = append(errs, fe)
	}
	return errs
}

// Fields groups messages by field name, keeping insertion order per field.
func (v ValidationErrors) Fields() map[string][]string {
	out := make(map[string][]string, len(v))
	for _, fe := range v {
		out[fe.Field] = append(out[fe.Field], fe.Err.Error())
	}
	return out
}

func (v ValidationErrors) FieldNames() []string {
	names := make([]string, 0, len(v))
	for name := range v.Fields() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
