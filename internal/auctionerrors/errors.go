package auctionerrors

import (
	"errors"
	"sort"
	"strings"
)

// Repository-level errors
var (
	ErrNotFound            = errors.New("not found")
	ErrReferentialConflict = errors.New("record is still referenced by bids")
	ErrUsernameTaken       = errors.New("username already taken")
)

// Field validation errors
var (
	ErrInvalidPrice       = errors.New("price must be a positive amount with at most 2 decimal places")
	ErrProhibitedContent  = errors.New("text contains prohibited language")
	ErrFieldTooLong       = errors.New("value is too long")
	ErrFieldRequired      = errors.New("this field is required")
	ErrInvalidURL         = errors.New("enter a valid http(s) URL")
	ErrUnknownCategory    = errors.New("category does not exist")
	ErrPasswordMismatch   = errors.New("passwords must match")
	ErrInvalidCredentials = errors.New("invalid username and/or password")
)

// Lifecycle errors
var (
	ErrListingClosed    = errors.New("listing is closed")
	ErrBidTooLow        = errors.New("bid must be at least the asking price")
	ErrBidNotHighEnough = errors.New("bid must be higher than the current highest bid")
	ErrUnauthorized     = errors.New("not allowed to modify this listing")
)

// ValidationError carries every field that failed validation, keyed by form field name.
type ValidationError struct {
	Fields map[string]error
}

// NewValidationError returns an empty ValidationError ready to collect failures.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]error)}
}

// Add records err under field. The first failure per field wins.
func (v *ValidationError) Add(field string, err error) {
	if err == nil {
		return
	}
	if _, exists := v.Fields[field]; exists {
		return
	}
	v.Fields[field] = err
}

// HasErrors reports whether any field failed.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}

// OrNil returns v as an error when it holds failures and nil otherwise.
func (v *ValidationError) OrNil() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

// Messages flattens the failures into field -> message.
func (v *ValidationError) Messages() map[string]string {
	out := make(map[string]string, len(v.Fields))
	for field, err := range v.Fields {
		out[field] = err.Error()
	}
	return out
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v.Fields[k].Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the per-field errors so errors.Is matches any of them.
func (v *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(v.Fields))
	for _, err := range v.Fields {
		errs = append(errs, err)
	}
	return errs
}
