package service

import (
	"errors"
	"fmt"

	"github.com/goplaynow/playdate-api/internal/store"
)

// Error kinds. Every error returned by Service matches exactly one of them
// with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("not allowed")
	ErrStore        = errors.New("store error")
)

// OpError records which operation failed on which record.
type OpError struct {
	Op   string
	ID   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	msg := e.Op
	if e.ID != "" {
		msg += " " + e.ID
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", msg, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", msg, e.Kind)
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func invalid(op, id, format string, args ...any) error {
	return &OpError{Op: op, ID: id, Kind: ErrValidation, Err: fmt.Errorf(format, args...)}
}

func unauthorized(op, id, reason string) error {
	return &OpError{Op: op, ID: id, Kind: ErrUnauthorized, Err: errors.New(reason)}
}

// storeFailure classifies an error coming back from the store. Missing rows
// become ErrNotFound, anything else ErrStore.
func storeFailure(op, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &OpError{Op: op, ID: id, Kind: ErrNotFound, Err: err}
	}
	return &OpError{Op: op, ID: id, Kind: ErrStore, Err: err}
}
