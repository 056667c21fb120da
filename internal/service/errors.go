package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Sentinel errors returned by every service. Handlers translate them to HTTP
// status codes; callers test them with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	// ErrUnavailable means an optional backend (Redis queue, SMTP) is not configured.
	ErrUnavailable = errors.New("service unavailable")

	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrContactHasInvoices = fmt.Errorf("contact has invoices and cannot be deleted: %w", ErrConflict)
	ErrInvoiceNumberRace  = fmt.Errorf("invoice number was taken by a concurrent request, please resubmit: %w", ErrConflict)
)

// ValidationError reports one or more rejected input fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// notFound turns gorm.ErrRecordNotFound into ErrNotFound and passes any other
// error through unchanged.
func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// runTx executes fn inside a DB transaction. If db is nil (unit-test mode
// without a real DB) fn is called with a nil *gorm.DB.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
