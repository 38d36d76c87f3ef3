package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports an entity that is absent or not owned by the caller.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ProviderError reports a failed places lookup for one category.
type ProviderError struct {
	Category string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("places lookup for %s: %v", e.Category, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// PersistenceError reports a failed store read or write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsProvider(err error) bool {
	var target *ProviderError
	return errors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}

// storeError maps gorm.ErrRecordNotFound to a NotFoundError for entity and
// wraps everything else as a PersistenceError.
func storeError(op, entity string, id uint, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return &PersistenceError{Op: op, Err: err}
}
