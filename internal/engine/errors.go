package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/collcopy/internal/ir"
)

// RuntimeError is a fatal engine error. Once returned, the engine is in
// StateFailed and the enclosing run must stop.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Kind is the collection kind the engine was configured with.
	Kind ir.Kind

	// Name is the offending collection name, if any.
	Name string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes fatal errors.
type RuntimeErrorCode string

const (
	// ErrCodeEmptyName indicates an empty source or destination name.
	ErrCodeEmptyName RuntimeErrorCode = "EMPTY_NAME"

	// ErrCodeUnknownKind indicates a kind outside cells/clusters/tracks.
	ErrCodeUnknownKind RuntimeErrorCode = "UNKNOWN_KIND"

	// ErrCodeNameCollision indicates the destination name already exists.
	ErrCodeNameCollision RuntimeErrorCode = "NAME_COLLISION"

	// ErrCodeCollectionNotFound indicates a source or destination lookup miss.
	ErrCodeCollectionNotFound RuntimeErrorCode = "COLLECTION_NOT_FOUND"

	// ErrCodeKindMismatch indicates a collection found by name holds another
	// kind or record type than the engine copies.
	ErrCodeKindMismatch RuntimeErrorCode = "KIND_MISMATCH"

	// ErrCodeCountMismatch indicates source and destination differ in size
	// after a copy.
	ErrCodeCountMismatch RuntimeErrorCode = "COUNT_MISMATCH"

	// ErrCodeNotInitialized indicates Copy was called before Initialize.
	ErrCodeNotInitialized RuntimeErrorCode = "NOT_INITIALIZED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (kind=%s, name=%q)", e.Code, e.Message, e.Kind, e.Name)
	}
	return fmt.Sprintf("%s: %s (kind=%s)", e.Code, e.Message, e.Kind)
}

// IsFatal reports whether err is, or wraps, a RuntimeError.
func IsFatal(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re)
}

// HasCode reports whether err is, or wraps, a RuntimeError with the code.
func HasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// ErrorCode returns the code of a RuntimeError, or "" for other errors.
func ErrorCode(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsNameCollision returns true if the destination name was already taken.
func IsNameCollision(err error) bool {
	return HasCode(err, ErrCodeNameCollision)
}

// IsCountMismatch returns true if a post-copy count check failed.
func IsCountMismatch(err error) bool {
	return HasCode(err, ErrCodeCountMismatch)
}

// IsCollectionNotFound returns true if a lookup by name missed.
func IsCollectionNotFound(err error) bool {
	return HasCode(err, ErrCodeCollectionNotFound)
}

// NewEmptyNameError creates a RuntimeError for an empty configured name.
func NewEmptyNameError(kind ir.Kind, role string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeEmptyName,
		Message: fmt.Sprintf("%s collection name is empty, please set a valid name", role),
		Kind:    kind,
		Details: map[string]string{"role": role},
	}
}

// NewUnknownKindError creates a RuntimeError for an unrecognized kind.
func NewUnknownKindError(kind ir.Kind) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownKind,
		Message: fmt.Sprintf("unrecognized input object type %d", int(kind)),
		Kind:    kind,
	}
}

// NewNameCollisionError creates a RuntimeError for a destination name that
// already exists in the record.
func NewNameCollisionError(kind ir.Kind, name string) *RuntimeError {
	return &RuntimeError{
		Code: ErrCodeNameCollision,
		Message: fmt.Sprintf("attempted to create a new %s collection with the same name as an existing collection; "+
			"check the configuration, perhaps %q was used incorrectly", kind, UseDefault),
		Kind: kind,
		Name: name,
	}
}

// NewCollectionNotFoundError creates a RuntimeError for a lookup miss.
func NewCollectionNotFoundError(kind ir.Kind, role, name string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeCollectionNotFound,
		Message: fmt.Sprintf("%s collection not found in event", role),
		Kind:    kind,
		Name:    name,
		Details: map[string]string{"role": role},
	}
}

// NewKindMismatchError creates a RuntimeError for a collection of the wrong
// shape found under a configured name.
func NewKindMismatchError(kind ir.Kind, name, found string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeKindMismatch,
		Message: fmt.Sprintf("collection holds %s, engine copies %s", found, kind),
		Kind:    kind,
		Name:    name,
		Details: map[string]string{"found": found},
	}
}

// NewCountMismatchError creates a RuntimeError for a post-copy size check.
func NewCountMismatchError(kind ir.Kind, name string, source, dest int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeCountMismatch,
		Message: fmt.Sprintf("number of source entries %d != number of new entries %d", source, dest),
		Kind:    kind,
		Name:    name,
		Details: map[string]string{
			"source": fmt.Sprintf("%d", source),
			"dest":   fmt.Sprintf("%d", dest),
		},
	}
}
