// Package errs provides the domain errors shared by the catalog, the tour
// composer and the map placement editor.
//
// Callers match on kind with errors.Is:
//
//	if errors.Is(err, errs.ErrNotFound) {
//	    ...
//	}
//
// or pull the details out with errors.As to report the offending field or key.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a class of domain failure.
type Kind string

const (
	KindValidation       Kind = "VALIDATION"
	KindDuplicateKey     Kind = "DUPLICATE_KEY"
	KindNotFound         Kind = "NOT_FOUND"
	KindInvalidOperation Kind = "INVALID_OPERATION"
	KindIndexOutOfRange  Kind = "INDEX_OUT_OF_RANGE"
	KindPermission       Kind = "PERMISSION"
	KindInvalidSurface   Kind = "INVALID_SURFACE"
)

// HTTPStatus returns the status code a handler should answer with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindIndexOutOfRange:
		return http.StatusBadRequest
	case KindDuplicateKey:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindPermission:
		return http.StatusForbidden
	case KindInvalidOperation, KindInvalidSurface:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrDuplicateKey     = &Error{Kind: KindDuplicateKey}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrInvalidOperation = &Error{Kind: KindInvalidOperation}
	ErrIndexOutOfRange  = &Error{Kind: KindIndexOutOfRange}
	ErrPermission       = &Error{Kind: KindPermission}
	ErrInvalidSurface   = &Error{Kind: KindInvalidSurface}
)

// Error is a domain error. Field is set for validation failures, Key for
// failures tied to a building or tour identity.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Key     string `json:"key,omitempty"`
}

func (e *Error) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	case e.Key != "":
		return fmt.Sprintf("%s: %s", e.Message, e.Key)
	default:
		return e.Message
	}
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of a domain error, or "" for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

func DuplicateKey(key string) *Error {
	return &Error{Kind: KindDuplicateKey, Key: key, Message: "building with this id already exists"}
}

func NotFound(what, key string) *Error {
	return &Error{Kind: KindNotFound, Key: key, Message: what + " not found"}
}

func InvalidOperation(msg string) *Error {
	return &Error{Kind: KindInvalidOperation, Message: msg}
}

func IndexOutOfRange(index, length int) *Error {
	return &Error{
		Kind:    KindIndexOutOfRange,
		Message: fmt.Sprintf("index %d out of range [0,%d)", index, length),
	}
}

func Permission(msg string) *Error {
	return &Error{Kind: KindPermission, Message: msg}
}

func InvalidSurface(width, height float64) *Error {
	return &Error{
		Kind:    KindInvalidSurface,
		Message: fmt.Sprintf("surface %gx%g has not been measured", width, height),
	}
}
