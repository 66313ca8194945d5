// Package reqerr carries the request-level error taxonomy and renders
// it as the registry's JSON error envelope.
package reqerr

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type Kind int

const (
	// KindNotFound: the addressed package does not exist.
	KindNotFound Kind = iota
	// KindForbidden: authenticated but insufficient rights.
	KindForbidden
	// KindUnprocessable: a business rule denied the request; retrying
	// helps only once the underlying condition changes.
	KindUnprocessable
	// KindUnauthenticated: no valid caller identity.
	KindUnauthenticated
	// KindTransient: the store could not complete the transaction;
	// the whole request is safe to retry.
	KindTransient
)

func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindUnauthenticated:
		return http.StatusForbidden
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind   Kind
	Detail string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Detail, e.cause)
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func NotFound(detail string) *Error      { return New(KindNotFound, detail) }
func Forbidden(detail string) *Error     { return New(KindForbidden, detail) }
func Unprocessable(detail string) *Error { return New(KindUnprocessable, detail) }

// Transient wraps an infrastructure failure. The cause is kept for
// logs; the caller only ever sees the generic detail.
func Transient(cause error) *Error {
	return &Error{
		Kind:   KindTransient,
		Detail: "the registry is temporarily unable to process this request, please try again later",
		cause:  cause,
	}
}

type detail struct {
	Detail string `json:"detail"`
}

type envelope struct {
	Errors []detail `json:"errors"`
}

// WriteJSON renders the error envelope the way the API has always
// done: {"errors":[{"detail":"..."}]} with the kind's status code.
func WriteJSON(w http.ResponseWriter, e *Error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Kind.Status())
	json.NewEncoder(w).Encode(envelope{Errors: []detail{{Detail: e.Detail}}})
}
