// Package apperr define la taxonomía de errores que cruza services y handlers.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"vet-clinic/internal/platform/logger"
)

type Kind string

const (
	KindBadRequest   Kind = "BAD_REQUEST"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindServer       Kind = "SERVER_ERROR"
)

// Error lleva un mensaje apto para el cliente. Err (la causa) nunca se expone,
// solo se loguea.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) *Error   { return &Error{Kind: KindBadRequest, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }

func Server(msg string, cause error) *Error {
	return &Error{Kind: KindServer, Message: msg, Err: cause}
}

// KindOf devuelve KindServer para errores que no son *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindServer
}

// Is compara sólo Kind + Message, así los tests pueden usar errors.Is contra
// un error construido con el mismo constructor.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func Status(err error) int {
	switch KindOf(err) {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Write serializa {"error": msg}. Los 5xx se loguean con la causa; el cliente
// sólo ve el mensaje genérico.
func Write(w http.ResponseWriter, log logger.Logger, err error) {
	status := Status(err)

	msg := "internal error"
	var ae *Error
	if errors.As(err, &ae) {
		msg = ae.Message
	}

	if status >= http.StatusInternalServerError && log != nil {
		log.Error(msg, map[string]any{"err": err.Error()})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
