// Package respond writes every API response in one envelope:
//
//	{"data": T | null, "error": {"message": string, "error": E | null} | null}
//
// Handlers build a Response with Success, Error, SimpleError or StatusOnly
// and call Write; they never encode JSON shapes themselves.
package respond

import (
	"encoding/json"
	"net/http"
)

// None is the payload type for an envelope half that is always null.
type None struct{}

// ErrorObject is the "error" member of the envelope. Error carries optional
// structured detail such as per-field validation failures.
type ErrorObject[E any] struct {
	Message string `json:"message"`
	Error   *E     `json:"error"`
}

// Envelope is the wire shape shared by all responses.
type Envelope[T, E any] struct {
	Data  *T              `json:"data"`
	Error *ErrorObject[E] `json:"error"`
}

// Response pairs an envelope with its HTTP status.
type Response[T, E any] struct {
	Status int
	Body   Envelope[T, E]
}

// Success returns a response carrying data.
func Success[T any](data T, status int) Response[T, None] {
	return Response[T, None]{Status: status, Body: Envelope[T, None]{Data: &data}}
}

// Error returns an error response. detail may be nil for a message-only error.
func Error[E any](detail *E, message string, status int) Response[None, E] {
	return Response[None, E]{
		Status: status,
		Body:   Envelope[None, E]{Error: &ErrorObject[E]{Message: message, Error: detail}},
	}
}

// SimpleError returns an error response with a message and no detail.
func SimpleError(message string, status int) Response[None, None] {
	return Error[None](nil, message, status)
}

// StatusOnly returns a response whose envelope has neither data nor error.
func StatusOnly(status int) Response[None, None] {
	return Response[None, None]{Status: status}
}

// Write encodes the response to w.
func (r Response[T, E]) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.Status)
	_ = json.NewEncoder(w).Encode(r.Body)
}
