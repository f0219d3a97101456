package api

import (
	"github.com/joestump/linkhub/internal/accounts"
	"github.com/joestump/linkhub/internal/links"
)

// TokenResponse is the data of register, login and OIDC callback responses.
type TokenResponse struct {
	Token string `json:"token"`
}

// UserResponse is the data of GET /api/user/me.
type UserResponse struct {
	User *accounts.AccountView `json:"user"`
}

// LinkResponse is the data of single-link responses.
type LinkResponse struct {
	Link *links.Link `json:"link"`
}

// LinkListResponse is the data of GET /api/links.
type LinkListResponse struct {
	Links []*links.Link `json:"links"`
}

// HealthResponse is the body of GET /health_check.
type HealthResponse struct {
	Status string `json:"status"`
}

// The envelopes below exist for the API docs; handlers build responses with
// the respond package.

// TokenEnvelope wraps TokenResponse.
type TokenEnvelope struct {
	Data  *TokenResponse `json:"data"`
	Error *ErrorObject   `json:"error"`
}

// UserEnvelope wraps UserResponse.
type UserEnvelope struct {
	Data  *UserResponse `json:"data"`
	Error *ErrorObject  `json:"error"`
}

// LinkEnvelope wraps LinkResponse.
type LinkEnvelope struct {
	Data  *LinkResponse `json:"data"`
	Error *ErrorObject  `json:"error"`
}

// LinkListEnvelope wraps LinkListResponse.
type LinkListEnvelope struct {
	Data  *LinkListResponse `json:"data"`
	Error *ErrorObject      `json:"error"`
}

// EmptyEnvelope is a success with nothing to return: both fields are null.
type EmptyEnvelope struct {
	Data  *struct{} `json:"data"`
	Error *struct{} `json:"error"`
}

// ErrorEnvelope is the shape of every failed response.
type ErrorEnvelope struct {
	Data  *struct{}    `json:"data"`
	Error *ErrorObject `json:"error"`
}

// ErrorObject carries a message and, for validation failures, per-field codes.
type ErrorObject struct {
	Message string       `json:"message"`
	Error   *FieldErrors `json:"error"`
}

// FieldErrors maps JSON field names to violation codes such as "invalid length".
type FieldErrors struct {
	Fields map[string]string `json:"fields"`
}
