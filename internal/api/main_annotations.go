// @title           linkhub API
// @version         1.0
// @description     Authenticated short-link service. Register or log in to obtain a bearer token.
// @BasePath        /
// @securityDefinitions.apikey BearerToken
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and the token returned by login. Example: "Bearer eyJhbGciOi..."

// Package api is the JSON-over-HTTP surface: routing, middleware, and the
// handlers translating service results into response envelopes.
package api
