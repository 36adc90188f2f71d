// Package authenticator declares the middleware contract the router needs
// from the auth layer.
package authenticator

import "net/http"

// Authenticator puts the token owner, if any, into the request context.
type Authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler
}

// Anonymous treats every request as unauthenticated.
type Anonymous struct{}

// AuthenticateUser returns h unchanged.
func (Anonymous) AuthenticateUser(h http.Handler) http.Handler {
	return h
}
