package api

import "errors"

// Sentinel errors for identity resolution. These never reach clients
// directly; requireAuth collapses them all into a 401.
var (
	errInvalidAuthHeader = errors.New("invalid authorization header format")
	errNoCredentials     = errors.New("no credentials presented")
)
