// Package repository holds the storage implementations used by the
// booking service and the auth handlers.  Sentinel errors defined here
// let handlers distinguish failure scenarios without inspecting driver
// errors.  Reservation lookups report booking.ErrNotFound so that the
// booking core can match on a single sentinel regardless of the store.
package repository

import "errors"

// ErrEmailExists is returned by UserRepo.Create when the email is
// already registered.  Handlers translate it into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches a lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrTokenInvalid is returned when a refresh token is unknown, revoked or
// expired.  Handlers translate it into an HTTP 401 response.
var ErrTokenInvalid = errors.New("invalid refresh token")
