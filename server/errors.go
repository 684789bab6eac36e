package main

import "errors"

// Sentinel errors shared by the store and the HTTP layer. Handlers wrap
// these with context via %w and errStatus maps them to response codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)
