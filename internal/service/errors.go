package service

import "errors"

// ErrImportFormat is returned when an uploaded document cannot be imported.
// Nothing is written in that case.
var ErrImportFormat = errors.New("invalid import format")

// ErrSessionNotFound is returned for an unknown or closed seating session.
var ErrSessionNotFound = errors.New("seating session not found")
