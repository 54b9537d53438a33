package store

import "errors"

// ErrConflict means an append would overlap a booking that is already there.
var ErrConflict = errors.New("conflict")
