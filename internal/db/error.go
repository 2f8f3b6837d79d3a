package db

import (
	"errors"
)

var (
	// ErrRecordNotFound is returned when a referenced document does not exist.
	ErrRecordNotFound = errors.New("document not found")

	// ErrAlreadyFinalized is returned when a notification record already has a
	// terminal status, so the conditional update wrote nothing.
	ErrAlreadyFinalized = errors.New("notification already finalized")
)
