package models

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("not authorized")
	ErrVerificationFailed = errors.New("payment verification failed")
	// ErrConflict signals transaction contention on the release path. It is
	// retried internally and never surfaced to callers.
	ErrConflict = errors.New("persistence conflict")
)
