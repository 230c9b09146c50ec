package domain

import "github.com/pkg/errors"

// ErrConfiguration aborts the whole report request. It is never retried.
var ErrConfiguration = errors.New("invalid configuration")

// ErrNotFound signals that a remote resource does not exist. The engine
// treats it as "record absent", not as a failure.
var ErrNotFound = errors.New("resource not found")
