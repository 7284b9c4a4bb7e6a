package store

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a missing record.
var ErrNotFound = errors.New("record not found")

// ErrorClassifier lets errors declare a classification callers can map to
// messages or exit codes.
type ErrorClassifier interface {
	ErrorKind() string
}

// NotFoundError names the collection and id that were missing.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Collection, e.ID, ErrNotFound)
}

// ErrorKind implements ErrorClassifier.
func (e *NotFoundError) ErrorKind() string { return "not_found" }

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ErrorKind returns the classification of err, or "" when it has none.
func ErrorKind(err error) string {
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	return ""
}

func notFound(collection, id string) error {
	return &NotFoundError{Collection: collection, ID: id}
}
