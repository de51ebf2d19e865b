package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrSelection  = errors.New("selection required")
	ErrFetch      = errors.New("fetch failed")
	ErrRemote     = errors.New("remote call failed")
)

// ValidationError is returned before any network call when a record breaks a field rule.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// SelectionError reports which required selections were missing.
type SelectionError struct {
	Missing []string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSelection, strings.Join(e.Missing, ", "))
}

func (e *SelectionError) Unwrap() error { return ErrSelection }

// FetchError wraps a failed collection refresh.
type FetchError struct {
	Kind Kind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s list: %v", ErrFetch, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{ErrFetch, e.Err} }

// RemoteError is a transport failure (Status 0) or a non-success backend response.
type RemoteError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Status > 0 && e.Body != "":
		return fmt.Sprintf("%s: %s: status %d: %s", ErrRemote, e.Op, e.Status, e.Body)
	case e.Status > 0:
		return fmt.Sprintf("%s: %s: status %d", ErrRemote, e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", ErrRemote, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrRemote, e.Op)
}

func (e *RemoteError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRemote}
	}
	return []error{ErrRemote, e.Err}
}

// asRemote keeps a RemoteError produced by the gateway and wraps anything else.
func asRemote(op string, err error) error {
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}
