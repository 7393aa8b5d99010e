package cytoframe

import (
	"errors"
	"fmt"

	"github.com/hupe1980/cytoframe/blobstore"
	"github.com/hupe1980/cytoframe/compensation"
	"github.com/hupe1980/cytoframe/container"
	"github.com/hupe1980/cytoframe/events"
	"github.com/hupe1980/cytoframe/internal/resource"
	"github.com/hupe1980/cytoframe/keyword"
	"github.com/hupe1980/cytoframe/param"
)

// Error kinds returned by Frame operations. Every error that crosses the
// package boundary wraps exactly one of these, so callers can branch with
// errors.Is while the underlying cause stays reachable.
var (
	// ErrNotFound is returned for unknown column names, keywords and stores.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguousName is returned when an unqualified name matches both a
	// channel and a marker, including a column whose marker equals its own
	// channel.
	ErrAmbiguousName = errors.New("ambiguous column name")

	// ErrAlreadyExists is returned when a rename would collide.
	ErrAlreadyExists = errors.New("already exists")

	// ErrReadOnly is returned by every mutation of a guarded frame.
	ErrReadOnly = errors.New("frame is read-only")

	// ErrInvalidArgument is returned for malformed input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSingularMatrix is returned when a spillover matrix has no inverse.
	ErrSingularMatrix = errors.New("singular spillover matrix")

	// ErrPreconditionFailed is returned when the frame is not in a state
	// that permits the operation.
	ErrPreconditionFailed = errors.New("precondition failed")
)

// ErrCorrupt indicates a store whose content does not decode. It matches
// ErrInvalidArgument and the container error that caused it.
type ErrCorrupt struct {
	Name  string
	cause error
}

func (e *ErrCorrupt) Error() string {
	return fmt.Sprintf("corrupt store %q: %v", e.Name, e.cause)
}

func (e *ErrCorrupt) Unwrap() []error { return []error{ErrInvalidArgument, e.cause} }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Already classified.
	for _, kind := range []error{
		ErrNotFound, ErrAmbiguousName, ErrAlreadyExists, ErrReadOnly,
		ErrInvalidArgument, ErrSingularMatrix, ErrPreconditionFailed,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}

	switch {
	case errors.Is(err, param.ErrNotFound),
		errors.Is(err, keyword.ErrNotFound),
		errors.Is(err, blobstore.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, param.ErrAmbiguous):
		return fmt.Errorf("%w: %w", ErrAmbiguousName, err)
	case errors.Is(err, param.ErrExists):
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	case errors.Is(err, param.ErrNotIndexed),
		errors.Is(err, resource.ErrMemoryLimitExceeded):
		return fmt.Errorf("%w: %w", ErrPreconditionFailed, err)
	case errors.Is(err, compensation.ErrSingular):
		return fmt.Errorf("%w: %w", ErrSingularMatrix, err)
	case errors.Is(err, param.ErrInvalidColType),
		errors.Is(err, param.ErrOutOfRange),
		errors.Is(err, compensation.ErrMalformed),
		errors.Is(err, keyword.ErrInvalidTime),
		errors.Is(err, events.ErrShape),
		errors.Is(err, events.ErrIndex),
		errors.Is(err, events.ErrEmpty):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return err
}

func corrupt(name string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, container.ErrInvalidMagic),
		errors.Is(err, container.ErrInvalidVersion),
		errors.Is(err, container.ErrNoDataset),
		errors.Is(err, container.ErrCorrupted),
		errors.Is(err, container.ErrType):
		return &ErrCorrupt{Name: name, cause: err}
	}
	return translateError(err)
}
