package planning

import (
	"errors"
	"fmt"
)

// Domain errors for planning operations.
var (
	// ErrNoImprovement indicates a fast search never reached a state better than the initial one.
	ErrNoImprovement = errors.New("no improvement over initial state")

	// ErrEmptyCatalogue indicates no actions were available to plan with.
	ErrEmptyCatalogue = errors.New("action catalogue is empty")

	// ErrInvalidDuration indicates an action duration that is not strictly positive.
	ErrInvalidDuration = errors.New("action duration must be positive")

	// ErrEmptyLabel indicates an action without a label.
	ErrEmptyLabel = errors.New("action label is required")

	// ErrDuplicateLabel indicates two actions share a label.
	ErrDuplicateLabel = errors.New("duplicate action label")

	// ErrInvalidValue indicates a NaN or infinite numeric value.
	ErrInvalidValue = errors.New("value must be a finite number")

	// ErrEmptyProperty indicates a goal or delta without a property identifier.
	ErrEmptyProperty = errors.New("property identifier is required")

	// ErrNegativeWeight indicates a goal weight below zero.
	ErrNegativeWeight = errors.New("goal weight must not be negative")

	// ErrUnknownKind indicates a comparison kind that has not been registered.
	ErrUnknownKind = errors.New("unknown comparison kind")

	// ErrDuplicateKind indicates a comparison kind registered twice.
	ErrDuplicateKind = errors.New("comparison kind already registered")

	// ErrUnknownAlgorithm indicates an unsupported search algorithm.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrUnknownMode indicates an unsupported solution mode.
	ErrUnknownMode = errors.New("unknown solution mode")

	// ErrInvalidBound indicates a depth bound below one.
	ErrInvalidBound = errors.New("depth bound must be positive")

	// ErrInvalidSchedule indicates hybrid schedule parameters out of range.
	ErrInvalidSchedule = errors.New("invalid hybrid schedule")
)

// Failure is returned when a search terminates without producing a plan.
// It carries the amount of work done so callers can tell whether a larger
// bound or step ceiling would help.
type Failure struct {
	// Reason is ErrNoImprovement or ErrEmptyCatalogue.
	Reason error
	// Expanded is the number of nodes expanded before the search stopped.
	Expanded int
	// MaxDepth is the deepest path length explored.
	MaxDepth int
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("planning failed: %v (expanded %d nodes, max depth %d)", f.Reason, f.Expanded, f.MaxDepth)
}

// Unwrap returns the underlying reason.
func (f *Failure) Unwrap() error {
	return f.Reason
}
