package application

import "errors"

var (
	// ErrCorruptMemo indicates a memo entry that does not decode to a plan.
	ErrCorruptMemo = errors.New("corrupt plan memo entry")

	// ErrLifecycle indicates the planning lifecycle could not be started.
	ErrLifecycle = errors.New("planning lifecycle unavailable")
)
