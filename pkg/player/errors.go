package player

import "fmt"

// InitializationError reports a failed engine start or sample load. The
// player stays uninitialized, so Initialize may simply be called again.
type InitializationError struct {
	Cause error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("player: initialization failed: %v", e.Cause)
}

func (e *InitializationError) Unwrap() error { return e.Cause }

// NotInitializedError reports an operation that needs a ready engine.
type NotInitializedError struct {
	Op string
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("player: %s requires a successful Initialize", e.Op)
}

// InvalidNoteError reports a note name outside the reference table.
type InvalidNoteError struct {
	Name string
}

func (e *InvalidNoteError) Error() string {
	return fmt.Sprintf("player: unknown note %q", e.Name)
}
