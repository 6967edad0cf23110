/* errors.go
 * Typed errors raised by the engine and store. Single-entity operations fail
 * fast with one of these; batch operations collect per-item failures into
 * their summary instead of aborting.
 */

package shared

import "fmt"

// NotFoundError means a referenced match or prediction does not exist
type NotFoundError struct {
	Kind string // "match", "prediction", "podium"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// InvalidStateError means an operation's precondition is not met, e.g.
// scoring a match that has not finished or re-submitting a prediction
type InvalidStateError struct {
	Op     string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// ValidationError means the input itself is malformed, e.g. an incomplete
// or duplicated podium declaration
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
