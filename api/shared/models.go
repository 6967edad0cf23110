/* models.go
 * This file contains the structs and enums that are shared between sub packages
 */

package shared

// User identifies the person a prediction belongs to
type User struct {
	UserID   string
	Username string
}

// Outcome is the categorical result of a single match. Every pick is
// normalized to one of these three values before it reaches the scoring
// engine; the engine never sees raw scorelines or user input.
type Outcome string

const (
	OutcomeHome Outcome = "HOME"
	OutcomeAway Outcome = "AWAY"
	OutcomeDraw Outcome = "DRAW"
)

// Valid reports whether o is one of the three canonical outcomes
func (o Outcome) Valid() bool {
	return o == OutcomeHome || o == OutcomeAway || o == OutcomeDraw
}
