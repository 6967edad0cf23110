/* outcome.go
 * Contains the outcome resolver and the pick normalizer. Everything past
 * this boundary works on the canonical three-way outcome only.
 */

package engine

import (
	"fmt"
	"strconv"
	"strings"

	"pool-tracker/api/shared"
)

// ResolveOutcome derives the categorical outcome of a finished match from
// its scores. Pure and total over non-negative integers; callers must not
// invoke it for unfinished matches.
func ResolveOutcome(scoreHome int, scoreAway int) shared.Outcome {
	switch {
	case scoreHome > scoreAway:
		return shared.OutcomeHome
	case scoreHome < scoreAway:
		return shared.OutcomeAway
	default:
		return shared.OutcomeDraw
	}
}

// ParsePick normalizes a raw user pick into a canonical outcome. Accepted
// forms are the categorical words ("home", "away", "draw"), the 1X2
// shorthand ("1", "2", "x") and a literal scoreline ("2-1"), which is
// resolved through ResolveOutcome. Anything else is a ValidationError.
func ParsePick(raw string) (shared.Outcome, error) {
	pick := strings.ToLower(strings.TrimSpace(raw))

	switch pick {
	case "home", "1":
		return shared.OutcomeHome, nil
	case "away", "2":
		return shared.OutcomeAway, nil
	case "draw", "x":
		return shared.OutcomeDraw, nil
	}

	// Scoreline path: "2-1" means whatever outcome those scores resolve to
	if home, away, ok := splitScoreline(pick); ok {
		return ResolveOutcome(home, away), nil
	}

	return "", &shared.ValidationError{Reason: fmt.Sprintf("invalid pick %q: expected home/away/draw, 1/x/2 or a scoreline like 2-1", raw)}
}

// splitScoreline parses "h-a" into two non-negative integers
func splitScoreline(s string) (int, int, bool) {
	left, right, found := strings.Cut(s, "-")
	if !found {
		return 0, 0, false
	}
	home, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil || home < 0 {
		return 0, 0, false
	}
	away, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil || away < 0 {
		return 0, 0, false
	}
	return home, away, true
}
