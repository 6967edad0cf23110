/* input.go
 * Contains the ingestion boundary: parsing raw submission tokens into
 * normalized picks and matching user-typed team names against the known
 * team list. Nothing past this file sees raw user input.
 */

package api

import (
	"fmt"
	"strings"

	"github.com/go-andiamo/splitter"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"pool-tracker/api/engine"
	"pool-tracker/api/shared"
	"pool-tracker/api/store"
)

// podiumPrefix marks the submission token carrying the podium pick
const podiumPrefix = "podium:"

// NormalizeTeamNames matches user-typed team names against the list of
// valid names with fuzzy matching, preferring an exact hit when several
// candidates rank. It returns the correctly formatted names and the names
// that could not be matched.
func NormalizeTeamNames(inputTeams []string, validTeams []string) ([]string, []string) {
	var formattedTeamNames []string
	var invalidTeams []string

	// Convert to lowercase for better matching
	lookup := make(map[string]string)
	var validTeamsLower []string
	for _, name := range validTeams {
		lower := strings.ToLower(name)
		lookup[lower] = name
		validTeamsLower = append(validTeamsLower, lower)
	}

	for _, team := range inputTeams {
		lowerTeam := strings.ToLower(team)
		fuzzyResults := fuzzy.RankFind(lowerTeam, validTeamsLower)
		if len(fuzzyResults) == 0 {
			invalidTeams = append(invalidTeams, team)
			continue
		}
		// If there are multiple matches, check for an exact match first
		target := ""
		for i := range fuzzyResults {
			if fuzzyResults[i].Target == lowerTeam {
				target = fuzzyResults[i].Target
			}
		}
		if target == "" {
			target = fuzzyResults[0].Target
		}
		formattedTeamNames = append(formattedTeamNames, lookup[target]) // the original name, not the lowercase one
	}
	return formattedTeamNames, invalidTeams
}

// stripQuotes removes plain and typographic double quotes that survive
// command splitting
func stripQuotes(s string) string {
	s = strings.ReplaceAll(s, "\"", "")
	s = strings.ReplaceAll(s, "“", "")
	s = strings.ReplaceAll(s, "”", "")
	return strings.TrimSpace(s)
}

// parsePodiumToken parses the value of a podium:"A","B","C" token into a
// normalized PodiumPick. Names are split on commas (quoted names may
// contain commas), matched against validTeams and must be three pairwise
// distinct teams.
func parsePodiumToken(value string, validTeams []string) (store.PodiumPick, error) {
	commaSplitter, err := splitter.NewSplitter(',', splitter.DoubleQuotes)
	if err != nil {
		return store.PodiumPick{}, fmt.Errorf("failed to build podium splitter: %w", err)
	}
	parts, err := commaSplitter.Split(value)
	if err != nil {
		return store.PodiumPick{}, &shared.ValidationError{Reason: fmt.Sprintf("could not parse podium %q: %v", value, err)}
	}

	var names []string
	for _, part := range parts {
		if name := stripQuotes(part); name != "" {
			names = append(names, name)
		}
	}
	if len(names) != 3 {
		return store.PodiumPick{}, &shared.ValidationError{Reason: fmt.Sprintf("podium needs exactly 3 team names, got %d", len(names))}
	}

	matched, invalid := NormalizeTeamNames(names, validTeams)
	if len(invalid) > 0 {
		return store.PodiumPick{}, &shared.ValidationError{Reason: fmt.Sprintf("unknown podium team names: %s", strings.Join(invalid, ", "))}
	}
	if matched[0] == matched[1] || matched[0] == matched[2] || matched[1] == matched[2] {
		return store.PodiumPick{}, &shared.ValidationError{Reason: "podium team names must be distinct"}
	}

	return store.PodiumPick{First: matched[0], Second: matched[1], Third: matched[2]}, nil
}

// parseSubmission parses the raw tokens of a one-shot submission into
// normalized match picks and an optional podium pick. Tokens are either
// "<matchID>:<pick>" or a single podium:"A","B","C" token.
func parseSubmission(tokens []string, validTeams []string) (map[string]store.MatchPick, store.PodiumPick, error) {
	picks := make(map[string]store.MatchPick)
	var podium store.PodiumPick
	havePodium := false

	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if strings.HasPrefix(strings.ToLower(token), podiumPrefix) {
			if havePodium {
				return nil, store.PodiumPick{}, &shared.ValidationError{Reason: "podium given more than once"}
			}
			parsed, err := parsePodiumToken(token[len(podiumPrefix):], validTeams)
			if err != nil {
				return nil, store.PodiumPick{}, err
			}
			podium = parsed
			havePodium = true
			continue
		}

		idPart, pickPart, found := strings.Cut(token, ":")
		if !found {
			return nil, store.PodiumPick{}, &shared.ValidationError{Reason: fmt.Sprintf("invalid token %q: expected <matchID>:<pick>", token)}
		}
		matchID, err := store.PickMatchID(strings.TrimSpace(idPart))
		if err != nil {
			return nil, store.PodiumPick{}, &shared.ValidationError{Reason: fmt.Sprintf("invalid match id in %q", token)}
		}
		if _, dup := picks[store.PickKey(matchID)]; dup {
			return nil, store.PodiumPick{}, &shared.ValidationError{Reason: fmt.Sprintf("match %d picked more than once", matchID)}
		}

		outcome, err := engine.ParsePick(pickPart)
		if err != nil {
			return nil, store.PodiumPick{}, err
		}
		picks[store.PickKey(matchID)] = store.MatchPick{Outcome: outcome}
	}

	if len(picks) == 0 {
		return nil, store.PodiumPick{}, &shared.ValidationError{Reason: "submission contains no match picks"}
	}

	return picks, podium, nil
}
