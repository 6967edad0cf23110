/* scoring.go
 * Contains the pure scoring rules: match pick points, podium points and the
 * derived total recomputation. All functions here mutate only the
 * Prediction value they are handed; persistence is the caller's job.
 */

package engine

import (
	"pool-tracker/api/shared"
	"pool-tracker/api/store"
)

// Points awarded per correct pick. The three podium checks are independent
// and additive, so partial podium credit is possible. These weights are
// canonical for both scoring and reporting.
const (
	MatchPickPoints    = 1
	PodiumFirstPoints  = 7
	PodiumSecondPoints = 4
	PodiumThirdPoints  = 2
)

// ScoreMatchForPrediction rescores the single pick a prediction holds for
// matchID against the resolved outcome, overwriting the stored pick points
// (idempotent, never additive) and recomputing the derived totals.
// It returns the previous and new pick points and whether the value
// actually changed. ok is false when the prediction holds no pick for the
// match, in which case nothing is touched.
func ScoreMatchForPrediction(pred *store.Prediction, matchID int, outcome shared.Outcome) (previous int, points int, changed bool, ok bool) {
	key := store.PickKey(matchID)
	pick, exists := pred.MatchPicks[key]
	if !exists {
		return 0, 0, false, false
	}

	previous = pick.Points
	points = 0
	if pick.Outcome == outcome {
		points = MatchPickPoints
	}

	pick.Points = points
	pred.MatchPicks[key] = pick

	RecomputeTotals(pred)
	return previous, points, previous != points, true
}

// RebuildMatchPoints recomputes every pick point field of a prediction from
// scratch against the given finished-match outcomes. Picks for matches not
// in the set score 0 rather than keeping a stale value: this is a full
// rebuild, not an incremental patch. Podium points are deliberately not
// touched here. Returns the number of pick fields whose value changed.
func RebuildMatchPoints(pred *store.Prediction, outcomes map[int]shared.Outcome) int {
	picksChanged := 0
	for key, pick := range pred.MatchPicks {
		matchID, err := store.PickMatchID(key)
		points := 0
		if err == nil {
			if outcome, finished := outcomes[matchID]; finished && pick.Outcome == outcome {
				points = MatchPickPoints
			}
		}
		if pick.Points != points {
			picksChanged++
		}
		pick.Points = points
		pred.MatchPicks[key] = pick
	}
	RecomputeTotals(pred)
	return picksChanged
}

// PodiumScore is the outcome of scoring one prediction's podium pick
type PodiumScore struct {
	Points        int
	FirstCorrect  bool
	SecondCorrect bool
	ThirdCorrect  bool
}

// ScorePodiumPick awards podium credit slot by slot: each slot is an exact
// match against the declared podium and scores independently of the other
// two, so {A,B,C} against {A,X,C} earns first plus third credit only.
func ScorePodiumPick(pick store.PodiumPick, podium store.Podium) PodiumScore {
	var score PodiumScore
	if pick.First != "" && pick.First == podium.First {
		score.FirstCorrect = true
		score.Points += PodiumFirstPoints
	}
	if pick.Second != "" && pick.Second == podium.Second {
		score.SecondCorrect = true
		score.Points += PodiumSecondPoints
	}
	if pick.Third != "" && pick.Third == podium.Third {
		score.ThirdCorrect = true
		score.Points += PodiumThirdPoints
	}
	return score
}

// OutcomeSet resolves a slice of finished matches into a match id ->
// outcome map for RebuildMatchPoints. Matches not in finished status are
// ignored; their picks must score 0.
func OutcomeSet(matches []store.Match) map[int]shared.Outcome {
	outcomes := make(map[int]shared.Outcome, len(matches))
	for _, match := range matches {
		if match.Status != store.MatchFinished {
			continue
		}
		outcomes[match.ID] = ResolveOutcome(match.ScoreHome, match.ScoreAway)
	}
	return outcomes
}

// RecomputeTotals rebuilds the derived sums: GroupPoints from the pick
// point fields and TotalPoints as group + podium + bonus. This is the
// invariant the auditor checks.
func RecomputeTotals(pred *store.Prediction) {
	group := 0
	for _, pick := range pred.MatchPicks {
		group += pick.Points
	}
	pred.GroupPoints = group
	pred.TotalPoints = pred.GroupPoints + pred.PodiumPoints + pred.BonusPoints
}
