/* scoring_test.go
 * Contains unit tests for scoring.go functions
 */

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pool-tracker/api/shared"
	"pool-tracker/api/store"
)

func predictionWithPicks(picks map[int]shared.Outcome) store.Prediction {
	pred := store.Prediction{
		UserID:       "user123",
		Username:     "testuser",
		HasSubmitted: true,
		MatchPicks:   make(map[string]store.MatchPick),
	}
	for id, outcome := range picks {
		pred.MatchPicks[store.PickKey(id)] = store.MatchPick{Outcome: outcome}
	}
	return pred
}

// TestScoreMatchForPrediction_CorrectPick tests that a correct pick earns
// one group point and the totals follow
func TestScoreMatchForPrediction_CorrectPick(t *testing.T) {
	pred := predictionWithPicks(map[int]shared.Outcome{101: shared.OutcomeHome})

	// Match 101 finished 2-1, a home win
	previous, points, changed, ok := ScoreMatchForPrediction(&pred, 101, ResolveOutcome(2, 1))

	assert.True(t, ok)
	assert.True(t, changed)
	assert.Equal(t, 0, previous)
	assert.Equal(t, 1, points)
	assert.Equal(t, 1, pred.GroupPoints)
	assert.Equal(t, 1, pred.TotalPoints)
}

// TestScoreMatchForPrediction_WrongPick tests that a wrong pick earns zero
func TestScoreMatchForPrediction_WrongPick(t *testing.T) {
	pred := predictionWithPicks(map[int]shared.Outcome{101: shared.OutcomeDraw})

	_, points, changed, ok := ScoreMatchForPrediction(&pred, 101, ResolveOutcome(2, 1))

	assert.True(t, ok)
	assert.False(t, changed) // 0 before, 0 after
	assert.Equal(t, 0, points)
	assert.Equal(t, 0, pred.TotalPoints)
}

// TestScoreMatchForPrediction_Idempotent tests that rescoring with the same
// result overwrites rather than accumulates
func TestScoreMatchForPrediction_Idempotent(t *testing.T) {
	pred := predictionWithPicks(map[int]shared.Outcome{101: shared.OutcomeHome})

	_, _, changed, _ := ScoreMatchForPrediction(&pred, 101, shared.OutcomeHome)
	assert.True(t, changed)

	previous, points, changed, ok := ScoreMatchForPrediction(&pred, 101, shared.OutcomeHome)
	assert.True(t, ok)
	assert.False(t, changed)
	assert.Equal(t, 1, previous)
	assert.Equal(t, 1, points)
	assert.Equal(t, 1, pred.GroupPoints)
}

// TestScoreMatchForPrediction_Correction tests that re-finishing a match
// with a different result takes points away again
func TestScoreMatchForPrediction_Correction(t *testing.T) {
	pred := predictionWithPicks(map[int]shared.Outcome{101: shared.OutcomeHome})

	ScoreMatchForPrediction(&pred, 101, shared.OutcomeHome)
	assert.Equal(t, 1, pred.TotalPoints)

	previous, points, changed, _ := ScoreMatchForPrediction(&pred, 101, shared.OutcomeAway)
	assert.True(t, changed)
	assert.Equal(t, 1, previous)
	assert.Equal(t, 0, points)
	assert.Equal(t, 0, pred.TotalPoints)
}

// TestScoreMatchForPrediction_NoPick tests that predictions without a pick
// for the match are left untouched
func TestScoreMatchForPrediction_NoPick(t *testing.T) {
	pred := predictionWithPicks(map[int]shared.Outcome{102: shared.OutcomeDraw})

	_, _, _, ok := ScoreMatchForPrediction(&pred, 101, shared.OutcomeHome)
	assert.False(t, ok)
	assert.Equal(t, 0, pred.GroupPoints)
}

// TestRebuildMatchPoints_FullRebuild tests that a rebuild scores every pick
// from scratch against the finished set
func TestRebuildMatchPoints_FullRebuild(t *testing.T) {
	pred := predictionWithPicks(map[int]shared.Outcome{
		101: shared.OutcomeHome,
		102: shared.OutcomeDraw,
		103: shared.OutcomeAway,
	})

	matches := []store.Match{
		{ID: 101, Status: store.MatchFinished, ScoreHome: 2, ScoreAway: 1}, // HOME, correct
		{ID: 102, Status: store.MatchFinished, ScoreHome: 1, ScoreAway: 1}, // DRAW, correct
		{ID: 103, Status: store.MatchInProgress},                           // not finished
	}

	picksChanged := RebuildMatchPoints(&pred, OutcomeSet(matches))

	assert.Equal(t, 2, picksChanged)
	assert.Equal(t, 2, pred.GroupPoints)
	assert.Equal(t, 2, pred.TotalPoints)
}

// TestRebuildMatchPoints_UnfinishedScoresZero tests that a pick whose match
// dropped out of the finished set loses its stale points, not keeps them
func TestRebuildMatchPoints_UnfinishedScoresZero(t *testing.T) {
	pred := predictionWithPicks(map[int]shared.Outcome{101: shared.OutcomeHome})
	pick := pred.MatchPicks[store.PickKey(101)]
	pick.Points = 1 // stale value from an earlier pass
	pred.MatchPicks[store.PickKey(101)] = pick
	RecomputeTotals(&pred)

	picksChanged := RebuildMatchPoints(&pred, map[int]shared.Outcome{})

	assert.Equal(t, 1, picksChanged)
	assert.Equal(t, 0, pred.GroupPoints)
	assert.Equal(t, 0, pred.TotalPoints)
}

// TestRebuildMatchPoints_PreservesPodiumAndBonus tests the recalc
// asymmetry: podium and bonus points survive a match-only rebuild while
// the total is still recomputed from all three components
func TestRebuildMatchPoints_PreservesPodiumAndBonus(t *testing.T) {
	pred := predictionWithPicks(map[int]shared.Outcome{101: shared.OutcomeHome})
	pred.PodiumPoints = 9
	pred.BonusPoints = 5

	RebuildMatchPoints(&pred, map[int]shared.Outcome{101: shared.OutcomeHome})

	assert.Equal(t, 1, pred.GroupPoints)
	assert.Equal(t, 9, pred.PodiumPoints)
	assert.Equal(t, 5, pred.BonusPoints)
	assert.Equal(t, 15, pred.TotalPoints)
}

// TestScorePodiumPick_FullCredit tests a fully correct podium
func TestScorePodiumPick_FullCredit(t *testing.T) {
	podium := store.Podium{First: "Brazil", Second: "France", Third: "Italy"}
	pick := store.PodiumPick{First: "Brazil", Second: "France", Third: "Italy"}

	score := ScorePodiumPick(pick, podium)

	assert.Equal(t, 13, score.Points)
	assert.True(t, score.FirstCorrect)
	assert.True(t, score.SecondCorrect)
	assert.True(t, score.ThirdCorrect)
}

// TestScorePodiumPick_SlotIndependence tests that {A,B,C} against {A,X,C}
// earns exactly first plus third credit
func TestScorePodiumPick_SlotIndependence(t *testing.T) {
	podium := store.Podium{First: "A", Second: "X", Third: "C"}
	pick := store.PodiumPick{First: "A", Second: "B", Third: "C"}

	score := ScorePodiumPick(pick, podium)

	assert.Equal(t, 9, score.Points)
	assert.True(t, score.FirstCorrect)
	assert.False(t, score.SecondCorrect)
	assert.True(t, score.ThirdCorrect)
}

// TestScorePodiumPick_RightTeamsWrongSlots tests that slots are exact:
// predicting {Brazil, Italy, France} against {Brazil, France, Italy}
// scores first-place credit only
func TestScorePodiumPick_RightTeamsWrongSlots(t *testing.T) {
	podium := store.Podium{First: "Brazil", Second: "France", Third: "Italy"}
	pick := store.PodiumPick{First: "Brazil", Second: "Italy", Third: "France"}

	score := ScorePodiumPick(pick, podium)

	assert.Equal(t, 7, score.Points)
	assert.True(t, score.FirstCorrect)
	assert.False(t, score.SecondCorrect)
	assert.False(t, score.ThirdCorrect)
}

// TestScorePodiumPick_EmptySlots tests that empty slots never match
func TestScorePodiumPick_EmptySlots(t *testing.T) {
	podium := store.Podium{First: "Brazil", Second: "France", Third: "Italy"}

	score := ScorePodiumPick(store.PodiumPick{}, podium)
	assert.Equal(t, 0, score.Points)
}

// TestRecomputeTotals_Invariant tests that the total always equals the sum
// of its components after a recompute
func TestRecomputeTotals_Invariant(t *testing.T) {
	pred := predictionWithPicks(map[int]shared.Outcome{101: shared.OutcomeHome, 102: shared.OutcomeAway})
	for key, pick := range pred.MatchPicks {
		pick.Points = 1
		pred.MatchPicks[key] = pick
	}
	pred.PodiumPoints = 11
	pred.BonusPoints = 3
	pred.TotalPoints = 999 // corrupted on purpose

	RecomputeTotals(&pred)

	assert.Equal(t, 2, pred.GroupPoints)
	assert.Equal(t, pred.GroupPoints+pred.PodiumPoints+pred.BonusPoints, pred.TotalPoints)
}

// TestOutcomeSet_SkipsUnfinished tests that only finished matches
// contribute outcomes
func TestOutcomeSet_SkipsUnfinished(t *testing.T) {
	matches := []store.Match{
		{ID: 101, Status: store.MatchFinished, ScoreHome: 2, ScoreAway: 1},
		{ID: 102, Status: store.MatchScheduled},
		{ID: 103, Status: store.MatchInProgress, ScoreHome: 1, ScoreAway: 0},
	}

	outcomes := OutcomeSet(matches)

	assert.Len(t, outcomes, 1)
	assert.Equal(t, shared.OutcomeHome, outcomes[101])
}
