/* api_test.go
 * Contains unit tests for the API facade using MockStore
 */

package api

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pool-tracker/api/shared"
	"pool-tracker/api/store"
)

func newTestAPI() (*API, *MockStore) {
	mock := NewMockStore()
	return NewAPIWithStore(mock, zerolog.Nop()), mock
}

func addTestMatches(mock *MockStore) {
	mock.Matches[101] = store.Match{ID: 101, HomeTeam: "Brazil", AwayTeam: "Croatia", Group: "A", Status: store.MatchScheduled, Kickoff: time.Now().Add(24 * time.Hour)}
	mock.Matches[102] = store.Match{ID: 102, HomeTeam: "France", AwayTeam: "Italy", Group: "B", Status: store.MatchScheduled, Kickoff: time.Now().Add(48 * time.Hour)}
}

func addSubmittedPrediction(mock *MockStore, userID string, picks map[int]shared.Outcome, podium store.PodiumPick, submitted time.Time) {
	matchPicks := make(map[string]store.MatchPick, len(picks))
	for matchID, outcome := range picks {
		matchPicks[store.PickKey(matchID)] = store.MatchPick{Outcome: outcome}
	}
	mock.Predictions[userID] = store.Prediction{
		UserID:          userID,
		Username:        userID,
		HasSubmitted:    true,
		FirstSubmission: submitted,
		MatchPicks:      matchPicks,
		PodiumPick:      podium,
	}
}

// TestSubmitPrediction_Success tests a full one-shot submission with picks
// and a fuzzily matched podium
func TestSubmitPrediction_Success(t *testing.T) {
	a, mock := newTestAPI()
	addTestMatches(mock)

	user := shared.User{UserID: "user123", Username: "testuser"}
	err := a.SubmitPrediction(user, []string{"101:home", "102:2-1", `podium:"brazil","france","italy"`})

	require.NoError(t, err)
	prediction := mock.Predictions["user123"]
	assert.True(t, prediction.HasSubmitted)
	assert.False(t, prediction.FirstSubmission.IsZero())
	assert.Equal(t, shared.OutcomeHome, prediction.MatchPicks[store.PickKey(101)].Outcome)
	// Scoreline 2-1 was normalized to HOME at the boundary
	assert.Equal(t, shared.OutcomeHome, prediction.MatchPicks[store.PickKey(102)].Outcome)
	// Lowercase names were fuzzy-matched to the stored spelling
	assert.Equal(t, store.PodiumPick{First: "Brazil", Second: "France", Third: "Italy"}, prediction.PodiumPick)
}

// TestSubmitPrediction_UnknownMatch tests that picks for matches that do
// not exist are rejected wholesale
func TestSubmitPrediction_UnknownMatch(t *testing.T) {
	a, mock := newTestAPI()
	addTestMatches(mock)

	err := a.SubmitPrediction(shared.User{UserID: "user123"}, []string{"999:home"})

	var validationErr *shared.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.NotContains(t, mock.Predictions, "user123")
}

// TestSubmitPrediction_DuplicatePick tests that picking the same match
// twice is rejected
func TestSubmitPrediction_DuplicatePick(t *testing.T) {
	a, mock := newTestAPI()
	addTestMatches(mock)

	err := a.SubmitPrediction(shared.User{UserID: "user123"}, []string{"101:home", "101:away"})

	var validationErr *shared.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

// TestSubmitPrediction_Immutable tests that a second submission is rejected
func TestSubmitPrediction_Immutable(t *testing.T) {
	a, mock := newTestAPI()
	addTestMatches(mock)
	user := shared.User{UserID: "user123", Username: "testuser"}

	require.NoError(t, a.SubmitPrediction(user, []string{"101:home"}))
	err := a.SubmitPrediction(user, []string{"101:away"})

	var stateErr *shared.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
	// Original pick untouched
	assert.Equal(t, shared.OutcomeHome, mock.Predictions["user123"].MatchPicks[store.PickKey(101)].Outcome)
}

// TestSubmitPrediction_NoPicks tests that an empty submission is rejected
func TestSubmitPrediction_NoPicks(t *testing.T) {
	a, mock := newTestAPI()
	addTestMatches(mock)

	err := a.SubmitPrediction(shared.User{UserID: "user123"}, []string{`podium:"Brazil","France","Italy"`})

	var validationErr *shared.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

// TestProcessMatch_NotFound tests the missing-match error path
func TestProcessMatch_NotFound(t *testing.T) {
	a, _ := newTestAPI()

	_, err := a.ProcessMatch(999)

	var notFoundErr *shared.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

// TestProcessMatch_NotFinished tests that scoring an unfinished match is an
// invalid state, not a silent no-op
func TestProcessMatch_NotFinished(t *testing.T) {
	a, mock := newTestAPI()
	addTestMatches(mock)

	_, err := a.ProcessMatch(101)

	var stateErr *shared.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

// TestProcessMatch_AwardsPoints tests the spec scenario: match 101 finishes
// 2-1, the HOME picker gains a point, the DRAW picker does not
func TestProcessMatch_AwardsPoints(t *testing.T) {
	a, mock := newTestAPI()
	addTestMatches(mock)
	addSubmittedPrediction(mock, "p1", map[int]shared.Outcome{101: shared.OutcomeHome}, store.PodiumPick{}, time.Now())
	addSubmittedPrediction(mock, "p2", map[int]shared.Outcome{101: shared.OutcomeDraw}, store.PodiumPick{}, time.Now())

	summary, err := a.FinishMatch(101, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, shared.OutcomeHome, summary.Outcome)
	assert.Equal(t, 2, summary.Examined)
	assert.Equal(t, 1, summary.Changed)
	assert.Equal(t, 1, summary.PointsAwarded)

	assert.Equal(t, 1, mock.Predictions["p1"].GroupPoints)
	assert.Equal(t, 1, mock.Predictions["p1"].TotalPoints)
	assert.Equal(t, 0, mock.Predictions["p2"].TotalPoints)
	// Ranking was rebuilt because points moved
	assert.Equal(t, 1, mock.Predictions["p1"].RankingPosition)
	assert.Equal(t, 2, mock.Predictions["p2"].RankingPosition)
}

// TestProcessMatch_Idempotent tests that rerunning with unchanged match
// data reports zero changed
func TestProcessMatch_Idempotent(t *testing.T) {
	a, mock := newTestAPI()
	addTestMatches(mock)
	addSubmittedPrediction(mock, "p1", map[int]shared.Outcome{101: shared.OutcomeHome}, store.PodiumPick{}, time.Now())

	_, err := a.FinishMatch(101, 2, 1)
	require.NoError(t, err)

	summary, err := a.ProcessMatch(101)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Examined)
	assert.Equal(t, 0, summary.Changed)
	assert.Equal(t, 0, summary.PointsAwarded)
	assert.Equal(t, 1, mock.Predictions["p1"].TotalPoints)
}

// TestProcessMatch_Correction tests that re-finishing with a different
// score takes points back
func TestProcessMatch_Correction(t *testing.T) {
	a, mock := newTestAPI()
	addTestMatches(mock)
	addSubmittedPrediction(mock, "p1", map[int]shared.Outcome{101: shared.OutcomeHome}, store.PodiumPick{}, time.Now())

	_, err := a.FinishMatch(101, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, mock.Predictions["p1"].TotalPoints)

	summary, err := a.FinishMatch(101, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Changed)
	assert.Equal(t, -1, summary.PointsAwarded)
	assert.Equal(t, 0, mock.Predictions["p1"].TotalPoints)
}

// TestProcessMatch_PartialFailure tests that one failing record does not
// abort the batch
func TestProcessMatch_PartialFailure(t *testing.T) {
	a, mock := newTestAPI()
	addTestMatches(mock)
	addSubmittedPrediction(mock, "bad", map[int]shared.Outcome{101: shared.OutcomeHome}, store.PodiumPick{}, time.Now())
	addSubmittedPrediction(mock, "good", map[int]shared.Outcome{101: shared.OutcomeHome}, store.PodiumPick{}, time.Now())
	mock.FailScoreUpdateFor = "bad"

	summary, err := a.FinishMatch(101, 1, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Examined)
	assert.Equal(t, 1, summary.Changed)

	var failed *MatchScoreDetail
	for i := range summary.Details {
		if summary.Details[i].UserID == "bad" {
			failed = &summary.Details[i]
		}
	}
	require.NotNil(t, failed)
	assert.NotEmpty(t, failed.Err)
	assert.Equal(t, 1, mock.Predictions["good"].TotalPoints)
	assert.Equal(t, 0, mock.Predictions["bad"].TotalPoints)
}

// TestDeclarePodium_Validation tests empty and duplicate podium names
func TestDeclarePodium_Validation(t *testing.T) {
	a, mock := newTestAPI()
	addTestMatches(mock)

	var validationErr *shared.ValidationError

	_, err := a.DeclarePodium("Brazil", "", "Italy")
	assert.ErrorAs(t, err, &validationErr)

	_, err = a.DeclarePodium("Brazil", "Brazil", "Italy")
	assert.ErrorAs(t, err, &validationErr)

	_, err = a.DeclarePodium("Brazil", "Atlantis", "Italy")
	assert.ErrorAs(t, err, &validationErr)
}

// TestDeclarePodium_ScoresSlotsIndependently tests the spec scenario:
// a pick of {Brazil, Italy, France} against a declared podium of
// {Brazil, France, Italy} earns first-place credit only
func TestDeclarePodium_ScoresSlotsIndependently(t *testing.T) {
	a, mock := newTestAPI()
	addTestMatches(mock)
	addSubmittedPrediction(mock, "p1", map[int]shared.Outcome{101: shared.OutcomeHome},
		store.PodiumPick{First: "Brazil", Second: "Italy", Third: "France"}, time.Now())
	addSubmittedPrediction(mock, "p2", map[int]shared.Outcome{101: shared.OutcomeAway},
		store.PodiumPick{First: "Brazil", Second: "France", Third: "Italy"}, time.Now())

	summary, err := a.DeclarePodium("Brazil", "France", "Italy")
	require.NoError(t, err)

	require.NotNil(t, mock.Podium)
	assert.Equal(t, 2, summary.Examined)
	assert.Equal(t, 2, summary.FirstCorrect)
	assert.Equal(t, 1, summary.SecondCorrect)
	assert.Equal(t, 1, summary.ThirdCorrect)
	assert.Equal(t, 7+13, summary.PointsDistributed)

	assert.Equal(t, 7, mock.Predictions["p1"].PodiumPoints)
	assert.Equal(t, 13, mock.Predictions["p2"].PodiumPoints)
	// Totals stay consistent with the invariant
	for _, prediction := range mock.Predictions {
		assert.Equal(t, prediction.GroupPoints+prediction.PodiumPoints+prediction.BonusPoints, prediction.TotalPoints)
	}
}

// TestRecalculateAll_PreservesPodiumWithoutArgument tests the deliberate
// asymmetry: a recalc without a podium must not wipe awarded podium credit
func TestRecalculateAll_PreservesPodiumWithoutArgument(t *testing.T) {
	a, mock := newTestAPI()
	addTestMatches(mock)
	addSubmittedPrediction(mock, "p1", map[int]shared.Outcome{101: shared.OutcomeHome},
		store.PodiumPick{First: "Brazil", Second: "France", Third: "Italy"}, time.Now())

	_, err := a.FinishMatch(101, 2, 1)
	require.NoError(t, err)
	_, err = a.DeclarePodium("Brazil", "France", "Italy")
	require.NoError(t, err)
	require.Equal(t, 13, mock.Predictions["p1"].PodiumPoints)
	require.Equal(t, 14, mock.Predictions["p1"].TotalPoints)

	summary, err := a.RecalculateAll(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Predictions)
	assert.Equal(t, 0, summary.PredictionsChanged)
	assert.Equal(t, 13, mock.Predictions["p1"].PodiumPoints)
	assert.Equal(t, 14, mock.Predictions["p1"].TotalPoints)
}

// TestRecalculateAll_RebuildsFromScratch tests that a recalc rescoring
// against a corrected finished set fixes stale pick points
func TestRecalculateAll_RebuildsFromScratch(t *testing.T) {
	a, mock := newTestAPI()
	addTestMatches(mock)
	addSubmittedPrediction(mock, "p1", map[int]shared.Outcome{101: shared.OutcomeHome, 102: shared.OutcomeDraw}, store.PodiumPick{}, time.Now())

	_, err := a.FinishMatch(101, 2, 1)
	require.NoError(t, err)
	_, err = a.FinishMatch(102, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 2, mock.Predictions["p1"].TotalPoints)

	// Correct 101 directly in the store, then recalculate everything
	match := mock.Matches[101]
	match.ScoreHome, match.ScoreAway = 0, 1
	mock.Matches[101] = match

	summary, err := a.RecalculateAll(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.PredictionsChanged)
	assert.Equal(t, 1, summary.PicksChanged)
	assert.Equal(t, 1, mock.Predictions["p1"].GroupPoints)
	assert.Equal(t, 1, mock.Predictions["p1"].TotalPoints)
	assert.True(t, mock.Predictions["p1"].IsCalculated)

	// Second identical run is a no-op
	summary, err = a.RecalculateAll(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.PredictionsChanged)
	assert.Equal(t, 0, summary.PicksChanged)
}

// TestRebuildRanking_TieBreak tests that persisted positions follow the
// canonical order with the earlier submission winning ties
func TestRebuildRanking_TieBreak(t *testing.T) {
	a, mock := newTestAPI()
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	addSubmittedPrediction(mock, "late", nil, store.PodiumPick{}, base.Add(time.Hour))
	addSubmittedPrediction(mock, "early", nil, store.PodiumPick{}, base)

	count, err := a.RebuildRanking()
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	assert.Equal(t, 1, mock.Predictions["early"].RankingPosition)
	assert.Equal(t, 2, mock.Predictions["late"].RankingPosition)
}

// TestAudit_ReportsCorruptedTotal tests that a manually corrupted total is
// reported and not repaired
func TestAudit_ReportsCorruptedTotal(t *testing.T) {
	a, mock := newTestAPI()
	addSubmittedPrediction(mock, "p1", nil, store.PodiumPick{First: "A", Second: "B", Third: "C"}, time.Now())
	prediction := mock.Predictions["p1"]
	prediction.GroupPoints = 29
	prediction.PodiumPoints = 11
	prediction.TotalPoints = 50
	mock.Predictions["p1"] = prediction

	report, err := a.Audit()
	require.NoError(t, err)

	assert.Equal(t, 1, report.Examined)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 40, report.Errors[0].Expected)
	assert.Equal(t, 50, report.Errors[0].Actual)
	// Audit never mutates
	assert.Equal(t, 50, mock.Predictions["p1"].TotalPoints)
}

// TestGrantBonus_RecomputesTotal tests bonus grants and the totals
// invariant
func TestGrantBonus_RecomputesTotal(t *testing.T) {
	a, mock := newTestAPI()
	addSubmittedPrediction(mock, "p1", nil, store.PodiumPick{}, time.Now())

	total, err := a.GrantBonus("p1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, 5, mock.Predictions["p1"].BonusPoints)
	assert.Equal(t, 5, mock.Predictions["p1"].TotalPoints)
	assert.Equal(t, 1, mock.Predictions["p1"].RankingPosition)

	_, err = a.GrantBonus("ghost", 5)
	var notFoundErr *shared.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

// TestGetStandings_OrdersByPosition tests the standings formatting order
func TestGetStandings_OrdersByPosition(t *testing.T) {
	a, mock := newTestAPI()
	addSubmittedPrediction(mock, "alice", nil, store.PodiumPick{}, time.Now())
	addSubmittedPrediction(mock, "bob", nil, store.PodiumPick{}, time.Now())
	_, err := a.GrantBonus("bob", 3)
	require.NoError(t, err)

	standings, err := a.GetStandings()
	require.NoError(t, err)

	bobIdx := strings.Index(standings, "bob")
	aliceIdx := strings.Index(standings, "alice")
	assert.Greater(t, aliceIdx, bobIdx, "bob should be listed before alice")
}
