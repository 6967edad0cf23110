/* models.go
 * This file contains the structured results returned to api consumers
 */

package api

import "pool-tracker/api/shared"

// MatchScoreDetail is the per-user line of a match scoring pass
type MatchScoreDetail struct {
	UserID         string
	Username       string
	PreviousPoints int
	NewPoints      int
	Changed        bool
	Err            string // non-empty when scoring this user failed; the batch continues
}

// ScoringSummary is the result of processing one finished match
type ScoringSummary struct {
	MatchID       int
	Outcome       shared.Outcome
	Examined      int // predictions holding a pick for the match
	Changed       int
	PointsAwarded int // net points handed out; negative after a downward correction
	Details       []MatchScoreDetail
}

// RecalcFailure enumerates a prediction the recalculation could not persist
type RecalcFailure struct {
	UserID string
	Err    string
}

// RecalcSummary is the result of a full recalculation pass
type RecalcSummary struct {
	Predictions        int
	PredictionsChanged int
	PicksChanged       int
	Failures           []RecalcFailure
}

// PodiumSummary is the result of declaring the podium, including the
// per-slot distribution of correct picks and the nested recalculation
type PodiumSummary struct {
	Examined          int
	FirstCorrect      int
	SecondCorrect     int
	ThirdCorrect      int
	PointsDistributed int
	Recalc            RecalcSummary
}
