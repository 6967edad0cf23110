/* test_helpers.go
 * Contains test helper functions for store package tests
 */

package store

import (
	"context"
	"time"

	"pool-tracker/api/shared"
)

// CreateTestStore creates a Store connected to a test database.
// Returns the store and a cleanup function.
func CreateTestStore(mongoURI string) (*Store, func(), error) {
	store, err := NewStore("test_pool_tracker", mongoURI, "TestCup2026")
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if store.Client != nil {
			// Drop test database
			store.Database.Drop(context.TODO())
			// Disconnect client
			store.Client.Disconnect(context.TODO())
		}
	}

	return store, cleanup, nil
}

// CreateSampleMatches creates sample Match data for testing
func CreateSampleMatches() []Match {
	return []Match{
		{
			ID:       101,
			HomeTeam: "Brazil",
			AwayTeam: "Croatia",
			Kickoff:  time.Date(2026, 6, 12, 18, 0, 0, 0, time.UTC),
			Group:    "A",
			Status:   MatchScheduled,
		},
		{
			ID:        102,
			HomeTeam:  "France",
			AwayTeam:  "Italy",
			Kickoff:   time.Date(2026, 6, 13, 18, 0, 0, 0, time.UTC),
			Group:     "B",
			Status:    MatchFinished,
			ScoreHome: 2,
			ScoreAway: 2,
		},
	}
}

// CreateSamplePrediction creates a submitted Prediction for testing
func CreateSamplePrediction(userID string, username string) Prediction {
	return Prediction{
		UserID:          userID,
		Username:        username,
		HasSubmitted:    true,
		FirstSubmission: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		MatchPicks: map[string]MatchPick{
			PickKey(101): {Outcome: shared.OutcomeHome},
			PickKey(102): {Outcome: shared.OutcomeDraw},
		},
		PodiumPick: PodiumPick{First: "Brazil", Second: "France", Third: "Italy"},
	}
}
