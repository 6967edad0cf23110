/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 */

package store

import (
	"context"
)

// Interface defines the methods that Store implements.
// This allows for mocking in tests.
type Interface interface {
	// matches
	UpsertMatch(match Match) error
	GetMatch(matchID int) (Match, error)
	ListMatches() ([]Match, error)
	ListFinishedMatches() ([]Match, error)
	SetMatchStatus(matchID int, status string) error
	FinishMatch(matchID int, scoreHome int, scoreAway int) error
	ListTeams() ([]string, error)

	// predictions
	CreatePrediction(prediction Prediction) error
	GetPrediction(userID string) (Prediction, error)
	ListSubmittedPredictions() ([]Prediction, error)
	UpdatePredictionScores(prediction Prediction) error
	UpdateRankingPositions(positions map[string]int) error

	// podium
	GetPodium() (*Podium, error)
	StorePodium(podium Podium) error

	// Getter methods for accessing fields
	GetDatabase() interface{ Name() string }
	GetTournament() string
	GetClient() interface{ Disconnect(context.Context) error }
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)

// GetDatabase returns the database instance
func (s *Store) GetDatabase() interface{ Name() string } {
	return s.Database
}

// GetTournament returns the tournament name
func (s *Store) GetTournament() string {
	return s.Tournament
}

// GetClient returns the MongoDB client
func (s *Store) GetClient() interface{ Disconnect(context.Context) error } {
	return s.Client
}
