/* test_mocks.go
 * Contains mock structures for testing the API package
 */

package api

import (
	"context"
	"strconv"

	"pool-tracker/api/shared"
	"pool-tracker/api/store"
)

// MockStore implements the store Interface for testing
type MockStore struct {
	// Storage for mock data
	Matches     map[int]store.Match
	Predictions map[string]store.Prediction
	Podium      *store.Podium

	// Error injection for testing error paths
	UpsertMatchError              error
	GetMatchError                 error
	ListMatchesError              error
	ListFinishedMatchesError      error
	SetMatchStatusError           error
	FinishMatchError              error
	ListTeamsError                error
	CreatePredictionError         error
	GetPredictionError            error
	ListSubmittedPredictionsError error
	UpdatePredictionScoresError   error
	UpdateRankingPositionsError   error
	GetPodiumError                error
	StorePodiumError              error

	// FailScoreUpdateFor makes UpdatePredictionScores fail for one user
	// only, to exercise partial-failure paths
	FailScoreUpdateFor string

	DatabaseName string
	Tournament   string
}

// NewMockStore creates a new MockStore with default values
func NewMockStore() *MockStore {
	return &MockStore{
		Matches:      make(map[int]store.Match),
		Predictions:  make(map[string]store.Prediction),
		DatabaseName: "test_db",
		Tournament:   "TestCup2026",
	}
}

func (m *MockStore) UpsertMatch(match store.Match) error {
	if m.UpsertMatchError != nil {
		return m.UpsertMatchError
	}
	m.Matches[match.ID] = match
	return nil
}

func (m *MockStore) GetMatch(matchID int) (store.Match, error) {
	if m.GetMatchError != nil {
		return store.Match{}, m.GetMatchError
	}
	match, ok := m.Matches[matchID]
	if !ok {
		return store.Match{}, &shared.NotFoundError{Kind: "match", ID: strconv.Itoa(matchID)}
	}
	return match, nil
}

func (m *MockStore) ListMatches() ([]store.Match, error) {
	if m.ListMatchesError != nil {
		return nil, m.ListMatchesError
	}
	var matches []store.Match
	for _, match := range m.Matches {
		matches = append(matches, match)
	}
	return matches, nil
}

func (m *MockStore) ListFinishedMatches() ([]store.Match, error) {
	if m.ListFinishedMatchesError != nil {
		return nil, m.ListFinishedMatchesError
	}
	var matches []store.Match
	for _, match := range m.Matches {
		if match.Status == store.MatchFinished {
			matches = append(matches, match)
		}
	}
	return matches, nil
}

func (m *MockStore) SetMatchStatus(matchID int, status string) error {
	if m.SetMatchStatusError != nil {
		return m.SetMatchStatusError
	}
	match, ok := m.Matches[matchID]
	if !ok {
		return &shared.NotFoundError{Kind: "match", ID: strconv.Itoa(matchID)}
	}
	match.Status = status
	m.Matches[matchID] = match
	return nil
}

func (m *MockStore) FinishMatch(matchID int, scoreHome int, scoreAway int) error {
	if m.FinishMatchError != nil {
		return m.FinishMatchError
	}
	match, ok := m.Matches[matchID]
	if !ok {
		return &shared.NotFoundError{Kind: "match", ID: strconv.Itoa(matchID)}
	}
	match.Status = store.MatchFinished
	match.ScoreHome = scoreHome
	match.ScoreAway = scoreAway
	m.Matches[matchID] = match
	return nil
}

func (m *MockStore) ListTeams() ([]string, error) {
	if m.ListTeamsError != nil {
		return nil, m.ListTeamsError
	}
	seen := make(map[string]bool)
	var teams []string
	for _, match := range m.Matches {
		for _, name := range []string{match.HomeTeam, match.AwayTeam} {
			if name != "" && !seen[name] {
				seen[name] = true
				teams = append(teams, name)
			}
		}
	}
	return teams, nil
}

func (m *MockStore) CreatePrediction(prediction store.Prediction) error {
	if m.CreatePredictionError != nil {
		return m.CreatePredictionError
	}
	if existing, ok := m.Predictions[prediction.UserID]; ok && existing.HasSubmitted {
		return &shared.InvalidStateError{Op: "submit prediction", Reason: "prediction already submitted and cannot be changed"}
	}
	m.Predictions[prediction.UserID] = prediction
	return nil
}

func (m *MockStore) GetPrediction(userID string) (store.Prediction, error) {
	if m.GetPredictionError != nil {
		return store.Prediction{}, m.GetPredictionError
	}
	prediction, ok := m.Predictions[userID]
	if !ok {
		return store.Prediction{}, &shared.NotFoundError{Kind: "prediction", ID: userID}
	}
	return prediction, nil
}

func (m *MockStore) ListSubmittedPredictions() ([]store.Prediction, error) {
	if m.ListSubmittedPredictionsError != nil {
		return nil, m.ListSubmittedPredictionsError
	}
	var predictions []store.Prediction
	for _, prediction := range m.Predictions {
		if prediction.HasSubmitted {
			predictions = append(predictions, clonePrediction(prediction))
		}
	}
	return predictions, nil
}

func (m *MockStore) UpdatePredictionScores(prediction store.Prediction) error {
	if m.UpdatePredictionScoresError != nil {
		return m.UpdatePredictionScoresError
	}
	if m.FailScoreUpdateFor != "" && m.FailScoreUpdateFor == prediction.UserID {
		return store.ErrVersionConflict
	}
	stored, ok := m.Predictions[prediction.UserID]
	if !ok {
		return &shared.NotFoundError{Kind: "prediction", ID: prediction.UserID}
	}
	prediction.RankingPosition = stored.RankingPosition
	prediction.Version = stored.Version + 1
	m.Predictions[prediction.UserID] = clonePrediction(prediction)
	return nil
}

func (m *MockStore) UpdateRankingPositions(positions map[string]int) error {
	if m.UpdateRankingPositionsError != nil {
		return m.UpdateRankingPositionsError
	}
	for userID, position := range positions {
		prediction, ok := m.Predictions[userID]
		if !ok {
			continue
		}
		prediction.RankingPosition = position
		m.Predictions[userID] = prediction
	}
	return nil
}

func (m *MockStore) GetPodium() (*store.Podium, error) {
	if m.GetPodiumError != nil {
		return nil, m.GetPodiumError
	}
	return m.Podium, nil
}

func (m *MockStore) StorePodium(podium store.Podium) error {
	if m.StorePodiumError != nil {
		return m.StorePodiumError
	}
	m.Podium = &podium
	return nil
}

// clonePrediction deep-copies the pick map so engine mutations on returned
// slices cannot leak into the mock's stored state
func clonePrediction(prediction store.Prediction) store.Prediction {
	picks := make(map[string]store.MatchPick, len(prediction.MatchPicks))
	for key, pick := range prediction.MatchPicks {
		picks[key] = pick
	}
	prediction.MatchPicks = picks
	return prediction
}

// mockDatabase implements the minimal Database interface needed for tests
type mockDatabase struct {
	name string
}

func (m *mockDatabase) Name() string {
	return m.name
}

// Implement getter methods for the store Interface
func (m *MockStore) GetDatabase() interface{ Name() string } {
	return &mockDatabase{name: m.DatabaseName}
}

func (m *MockStore) GetTournament() string {
	return m.Tournament
}

// mockClient implements minimal client interface
type mockClient struct{}

func (mc *mockClient) Disconnect(ctx context.Context) error {
	return nil
}

func (m *MockStore) GetClient() interface{ Disconnect(context.Context) error } {
	return &mockClient{}
}

// Ensure MockStore implements the store Interface
var _ store.Interface = (*MockStore)(nil)
