/* matches.go
 * Contains the methods for interacting with the matches collection
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pool-tracker/api/shared"
)

// UpsertMatch creates or replaces a match document keyed by its id.
// It receives a Match value and returns nil, or an error if the write fails.
func (s *Store) UpsertMatch(match Match) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.Collections.Matches.ReplaceOne(context.TODO(), bson.M{"_id": match.ID}, match, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert match %d: %w", match.ID, err)
	}
	return nil
}

// GetMatch does a DB lookup for a single match by id.
// It returns the Match, a NotFoundError if no such match exists, or any
// other error the driver reports.
func (s *Store) GetMatch(matchID int) (Match, error) {
	var match Match
	err := s.Collections.Matches.FindOne(context.TODO(), bson.M{"_id": matchID}).Decode(&match)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Match{}, &shared.NotFoundError{Kind: "match", ID: strconv.Itoa(matchID)}
		}
		return Match{}, fmt.Errorf("error fetching match from db: %w", err)
	}
	return match, nil
}

// ListMatches returns every match for the tournament ordered by kickoff time
func (s *Store) ListMatches() ([]Match, error) {
	opts := options.Find().SetSort(bson.D{{Key: "kickoff", Value: 1}})
	cursor, err := s.Collections.Matches.Find(context.TODO(), bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching matches from db: %w", err)
	}

	var matches []Match
	if err = cursor.All(context.TODO(), &matches); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of matches: %w", err)
	}
	return matches, nil
}

// ListFinishedMatches returns all matches with status finished. This set is
// the scoring reference for a full recalculation.
func (s *Store) ListFinishedMatches() ([]Match, error) {
	cursor, err := s.Collections.Matches.Find(context.TODO(), bson.M{"status": MatchFinished})
	if err != nil {
		return nil, fmt.Errorf("error fetching finished matches from db: %w", err)
	}

	var matches []Match
	if err = cursor.All(context.TODO(), &matches); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of matches: %w", err)
	}
	return matches, nil
}

// SetMatchStatus moves a match into the given lifecycle status without
// touching its scores. Used for the scheduled -> in_progress transition.
func (s *Store) SetMatchStatus(matchID int, status string) error {
	res, err := s.Collections.Matches.UpdateOne(context.TODO(),
		bson.M{"_id": matchID},
		bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update match %d status: %w", matchID, err)
	}
	if res.MatchedCount == 0 {
		return &shared.NotFoundError{Kind: "match", ID: strconv.Itoa(matchID)}
	}
	return nil
}

// FinishMatch records the final score for a match and marks it finished.
// Finishing an already finished match is allowed: that is the correction
// path, and the caller is expected to re-run scoring afterwards.
func (s *Store) FinishMatch(matchID int, scoreHome int, scoreAway int) error {
	if scoreHome < 0 || scoreAway < 0 {
		return &shared.ValidationError{Reason: fmt.Sprintf("scores cannot be negative: %d-%d", scoreHome, scoreAway)}
	}

	res, err := s.Collections.Matches.UpdateOne(context.TODO(),
		bson.M{"_id": matchID},
		bson.M{"$set": bson.M{
			"status":     MatchFinished,
			"score_home": scoreHome,
			"score_away": scoreAway,
		}})
	if err != nil {
		return fmt.Errorf("failed to finish match %d: %w", matchID, err)
	}
	if res.MatchedCount == 0 {
		return &shared.NotFoundError{Kind: "match", ID: strconv.Itoa(matchID)}
	}
	return nil
}

// ListTeams collects the distinct team names appearing in the matches
// collection. This is the valid-name reference for fuzzy matching user
// input; it saves maintaining a separate teams collection.
func (s *Store) ListTeams() ([]string, error) {
	home, err := s.Collections.Matches.Distinct(context.TODO(), "home_team", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error fetching home team names: %w", err)
	}
	away, err := s.Collections.Matches.Distinct(context.TODO(), "away_team", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error fetching away team names: %w", err)
	}

	seen := make(map[string]bool)
	var teams []string
	for _, raw := range append(home, away...) {
		name, ok := raw.(string)
		if !ok || name == "" || seen[name] {
			continue
		}
		seen[name] = true
		teams = append(teams, name)
	}
	return teams, nil
}
