/* predictions.go
 * Contains the methods for interacting with the predictions collection
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"pool-tracker/api/shared"
)

// ErrVersionConflict is returned when a compare-and-set update loses the
// race against a concurrent writer. The caller reports it per item; the
// engine never retries internally.
var ErrVersionConflict = errors.New("prediction was modified concurrently")

// CreatePrediction stores a user's initial submission. Predictions are
// immutable from the user's perspective: if the user already has a
// submitted prediction the call fails with InvalidStateError and nothing
// is written.
func (s *Store) CreatePrediction(prediction Prediction) error {
	var existing Prediction
	err := s.Collections.Predictions.FindOne(context.TODO(), bson.M{"userid": prediction.UserID}).Decode(&existing)
	notFound := errors.Is(err, mongo.ErrNoDocuments)

	if err != nil && !notFound {
		return fmt.Errorf("lookup for existing prediction failed: %w", err)
	}
	if !notFound && existing.HasSubmitted {
		return &shared.InvalidStateError{Op: "submit prediction", Reason: "prediction already submitted and cannot be changed"}
	}

	if _, err := s.Collections.Predictions.InsertOne(context.TODO(), prediction); err != nil {
		return fmt.Errorf("failed to insert new user prediction: %w", err)
	}
	return nil
}

// GetPrediction does a DB lookup and gets the prediction for a user.
// It returns the Prediction, a NotFoundError if the user has none, or any
// other error that occurs.
func (s *Store) GetPrediction(userID string) (Prediction, error) {
	var result Prediction
	err := s.Collections.Predictions.FindOne(context.TODO(), bson.M{"userid": userID}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Prediction{}, &shared.NotFoundError{Kind: "prediction", ID: userID}
		}
		return Prediction{}, fmt.Errorf("error fetching prediction from db: %w", err)
	}
	return result, nil
}

// ListSubmittedPredictions gets the predictions of every user that has
// submitted. Used by scoring, recalculation, ranking and audit.
func (s *Store) ListSubmittedPredictions() ([]Prediction, error) {
	cursor, err := s.Collections.Predictions.Find(context.TODO(), bson.M{"has_submitted": true})
	if err != nil {
		return nil, fmt.Errorf("error fetching predictions from db: %w", err)
	}

	var results []Prediction
	if err = cursor.All(context.TODO(), &results); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of predictions: %w", err)
	}
	return results, nil
}

// UpdatePredictionScores persists the derived point fields of a prediction
// with an optimistic version check: the write only applies if nobody else
// has updated the record since it was read. A lost race returns
// ErrVersionConflict so the batch can report it per item and continue.
func (s *Store) UpdatePredictionScores(prediction Prediction) error {
	filter := bson.M{"userid": prediction.UserID, "version": prediction.Version}
	update := bson.M{
		"$set": bson.M{
			"match_picks":   prediction.MatchPicks,
			"group_points":  prediction.GroupPoints,
			"podium_points": prediction.PodiumPoints,
			"bonus_points":  prediction.BonusPoints,
			"total_points":  prediction.TotalPoints,
			"is_calculated": prediction.IsCalculated,
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := s.Collections.Predictions.UpdateOne(context.TODO(), filter, update)
	if err != nil {
		return fmt.Errorf("failed to update prediction scores: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}

// UpdateRankingPositions writes the 1-based ranking position for each user
// in the map. Positions are a derived cache; this is the only writer.
func (s *Store) UpdateRankingPositions(positions map[string]int) error {
	for userID, position := range positions {
		_, err := s.Collections.Predictions.UpdateOne(context.TODO(),
			bson.M{"userid": userID},
			bson.M{"$set": bson.M{"ranking_position": position}})
		if err != nil {
			return fmt.Errorf("failed to update ranking position for %s: %w", userID, err)
		}
	}
	return nil
}
