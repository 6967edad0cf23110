/* podium.go
 * Contains the methods for interacting with the podium singleton document
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetPodium fetches the declared podium. It returns nil without an error
// when no podium has been declared yet; that is a normal state for most of
// the tournament.
func (s *Store) GetPodium() (*Podium, error) {
	var podium Podium
	err := s.Collections.Podium.FindOne(context.TODO(), bson.M{"_id": podiumDocID}).Decode(&podium)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching podium from db: %w", err)
	}
	return &podium, nil
}

// StorePodium creates the podium singleton lazily and overwrites it
// wholesale on re-declaration.
func (s *Store) StorePodium(podium Podium) error {
	podium.ID = podiumDocID
	opts := options.Replace().SetUpsert(true)
	_, err := s.Collections.Podium.ReplaceOne(context.TODO(), bson.M{"_id": podiumDocID}, podium, opts)
	if err != nil {
		return fmt.Errorf("failed to store podium: %w", err)
	}
	return nil
}
