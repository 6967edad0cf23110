/* store.go
 * Contains the Store struct and NewStore function. The methods for this package
 * are split into three files: matches.go, predictions.go and podium.go, one per
 * collection.
 */

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Tournament  string
	Collections struct {
		Matches     *mongo.Collection
		Predictions *mongo.Collection
		Podium      *mongo.Collection
	}
}

// NewStore initialises the db connection and sets collection handles.
// The initial connect and ping are retried with exponential backoff so a
// briefly unavailable Mongo at startup does not kill the process.
// It receives the database name, mongo URI and tournament name and returns
// a pointer to the Store, or an error if the connection cannot be made.
func NewStore(dbName string, mongoURI string, tournament string) (*Store, error) {
	if dbName == "" || tournament == "" {
		return nil, fmt.Errorf("dbName and tournament cannot be empty")
	}

	var client *mongo.Client
	operation := func() error {
		var err error
		client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(mongoURI))
		if err != nil {
			return fmt.Errorf("mongo connect failed: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return fmt.Errorf("mongo ping failed: %w", err)
		}
		return nil
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoffStrategy); err != nil {
		return nil, fmt.Errorf("after retries: %w", err)
	}

	db := client.Database(dbName)

	s := &Store{
		Client:     client,
		Database:   db,
		Tournament: tournament,
	}
	s.Collections.Matches = db.Collection("matches")
	s.Collections.Predictions = db.Collection("predictions")
	s.Collections.Podium = db.Collection("podium")

	return s, nil
}
