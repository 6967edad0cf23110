/* models.go
 * This file contains the structs and helper functions that relate to DB objects
 */

package store

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pool-tracker/api/shared"
)

// Match lifecycle states. Finished is terminal under normal operation but
// may be re-entered when an admin corrects a score, which must re-trigger
// scoring for every prediction referencing the match.
const (
	MatchScheduled  = "scheduled"
	MatchInProgress = "in_progress"
	MatchFinished   = "finished"
)

// Match is a single tournament fixture. The id is caller-assigned and
// unique; scores are only meaningful once Status is finished.
type Match struct {
	ID        int       `bson:"_id"`
	HomeTeam  string    `bson:"home_team"`
	AwayTeam  string    `bson:"away_team"`
	Kickoff   time.Time `bson:"kickoff"`
	Group     string    `bson:"group,omitempty"`
	Status    string    `bson:"status"`
	ScoreHome int       `bson:"score_home"`
	ScoreAway int       `bson:"score_away"`
}

// MatchPick is one predicted match outcome together with the points the
// last scoring pass awarded for it. Points is derived, never user-supplied.
type MatchPick struct {
	Outcome shared.Outcome `bson:"outcome"`
	Points  int            `bson:"points"`
}

// PodiumPick holds a user's predicted tournament top three. Slots may be
// empty until the user submits a podium.
type PodiumPick struct {
	First  string `bson:"first,omitempty"`
	Second string `bson:"second,omitempty"`
	Third  string `bson:"third,omitempty"`
}

// Complete reports whether all three slots are filled
func (p PodiumPick) Complete() bool {
	return p.First != "" && p.Second != "" && p.Third != ""
}

// Prediction is the one-per-user aggregate of match picks and podium pick
// plus the derived point fields. After the initial submission it is only
// mutated by the scoring engine. MatchPicks is keyed by the decimal match
// id because Mongo map keys must be strings; use PickKey/PickMatchID to
// convert.
type Prediction struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	UserID          string               `bson:"userid"`
	Username        string               `bson:"username,omitempty"`
	HasSubmitted    bool                 `bson:"has_submitted"`
	FirstSubmission time.Time            `bson:"first_submission"`
	MatchPicks      map[string]MatchPick `bson:"match_picks,omitempty"`
	PodiumPick      PodiumPick           `bson:"podium_pick,omitempty"`
	GroupPoints     int                  `bson:"group_points"`
	PodiumPoints    int                  `bson:"podium_points"`
	BonusPoints     int                  `bson:"bonus_points"`
	TotalPoints     int                  `bson:"total_points"`
	RankingPosition int                  `bson:"ranking_position"`
	IsCalculated    bool                 `bson:"is_calculated"`
	Version         int64                `bson:"version"`
}

// Podium is the admin-declared actual tournament top three, stored as a
// singleton document and overwritten wholesale on re-declaration.
type Podium struct {
	ID         string    `bson:"_id"`
	First      string    `bson:"first"`
	Second     string    `bson:"second"`
	Third      string    `bson:"third"`
	DeclaredAt time.Time `bson:"declared_at"`
}

// podiumDocID is the fixed _id of the podium singleton
const podiumDocID = "podium"

// PickKey converts a match id to the string key used in MatchPicks
func PickKey(matchID int) string {
	return strconv.Itoa(matchID)
}

// PickMatchID converts a MatchPicks key back to the match id
func PickMatchID(key string) (int, error) {
	return strconv.Atoi(key)
}
