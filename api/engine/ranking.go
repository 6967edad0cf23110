/* ranking.go
 * Contains the deterministic ranking order and position assignment
 */

package engine

import (
	"sort"

	"pool-tracker/api/store"
)

// RankPredictions orders the predictions into the canonical ranking and
// assigns 1-based positions: TotalPoints descending, ties broken by the
// earlier FirstSubmission, remaining ties by UserID so the order is a
// strict total order. Positions are strictly sequential with no gaps and
// no shared ranks, even across ties. Returns the number ranked.
func RankPredictions(preds []store.Prediction) int {
	sort.SliceStable(preds, func(i, j int) bool {
		if preds[i].TotalPoints != preds[j].TotalPoints {
			return preds[i].TotalPoints > preds[j].TotalPoints
		}
		if !preds[i].FirstSubmission.Equal(preds[j].FirstSubmission) {
			return preds[i].FirstSubmission.Before(preds[j].FirstSubmission)
		}
		return preds[i].UserID < preds[j].UserID
	})

	for i := range preds {
		preds[i].RankingPosition = i + 1
	}
	return len(preds)
}
