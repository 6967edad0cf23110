/* audit.go
 * Contains the read-only integrity checker. It recomputes what each stored
 * total should be and reports mismatches without mutating anything.
 */

package engine

import "pool-tracker/api/store"

// IntegrityError reports a prediction whose stored total does not equal
// the sum of its components
type IntegrityError struct {
	UserID   string
	Username string
	Expected int
	Actual   int
}

// IntegrityWarning flags a non-fatal oddity, currently an incomplete
// podium pick
type IntegrityWarning struct {
	UserID   string
	Username string
	Reason   string
}

// IntegrityReport is the result of one audit pass
type IntegrityReport struct {
	Examined int
	Errors   []IntegrityError
	Warnings []IntegrityWarning
}

// AuditPredictions checks every submitted prediction: the stored
// TotalPoints must equal GroupPoints + PodiumPoints + BonusPoints exactly
// (totals are integers, so no tolerance applies). Incomplete podium picks
// are reported as warnings, not errors. The input is never mutated.
func AuditPredictions(preds []store.Prediction) IntegrityReport {
	report := IntegrityReport{}

	for _, pred := range preds {
		if !pred.HasSubmitted {
			continue
		}
		report.Examined++

		expected := pred.GroupPoints + pred.PodiumPoints + pred.BonusPoints
		if expected != pred.TotalPoints {
			report.Errors = append(report.Errors, IntegrityError{
				UserID:   pred.UserID,
				Username: pred.Username,
				Expected: expected,
				Actual:   pred.TotalPoints,
			})
		}

		if !pred.PodiumPick.Complete() {
			report.Warnings = append(report.Warnings, IntegrityWarning{
				UserID:   pred.UserID,
				Username: pred.Username,
				Reason:   "incomplete podium pick",
			})
		}
	}

	return report
}
