/* api.go
 * This file contains the public methods for interacting with this package.
 * For consistent results, functions should only be called from this file,
 * not the engine or store sub packages.
 *
 * Mutating operations (scoring, recalculation, ranking, bonus grants) are
 * serialized behind a mutex so a ranking rebuild always acts as a barrier
 * over a settled set of totals. Reads take no lock and never mutate.
 */

package api

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pool-tracker/api/engine"
	"pool-tracker/api/shared"
	"pool-tracker/api/store"
)

// API provides methods for interacting with the prediction pool data layer
type API struct {
	Store store.Interface

	log zerolog.Logger
	mu  sync.Mutex
}

// NewAPI creates a new API instance with the provided configuration
func NewAPI(dbName string, mongoURI string, tournament string, logger zerolog.Logger) (*API, error) {
	if dbName == "" || tournament == "" {
		return nil, fmt.Errorf("dbName and tournament are required")
	}

	s, err := store.NewStore(dbName, mongoURI, tournament)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	return &API{
		Store: s,
		log:   logger,
	}, nil
}

// NewAPIWithStore wires the facade onto an existing store implementation.
// Used by tests and by anything that manages the store lifecycle itself.
func NewAPIWithStore(s store.Interface, logger zerolog.Logger) *API {
	return &API{Store: s, log: logger}
}

// SubmitPrediction stores a user's one-shot submission. Tokens are either
// "<matchID>:<pick>" (pick is home/away/draw, 1/x/2 or a scoreline) or
// podium:"First","Second","Third". The submission is rejected wholesale on
// any invalid pick, unknown match id or duplicate, and a user that has
// already submitted cannot submit again.
func (a *API) SubmitPrediction(user shared.User, tokens []string) error {
	teams, err := a.Store.ListTeams()
	if err != nil {
		return err
	}

	picks, podiumPick, err := parseSubmission(tokens, teams)
	if err != nil {
		return err
	}

	// Every picked match must exist
	matches, err := a.Store.ListMatches()
	if err != nil {
		return err
	}
	known := make(map[int]bool, len(matches))
	for _, match := range matches {
		known[match.ID] = true
	}
	for key := range picks {
		matchID, _ := store.PickMatchID(key)
		if !known[matchID] {
			return &shared.ValidationError{Reason: fmt.Sprintf("match %d does not exist", matchID)}
		}
	}

	prediction := store.Prediction{
		UserID:          user.UserID,
		Username:        user.Username,
		HasSubmitted:    true,
		FirstSubmission: time.Now().UTC(),
		MatchPicks:      picks,
		PodiumPick:      podiumPick,
	}

	if err := a.Store.CreatePrediction(prediction); err != nil {
		return err
	}

	a.log.Info().Str("user", user.UserID).Int("picks", len(picks)).Msg("prediction submitted")
	return nil
}

// CheckPrediction builds a per-pick status report for one user
func (a *API) CheckPrediction(user shared.User) (string, error) {
	prediction, err := a.Store.GetPrediction(user.UserID)
	if err != nil {
		return "", err
	}

	matches, err := a.Store.ListMatches()
	if err != nil {
		return "", err
	}
	matchesByID := make(map[int]store.Match, len(matches))
	for _, match := range matches {
		matchesByID[match.ID] = match
	}

	// Stable order for the report
	var matchIDs []int
	for key := range prediction.MatchPicks {
		if matchID, err := store.PickMatchID(key); err == nil {
			matchIDs = append(matchIDs, matchID)
		}
	}
	sort.Ints(matchIDs)

	var response strings.Builder
	response.WriteString(fmt.Sprintf("%s's predictions:\n", prediction.Username))
	for _, matchID := range matchIDs {
		pick := prediction.MatchPicks[store.PickKey(matchID)]
		match, ok := matchesByID[matchID]
		if !ok {
			response.WriteString(fmt.Sprintf("- Match %d: picked %s [Unknown match]\n", matchID, pick.Outcome))
			continue
		}

		label := fmt.Sprintf("- %s vs %s: picked %s", match.HomeTeam, match.AwayTeam, pick.Outcome)
		if match.Status != store.MatchFinished {
			response.WriteString(label + " [Pending]\n")
		} else if engine.ResolveOutcome(match.ScoreHome, match.ScoreAway) == pick.Outcome {
			response.WriteString(fmt.Sprintf("%s (%d-%d) [Correct +%d]\n", label, match.ScoreHome, match.ScoreAway, engine.MatchPickPoints))
		} else {
			response.WriteString(fmt.Sprintf("%s (%d-%d) [Wrong]\n", label, match.ScoreHome, match.ScoreAway))
		}
	}

	if prediction.PodiumPick.Complete() {
		response.WriteString(fmt.Sprintf("- Podium: 1. %s, 2. %s, 3. %s\n",
			prediction.PodiumPick.First, prediction.PodiumPick.Second, prediction.PodiumPick.Third))
	} else {
		response.WriteString("- Podium: not set\n")
	}

	response.WriteString(fmt.Sprintf("Points: %d (group %d, podium %d, bonus %d)\n",
		prediction.TotalPoints, prediction.GroupPoints, prediction.PodiumPoints, prediction.BonusPoints))
	if prediction.RankingPosition > 0 {
		response.WriteString(fmt.Sprintf("Current position: %d\n", prediction.RankingPosition))
	}
	return response.String(), nil
}

// ProcessMatch scores one finished match across every submitted prediction
// that holds a pick for it. Re-running with unchanged match data is a
// no-op (changed count 0). A failure on one user's record never aborts the
// rest of the batch; it is reported in the detail list instead.
func (a *API) ProcessMatch(matchID int) (ScoringSummary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.processMatchLocked(matchID)
}

func (a *API) processMatchLocked(matchID int) (ScoringSummary, error) {
	match, err := a.Store.GetMatch(matchID)
	if err != nil {
		return ScoringSummary{}, err
	}
	if match.Status != store.MatchFinished {
		return ScoringSummary{}, &shared.InvalidStateError{
			Op:     "process match",
			Reason: fmt.Sprintf("match %d is %s, not finished", matchID, match.Status),
		}
	}

	outcome := engine.ResolveOutcome(match.ScoreHome, match.ScoreAway)
	summary := ScoringSummary{MatchID: matchID, Outcome: outcome}

	predictions, err := a.Store.ListSubmittedPredictions()
	if err != nil {
		return ScoringSummary{}, err
	}

	for _, prediction := range predictions {
		previous, points, changed, ok := engine.ScoreMatchForPrediction(&prediction, matchID, outcome)
		if !ok {
			continue
		}
		summary.Examined++

		detail := MatchScoreDetail{
			UserID:         prediction.UserID,
			Username:       prediction.Username,
			PreviousPoints: previous,
			NewPoints:      points,
			Changed:        changed,
		}

		if changed {
			prediction.IsCalculated = true
			if err := a.Store.UpdatePredictionScores(prediction); err != nil {
				detail.Err = err.Error()
				detail.Changed = false
				summary.Details = append(summary.Details, detail)
				a.log.Error().Err(err).Str("user", prediction.UserID).Int("match", matchID).Msg("failed to persist match score")
				continue
			}
			summary.Changed++
			summary.PointsAwarded += points - previous
		}
		summary.Details = append(summary.Details, detail)
	}

	// Ranking only moves when points did
	if summary.Changed > 0 {
		if _, err := a.rebuildRankingLocked(); err != nil {
			return summary, err
		}
	}

	a.log.Info().Int("match", matchID).Int("examined", summary.Examined).
		Int("changed", summary.Changed).Msg("match processed")
	return summary, nil
}

// DeclarePodium validates and stores the actual tournament top three, then
// runs a full recalculation with all finished matches and this podium so
// podium points and totals are brought in sync atomically with the
// declaration.
func (a *API) DeclarePodium(first string, second string, third string) (PodiumSummary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	names := []string{strings.TrimSpace(first), strings.TrimSpace(second), strings.TrimSpace(third)}
	for _, name := range names {
		if name == "" {
			return PodiumSummary{}, &shared.ValidationError{Reason: "podium requires three non-empty team names"}
		}
	}

	// Normalize against the known team list when one exists
	teams, err := a.Store.ListTeams()
	if err != nil {
		return PodiumSummary{}, err
	}
	if len(teams) > 0 {
		matched, invalid := NormalizeTeamNames(names, teams)
		if len(invalid) > 0 {
			return PodiumSummary{}, &shared.ValidationError{Reason: fmt.Sprintf("unknown team names: %s", strings.Join(invalid, ", "))}
		}
		names = matched
	}

	if names[0] == names[1] || names[0] == names[2] || names[1] == names[2] {
		return PodiumSummary{}, &shared.ValidationError{Reason: "podium team names must be pairwise distinct"}
	}

	podium := store.Podium{First: names[0], Second: names[1], Third: names[2], DeclaredAt: time.Now().UTC()}
	if err := a.Store.StorePodium(podium); err != nil {
		return PodiumSummary{}, err
	}

	summary, err := a.recalculateAllLocked(nil, &podium)
	if err != nil {
		return PodiumSummary{}, err
	}

	a.log.Info().Str("first", podium.First).Str("second", podium.Second).Str("third", podium.Third).
		Int("points", summary.PointsDistributed).Msg("podium declared")
	return summary, nil
}

// RecalculateAll rebuilds every derived point field from the source-of-truth
// match data. A nil matches slice means "load all finished matches". Podium
// points are only recomputed when podium is non-nil; calling without one
// must not wipe previously awarded podium credit. Safe to call repeatedly.
func (a *API) RecalculateAll(matches []store.Match, podium *store.Podium) (RecalcSummary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	summary, err := a.recalculateAllLocked(matches, podium)
	return summary.Recalc, err
}

func (a *API) recalculateAllLocked(matches []store.Match, podium *store.Podium) (PodiumSummary, error) {
	if matches == nil {
		var err error
		matches, err = a.Store.ListFinishedMatches()
		if err != nil {
			return PodiumSummary{}, err
		}
	}
	outcomes := engine.OutcomeSet(matches)

	predictions, err := a.Store.ListSubmittedPredictions()
	if err != nil {
		return PodiumSummary{}, err
	}

	summary := PodiumSummary{}
	for _, prediction := range predictions {
		summary.Recalc.Predictions++
		summary.Examined++

		prevGroup := prediction.GroupPoints
		prevPodium := prediction.PodiumPoints
		prevTotal := prediction.TotalPoints
		wasCalculated := prediction.IsCalculated

		picksChanged := engine.RebuildMatchPoints(&prediction, outcomes)

		if podium != nil {
			score := engine.ScorePodiumPick(prediction.PodiumPick, *podium)
			prediction.PodiumPoints = score.Points
			engine.RecomputeTotals(&prediction)

			if score.FirstCorrect {
				summary.FirstCorrect++
			}
			if score.SecondCorrect {
				summary.SecondCorrect++
			}
			if score.ThirdCorrect {
				summary.ThirdCorrect++
			}
			summary.PointsDistributed += score.Points
		}
		prediction.IsCalculated = true

		changed := picksChanged > 0 ||
			prediction.GroupPoints != prevGroup ||
			prediction.PodiumPoints != prevPodium ||
			prediction.TotalPoints != prevTotal

		if !changed && wasCalculated {
			continue
		}

		if err := a.Store.UpdatePredictionScores(prediction); err != nil {
			summary.Recalc.Failures = append(summary.Recalc.Failures, RecalcFailure{UserID: prediction.UserID, Err: err.Error()})
			a.log.Error().Err(err).Str("user", prediction.UserID).Msg("failed to persist recalculated scores")
			continue
		}
		if changed {
			summary.Recalc.PredictionsChanged++
			summary.Recalc.PicksChanged += picksChanged
		}
	}

	if _, err := a.rebuildRankingLocked(); err != nil {
		return summary, err
	}

	a.log.Info().Int("predictions", summary.Recalc.Predictions).
		Int("changed", summary.Recalc.PredictionsChanged).
		Int("picks_changed", summary.Recalc.PicksChanged).Msg("recalculation complete")
	return summary, nil
}

// RebuildRanking reorders all submitted predictions into the canonical
// ranking and persists the 1-based positions. Returns the count ranked.
func (a *API) RebuildRanking() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rebuildRankingLocked()
}

func (a *API) rebuildRankingLocked() (int, error) {
	predictions, err := a.Store.ListSubmittedPredictions()
	if err != nil {
		return 0, err
	}

	count := engine.RankPredictions(predictions)

	positions := make(map[string]int, count)
	for _, prediction := range predictions {
		positions[prediction.UserID] = prediction.RankingPosition
	}
	if err := a.Store.UpdateRankingPositions(positions); err != nil {
		return 0, err
	}
	return count, nil
}

// Audit runs the read-only integrity check over all submitted predictions.
// It never mutates anything, so it takes no lock and is safe at any time.
func (a *API) Audit() (engine.IntegrityReport, error) {
	predictions, err := a.Store.ListSubmittedPredictions()
	if err != nil {
		return engine.IntegrityReport{}, err
	}
	report := engine.AuditPredictions(predictions)
	if len(report.Errors) > 0 {
		a.log.Warn().Int("errors", len(report.Errors)).Msg("integrity audit found mismatched totals")
	}
	return report, nil
}

// GrantBonus adds bonus points to one user's prediction, recomputes the
// total and refreshes the ranking. Returns the new total.
func (a *API) GrantBonus(userID string, delta int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	prediction, err := a.Store.GetPrediction(userID)
	if err != nil {
		return 0, err
	}
	if !prediction.HasSubmitted {
		return 0, &shared.InvalidStateError{Op: "grant bonus", Reason: fmt.Sprintf("user %s has not submitted a prediction", userID)}
	}

	prediction.BonusPoints += delta
	engine.RecomputeTotals(&prediction)

	if err := a.Store.UpdatePredictionScores(prediction); err != nil {
		return 0, err
	}
	if _, err := a.rebuildRankingLocked(); err != nil {
		return 0, err
	}

	a.log.Info().Str("user", userID).Int("delta", delta).Int("total", prediction.TotalPoints).Msg("bonus granted")
	return prediction.TotalPoints, nil
}

// AddMatch registers a fixture with a caller-assigned id. Re-adding a
// finished match is rejected; correcting its score goes through
// FinishMatch instead.
func (a *API) AddMatch(matchID int, homeTeam string, awayTeam string, group string, kickoff time.Time) error {
	if matchID <= 0 {
		return &shared.ValidationError{Reason: "match id must be a positive integer"}
	}
	if homeTeam == "" || awayTeam == "" || homeTeam == awayTeam {
		return &shared.ValidationError{Reason: "a match needs two distinct team names"}
	}

	existing, err := a.Store.GetMatch(matchID)
	var notFound *shared.NotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return err
	}
	if err == nil && existing.Status == store.MatchFinished {
		return &shared.InvalidStateError{Op: "add match", Reason: fmt.Sprintf("match %d already finished; use a score correction", matchID)}
	}

	return a.Store.UpsertMatch(store.Match{
		ID:       matchID,
		HomeTeam: homeTeam,
		AwayTeam: awayTeam,
		Group:    group,
		Kickoff:  kickoff,
		Status:   store.MatchScheduled,
	})
}

// StartMatch moves a scheduled match into in_progress
func (a *API) StartMatch(matchID int) error {
	match, err := a.Store.GetMatch(matchID)
	if err != nil {
		return err
	}
	if match.Status != store.MatchScheduled {
		return &shared.InvalidStateError{Op: "start match", Reason: fmt.Sprintf("match %d is %s", matchID, match.Status)}
	}
	return a.Store.SetMatchStatus(matchID, store.MatchInProgress)
}

// FinishMatch records (or corrects) a final score and immediately scores
// the match across all predictions. Finishing an already finished match is
// the supported correction path and re-triggers scoring rather than being
// rejected.
func (a *API) FinishMatch(matchID int, scoreHome int, scoreAway int) (ScoringSummary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.Store.FinishMatch(matchID, scoreHome, scoreAway); err != nil {
		return ScoringSummary{}, err
	}
	return a.processMatchLocked(matchID)
}

// GetStandings formats the current ranking. Positions are whatever the
// last ranking rebuild assigned; unranked predictions sort last.
func (a *API) GetStandings() (string, error) {
	predictions, err := a.Store.ListSubmittedPredictions()
	if err != nil {
		return "", err
	}
	if len(predictions) == 0 {
		return "No predictions submitted yet", nil
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		pi, pj := predictions[i].RankingPosition, predictions[j].RankingPosition
		if pi == 0 {
			return false
		}
		if pj == 0 {
			return true
		}
		return pi < pj
	})

	var response strings.Builder
	response.WriteString("Current standings:\n")
	for _, prediction := range predictions {
		position := "-"
		if prediction.RankingPosition > 0 {
			position = strconv.Itoa(prediction.RankingPosition)
		}
		response.WriteString(fmt.Sprintf("%s. %s: %d pts (group %d, podium %d, bonus %d)\n",
			position, prediction.Username, prediction.TotalPoints,
			prediction.GroupPoints, prediction.PodiumPoints, prediction.BonusPoints))
	}
	return response.String(), nil
}

// GetMatches lists every match with its status and score
func (a *API) GetMatches() ([]string, error) {
	matches, err := a.Store.ListMatches()
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, match := range matches {
		switch match.Status {
		case store.MatchFinished:
			lines = append(lines, fmt.Sprintf("- [%d] %s %d-%d %s (%s)", match.ID, match.HomeTeam, match.ScoreHome, match.ScoreAway, match.AwayTeam, match.Status))
		default:
			lines = append(lines, fmt.Sprintf("- [%d] %s vs %s (%s): <t:%d>", match.ID, match.HomeTeam, match.AwayTeam, match.Status, match.Kickoff.Unix()))
		}
	}
	return lines, nil
}

// GetUpcomingMatches lists scheduled matches that have not kicked off yet
func (a *API) GetUpcomingMatches() ([]string, error) {
	matches, err := a.Store.ListMatches()
	if err != nil {
		return nil, err
	}

	var lines []string
	now := time.Now()
	for _, match := range matches {
		if match.Status != store.MatchScheduled || match.Kickoff.Before(now) {
			continue
		}
		lines = append(lines, fmt.Sprintf("- [%d] %s vs %s: <t:%d>", match.ID, match.HomeTeam, match.AwayTeam, match.Kickoff.Unix()))
	}
	return lines, nil
}

// GetTournamentInfo summarises the pool: tournament name, match counts,
// prediction count and whether the podium has been declared
func (a *API) GetTournamentInfo() ([]string, error) {
	matches, err := a.Store.ListMatches()
	if err != nil {
		return nil, err
	}
	predictions, err := a.Store.ListSubmittedPredictions()
	if err != nil {
		return nil, err
	}
	podium, err := a.Store.GetPodium()
	if err != nil {
		return nil, err
	}

	finished := 0
	for _, match := range matches {
		if match.Status == store.MatchFinished {
			finished++
		}
	}

	values := []string{
		fmt.Sprintf("Tournament: %s", a.Store.GetTournament()),
		fmt.Sprintf("Matches: %d (%d finished)", len(matches), finished),
		fmt.Sprintf("Predictions: %d", len(predictions)),
	}
	if podium != nil {
		values = append(values, fmt.Sprintf("Podium: 1. %s, 2. %s, 3. %s", podium.First, podium.Second, podium.Third))
	} else {
		values = append(values, "Podium: not declared yet")
	}
	return values, nil
}

// GetTeams gets a list of all valid team names derived from the matches
func (a *API) GetTeams() ([]string, error) {
	return a.Store.ListTeams()
}
