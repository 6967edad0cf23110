/* handlers.go
 * Contains testable handler methods that accept the DiscordSession interface.
 * The runtime wrapper in bot_runtime.go passes the live *discordgo.Session.
 */

package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-andiamo/splitter"

	"pool-tracker/api/shared"
)

// newMessageHandler routes messages to appropriate handlers with a DiscordSession interface
// botUserID is the bot's user ID to prevent self-responses
func (b *Bot) newMessageHandler(session DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	// Prevent bot from responding to its own messages
	if message.Author.ID == botUserID {
		return
	}

	// Route to appropriate handler
	switch {
	case startsWith(message.Content, "$help"):
		b.helpMessageHandler(session, message)

	case startsWith(message.Content, "$submit"):
		b.submitHandler(session, message)

	case startsWith(message.Content, "$check"):
		b.checkHandler(session, message)

	case startsWith(message.Content, "$standings"):
		b.standingsHandler(session, message)

	case startsWith(message.Content, "$matches"):
		b.matchesHandler(session, message)

	case startsWith(message.Content, "$upcoming"):
		b.upcomingMatchesHandler(session, message)

	case startsWith(message.Content, "$addmatch"):
		b.addMatchHandler(session, message)

	case startsWith(message.Content, "$start"):
		b.startMatchHandler(session, message)

	case startsWith(message.Content, "$finish"):
		b.finishMatchHandler(session, message)

	case startsWith(message.Content, "$podium"):
		b.podiumHandler(session, message)

	case startsWith(message.Content, "$bonus"):
		b.bonusHandler(session, message)

	case startsWith(message.Content, "$recalc"):
		b.recalcHandler(session, message)

	case startsWith(message.Content, "$audit"):
		b.auditHandler(session, message)
	}
}

// splitArgs splits a command message into its arguments, keeping quoted
// team names (e.g. "South Korea") as single tokens
func splitArgs(content string) []string {
	spaceSplitter, _ := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	tokens, err := spaceSplitter.Split(content)
	if err != nil {
		return strings.Fields(content)
	}
	var args []string
	for _, token := range tokens {
		if token = strings.TrimSpace(token); token != "" {
			args = append(args, token)
		}
	}
	return args
}

// friendlyError maps the api's typed errors onto a message the user caused
// and can fix; anything else gets a generic reply and a log line
func (b *Bot) friendlyError(err error, fallback string) string {
	var validationErr *shared.ValidationError
	var stateErr *shared.InvalidStateError
	var notFoundErr *shared.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &stateErr):
		return stateErr.Error()
	case errors.As(err, &notFoundErr):
		return notFoundErr.Error()
	default:
		b.log.Error().Err(err).Msg("command failed")
		return fallback
	}
}

// requireAdmin replies and returns false when the author may not run admin
// commands
func (b *Bot) requireAdmin(session DiscordSession, message *discordgo.MessageCreate) bool {
	if b.isAdmin(message.Author.ID) {
		return true
	}
	session.ChannelMessageSend(message.ChannelID, "This command is restricted to pool admins")
	return false
}

// helpMessageHandler handles the $help command
func (b *Bot) helpMessageHandler(session DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("Pool Tracker\n")
	res.WriteString("`$submit 1:home 2:draw 3:2-1 podium:\"Brazil\",\"France\",\"Italy\"`: submits your predictions. Picks are `<matchID>:<pick>` where pick is home/away/draw, 1/x/2 or a scoreline; the podium lists the top three in order. A submission is final and cannot be changed\n")
	res.WriteString("`$check`: shows your submitted picks and how they scored\n")
	res.WriteString("`$standings`: shows the current ranking\n")
	res.WriteString("`$matches`: lists all matches with their status and score\n")
	res.WriteString("`$upcoming`: lists scheduled matches that have not kicked off yet\n")
	if b.isAdmin(message.Author.ID) {
		res.WriteString("Admin commands:\n")
		res.WriteString("`$addmatch <id> <home> <away> <group> <kickoff RFC3339>`: registers a fixture\n")
		res.WriteString("`$start <id>`: marks a match as in progress\n")
		res.WriteString("`$finish <id> <score>`: records a final score like 2-1 and scores all predictions. Rerun with a new score to correct a result\n")
		res.WriteString("`$podium \"First\" \"Second\" \"Third\"`: declares the tournament top three and awards podium points\n")
		res.WriteString("`$bonus <userID> <points>`: grants bonus points to one user\n")
		res.WriteString("`$recalc`: rebuilds every score from the stored match results\n")
		res.WriteString("`$audit`: checks stored totals without changing anything\n")
	}
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// submitHandler handles the $submit command
func (b *Bot) submitHandler(session DiscordSession, message *discordgo.MessageCreate) {
	user := shared.User{UserID: message.Author.ID, Username: message.Author.Username}

	args := splitArgs(message.Content)
	if len(args) < 2 {
		session.ChannelMessageSend(message.ChannelID, "Usage: $submit <matchID>:<pick> ... [podium:\"First\",\"Second\",\"Third\"]")
		return
	}

	err := b.APIPtr.SubmitPrediction(user, args[1:])
	if err != nil {
		res := fmt.Sprintf("Could not submit %s's predictions: %s", user.Username,
			b.friendlyError(err, "an unexpected error occured"))
		session.ChannelMessageSend(message.ChannelID, res)
		return
	}
	session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("%s's predictions are locked in. Good luck!", user.Username))
}

// checkHandler handles the $check command
func (b *Bot) checkHandler(session DiscordSession, message *discordgo.MessageCreate) {
	user := shared.User{UserID: message.Author.ID, Username: message.Author.Username}
	res, err := b.APIPtr.CheckPrediction(user)
	if err != nil {
		var notFoundErr *shared.NotFoundError
		if errors.As(err, &notFoundErr) {
			res = fmt.Sprintf("%s has not submitted any predictions yet. Use $submit to enter the pool", user.Username)
		} else {
			b.log.Error().Err(err).Str("user", user.UserID).Msg("check failed")
			res = fmt.Sprintf("An error occured checking %s's predictions", user.Username)
		}
	}
	session.ChannelMessageSend(message.ChannelID, res)
}

// standingsHandler handles the $standings command
func (b *Bot) standingsHandler(session DiscordSession, message *discordgo.MessageCreate) {
	res, err := b.APIPtr.GetStandings()
	if err != nil {
		b.log.Error().Err(err).Msg("standings failed")
		res = "An error occured getting the standings"
	}
	session.ChannelMessageSend(message.ChannelID, res)
}

// matchesHandler handles the $matches command
func (b *Bot) matchesHandler(session DiscordSession, message *discordgo.MessageCreate) {
	matches, err := b.APIPtr.GetMatches()
	if err != nil {
		b.log.Error().Err(err).Msg("matches failed")
		session.ChannelMessageSend(message.ChannelID, "An error occured getting the match list")
		return
	}
	if len(matches) == 0 {
		session.ChannelMessageSend(message.ChannelID, "No matches registered yet")
		return
	}

	var res strings.Builder
	res.WriteString("Matches:\n")
	for _, match := range matches {
		res.WriteString(match + "\n")
	}
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// upcomingMatchesHandler handles the $upcoming command
func (b *Bot) upcomingMatchesHandler(session DiscordSession, message *discordgo.MessageCreate) {
	matches, err := b.APIPtr.GetUpcomingMatches()
	if err != nil {
		b.log.Error().Err(err).Msg("upcoming failed")
		session.ChannelMessageSend(message.ChannelID, "An error occured getting upcoming matches")
		return
	}
	var res strings.Builder
	if len(matches) == 0 {
		res.WriteString("No upcoming matches")
	} else {
		res.WriteString("Upcoming matches:\n")
		for _, match := range matches {
			res.WriteString(match + "\n")
		}
	}
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// addMatchHandler handles the $addmatch admin command
func (b *Bot) addMatchHandler(session DiscordSession, message *discordgo.MessageCreate) {
	if !b.requireAdmin(session, message) {
		return
	}

	args := splitArgs(message.Content)
	if len(args) != 6 {
		session.ChannelMessageSend(message.ChannelID, "Usage: $addmatch <id> <home> <away> <group> <kickoff, e.g. 2026-06-12T18:00:00Z>")
		return
	}

	matchID, err := strconv.Atoi(args[1])
	if err != nil {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("%q is not a valid match id", args[1]))
		return
	}
	kickoff, err := time.Parse(time.RFC3339, args[5])
	if err != nil {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("%q is not a valid kickoff time, expected RFC3339 like 2026-06-12T18:00:00Z", args[5]))
		return
	}

	home := stripQuotes(args[2])
	away := stripQuotes(args[3])
	if err := b.APIPtr.AddMatch(matchID, home, away, stripQuotes(args[4]), kickoff.UTC()); err != nil {
		session.ChannelMessageSend(message.ChannelID,
			b.friendlyError(err, "An error occured adding the match"))
		return
	}
	session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("Match %d registered: %s vs %s", matchID, home, away))
}

// startMatchHandler handles the $start admin command
func (b *Bot) startMatchHandler(session DiscordSession, message *discordgo.MessageCreate) {
	if !b.requireAdmin(session, message) {
		return
	}

	args := splitArgs(message.Content)
	if len(args) != 2 {
		session.ChannelMessageSend(message.ChannelID, "Usage: $start <matchID>")
		return
	}
	matchID, err := strconv.Atoi(args[1])
	if err != nil {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("%q is not a valid match id", args[1]))
		return
	}

	if err := b.APIPtr.StartMatch(matchID); err != nil {
		session.ChannelMessageSend(message.ChannelID,
			b.friendlyError(err, "An error occured starting the match"))
		return
	}
	session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("Match %d is now in progress", matchID))
}

// finishMatchHandler handles the $finish admin command
func (b *Bot) finishMatchHandler(session DiscordSession, message *discordgo.MessageCreate) {
	if !b.requireAdmin(session, message) {
		return
	}

	args := splitArgs(message.Content)
	if len(args) != 3 {
		session.ChannelMessageSend(message.ChannelID, "Usage: $finish <matchID> <score>, e.g. $finish 101 2-1")
		return
	}
	matchID, err := strconv.Atoi(args[1])
	if err != nil {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("%q is not a valid match id", args[1]))
		return
	}
	scoreHome, scoreAway, ok := parseScoreline(args[2])
	if !ok {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("%q is not a valid score, expected something like 2-1", args[2]))
		return
	}

	summary, err := b.APIPtr.FinishMatch(matchID, scoreHome, scoreAway)
	if err != nil {
		session.ChannelMessageSend(message.ChannelID,
			b.friendlyError(err, "An error occured finishing the match"))
		return
	}

	res := fmt.Sprintf("Match %d finished %d-%d (%s). Scored %d predictions, %d changed, %+d points",
		matchID, scoreHome, scoreAway, summary.Outcome, summary.Examined, summary.Changed, summary.PointsAwarded)
	session.ChannelMessageSend(message.ChannelID, res)
}

// podiumHandler handles the $podium admin command
func (b *Bot) podiumHandler(session DiscordSession, message *discordgo.MessageCreate) {
	if !b.requireAdmin(session, message) {
		return
	}

	args := splitArgs(message.Content)
	if len(args) != 4 {
		session.ChannelMessageSend(message.ChannelID, "Usage: $podium \"First\" \"Second\" \"Third\"")
		return
	}

	summary, err := b.APIPtr.DeclarePodium(stripQuotes(args[1]), stripQuotes(args[2]), stripQuotes(args[3]))
	if err != nil {
		session.ChannelMessageSend(message.ChannelID,
			b.friendlyError(err, "An error occured declaring the podium"))
		return
	}

	res := fmt.Sprintf("Podium declared. %d predictions scored: %d got 1st, %d got 2nd, %d got 3rd; %d podium points awarded",
		summary.Examined, summary.FirstCorrect, summary.SecondCorrect, summary.ThirdCorrect, summary.PointsDistributed)
	session.ChannelMessageSend(message.ChannelID, res)
}

// bonusHandler handles the $bonus admin command
func (b *Bot) bonusHandler(session DiscordSession, message *discordgo.MessageCreate) {
	if !b.requireAdmin(session, message) {
		return
	}

	args := splitArgs(message.Content)
	if len(args) < 3 {
		session.ChannelMessageSend(message.ChannelID, "Usage: $bonus <user> <points> [reason]")
		return
	}
	// Accept a raw id or a discord mention like <@123456>
	userID := strings.Trim(args[1], "<@!>")
	delta, err := strconv.Atoi(args[2])
	if err != nil {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("%q is not a valid point amount", args[2]))
		return
	}

	total, err := b.APIPtr.GrantBonus(userID, delta)
	if err != nil {
		session.ChannelMessageSend(message.ChannelID,
			b.friendlyError(err, "An error occured granting the bonus"))
		return
	}
	if len(args) > 3 {
		b.log.Info().Str("user", userID).Int("delta", delta).Str("reason", strings.Join(args[3:], " ")).Msg("bonus reason")
	}
	session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("Granted %+d bonus points to %s (new total: %d)", delta, userID, total))
}

// recalcHandler handles the $recalc admin command
func (b *Bot) recalcHandler(session DiscordSession, message *discordgo.MessageCreate) {
	if !b.requireAdmin(session, message) {
		return
	}
	if !b.limiter.Allow() {
		session.ChannelMessageSend(message.ChannelID, "Recalculation was triggered recently, try again in a moment")
		return
	}

	summary, err := b.APIPtr.RecalculateAll(nil, nil)
	if err != nil {
		session.ChannelMessageSend(message.ChannelID,
			b.friendlyError(err, "An error occured recalculating"))
		return
	}

	res := fmt.Sprintf("Recalculation complete: %d predictions, %d changed, %d picks rescored",
		summary.Predictions, summary.PredictionsChanged, summary.PicksChanged)
	if len(summary.Failures) > 0 {
		res += fmt.Sprintf(", %d failed to persist", len(summary.Failures))
	}
	session.ChannelMessageSend(message.ChannelID, res)
}

// auditHandler handles the $audit admin command
func (b *Bot) auditHandler(session DiscordSession, message *discordgo.MessageCreate) {
	if !b.requireAdmin(session, message) {
		return
	}
	if !b.limiter.Allow() {
		session.ChannelMessageSend(message.ChannelID, "An audit was triggered recently, try again in a moment")
		return
	}

	report, err := b.APIPtr.Audit()
	if err != nil {
		session.ChannelMessageSend(message.ChannelID,
			b.friendlyError(err, "An error occured running the audit"))
		return
	}

	var res strings.Builder
	res.WriteString(fmt.Sprintf("Audit examined %d predictions\n", report.Examined))
	if len(report.Errors) == 0 {
		res.WriteString("All stored totals are consistent\n")
	}
	for _, auditErr := range report.Errors {
		res.WriteString(fmt.Sprintf("- %s: stored total %d, expected %d\n", auditErr.Username, auditErr.Actual, auditErr.Expected))
	}
	for _, warning := range report.Warnings {
		res.WriteString(fmt.Sprintf("- %s: %s\n", warning.Username, warning.Reason))
	}
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// parseScoreline parses a "h-a" score argument into two non-negative ints
func parseScoreline(s string) (int, int, bool) {
	left, right, found := strings.Cut(s, "-")
	if !found {
		return 0, 0, false
	}
	home, err1 := strconv.Atoi(strings.TrimSpace(left))
	away, err2 := strconv.Atoi(strings.TrimSpace(right))
	if err1 != nil || err2 != nil || home < 0 || away < 0 {
		return 0, 0, false
	}
	return home, away, true
}

// stripQuotes removes the double quotes the splitter leaves on quoted args
func stripQuotes(s string) string {
	s = strings.ReplaceAll(s, "\"", "")
	s = strings.ReplaceAll(s, "“", "")
	s = strings.ReplaceAll(s, "”", "")
	return strings.TrimSpace(s)
}
