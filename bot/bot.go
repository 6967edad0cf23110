/* bot.go
 * Contains logic used for creating the bot. Requires a discord bot token and
 * APIPtr, both of which are passed in from main.go. Admin-only commands are
 * gated on the AdminIDs set.
 */

package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"pool-tracker/api/api"
)

type Bot struct {
	BotToken string
	APIPtr   *api.API
	AdminIDs map[string]bool

	// limiter throttles the expensive admin triggers ($recalc, $audit) so a
	// mistyped loop of commands cannot hammer the database
	limiter *rate.Limiter
	log     zerolog.Logger
}

func NewBot(botToken string, apiPtr *api.API, adminIDs []string, logger zerolog.Logger) (*Bot, error) {
	if botToken == "" {
		return nil, fmt.Errorf("botToken is required but none was provided")
	}
	if apiPtr == nil {
		return nil, fmt.Errorf("apiPtr is required but none was provided")
	}

	admins := make(map[string]bool, len(adminIDs))
	for _, id := range adminIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = true
		}
	}

	return &Bot{
		BotToken: botToken,
		APIPtr:   apiPtr,
		AdminIDs: admins,
		limiter:  rate.NewLimiter(rate.Every(10*time.Second), 2),
		log:      logger,
	}, nil
}

// isAdmin reports whether the given discord user id may run admin commands
func (b *Bot) isAdmin(userID string) bool {
	return b.AdminIDs[userID]
}

// Helper function to check if a string starts with a given substring
// Preconditions: Recieves an input string and a substring
// Postconditions: Returns true if the substring is at the start of the string, else returns false
func startsWith(inputString string, substring string) bool {
	//Check if the substring is present in the input string
	if !strings.Contains(inputString, substring) {
		return false
	}
	strLength := len(substring)
	for i := 0; i < strLength; i++ {
		if inputString[i] != substring[i] {
			return false
		}
	}
	return true
}
