/* bot_command_test.go
 * Contains unit tests for bot.go
 */

package bot

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"pool-tracker/api/api"
)

// Create a mock API for testing
func createMockAPI() *api.API {
	return api.NewAPIWithStore(api.NewMockStore(), zerolog.Nop())
}

// region NewBot tests

func TestNewBot_Success(t *testing.T) {
	apiPtr := createMockAPI()
	bot, err := NewBot("test_token", apiPtr, []string{"admin123", " ", "admin456"}, zerolog.Nop())

	if err != nil {
		t.Errorf("Expected no error, got: %s", err.Error())
	}

	if bot.BotToken != "test_token" {
		t.Errorf("Expected bot token 'test_token', got '%s'", bot.BotToken)
	}

	if bot.APIPtr != apiPtr {
		t.Error("API pointer not set correctly")
	}

	if !bot.isAdmin("admin123") || !bot.isAdmin("admin456") {
		t.Error("Expected configured admin ids to be recognised")
	}

	if bot.isAdmin("user123") || bot.isAdmin(" ") {
		t.Error("Expected unknown ids to not be admins")
	}
}

func TestNewBot_EmptyToken(t *testing.T) {
	apiPtr := createMockAPI()
	_, err := NewBot("", apiPtr, nil, zerolog.Nop())

	if err == nil {
		t.Error("Expected error for empty bot token, got nil")
	}

	if !strings.Contains(err.Error(), "botToken is required") {
		t.Errorf("Expected error about botToken, got: %s", err.Error())
	}
}

func TestNewBot_NilAPI(t *testing.T) {
	_, err := NewBot("test_token", nil, nil, zerolog.Nop())

	if err == nil {
		t.Error("Expected error for nil api pointer, got nil")
	}
}

// endregion
