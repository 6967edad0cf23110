/* main.go
 * The "main" method for running the prediction pool bot. For details about
 * the bot see `readme.md`
 * Usage: go run main.go -db="<database>" -tournament="<tournament>"
 */

package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"pool-tracker/api/api"
	"pool-tracker/bot"
)

func main() {
	envErr := godotenv.Load()

	//Flags
	dbPtr := flag.String("db", "pool_tracker", "Name of the mongo database to use")
	tournamentPtr := flag.String("tournament", "WorldCup2026", "Tournament name, e.g. WorldCup2026")
	testPtr := flag.String("test", "false", "Use main or test bot: takes true or false as argument")
	debugPtr := flag.String("debug", "false", "Enable debug logging: takes true or false as argument")

	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)

	if envErr != nil {
		logger.Warn().Msg("no .env file found, relying on environment variables")
	}

	if debug, err := convertStrToBool(*debugPtr); err != nil {
		logger.Fatal().Msg("invalid \"debug\" flag, should be true or false")
	} else if debug {
		logger = logger.Level(zerolog.DebugLevel)
	}

	useTestBot, err := convertStrToBool(*testPtr)
	if err != nil {
		logger.Fatal().Msg("invalid \"test\" flag, should be true or false")
	}

	var discordToken string
	if useTestBot {
		discordToken = os.Getenv("DISCORD_BETA_TOKEN")
	} else {
		discordToken = os.Getenv("DISCORD_PROD_TOKEN")
	}

	apiPtr, err := api.NewAPI(*dbPtr, os.Getenv("MONGO_URI"), *tournamentPtr, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize API")
	}
	defer func() {
		if err := apiPtr.Store.GetClient().Disconnect(context.TODO()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongo")
		}
	}()

	adminIDs := parseAdminIDs(os.Getenv("ADMIN_IDS"))
	if len(adminIDs) == 0 {
		logger.Warn().Msg("ADMIN_IDS is empty, admin commands will be unusable")
	}

	poolBot, err := bot.NewBot(discordToken, apiPtr, adminIDs, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize bot")
	}

	if err := poolBot.Run(); err != nil {
		logger.Fatal().Err(err).Msg("bot stopped with error")
	}
}
