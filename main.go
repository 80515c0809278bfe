package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/centavo/backend/internal/invoices"
	"github.com/centavo/backend/internal/models"
	"github.com/centavo/backend/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	dsn, ok := os.LookupEnv("DB_DSN")
	if !ok {
		// Create data directory
		dataDir := filepath.Join(".", "data")
		err := os.MkdirAll(dataDir, os.ModePerm)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}

		dsn = filepath.Join(dataDir, "centavo.db")
	}

	// Connect to the database and migrate all models
	err := models.Connect(dsn)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Schedule the daily sweeps when a schedule is configured. Deployments
	// that prefer an external scheduler leave this unset and call the
	// /v1/operations endpoints instead.
	schedule, ok := os.LookupEnv("REMINDER_SCHEDULE")
	if ok {
		scheduler := cron.New()

		_, err := scheduler.AddFunc(schedule, func() {
			now := time.Now()

			statuses, err := invoices.UpdateStatuses(models.DB, now)
			if err != nil {
				log.Error().Err(err).Msg("invoice status sweep failed")
			} else {
				log.Info().
					Int("closed", statuses.Closed).
					Int("overdue", statuses.Overdue).
					Int("failed", statuses.Failed).
					Msg("invoice status sweep complete")
			}

			reminders, err := invoices.GenerateDueReminders(models.DB, now)
			if err != nil {
				log.Error().Err(err).Msg("reminder sweep failed")
			} else {
				log.Info().
					Int("emitted", reminders.Emitted).
					Int("failed", reminders.Failed).
					Msg("reminder sweep complete")
			}
		})
		if err != nil {
			log.Fatal().Msgf("invalid REMINDER_SCHEDULE: %s", err.Error())
		}

		scheduler.Start()
		defer scheduler.Stop()

		log.Info().Str("schedule", schedule).Msg("sweep scheduler started")
	}

	r, err := router.Router()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	if err := r.Run(); err != nil {
		log.Fatal().Msg(err.Error())
	}
}
