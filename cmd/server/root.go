package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gantt-planner-api/internal/config"
	"gantt-planner-api/internal/database"
	"gantt-planner-api/internal/logging"
	"gantt-planner-api/internal/notify"
	"gantt-planner-api/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"
)

var (
	envFile string
	cfg     *config.Config
)

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

var rootCmd = &cobra.Command{
	Use:          "gantt-planner",
	Short:        "Gantt planner API server and maintenance commands",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if err := logging.Init(c.LogLevel, c.LogFile); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		cfg = c

		info := commandContext{correlationID: uuid.New(), startedAt: time.Now()}
		cmd.SetContext(context.WithValue(cmd.Context(), commandContextKey{}, info))
		logging.Logger.WithFields(logrus.Fields{
			"command":        cmd.CommandPath(),
			"correlation_id": info.correlationID.String(),
		}).Debug("command start")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logging.Logger.WithFields(logrus.Fields{
			"command":        cmd.CommandPath(),
			"correlation_id": info.correlationID.String(),
			"duration_ms":    time.Since(info.startedAt).Milliseconds(),
		}).Debug("command end")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", "", "env file to load (default .env)")
}

// Execute runs the CLI; SIGINT and SIGTERM cancel the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore() (*store.Store, error) {
	db, err := database.Open(cfg.DBPath, logger.Warn)
	if err != nil {
		return nil, err
	}
	return store.New(db), nil
}

func newSender() notify.Sender {
	if cfg.NotifyWebhookURL == "" {
		return notify.LogSender{}
	}
	return notify.NewWebhookSender(cfg.NotifyWebhookURL, 10*time.Second)
}
