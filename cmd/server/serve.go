package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gantt-planner-api/internal/auth"
	"gantt-planner-api/internal/cache"
	"gantt-planner-api/internal/logging"
	"gantt-planner-api/internal/notify"
	"gantt-planner-api/internal/realtime"
	"gantt-planner-api/internal/routes"
	"gantt-planner-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the daily deadline notifier",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	st, err := openStore()
	if err != nil {
		return err
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)
	snapshots := cache.NewSnapshots(cfg.SnapshotTTL)
	hub := realtime.NewHub()
	env := services.NewEnv(st, snapshots, hub)

	if logging.Logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	// Setup the routes (public and protected routes)
	router := routes.SetupRoutes(routes.NewHandlers(env, services.NewUserService(st, tokens), hub), tokens, cfg.CORSOrigin)
	for _, r := range router.Routes() {
		logging.Logger.Debugf("  %-6s %s", r.Method, r.Path)
	}

	go notify.NewScheduler(notify.NewChecker(st, newSender(), cfg.NotifyDays), cfg.NotifyHour).Run(ctx)
	go purgeSnapshots(ctx, snapshots, cfg.SnapshotTTL)

	srv := &http.Server{Addr: cfg.Addr(), Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logging.Logger.Infof("Server starting on port %s", cfg.Addr())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func purgeSnapshots(ctx context.Context, c *cache.Snapshots, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.PurgeExpired()
		}
	}
}
