package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/chxlky/trello-cards/api"
	"github.com/chxlky/trello-cards/internal/config"
	"github.com/chxlky/trello-cards/internal/models"
	"github.com/chxlky/trello-cards/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "serve",
		Short:         "Poll Trello and serve list state to the panel",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
}

// logTransition records every list state change; the panel renderer reads
// the same state from /api/lists.
func logTransition(snap models.Snapshot) {
	fields := []zap.Field{
		zap.String("list", snap.Target.ListName),
		zap.String("boardID", snap.BoardID),
		zap.String("state", string(snap.State)),
	}
	if snap.Result != nil {
		fields = append(fields, zap.Int("cards", snap.Result.CardCount))
	}
	if snap.Err != nil {
		fields = append(fields, zap.String("error", snap.ErrorMessage()))
	}
	zap.L().Debug("List state changed", fields...)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(a.current().RefreshInterval, a.refreshAll)

	a.lists.OnChange(logTransition)

	a.targets.OnChange(func(targets []models.ListTarget) {
		zap.L().Info("Target lists changed", zap.Int("count", len(targets)))
		a.lists.Apply(a.current().Settings(targets))
		sched.Trigger()
	})
	config.Watch(a.viper, func(cfg *config.Config) {
		a.setConfig(cfg)
		if err := a.apply(); err != nil {
			zap.L().Error("Failed to apply new settings", zap.Error(err))
			return
		}
		sched.Reset(cfg.RefreshInterval)
		sched.Trigger()
	})

	gin.SetMode(gin.ReleaseMode)
	handler := &api.Handler{
		Lists:       a.lists,
		Targets:     a.targets,
		Boards:      a.boards,
		Credentials: a.credentials,
		Trigger:     sched.Trigger,
	}
	srv := &http.Server{
		Addr:    ":" + a.current().ServerPort,
		Handler: api.NewRouter(handler, zap.L()),
	}

	zap.L().Info("Starting server", zap.String("port", a.current().ServerPort))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server error", zap.Error(err))
		}
	}()

	sched.Start(ctx)
	sched.Trigger()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	var once sync.Once

	cleanup := func(reason string) {
		zap.L().Info("Shutdown initiated", zap.String("reason", reason))

		cancel()
		sched.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		zap.L().Info("Shutting down HTTP server...")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("Error shutting down server", zap.Error(err))
		} else {
			zap.L().Info("HTTP server shut down gracefully.")
		}

		a.close()
		close(done)
	}

	go func() {
		sig := <-sigCh
		once.Do(func() {
			cleanup(sig.String())
		})

		// a second signal exits immediately
		go func() {
			<-sigCh
			zap.L().Info("Second interrupt signal received. Exiting immediately.")
			os.Exit(1)
		}()
	}()

	<-done
	zap.L().Info("Exiting...")
	return nil
}
