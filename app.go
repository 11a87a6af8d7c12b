package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/chxlky/trello-cards/database"
	"github.com/chxlky/trello-cards/integrations"
	"github.com/chxlky/trello-cards/internal/config"
	"github.com/chxlky/trello-cards/internal/listsync"
	"github.com/chxlky/trello-cards/internal/models"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds the wiring shared by every command.
type app struct {
	viper   *viper.Viper
	db      *gorm.DB
	targets *database.TargetStore
	boards  *integrations.BoardService
	lists   *listsync.Manager

	mu  sync.RWMutex
	cfg *config.Config
}

func newApp() (*app, error) {
	v := config.New(configPath)
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	zap.L().Info("Database initialised and migrated successfully", zap.String("path", cfg.DatabasePath))

	targets := database.NewTargetStore(database.NewSettingsStore(db))
	if seeded, err := targets.Seed(cfg.Targets); err != nil {
		zap.L().Error("Failed to seed target lists from config", zap.Error(err))
	} else if seeded {
		zap.L().Info("Seeded target lists from config file", zap.Int("count", len(cfg.Targets)))
	}

	boards := integrations.NewBoardService(integrations.NewTrelloClient(cfg.TrelloBaseURL, cfg.TrelloTimeout))

	a := &app{
		viper:   v,
		db:      db,
		targets: targets,
		boards:  boards,
		lists:   listsync.NewManager(boards),
		cfg:     cfg,
	}
	if err := a.apply(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) current() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

func (a *app) credentials() models.Credentials {
	return a.current().Credentials
}

func (a *app) setConfig(cfg *config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
}

// apply rebuilds every list controller from the current config and the
// stored targets.
func (a *app) apply() error {
	targets, err := a.targets.List()
	if err != nil {
		return fmt.Errorf("failed to load target lists: %w", err)
	}
	a.lists.Apply(a.current().Settings(targets))
	return nil
}

func (a *app) refreshAll(ctx context.Context) {
	a.lists.RefreshAll(ctx)
}

func (a *app) close() {
	sqlDB, err := a.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		zap.L().Error("Error closing database", zap.Error(err))
		return
	}
	zap.L().Info("Database connection closed.")
}
