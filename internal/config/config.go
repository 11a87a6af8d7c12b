// Package config loads the extension settings through viper and notifies
// callers when the config file changes.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chxlky/trello-cards/internal/listsync"
	"github.com/chxlky/trello-cards/internal/models"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	KeyAPIKey          = "api-key"
	KeyToken           = "token"
	KeyRefreshInterval = "refresh-interval"
	KeyShowCardCount   = "show-card-count"
	KeyShowListNames   = "show-list-names"
	KeyShowEmojis      = "show-emojis"
	KeyTargetLists     = "target-lists-config"
	KeyBoardID         = "board-id"
	KeyDatabasePath    = "database.path"
	KeyServerPort      = "server.port"
	KeyTrelloBaseURL   = "trello.base-url"
	KeyTrelloTimeout   = "trello.timeout"

	envPrefix = "TRELLO_CARDS"
)

// Config is the typed view of the settings store, rebuilt on every change.
type Config struct {
	Credentials     models.Credentials
	RefreshInterval time.Duration
	Display         listsync.Display
	// Targets comes from target-lists-config in the config file and only
	// seeds the database store.
	Targets       []models.ListTarget
	LegacyBoardID string

	DatabasePath  string
	ServerPort    string
	TrelloBaseURL string
	TrelloTimeout time.Duration
}

// Settings returns what the list manager needs, with targets supplied by the
// caller's target store.
func (c *Config) Settings(targets []models.ListTarget) listsync.Settings {
	return listsync.Settings{
		Credentials:   c.Credentials,
		Targets:       targets,
		Display:       c.Display,
		LegacyBoardID: c.LegacyBoardID,
	}
}

// New returns a viper instance reading config.toml from path, or from the
// working directory and the user config directory when path is empty.
func New(path string) *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyRefreshInterval, 5)
	v.SetDefault(KeyShowCardCount, true)
	v.SetDefault(KeyShowListNames, true)
	v.SetDefault(KeyShowEmojis, true)
	v.SetDefault(KeyDatabasePath, "cards.db")
	v.SetDefault(KeyServerPort, "8080")
	v.SetDefault(KeyTrelloBaseURL, "https://api.trello.com/1")
	v.SetDefault(KeyTrelloTimeout, 30*time.Second)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		return v
	}
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "trello-cards"))
	}
	return v
}

// Load reads the config file and decodes it. A missing file is not an
// error: defaults and environment variables still apply.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		zap.L().Warn("No config file found, using defaults and environment")
	}
	return Decode(v), nil
}

// Decode builds a Config from the values currently held by v.
func Decode(v *viper.Viper) *Config {
	interval := v.GetInt(KeyRefreshInterval)
	if interval < 1 {
		zap.L().Warn("Refresh interval below one minute, clamping", zap.Int("minutes", interval))
		interval = 1
	}

	timeout := v.GetDuration(KeyTrelloTimeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Config{
		Credentials: models.Credentials{
			APIKey: v.GetString(KeyAPIKey),
			Token:  v.GetString(KeyToken),
		},
		RefreshInterval: time.Duration(interval) * time.Minute,
		Display: listsync.Display{
			ShowCardCount: v.GetBool(KeyShowCardCount),
			ShowListNames: v.GetBool(KeyShowListNames),
			ShowEmojis:    v.GetBool(KeyShowEmojis),
		},
		Targets:       decodeTargets(v.Get(KeyTargetLists)),
		LegacyBoardID: v.GetString(KeyBoardID),
		DatabasePath:  v.GetString(KeyDatabasePath),
		ServerPort:    v.GetString(KeyServerPort),
		TrelloBaseURL: v.GetString(KeyTrelloBaseURL),
		TrelloTimeout: timeout,
	}
}

// decodeTargets accepts either the stored JSON string or a TOML array of
// tables. Anything malformed yields no targets.
func decodeTargets(value any) []models.ListTarget {
	var raw string
	switch v := value.(type) {
	case nil:
		return []models.ListTarget{}
	case string:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			zap.L().Error("Error encoding target lists config", zap.Error(err))
			return []models.ListTarget{}
		}
		raw = string(b)
	}

	targets, err := models.ParseTargets(raw)
	if err != nil {
		zap.L().Error("Error parsing target lists config", zap.Error(err))
	}
	return targets
}

// Watch calls onChange with the reloaded config whenever the config file is
// written or recreated.
func Watch(v *viper.Viper, onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		zap.L().Info("Config file changed", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		onChange(Decode(v))
	})
	v.WatchConfig()
}
