package config

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/chxlky/trello-cards/internal/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api-key = "k"
token = "t"
refresh-interval = 10
show-card-count = false
show-emojis = true
show-list-names = false
board-id = "legacy"
target-lists-config = '[{"listName":"*Today*","boardId":"b1","emoji":"📅"}]'

[database]
path = "/tmp/cards.db"

[trello]
timeout = "5s"
`)

	cfg, err := Load(New(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Credentials != (models.Credentials{APIKey: "k", Token: "t"}) {
		t.Errorf("credentials = %+v", cfg.Credentials)
	}
	if cfg.RefreshInterval != 10*time.Minute {
		t.Errorf("interval = %v", cfg.RefreshInterval)
	}
	if cfg.Display.ShowCardCount || !cfg.Display.ShowEmojis || cfg.Display.ShowListNames {
		t.Errorf("display = %+v", cfg.Display)
	}
	want := []models.ListTarget{{ListName: "*Today*", BoardID: "b1", Emoji: "📅"}}
	if !reflect.DeepEqual(cfg.Targets, want) {
		t.Errorf("targets = %+v", cfg.Targets)
	}
	if cfg.LegacyBoardID != "legacy" || cfg.DatabasePath != "/tmp/cards.db" || cfg.TrelloTimeout != 5*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ServerPort != "8080" || cfg.TrelloBaseURL != "https://api.trello.com/1" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadTargetTables(t *testing.T) {
	path := writeConfig(t, `
[[target-lists-config]]
listName = "Today"
boardId = "b1"
emoji = "📅"

[[target-lists-config]]
listName = "Backlog"
boardId = "b2"
`)

	cfg, err := Load(New(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []models.ListTarget{
		{ListName: "Today", BoardID: "b1", Emoji: "📅"},
		{ListName: "Backlog", BoardID: "b2"},
	}
	if !reflect.DeepEqual(cfg.Targets, want) {
		t.Errorf("targets = %+v", cfg.Targets)
	}
}

func TestLoadMalformedTargetsIsEmpty(t *testing.T) {
	path := writeConfig(t, `target-lists-config = "[{broken"`)

	cfg, err := Load(New(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Targets == nil || len(cfg.Targets) != 0 {
		t.Errorf("targets = %v, want empty", cfg.Targets)
	}
}

func TestLoadDefaultsAndClamp(t *testing.T) {
	path := writeConfig(t, `refresh-interval = 0`)

	cfg, err := Load(New(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RefreshInterval != time.Minute {
		t.Errorf("interval = %v, want clamped to 1m", cfg.RefreshInterval)
	}
	if !cfg.Display.ShowCardCount || !cfg.Display.ShowListNames || !cfg.Display.ShowEmojis {
		t.Errorf("display defaults = %+v", cfg.Display)
	}
	if cfg.Credentials.APIKey != "" {
		t.Errorf("unexpected api key %q", cfg.Credentials.APIKey)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TRELLO_CARDS_API_KEY", "from-env")
	t.Setenv("TRELLO_CARDS_SERVER_PORT", "9090")
	path := writeConfig(t, `api-key = "from-file"`)

	cfg, err := Load(New(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Credentials.APIKey != "from-env" || cfg.ServerPort != "9090" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestWatch(t *testing.T) {
	path := writeConfig(t, `token = "old"`)
	v := New(path)
	if _, err := Load(v); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var (
		mu    sync.Mutex
		token string
	)
	Watch(v, func(cfg *Config) {
		mu.Lock()
		token = cfg.Credentials.Token
		mu.Unlock()
	})

	if err := os.WriteFile(path, []byte(`token = "new"`), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		got := token
		mu.Unlock()
		if got == "new" {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("config change not observed, token = %q", got)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
