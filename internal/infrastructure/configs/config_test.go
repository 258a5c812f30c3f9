package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("http port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.Game.MaxPlayers != 10 {
		t.Errorf("max players = %d, want 10", cfg.Game.MaxPlayers)
	}
	if cfg.Game.DefaultQuestionCount != 3 {
		t.Errorf("default question count = %d, want 3", cfg.Game.DefaultQuestionCount)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("store backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Bus.Backend != "memory" {
		t.Errorf("bus backend = %q, want memory", cfg.Bus.Backend)
	}
	if cfg.Game.IdleRoomExpiry != time.Hour {
		t.Errorf("idle room expiry = %v, want 1h", cfg.Game.IdleRoomExpiry)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guessit.yaml")

	yaml := `
http:
  port: 9999
game:
  max_players: 6
  default_question_count: 5
store:
  backend: mongo
  mongo_database: partytime
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != 9999 {
		t.Errorf("http port = %d, want 9999", cfg.HTTP.Port)
	}
	if cfg.Game.MaxPlayers != 6 {
		t.Errorf("max players = %d, want 6", cfg.Game.MaxPlayers)
	}
	if cfg.Game.DefaultQuestionCount != 5 {
		t.Errorf("default question count = %d, want 5", cfg.Game.DefaultQuestionCount)
	}
	if cfg.Store.Backend != "mongo" {
		t.Errorf("store backend = %q, want mongo", cfg.Store.Backend)
	}
	if cfg.Store.MongoDatabase != "partytime" {
		t.Errorf("mongo database = %q, want partytime", cfg.Store.MongoDatabase)
	}
	// Unset keys still fall back to defaults.
	if cfg.RateLimiter.RequestsPerTimeFrame != 20 {
		t.Errorf("rate limit = %d, want the default 20", cfg.RateLimiter.RequestsPerTimeFrame)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load with a missing explicit path did not fail")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("GAME_MAX_PLAYERS", "8")
	t.Setenv("BUS_BACKEND", "amqp")
	t.Setenv("LOGGER_LOGGER", "zerolog")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != 7070 {
		t.Errorf("http port = %d, want 7070", cfg.HTTP.Port)
	}
	if cfg.Game.MaxPlayers != 8 {
		t.Errorf("max players = %d, want 8", cfg.Game.MaxPlayers)
	}
	if cfg.Bus.Backend != "amqp" {
		t.Errorf("bus backend = %q, want amqp", cfg.Bus.Backend)
	}
	if cfg.Logger.Logger != "zerolog" {
		t.Errorf("logger = %q, want zerolog", cfg.Logger.Logger)
	}
}
