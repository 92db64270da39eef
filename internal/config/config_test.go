package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("server:\n  host: 127.0.0.1\n"))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Grid.CellWidth != 192 || cfg.Grid.CellHeight != 108 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Board.PlacementMode != "move" || cfg.Storage.Backend != "fs" || cfg.JWT.PublicKeyRefreshHrs != 24 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.UsesRedis() {
		t.Fatalf("fs backend without jwt should not need redis")
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	cases := []string{
		"board:\n  placement_mode: teleport\n",
		"storage:\n  backend: s3\n",
		"jwt:\n  enabled: true\n",
		"server: [",
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c)); err == nil {
			t.Fatalf("expected error for %q", c)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	data := []byte(`
grid:
  cell_width: 100
  cell_height: 80
  spacing_h: 32
  spacing_v: 32
board:
  placement_mode: copy
  styles: [dark, light]
storage:
  backend: redis
redis:
  address: localhost:6379
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write error: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if cfg.Grid.SpacingH != 32 || cfg.Board.PlacementMode != "copy" || len(cfg.Board.Styles) != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.UsesRedis() {
		t.Fatalf("redis backend should need redis")
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestListenAddr(t *testing.T) {
	cfg, err := Parse([]byte("server:\n  host: 127.0.0.1\n  port: 9000\n"))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if got := cfg.Server.ListenAddr(); got != "127.0.0.1:9000" {
		t.Fatalf("unexpected listen addr %q", got)
	}

	cfg, err = Parse(nil)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if got := cfg.Server.ListenAddr(); got != "0.0.0.0:8080" {
		t.Fatalf("unexpected default listen addr %q", got)
	}
}
