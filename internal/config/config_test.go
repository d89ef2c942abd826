package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.WebPort != def.WebPort {
		t.Fatalf("WebPort = %d, want %d", cfg.WebPort, def.WebPort)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.WebBind != "127.0.0.1" {
		t.Fatalf("WebBind = %q, want 127.0.0.1", cfg.WebBind)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"web_port": 9000, "log_level": "debug", "require_login": true}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WebPort != 9000 {
		t.Fatalf("WebPort = %d, want 9000", cfg.WebPort)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if !cfg.RequireLogin {
		t.Fatal("RequireLogin = false, want true")
	}
	if cfg.LogFormat != "console" {
		t.Fatalf("LogFormat = %q, want default console", cfg.LogFormat)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"disabled_tools": ["deck_delete", " deck_delete ", ""], "disabled_types": ["settings"]}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.DisabledTools) != 1 || cfg.DisabledTools[0] != "deck_delete" {
		t.Fatalf("DisabledTools = %v, want [deck_delete]", cfg.DisabledTools)
	}
	if len(cfg.DisabledTypes) != 1 || cfg.DisabledTypes[0] != "settings" {
		t.Fatalf("DisabledTypes = %v, want [settings]", cfg.DisabledTypes)
	}
}

func TestMerge(t *testing.T) {
	base := &Config{
		WebPort:       8000,
		LogLevel:      "info",
		AllowedPaths:  []string{"/a", "/b"},
		DisabledTypes: []string{"study"},
	}
	overlay := &Config{
		WebPort:          9000,
		AllowUnsafePaths: true,
		AllowedPaths:     []string{"/b", "/c"},
	}

	got := Merge(base, overlay)

	if got.WebPort != 9000 {
		t.Errorf("WebPort = %d, want 9000", got.WebPort)
	}
	if got.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want base value info", got.LogLevel)
	}
	if !got.AllowUnsafePaths {
		t.Error("AllowUnsafePaths = false, want true")
	}
	want := []string{"/a", "/b", "/c"}
	if len(got.AllowedPaths) != len(want) {
		t.Fatalf("AllowedPaths = %v, want %v", got.AllowedPaths, want)
	}
	for i := range want {
		if got.AllowedPaths[i] != want[i] {
			t.Errorf("AllowedPaths[%d] = %q, want %q", i, got.AllowedPaths[i], want[i])
		}
	}
	if len(got.DisabledTypes) != 1 {
		t.Errorf("DisabledTypes = %v, want [study]", got.DisabledTypes)
	}
}

func TestMerge_EmptySlicesStayNil(t *testing.T) {
	got := Merge(&Config{}, &Config{})
	if got.AllowedPaths != nil || got.DisabledTools != nil || got.DisabledTypes != nil {
		t.Errorf("expected nil slices, got %+v", got)
	}
}

func TestLoadWithRepo(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, `{"web_port": 8100, "allowed_paths": ["/global"]}`)

	repoRoot := t.TempDir()
	writeConfig(t, filepath.Join(repoRoot, ".adapty"), `{"web_port": 8200, "allowed_paths": ["/repo"], "skip_sample_decks": true}`)

	nested := filepath.Join(repoRoot, "src", "decks")
	if err := os.MkdirAll(nested, 0700); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, nested)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.WebPort != 8200 {
		t.Errorf("WebPort = %d, want repo value 8200", cfg.WebPort)
	}
	if !cfg.SkipSampleDecks {
		t.Error("SkipSampleDecks = false, want true")
	}
	if len(cfg.AllowedPaths) != 2 {
		t.Errorf("AllowedPaths = %v, want global+repo", cfg.AllowedPaths)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default info", cfg.LogLevel)
	}
}

func TestFindRepoConfig_FindsNearest(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, filepath.Join(root, ".adapty"), `{}`)
	inner := filepath.Join(root, "a", "b")
	writeConfig(t, filepath.Join(root, "a", ".adapty"), `{}`)
	if err := os.MkdirAll(inner, 0700); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	got := FindRepoConfig(inner)
	want := filepath.Join(root, "a", ".adapty", "config.json")
	if got != want {
		t.Errorf("FindRepoConfig() = %q, want %q", got, want)
	}
}
