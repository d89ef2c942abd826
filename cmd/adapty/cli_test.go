package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hpungsan/adapty/internal/config"
	"github.com/hpungsan/adapty/internal/db"
	"github.com/hpungsan/adapty/internal/deck"
	"github.com/hpungsan/adapty/internal/ops"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	cleanup := func() {
		database.Close()
	}
	return database, cleanup
}

// testConfig returns a config that allows temp dirs for import/export.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	return cfg
}

// runCLI runs args with stdin (when non-empty) and returns captured stdout.
func runCLI(t *testing.T, database *sql.DB, cfg *config.Config, stdin string, args ...string) (string, error) {
	t.Helper()
	app := newCLIApp(database, cfg, zap.NewNop())

	if stdin != "" {
		oldStdin := os.Stdin
		stdinR, stdinW, _ := os.Pipe()
		os.Stdin = stdinR
		defer func() { os.Stdin = oldStdin }()
		go func() {
			_, _ = stdinW.WriteString(stdin)
			stdinW.Close()
		}()
	}

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := app.Run(append([]string{"adapty"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

func storeTestDeck(t *testing.T, database *sql.DB, name string) *ops.StoreOutput {
	t.Helper()
	out, err := ops.StoreDeck(context.Background(), database, ops.StoreInput{
		Name: name,
		Cards: []deck.Card{
			{Front: "hola", Back: "hello"},
			{Front: "adiós", Back: "goodbye"},
		},
	})
	if err != nil {
		t.Fatalf("failed to store test deck: %v", err)
	}
	return out
}

// TestCLIAdd tests the add command with both stdin formats.
func TestCLIAdd(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	t.Run("deck object", func(t *testing.T) {
		stdin := `{"name": "Spanish", "description": "Basics", "cards": [{"front": "hola", "back": "hello"}, {"front": "gato", "back": "cat"}]}`
		out, err := runCLI(t, database, cfg, stdin, "add")
		if err != nil {
			t.Fatalf("add command failed: %v", err)
		}

		var output ops.StoreOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
		}
		if output.ID == "" {
			t.Error("expected non-empty ID")
		}
		if output.Name != "Spanish" || output.CardCount != 2 {
			t.Errorf("got name=%q card_count=%d, want Spanish/2", output.Name, output.CardCount)
		}
	})

	t.Run("card array with name flag", func(t *testing.T) {
		stdin := `[{"front": "H2O", "back": "water"}]`
		out, err := runCLI(t, database, cfg, stdin, "add", "--name=Chemistry")
		if err != nil {
			t.Fatalf("add command failed: %v", err)
		}

		var output ops.StoreOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.Name != "Chemistry" || output.CardCount != 1 {
			t.Errorf("got name=%q card_count=%d, want Chemistry/1", output.Name, output.CardCount)
		}
	})

	t.Run("name collision", func(t *testing.T) {
		_, err := runCLI(t, database, cfg, `{"name": "spanish", "cards": []}`, "add")
		if err == nil || !strings.Contains(err.Error(), "NAME_ALREADY_EXISTS") {
			t.Errorf("expected NAME_ALREADY_EXISTS, got %v", err)
		}
	})

	t.Run("replace mode", func(t *testing.T) {
		out, err := runCLI(t, database, cfg, `{"name": "Spanish", "cards": [{"front": "perro", "back": "dog"}]}`, "add", "--mode=replace")
		if err != nil {
			t.Fatalf("add command failed: %v", err)
		}
		var output ops.StoreOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if !output.Replaced || output.CardCount != 1 {
			t.Errorf("got replaced=%v card_count=%d, want true/1", output.Replaced, output.CardCount)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := runCLI(t, database, cfg, `{"name":`, "add")
		if err == nil || !strings.Contains(err.Error(), "INVALID_REQUEST") {
			t.Errorf("expected INVALID_REQUEST, got %v", err)
		}
	})
}

// TestCLIDecksAndShow tests the decks and show commands.
func TestCLIDecksAndShow(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	stored := storeTestDeck(t, database, "Spanish")
	storeTestDeck(t, database, "Arithmetic")

	out, err := runCLI(t, database, cfg, "", "decks", "--limit=1")
	if err != nil {
		t.Fatalf("decks command failed: %v", err)
	}
	var list ops.ListOutput
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Name != "Arithmetic" {
		t.Errorf("items = %+v, want [Arithmetic]", list.Items)
	}
	if !list.Pagination.HasMore || list.Pagination.Total != 2 {
		t.Errorf("pagination = %+v", list.Pagination)
	}

	t.Run("show by name", func(t *testing.T) {
		out, err := runCLI(t, database, cfg, "", "show", "--name=spanish")
		if err != nil {
			t.Fatalf("show command failed: %v", err)
		}
		var output ops.FetchOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.ID != stored.ID || len(output.Cards) != 2 {
			t.Errorf("got id=%s cards=%d", output.ID, len(output.Cards))
		}
		if output.Cards[0].ID != 1 || output.Cards[1].ID != 2 {
			t.Errorf("expected sequential card ids, got %+v", output.Cards)
		}
	})

	t.Run("show by id", func(t *testing.T) {
		out, err := runCLI(t, database, cfg, "", "show", stored.ID)
		if err != nil {
			t.Fatalf("show command failed: %v", err)
		}
		var output ops.FetchOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.Name != "Spanish" {
			t.Errorf("expected name=Spanish, got %s", output.Name)
		}
	})
}

// TestCLIDelete tests the delete command.
func TestCLIDelete(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	stored := storeTestDeck(t, database, "Spanish")

	out, err := runCLI(t, database, cfg, "", "delete", "--name=Spanish")
	if err != nil {
		t.Fatalf("delete command failed: %v", err)
	}
	var output ops.DeleteOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if !output.Deleted || output.ID != stored.ID {
		t.Errorf("got %+v", output)
	}

	if _, err := runCLI(t, database, cfg, "", "show", stored.ID); err == nil {
		t.Error("expected deleted deck to be gone")
	}
}

// TestCLIExportImport tests export and import round trip.
func TestCLIExportImport(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	storeTestDeck(t, database, "Spanish")
	exportPath := filepath.Join(t.TempDir(), "decks.jsonl")

	out, err := runCLI(t, database, cfg, "", "export", "--path="+exportPath)
	if err != nil {
		t.Fatalf("export command failed: %v", err)
	}
	var exportOutput ops.ExportOutput
	if err := json.Unmarshal([]byte(out), &exportOutput); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if exportOutput.Count != 1 {
		t.Errorf("expected count=1, got %d", exportOutput.Count)
	}

	database2, cleanup2 := setupTestDB(t)
	defer cleanup2()

	out, err = runCLI(t, database2, cfg, "", "import", "--path="+exportPath)
	if err != nil {
		t.Fatalf("import command failed: %v", err)
	}
	var importOutput ops.ImportOutput
	if err := json.Unmarshal([]byte(out), &importOutput); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if importOutput.Imported != 1 {
		t.Errorf("expected imported=1, got %d (errors: %+v)", importOutput.Imported, importOutput.Errors)
	}

	// A second import in error mode reports the collision and imports nothing
	out, err = runCLI(t, database2, cfg, "", "import", "--path="+exportPath, "--mode=error")
	if err != nil {
		t.Fatalf("import command failed: %v", err)
	}
	importOutput = ops.ImportOutput{}
	if err := json.Unmarshal([]byte(out), &importOutput); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if importOutput.Imported != 0 || len(importOutput.Errors) != 1 {
		t.Errorf("expected one collision error, got %+v", importOutput)
	}
}

// TestCLISettings tests the settings subcommands.
func TestCLISettings(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	out, err := runCLI(t, database, cfg, "", "settings", "get")
	if err != nil {
		t.Fatalf("settings get failed: %v", err)
	}
	var got ops.SettingsOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if got.Stored || got.Settings.FontSize != 24 {
		t.Errorf("expected unstored defaults, got %+v", got)
	}

	out, err = runCLI(t, database, cfg, "", "settings", "set", "--font-size=32", "--reduced-motion", "--preset=Light Pink")
	if err != nil {
		t.Fatalf("settings set failed: %v", err)
	}
	got = ops.SettingsOutput{}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if got.Settings.FontSize != 32 || !got.Settings.ReducedMotion {
		t.Errorf("flags not applied: %+v", got.Settings)
	}
	if got.Settings.CardColor != "#fce4ec" || got.Settings.TextColor != "#880e4f" {
		t.Errorf("preset not applied: %+v", got.Settings)
	}
	if got.Display.TransitionSeconds != 0 {
		t.Errorf("expected reduced motion to zero the transition, got %v", got.Display.TransitionSeconds)
	}
	// Unset flags keep their value
	if got.Settings.FontFamily != "system-ui" || got.Settings.AnimationSpeed != 0.6 {
		t.Errorf("unset flags changed: %+v", got.Settings)
	}

	_, err = runCLI(t, database, cfg, "", "settings", "set", "--font-size=99")
	if err == nil || !strings.Contains(err.Error(), "INVALID_SETTINGS") {
		t.Errorf("expected INVALID_SETTINGS, got %v", err)
	}

	_, err = runCLI(t, database, cfg, "", "settings", "set", "--preset=Neon")
	if err == nil || !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}

	out, err = runCLI(t, database, cfg, "", "settings", "presets")
	if err != nil {
		t.Fatalf("settings presets failed: %v", err)
	}
	var listing struct {
		Presets []map[string]string `json:"presets"`
		Fonts   []map[string]string `json:"fonts"`
	}
	if err := json.Unmarshal([]byte(out), &listing); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if len(listing.Presets) != 6 || len(listing.Fonts) != 5 {
		t.Errorf("got %d presets, %d fonts", len(listing.Presets), len(listing.Fonts))
	}
}

// TestCLIErrorHandling tests error handling in CLI commands.
func TestCLIErrorHandling(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := testConfig()

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"show not found", []string{"show", "--name=nonexistent"}, "NOT_FOUND"},
		{"delete not found", []string{"delete", "--name=nonexistent"}, "NOT_FOUND"},
		{"show without address", []string{"show"}, "INVALID_REQUEST"},
		{"import missing file", []string{"import", "--path=" + filepath.Join(t.TempDir(), "none.jsonl")}, "FILE_NOT_FOUND"},
		{"import bad mode", []string{"import", "--path=x.jsonl", "--mode=merge"}, "INVALID_REQUEST"},
		{"serve bad port", []string{"serve", "--port=70000"}, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// cli.Exit writes to stderr, so just verify the error is returned
			_, err := runCLI(t, database, cfg, "", tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "["+tt.code+"]") {
				t.Errorf("expected [%s] in %q", tt.code, err.Error())
			}
		})
	}
}

// TestParseDeckJSON tests both accepted stdin shapes.
func TestParseDeckJSON(t *testing.T) {
	in, err := parseDeckJSON(`[{"id": 5, "front": "a", "back": "b"}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Name != "" || len(in.Cards) != 1 || in.Cards[0].ID != 5 {
		t.Errorf("got %+v", in)
	}

	in, err = parseDeckJSON(`{"name": "Deck", "cards": [{"front": "a", "back": "b"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Name != "Deck" || len(in.Cards) != 1 {
		t.Errorf("got %+v", in)
	}

	if _, err := parseDeckJSON(`[1, 2]`); err == nil {
		t.Error("expected error for non-card array")
	}
}

// TestIsCLIMode tests the isCLIMode function.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{name: "no args", args: []string{"adapty"}, expected: false},
		{name: "decks command", args: []string{"adapty", "decks"}, expected: true},
		{name: "study command", args: []string{"adapty", "study"}, expected: true},
		{name: "serve command", args: []string{"adapty", "serve"}, expected: true},
		{name: "settings command", args: []string{"adapty", "settings"}, expected: true},
		{name: "help flag", args: []string{"adapty", "--help"}, expected: true},
		{name: "version flag", args: []string{"adapty", "--version"}, expected: true},
		{name: "short help flag", args: []string{"adapty", "-h"}, expected: true},
		{name: "short version flag", args: []string{"adapty", "-v"}, expected: true},
		{name: "unknown arg defaults to MCP", args: []string{"adapty", "--unknown"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save and restore os.Args
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			result := isCLIMode()

			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestIsHelpOrVersion tests the isHelpOrVersion function.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{name: "no args", args: []string{"adapty"}, expected: false},
		{name: "help flag", args: []string{"adapty", "--help"}, expected: true},
		{name: "short help flag", args: []string{"adapty", "-h"}, expected: true},
		{name: "version flag", args: []string{"adapty", "--version"}, expected: true},
		{name: "short version flag", args: []string{"adapty", "-v"}, expected: true},
		{name: "help subcommand", args: []string{"adapty", "help"}, expected: true},
		{name: "decks command is not help", args: []string{"adapty", "decks"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			result := isHelpOrVersion()

			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestReadStdinWithLimit tests the readStdin function respects size limits.
func TestReadStdinWithLimit(t *testing.T) {
	t.Run("within limit", func(t *testing.T) {
		content := "  small content \n"
		r, w, err := os.Pipe()
		if err != nil {
			t.Fatalf("Failed to create pipe: %v", err)
		}
		go func() {
			_, _ = w.WriteString(content)
			w.Close()
		}()

		oldStdin := os.Stdin
		os.Stdin = r
		defer func() { os.Stdin = oldStdin }()

		result, err := readStdin(1000)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if result != "small content" {
			t.Errorf("expected %q, got %q", "small content", result)
		}
	})

	t.Run("exceeds limit", func(t *testing.T) {
		content := strings.Repeat("x", 100)
		r, w, err := os.Pipe()
		if err != nil {
			t.Fatalf("Failed to create pipe: %v", err)
		}
		go func() {
			_, _ = w.WriteString(content)
			w.Close()
		}()

		oldStdin := os.Stdin
		os.Stdin = r
		defer func() { os.Stdin = oldStdin }()

		if _, err := readStdin(50); err == nil {
			t.Error("expected error for content exceeding limit")
		}
	})
}
