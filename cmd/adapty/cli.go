package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/adapty/internal/config"
	"github.com/hpungsan/adapty/internal/deck"
	"github.com/hpungsan/adapty/internal/errors"
	"github.com/hpungsan/adapty/internal/ops"
	"github.com/hpungsan/adapty/internal/settings"
	"github.com/hpungsan/adapty/internal/tui"
	"github.com/hpungsan/adapty/internal/web"
)

// maxStdinBytes bounds deck JSON read by the add command.
const maxStdinBytes = 8 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, log *zap.Logger) *cli.App {
	app := &cli.App{
		Name:    "adapty",
		Usage:   "Accessible flashcard study",
		Version: Version,
		Commands: []*cli.Command{
			decksCmd(db),
			showCmd(db),
			addCmd(db),
			deleteCmd(db),
			exportCmd(db, cfg),
			importCmd(db, cfg),
			settingsCmd(db),
			studyCmd(db, log),
			serveCmd(db, cfg, log),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// decksCmd creates the decks command.
func decksCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "decks",
		Usage: "List decks",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListDecks(c.Context, db, ops.ListInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a deck with its cards by ID or name",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Deck name"},
		},
		Action: func(c *cli.Context) error {
			id, name := addressArgs(c)
			output, err := ops.FetchDeck(c.Context, db, ops.FetchInput{ID: id, Name: name})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deckJSON is the stdin format of the add command: a deck object or a bare card array.
type deckJSON struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Cards       []deck.Card `json:"cards"`
}

// addCmd creates the add command.
func addCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a deck (reads deck JSON from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Deck name (overrides the JSON name)"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Deck description"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace"},
		},
		Action: func(c *cli.Context) error {
			// Require stdin input
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("deck JSON must be piped via stdin"))
			}

			text, err := readStdin(maxStdinBytes)
			if err != nil {
				return outputError(err)
			}
			in, err := parseDeckJSON(text)
			if err != nil {
				return outputError(err)
			}
			if name := c.String("name"); name != "" {
				in.Name = name
			}
			if desc := c.String("description"); desc != "" {
				in.Description = desc
			}

			output, err := ops.StoreDeck(c.Context, db, ops.StoreInput{
				Name:        in.Name,
				Description: in.Description,
				Cards:       in.Cards,
				Mode:        ops.StoreMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a deck",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Deck name"},
		},
		Action: func(c *cli.Context) error {
			id, name := addressArgs(c)
			output, err := ops.DeleteDeck(c.Context, db, ops.DeleteInput{ID: id, Name: name})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export decks to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.adapty/exports/<deck|all>-<timestamp>.jsonl)"},
			&cli.StringFlag{Name: "id", Usage: "Export only the deck with this ID"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Export only the deck with this name"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ExportDecks(c.Context, db, cfg, ops.ExportInput{
				Path: c.String("path"),
				ID:   c.String("id"),
				Name: c.String("name"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import decks from a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace|rename"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ImportDecks(c.Context, db, cfg, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// settingsCmd creates the settings command and its subcommands.
func settingsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change display settings",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Show the current settings",
				Action: func(c *cli.Context) error {
					output, err := ops.GetSettings(c.Context, db)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "set",
				Usage: "Change settings; unset flags keep their current value",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "font-size", Usage: fmt.Sprintf("Font size in px (%d-%d)", settings.MinFontSize, settings.MaxFontSize)},
					&cli.StringFlag{Name: "font-family", Usage: "Font family"},
					&cli.BoolFlag{Name: "dark-mode", Usage: "Dark mode"},
					&cli.BoolFlag{Name: "high-contrast", Usage: "High contrast colors"},
					&cli.BoolFlag{Name: "reduced-motion", Usage: "Disable the flip animation"},
					&cli.Float64Flag{Name: "animation-speed", Usage: "Flip duration in seconds (0.1-1)"},
					&cli.StringFlag{Name: "card-color", Usage: "Card background color (#rrggbb)"},
					&cli.StringFlag{Name: "text-color", Usage: "Card text color (#rrggbb)"},
					&cli.StringFlag{Name: "preset", Usage: "Color preset name (see 'settings presets')"},
				},
				Action: func(c *cli.Context) error {
					cur, err := ops.GetSettings(c.Context, db)
					if err != nil {
						return outputError(err)
					}
					next, err := applySettingsFlags(c, cur.Settings)
					if err != nil {
						return outputError(err)
					}
					output, err := ops.SetSettings(c.Context, db, next)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "presets",
				Usage: "List color presets and font options",
				Action: func(c *cli.Context) error {
					return outputJSON(map[string]any{
						"presets": settings.ColorPresets(),
						"fonts":   settings.FontOptions(),
					})
				},
			},
		},
	}
}

// studyCmd creates the study command.
func studyCmd(db *sql.DB, log *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "study",
		Usage:     "Study a deck in the terminal",
		ArgsUsage: "[deck name]",
		Action: func(c *cli.Context) error {
			cur, err := ops.GetSettings(c.Context, db)
			if err != nil {
				return outputError(err)
			}
			name := strings.Join(c.Args().Slice(), " ")
			if err := tui.Run(c.Context, db, cur.Display, log, name); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config, log *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Usage: "Interface to bind (default from config: web_bind)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on (default from config: web_port)"},
		},
		Action: func(c *cli.Context) error {
			bind, port := cfg.WebBind, cfg.WebPort
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			if c.IsSet("port") {
				port = c.Int("port")
			}
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("port must be 1-65535, got %d", port)))
			}

			srv := web.NewServer(db, cfg, log, Version, bind, port)
			if err := web.Run(srv, log); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// Helper functions

// addressArgs returns the positional id, or the --name flag when no id is given.
func addressArgs(c *cli.Context) (id, name string) {
	if c.NArg() > 0 {
		return c.Args().First(), ""
	}
	return "", c.String("name")
}

// parseDeckJSON accepts a deck object or a bare array of cards.
func parseDeckJSON(text string) (deckJSON, error) {
	var in deckJSON
	if strings.HasPrefix(text, "[") {
		if err := json.Unmarshal([]byte(text), &in.Cards); err != nil {
			return in, errors.NewInvalidRequest(fmt.Sprintf("invalid card array: %v", err))
		}
		return in, nil
	}
	if err := json.Unmarshal([]byte(text), &in); err != nil {
		return in, errors.NewInvalidRequest(fmt.Sprintf("invalid deck JSON: %v", err))
	}
	return in, nil
}

// applySettingsFlags overlays the flags the user set onto s.
func applySettingsFlags(c *cli.Context, s settings.Settings) (settings.Settings, error) {
	if c.IsSet("preset") {
		var err error
		if s, err = s.WithPreset(c.String("preset")); err != nil {
			return s, err
		}
	}
	if c.IsSet("font-size") {
		s.FontSize = c.Int("font-size")
	}
	if c.IsSet("font-family") {
		s.FontFamily = c.String("font-family")
	}
	if c.IsSet("dark-mode") {
		s.DarkMode = c.Bool("dark-mode")
	}
	if c.IsSet("high-contrast") {
		s.HighContrast = c.Bool("high-contrast")
	}
	if c.IsSet("reduced-motion") {
		s.ReducedMotion = c.Bool("reduced-motion")
	}
	if c.IsSet("animation-speed") {
		s.AnimationSpeed = c.Float64("animation-speed")
	}
	if c.IsSet("card-color") {
		s.CardColor = c.String("card-color")
	}
	if c.IsSet("text-color") {
		s.TextColor = c.String("text-color")
	}
	return s, nil
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	appErr := errors.As(err)
	return cli.Exit(fmt.Sprintf("[%s] %s", appErr.Code, appErr.Message), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads at most maxBytes from stdin.
func readStdin(maxBytes int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, maxBytes+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > maxBytes {
		return "", errors.NewInvalidRequest(fmt.Sprintf("stdin exceeds %d bytes", maxBytes))
	}
	return strings.TrimSpace(string(data)), nil
}
