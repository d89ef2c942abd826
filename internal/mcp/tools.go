package mcp

import "github.com/mark3labs/mcp-go/mcp"

var cardSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":    map[string]any{"type": "integer", "description": "Card id, unique within the deck. Omit to assign the next free id."},
		"front": map[string]any{"type": "string", "description": "Question side (markdown)"},
		"back":  map[string]any{"type": "string", "description": "Answer side (markdown)"},
	},
	"required": []string{"front", "back"},
}

var deckListToolDef = mcp.NewTool("deck_list",
	mcp.WithDescription("List decks ordered by name, with card counts."),
	mcp.WithNumber("limit", mcp.Description("Max items (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var deckFetchToolDef = mcp.NewTool("deck_fetch",
	mcp.WithDescription("Fetch one deck with its cards. Address by id or by name, not both."),
	mcp.WithString("id", mcp.Description("Deck id")),
	mcp.WithString("name", mcp.Description("Deck name (case and spacing insensitive)")),
)

var deckStoreToolDef = mcp.NewTool("deck_store",
	mcp.WithDescription("Create a deck. With mode=replace, an existing deck of the same name is overwritten."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Deck name, unique after normalization")),
	mcp.WithString("description", mcp.Description("Short description")),
	mcp.WithArray("cards", mcp.Required(), mcp.Description("Cards in study order"), mcp.Items(cardSchema)),
	mcp.WithString("mode", mcp.Enum("error", "replace"), mcp.Description("Name collision behavior (default error)")),
)

var deckDeleteToolDef = mcp.NewTool("deck_delete",
	mcp.WithDescription("Permanently delete a deck. Address by id or by name."),
	mcp.WithString("id", mcp.Description("Deck id")),
	mcp.WithString("name", mcp.Description("Deck name")),
)

var deckExportToolDef = mcp.NewTool("deck_export",
	mcp.WithDescription("Export decks to a JSONL file. Exports every deck unless id or name is given."),
	mcp.WithString("path", mcp.Description("Output .jsonl path (default ~/.adapty/exports/<deck|all>-<timestamp>.jsonl)")),
	mcp.WithString("id", mcp.Description("Export only this deck")),
	mcp.WithString("name", mcp.Description("Export only the deck with this name")),
)

var deckImportToolDef = mcp.NewTool("deck_import",
	mcp.WithDescription("Import decks from a JSONL export file."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Input .jsonl path")),
	mcp.WithString("mode", mcp.Enum("error", "replace", "rename"),
		mcp.Description("Collision behavior: error aborts the whole import, replace overwrites, rename adds a -N suffix")),
)

var studyStartToolDef = mcp.NewTool("study_start",
	mcp.WithDescription("Start a study session on a deck. Returns a session id and the first view."),
	mcp.WithString("deck_id", mcp.Description("Deck id")),
	mcp.WithString("deck_name", mcp.Description("Deck name")),
	mcp.WithBoolean("shuffle", mcp.Description("Shuffle the cards before the first view")),
)

var studyViewToolDef = mcp.NewTool("study_view",
	mcp.WithDescription("Show the current card, progress and enabled controls of a session."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from study_start")),
)

var studyActToolDef = mcp.NewTool("study_act",
	mcp.WithDescription("Apply one intent to a session. Known, review or finish on the last card completes the session, which then ends."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from study_start")),
	mcp.WithString("intent", mcp.Required(),
		mcp.Enum("flip", "next", "previous", "known", "review", "shuffle", "reset", "finish"),
		mcp.Description("What to do")),
)

var studyEndToolDef = mcp.NewTool("study_end",
	mcp.WithDescription("Discard a study session."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from study_start")),
)

var settingsGetToolDef = mcp.NewTool("settings_get",
	mcp.WithDescription("Get the display settings and how they resolve for rendering."),
)

var settingsSetToolDef = mcp.NewTool("settings_set",
	mcp.WithDescription("Replace the display settings. Every field must be given; there are no partial updates."),
	mcp.WithNumber("font_size", mcp.Required(), mcp.Description("Card font size in px (16-48)")),
	mcp.WithString("font_family", mcp.Required(), mcp.Description("CSS font family")),
	mcp.WithBoolean("dark_mode", mcp.Description("Dark theme")),
	mcp.WithBoolean("high_contrast", mcp.Description("Black/white card colors")),
	mcp.WithBoolean("reduced_motion", mcp.Description("Disable the flip animation")),
	mcp.WithNumber("animation_speed", mcp.Required(), mcp.Description("Flip duration in seconds (0.1-1.0)")),
	mcp.WithString("card_color", mcp.Required(), mcp.Description("Card background, hex")),
	mcp.WithString("text_color", mcp.Required(), mcp.Description("Card text, hex")),
)

var settingsPresetToolDef = mcp.NewTool("settings_preset",
	mcp.WithDescription("Apply a named color preset to the current settings."),
	mcp.WithString("preset", mcp.Required(),
		mcp.Enum("Light Blue", "Soft Green", "Pastel Yellow", "Light Pink", "Soft Purple", "Light Orange"),
		mcp.Description("Preset name")),
)
