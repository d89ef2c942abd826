package mcp

import (
	"database/sql"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hpungsan/adapty/internal/config"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"deck", "study", "settings"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"deck_list": {
		def:     deckListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeckList },
	},
	"deck_fetch": {
		def:     deckFetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeckFetch },
	},
	"deck_store": {
		def:     deckStoreToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeckStore },
	},
	"deck_delete": {
		def:     deckDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeckDelete },
	},
	"deck_export": {
		def:     deckExportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeckExport },
	},
	"deck_import": {
		def:     deckImportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeckImport },
	},
	"study_start": {
		def:     studyStartToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStudyStart },
	},
	"study_view": {
		def:     studyViewToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStudyView },
	},
	"study_act": {
		def:     studyActToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStudyAct },
	},
	"study_end": {
		def:     studyEndToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStudyEnd },
	},
	"settings_get": {
		def:     settingsGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsGet },
	},
	"settings_set": {
		def:     settingsSetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsSet },
	},
	"settings_preset": {
		def:     settingsPresetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsPreset },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "deck_store" → "deck").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	// Build set of types for O(1) lookup
	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	// Collect tools belonging to disabled types
	tools := make([]string, 0)
	for name := range toolRegistry {
		typ := GetTypeForTool(name)
		if typeSet[typ] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with adapty tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, log *zap.Logger, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"adapty",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, log)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}
	h.log.Debug("mcp tools registered", zap.Int("disabled", len(disabled)))

	return s
}

// Run starts the MCP server using stdio transport.
// Stdout carries the protocol, so log must write elsewhere.
func Run(db *sql.DB, cfg *config.Config, log *zap.Logger, version string) error {
	s := NewServer(db, cfg, log, version)
	return server.ServeStdio(s)
}
