package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/adapty/internal/config"
	"github.com/hpungsan/adapty/internal/deck"
	"github.com/hpungsan/adapty/internal/errors"
	"github.com/hpungsan/adapty/internal/host"
	"github.com/hpungsan/adapty/internal/ops"
	"github.com/hpungsan/adapty/internal/settings"
	"github.com/hpungsan/adapty/internal/study"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	log      *zap.Logger
	sessions *host.Registry
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{db: db, cfg: cfg, log: log, sessions: host.NewRegistry(log)}
}

// Request types for each tool

// ListRequest represents the arguments for deck_list.
type ListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// AddressRequest addresses one deck, for deck_fetch and deck_delete.
type AddressRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// StoreRequest represents the arguments for deck_store.
type StoreRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Cards       []deck.Card `json:"cards"`
	Mode        string      `json:"mode,omitempty"`
}

// ExportRequest represents the arguments for deck_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ImportRequest represents the arguments for deck_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// StudyStartRequest represents the arguments for study_start.
type StudyStartRequest struct {
	DeckID   string `json:"deck_id,omitempty"`
	DeckName string `json:"deck_name,omitempty"`
	Shuffle  bool   `json:"shuffle,omitempty"`
}

// SessionRequest names a session, for study_view and study_end.
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

// StudyActRequest represents the arguments for study_act.
type StudyActRequest struct {
	SessionID string `json:"session_id"`
	Intent    string `json:"intent"`
}

// PresetRequest represents the arguments for settings_preset.
type PresetRequest struct {
	Preset string `json:"preset"`
}

// StudyOutput is the result of every study tool.
type StudyOutput struct {
	SessionID  string           `json:"session_id"`
	Transition study.Transition `json:"transition,omitempty"`
	View       host.View        `json:"view"`
	// Ended is set once the session completed and was discarded.
	Ended bool `json:"ended,omitempty"`
}

// Handler implementations

// HandleDeckList handles the deck_list tool call.
func (h *Handlers) HandleDeckList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListDecks(ctx, h.db, ops.ListInput{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDeckFetch handles the deck_fetch tool call.
func (h *Handlers) HandleDeckFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddressRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.FetchDeck(ctx, h.db, ops.FetchInput{ID: input.ID, Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDeckStore handles the deck_store tool call.
func (h *Handlers) HandleDeckStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StoreRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.StoreDeck(ctx, h.db, ops.StoreInput{
		Name:        input.Name,
		Description: input.Description,
		Cards:       input.Cards,
		Mode:        ops.StoreMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDeckDelete handles the deck_delete tool call.
func (h *Handlers) HandleDeckDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddressRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteDeck(ctx, h.db, ops.DeleteInput{ID: input.ID, Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDeckExport handles the deck_export tool call.
func (h *Handlers) HandleDeckExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ExportDecks(ctx, h.db, h.cfg, ops.ExportInput{
		Path: input.Path,
		ID:   input.ID,
		Name: input.Name,
	})
	if err != nil {
		return errorResult(err), nil
	}
	h.log.Info("decks exported", zap.String("path", result.Path), zap.Int("count", result.Count))

	return successResult(result)
}

// HandleDeckImport handles the deck_import tool call.
func (h *Handlers) HandleDeckImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ImportDecks(ctx, h.db, h.cfg, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}
	h.log.Info("decks imported",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))

	return successResult(result)
}

// HandleStudyStart handles the study_start tool call.
func (h *Handlers) HandleStudyStart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StudyStartRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	d, err := ops.FetchDeck(ctx, h.db, ops.FetchInput{ID: input.DeckID, Name: input.DeckName})
	if err != nil {
		return errorResult(err), nil
	}
	cur, err := ops.GetSettings(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}

	sid, view := h.sessions.Start(d.Deck, cur.Display)
	if input.Shuffle {
		if view, _, err = h.sessions.Act(sid, host.IntentShuffle); err != nil {
			return errorResult(err), nil
		}
	}

	return successResult(StudyOutput{SessionID: sid, View: view})
}

// HandleStudyView handles the study_view tool call.
func (h *Handlers) HandleStudyView(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.SessionID == "" {
		return errorResult(errors.NewInvalidRequest("session_id is required")), nil
	}

	view, err := h.sessions.View(input.SessionID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(StudyOutput{SessionID: input.SessionID, View: view})
}

// HandleStudyAct handles the study_act tool call.
func (h *Handlers) HandleStudyAct(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StudyActRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.SessionID == "" {
		return errorResult(errors.NewInvalidRequest("session_id is required")), nil
	}
	in, err := host.ParseIntent(input.Intent)
	if err != nil {
		return errorResult(err), nil
	}

	view, tr, err := h.sessions.Act(input.SessionID, in)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(StudyOutput{
		SessionID:  input.SessionID,
		Transition: tr,
		View:       view,
		Ended:      view.Completed,
	})
}

// HandleStudyEnd handles the study_end tool call.
func (h *Handlers) HandleStudyEnd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if err := h.sessions.End(input.SessionID); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"session_id": input.SessionID, "ended": true})
}

// HandleSettingsGet handles the settings_get tool call.
func (h *Handlers) HandleSettingsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.GetSettings(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSettingsSet handles the settings_set tool call.
// Omitted fields decode to zero values and fail validation, so callers must send the full value.
func (h *Handlers) HandleSettingsSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[settings.Settings](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SetSettings(ctx, h.db, input)
	if err != nil {
		return errorResult(err), nil
	}
	h.sessions.SetDisplay(result.Display)

	return successResult(result)
}

// HandleSettingsPreset handles the settings_preset tool call.
func (h *Handlers) HandleSettingsPreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PresetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ApplyPreset(ctx, h.db, input.Preset)
	if err != nil {
		return errorResult(err), nil
	}
	h.sessions.SetDisplay(result.Display)

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	appErr := errors.As(err)

	errorObj := map[string]any{
		"code":    appErr.Code,
		"message": appErr.Message,
		"status":  appErr.Status,
	}
	if appErr.Code == errors.ErrInternal {
		errorObj["message"] = "an internal error occurred"
	} else if appErr.Details != nil {
		errorObj["details"] = appErr.Details
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
