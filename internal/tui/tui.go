// Package tui is the terminal study host: a deck picker and a study screen over host.Host.
package tui

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/hpungsan/adapty/internal/deck"
	"github.com/hpungsan/adapty/internal/host"
	"github.com/hpungsan/adapty/internal/ops"
	"github.com/hpungsan/adapty/internal/render"
	"github.com/hpungsan/adapty/internal/settings"
	"github.com/hpungsan/adapty/internal/study"
)

const (
	defaultWidth = 60
	maxWidth     = 80
	pickerLimit  = 100
)

type screen int

const (
	screenPicker screen = iota
	screenStudy
	screenSummary
)

// studyKeys are the letter bindings layered over host.KeyIntent.
var studyKeys = map[string]host.Intent{
	"k": host.IntentKnown,
	"r": host.IntentReview,
	"s": host.IntentShuffle,
	"0": host.IntentReset,
	"f": host.IntentFinish,
}

type styles struct {
	title lipgloss.Style
	dim   lipgloss.Style
	sel   lipgloss.Style
	err   lipgloss.Style
	good  lipgloss.Style
	warn  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		dim:   lipgloss.NewStyle().Faint(true),
		sel:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		err:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		good:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// Model is the bubbletea model for a study run.
type Model struct {
	ctx     context.Context
	db      *sql.DB
	log     *zap.Logger
	display settings.Display

	screen screen
	decks  []deck.Summary
	cursor int
	host   *host.Host
	// summary holds the final view once the session completes.
	summary host.View
	width   int
	err     string
	styles  styles
}

// New loads the deck list. A non-empty deckName opens that deck straight away.
func New(ctx context.Context, database *sql.DB, disp settings.Display, log *zap.Logger, deckName string) (Model, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m := Model{
		ctx:     ctx,
		db:      database,
		log:     log,
		display: disp,
		width:   defaultWidth,
		styles:  newStyles(),
	}

	list, err := ops.ListDecks(ctx, database, ops.ListInput{Limit: pickerLimit})
	if err != nil {
		return m, err
	}
	m.decks = list.Items

	if deckName != "" {
		out, err := ops.FetchDeck(ctx, database, ops.FetchInput{Name: deckName})
		if err != nil {
			return m, err
		}
		m.start(out.Deck)
	}
	return m, nil
}

func (m *Model) start(d deck.Deck) {
	m.host = host.New(d, m.display, host.WithLogger(m.log))
	m.screen = screenStudy
	m.err = ""
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = min(msg.Width, maxWidth)
		return m, nil
	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" || key == "q" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenPicker:
			return m.updatePicker(key)
		case screenStudy:
			return m.updateStudy(key)
		case screenSummary:
			return m.updateSummary(key)
		}
	}
	return m, nil
}

func (m Model) updatePicker(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.decks)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.decks) == 0 {
			return m, nil
		}
		out, err := ops.FetchDeck(m.ctx, m.db, ops.FetchInput{ID: m.decks[m.cursor].ID})
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.start(out.Deck)
	}
	return m, nil
}

func (m Model) updateStudy(key string) (tea.Model, tea.Cmd) {
	if key == "esc" {
		m.host = nil
		m.screen = screenPicker
		return m, nil
	}

	var tr study.Transition
	if in, ok := studyKeys[key]; ok {
		tr = m.host.Dispatch(in)
	} else if tr, ok = m.host.HandleKey(key); !ok {
		return m, nil
	}

	if tr == study.Completed {
		m.summary = m.host.View()
		m.screen = screenSummary
	}
	return m, nil
}

func (m Model) updateSummary(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "0", "r":
		m.host.Dispatch(host.IntentReset)
		m.screen = screenStudy
	case "enter", "esc":
		m.host = nil
		m.screen = screenPicker
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("adapty"))
	b.WriteString("\n\n")

	switch m.screen {
	case screenPicker:
		m.viewPicker(&b)
	case screenStudy:
		m.viewStudy(&b)
	case screenSummary:
		m.viewSummary(&b)
	}

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.err.Render(m.err))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewPicker(b *strings.Builder) {
	if len(m.decks) == 0 {
		b.WriteString("No decks yet. Add one with `adapty add`.\n\n")
		b.WriteString(m.styles.dim.Render("q quit"))
		return
	}
	for i, d := range m.decks {
		line := fmt.Sprintf("%s (%d %s)", d.Name, d.CardCount, plural(d.CardCount, "card"))
		if i == m.cursor {
			b.WriteString(m.styles.sel.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.dim.Render("↑/↓ choose • enter study • q quit"))
}

func (m Model) viewStudy(b *strings.Builder) {
	v := m.host.View()
	b.WriteString(v.DeckName)
	b.WriteString("\n")

	if v.Empty {
		b.WriteString("\nThis deck has no cards.\n\n")
		b.WriteString(m.styles.dim.Render("esc back • q quit"))
		return
	}

	fmt.Fprintf(b, "Card %d of %d  %s\n", v.Position, v.Total, progressBar(v.ProgressPercent, 20))
	fmt.Fprintf(b, "%s  %s\n\n",
		m.styles.good.Render(fmt.Sprintf("%d known", v.KnownCount)),
		m.styles.warn.Render(fmt.Sprintf("%d to review", v.ReviewCount)))

	b.WriteString(render.Terminal(*v.Card, m.width))
	b.WriteString("\n")
	switch {
	case v.CardKnown:
		b.WriteString(m.styles.good.Render("marked known"))
	case v.CardReview:
		b.WriteString(m.styles.warn.Render("marked for review"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.styles.dim.Render(studyHints(v.Controls)))
}

func (m Model) viewSummary(b *strings.Builder) {
	v := m.summary
	fmt.Fprintf(b, "%s: session complete\n\n", v.DeckName)
	fmt.Fprintf(b, "%s\n", m.styles.good.Render(fmt.Sprintf("%d known", v.KnownCount)))
	fmt.Fprintf(b, "%s\n", m.styles.warn.Render(fmt.Sprintf("%d to review", v.ReviewCount)))
	fmt.Fprintf(b, "%d %s in deck\n\n", v.Total, plural(v.Total, "card"))
	b.WriteString(m.styles.dim.Render("r study again • enter decks • q quit"))
}

func studyHints(c host.Controls) string {
	hints := []string{"space flip"}
	if c.Previous {
		hints = append(hints, "← previous")
	}
	if c.Next {
		hints = append(hints, "→ next")
	}
	hints = append(hints, "k known", "r review")
	if c.Shuffle {
		hints = append(hints, "s shuffle")
	}
	hints = append(hints, "0 reset", "f finish", "esc decks", "q quit")
	return strings.Join(hints, " • ")
}

func progressBar(percent, width int) string {
	filled := percent * width / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %d%%", percent)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// Run starts the TUI on the alternate screen.
func Run(ctx context.Context, database *sql.DB, disp settings.Display, log *zap.Logger, deckName string) error {
	m, err := New(ctx, database, disp, log, deckName)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
