// Package host composes a deck, the resolved display settings and a study session
// into the view every front end renders, and routes every user intent into the session.
package host

import (
	"math"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/adapty/internal/deck"
	"github.com/hpungsan/adapty/internal/errors"
	"github.com/hpungsan/adapty/internal/render"
	"github.com/hpungsan/adapty/internal/settings"
	"github.com/hpungsan/adapty/internal/study"
)

// Intent is a user action, independent of the input that produced it.
type Intent string

const (
	IntentFlip     Intent = "flip"
	IntentNext     Intent = "next"
	IntentPrevious Intent = "previous"
	IntentKnown    Intent = "known"
	IntentReview   Intent = "review"
	IntentShuffle  Intent = "shuffle"
	IntentReset    Intent = "reset"
	IntentFinish   Intent = "finish"
)

// Intents lists every intent in display order.
var Intents = []Intent{
	IntentFlip, IntentNext, IntentPrevious, IntentKnown,
	IntentReview, IntentShuffle, IntentReset, IntentFinish,
}

// ParseIntent maps a name to an Intent. Matching ignores case and surrounding space.
func ParseIntent(s string) (Intent, error) {
	want := Intent(strings.ToLower(strings.TrimSpace(s)))
	for _, in := range Intents {
		if in == want {
			return in, nil
		}
	}
	return "", errors.NewInvalidRequest("unknown intent: " + s)
}

// KeyIntent maps a key name to its intent.
// Space and Enter flip, Left goes back, Right goes forward.
func KeyIntent(key string) (Intent, bool) {
	switch strings.ToLower(key) {
	case " ", "space", "enter":
		return IntentFlip, true
	case "left", "arrowleft":
		return IntentPrevious, true
	case "right", "arrowright":
		return IntentNext, true
	}
	return "", false
}

// Controls reports which navigation controls are enabled.
type Controls struct {
	Previous bool `json:"previous"`
	Next     bool `json:"next"`
	Known    bool `json:"known"`
	Review   bool `json:"review"`
	Shuffle  bool `json:"shuffle"`
	Reset    bool `json:"reset"`
}

// View is the render-ready state of a study host.
type View struct {
	DeckID          string            `json:"deck_id"`
	DeckName        string            `json:"deck_name"`
	Position        int               `json:"position"`
	Total           int               `json:"total"`
	KnownCount      int               `json:"known_count"`
	ReviewCount     int               `json:"review_count"`
	ProgressPercent int               `json:"progress_percent"`
	Card            *render.CardProps `json:"card,omitempty"`
	CardID          int               `json:"card_id,omitempty"`
	CardKnown       bool              `json:"card_known"`
	CardReview      bool              `json:"card_review"`
	Controls        Controls          `json:"controls"`
	Completed       bool              `json:"completed"`
	Empty           bool              `json:"empty"`
}

// Host owns one study session for one deck.
type Host struct {
	deck    deck.Deck
	display settings.Display
	session *study.Session
	log     *zap.Logger

	onComplete func()
	rng        *rand.Rand
}

// Option configures a Host.
type Option func(*Host)

// WithOnComplete registers the callback fired when the session completes,
// the signal for a front end to leave study mode.
func WithOnComplete(fn func()) Option {
	return func(h *Host) { h.onComplete = fn }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.log = l
		}
	}
}

// WithRand sets the shuffle source.
func WithRand(r *rand.Rand) Option {
	return func(h *Host) { h.rng = r }
}

// New starts a study session over d.
func New(d deck.Deck, disp settings.Display, opts ...Option) *Host {
	h := &Host{
		deck:    d,
		display: disp,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	sopts := []study.Option{study.WithOnComplete(h.completed)}
	if h.rng != nil {
		sopts = append(sopts, study.WithRand(h.rng))
	}
	h.session = study.New(d.Cards, sopts...)
	h.log.Info("study session started",
		zap.String("deck", d.Name),
		zap.Int("cards", len(d.Cards)))
	return h
}

func (h *Host) completed() {
	h.log.Info("study session completed",
		zap.String("deck", h.deck.Name),
		zap.Int("known", h.session.KnownCount()),
		zap.Int("review", h.session.ReviewCount()))
	if h.onComplete != nil {
		h.onComplete()
	}
}

// Dispatch applies an intent. Buttons, keys, forms and tool calls all come through here.
//
// Previous is ignored on the first card and Next on the last one; at the last card
// Known and Review finish the session, and Finish is always accepted.
func (h *Host) Dispatch(in Intent) study.Transition {
	s := h.session
	h.log.Debug("intent", zap.String("intent", string(in)), zap.Int("pointer", s.Pointer()))

	if s.State() == study.StateCompleted && in != IntentReset {
		return study.Completed
	}

	switch in {
	case IntentFlip:
		s.Flip()
	case IntentNext:
		if !h.controls().Next {
			return study.Stayed
		}
		return s.Next()
	case IntentPrevious:
		return s.Previous()
	case IntentKnown:
		return s.MarkKnown()
	case IntentReview:
		return s.MarkReview()
	case IntentShuffle:
		s.Shuffle()
	case IntentReset:
		s.Reset()
	case IntentFinish:
		return s.Finish()
	}
	return study.Stayed
}

// HandleKey dispatches the intent bound to key. ok is false for unbound keys.
func (h *Host) HandleKey(key string) (study.Transition, bool) {
	in, ok := KeyIntent(key)
	if !ok {
		return study.Stayed, false
	}
	return h.Dispatch(in), true
}

// SetDisplay replaces the display settings; the session is untouched.
func (h *Host) SetDisplay(d settings.Display) {
	h.display = d
}

// Display returns the current display settings.
func (h *Host) Display() settings.Display { return h.display }

// Deck returns the deck being studied.
func (h *Host) Deck() deck.Deck { return h.deck }

// Session exposes the underlying session for read-only inspection.
func (h *Host) Session() *study.Session { return h.session }

// Completed reports whether the session has finished.
func (h *Host) Completed() bool { return h.session.State() == study.StateCompleted }

func (h *Host) controls() Controls {
	s := h.session
	if s.Len() == 0 || s.State() == study.StateCompleted {
		return Controls{Reset: s.State() == study.StateCompleted}
	}
	last := s.Len() - 1
	return Controls{
		Previous: s.Pointer() > 0,
		Next:     s.Pointer() < last,
		Known:    true,
		Review:   true,
		Shuffle:  s.Len() > 1,
		Reset:    true,
	}
}

// View computes the render-ready state. Card is nil for an empty deck.
func (h *Host) View() View {
	s := h.session
	v := View{
		DeckID:          h.deck.ID,
		DeckName:        h.deck.Name,
		Total:           s.Len(),
		KnownCount:      s.KnownCount(),
		ReviewCount:     s.ReviewCount(),
		ProgressPercent: int(math.Round(s.Progress() * 100)),
		Controls:        h.controls(),
		Completed:       s.State() == study.StateCompleted,
		Empty:           s.Len() == 0,
	}
	if card, ok := s.CurrentCard(); ok {
		v.Position = s.Pointer() + 1
		p := render.Props(card, s.Flipped(), h.display)
		v.Card = &p
		v.CardID = card.ID
		v.CardKnown = s.IsKnown(card.ID)
		v.CardReview = s.IsReview(card.ID)
	}
	return v
}
