// Package study implements the study-session state machine: the card order,
// the pointer into it, the flip flag and the known/review classification sets.
//
// A Session is owned by exactly one host and is not safe for concurrent use.
// Every operation runs to completion synchronously and never fails.
package study

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/hpungsan/adapty/internal/deck"
)

// State is the machine state of a Session.
type State string

const (
	StateActive    State = "active"
	StateCompleted State = "completed"
)

// Transition reports what an operation did to the pointer.
type Transition string

const (
	// Stayed means the pointer did not move (boundary no-op, empty deck, or a completed session).
	Stayed Transition = "stayed"
	// Moved means the pointer advanced or went back by one.
	Moved Transition = "moved"
	// Completed means the operation finished the session.
	Completed Transition = "completed"
)

// Session is the state of one study run through a deck.
type Session struct {
	order   []deck.Card
	pointer int
	flipped bool
	known   map[int]struct{}
	review  map[int]struct{}
	state   State

	rng        *rand.Rand
	onComplete func()
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used by Shuffle.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithOnComplete registers the callback fired when the session completes.
// It fires at most once per run; Reset starts a new run.
func WithOnComplete(fn func()) Option {
	return func(s *Session) {
		s.onComplete = fn
	}
}

// New starts a session over a copy of cards, in catalog order.
func New(cards []deck.Card, opts ...Option) *Session {
	s := &Session{
		order: deck.CloneCards(cards),
		state: StateActive,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		now := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(now, now>>1|1))
	}
	s.clear()
	return s
}

func (s *Session) clear() {
	s.pointer = 0
	s.flipped = false
	s.known = make(map[int]struct{})
	s.review = make(map[int]struct{})
}

// active reports whether navigation and marking are allowed.
func (s *Session) active() bool {
	return s.state == StateActive && len(s.order) > 0
}

// Flip toggles which face of the current card is shown.
func (s *Session) Flip() {
	if !s.active() {
		return
	}
	s.flipped = !s.flipped
}

// Next advances to the following card and shows its front.
// At the last card it completes the session instead and leaves the pointer where it is;
// advance and finish share one operation on purpose.
func (s *Session) Next() Transition {
	if s.state == StateCompleted {
		return Completed
	}
	if len(s.order) == 0 {
		return Stayed
	}
	if s.pointer < len(s.order)-1 {
		s.pointer++
		s.flipped = false
		return Moved
	}
	return s.complete()
}

// Previous goes back one card and shows its front. No-op at the first card.
func (s *Session) Previous() Transition {
	if !s.active() || s.pointer == 0 {
		return Stayed
	}
	s.pointer--
	s.flipped = false
	return Moved
}

// MarkKnown classifies the current card as known, then behaves like Next.
func (s *Session) MarkKnown() Transition {
	if !s.active() {
		return s.idle()
	}
	id := s.order[s.pointer].ID
	s.known[id] = struct{}{}
	delete(s.review, id)
	return s.Next()
}

// MarkReview classifies the current card as needing review, then behaves like Next.
func (s *Session) MarkReview() Transition {
	if !s.active() {
		return s.idle()
	}
	id := s.order[s.pointer].ID
	s.review[id] = struct{}{}
	delete(s.known, id)
	return s.Next()
}

// Shuffle permutes the card order (Fisher-Yates over an index array) and
// returns to the first card, front side up. Classifications are kept.
func (s *Session) Shuffle() {
	if !s.active() {
		return
	}
	idx := make([]int, len(s.order))
	for i := range idx {
		idx[i] = i
	}
	for i := len(idx) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		idx[i], idx[j] = idx[j], idx[i]
	}

	shuffled := make([]deck.Card, len(s.order))
	for i, from := range idx {
		shuffled[i] = s.order[from]
	}
	s.order = shuffled
	s.pointer = 0
	s.flipped = false
}

// Reset returns to the first card with empty classifications, keeping the current order.
// A completed session becomes active again as a new run.
func (s *Session) Reset() {
	s.clear()
	s.state = StateActive
}

// Finish completes the session without moving the pointer.
func (s *Session) Finish() Transition {
	if s.state == StateCompleted {
		return Completed
	}
	return s.complete()
}

func (s *Session) complete() Transition {
	s.state = StateCompleted
	if s.onComplete != nil {
		s.onComplete()
	}
	return Completed
}

func (s *Session) idle() Transition {
	if s.state == StateCompleted {
		return Completed
	}
	return Stayed
}

// CurrentCard returns the card at the pointer. ok is false for an empty deck.
func (s *Session) CurrentCard() (deck.Card, bool) {
	if len(s.order) == 0 {
		return deck.Card{}, false
	}
	return s.order[s.pointer], true
}

// Pointer returns the zero-based index of the current card.
func (s *Session) Pointer() int { return s.pointer }

// Len returns the number of cards in the session.
func (s *Session) Len() int { return len(s.order) }

// Flipped reports whether the back face is shown.
func (s *Session) Flipped() bool { return s.flipped }

// State returns the machine state.
func (s *Session) State() State { return s.state }

// IsKnown reports whether the card id is in the known set.
func (s *Session) IsKnown(id int) bool {
	_, ok := s.known[id]
	return ok
}

// IsReview reports whether the card id is in the review set.
func (s *Session) IsReview(id int) bool {
	_, ok := s.review[id]
	return ok
}

// KnownCount returns the size of the known set.
func (s *Session) KnownCount() int { return len(s.known) }

// ReviewCount returns the size of the review set.
func (s *Session) ReviewCount() int { return len(s.review) }

// Known returns the known card ids in ascending order.
func (s *Session) Known() []int { return sortedIDs(s.known) }

// Review returns the review card ids in ascending order.
func (s *Session) Review() []int { return sortedIDs(s.review) }

// Order returns a copy of the current card order.
func (s *Session) Order() []deck.Card { return deck.CloneCards(s.order) }

// Progress returns (pointer+1)/len, or 0 for an empty deck.
func (s *Session) Progress() float64 {
	if len(s.order) == 0 {
		return 0
	}
	return float64(s.pointer+1) / float64(len(s.order))
}

func sortedIDs(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Snapshot is a point-in-time copy of a Session, shaped for JSON output.
type Snapshot struct {
	State    State       `json:"state"`
	Pointer  int         `json:"pointer"`
	Total    int         `json:"total"`
	Flipped  bool        `json:"flipped"`
	Known    []int       `json:"known"`
	Review   []int       `json:"review"`
	Progress float64     `json:"progress"`
	Order    []deck.Card `json:"order"`
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		State:    s.state,
		Pointer:  s.pointer,
		Total:    len(s.order),
		Flipped:  s.flipped,
		Known:    s.Known(),
		Review:   s.Review(),
		Progress: s.Progress(),
		Order:    s.Order(),
	}
}
