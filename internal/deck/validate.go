package deck

import (
	stderrors "errors"
	"sort"
	"strings"

	"github.com/hpungsan/adapty/internal/errors"
	"github.com/hpungsan/adapty/pkg/validator"
)

type deckInput struct {
	Name  string `json:"name" validate:"required,max=200"`
	Cards []Card `json:"cards" validate:"max=1000,dive"`
}

// Validate checks the catalog preconditions a deck must meet before it is stored:
// a non-empty name, non-empty faces, and card ids unique within the deck.
// The study engine relies on these and does not re-check them.
func Validate(name string, cards []Card) error {
	in := deckInput{Name: strings.TrimSpace(name), Cards: cards}
	if err := validator.ValidateStruct(in); err != nil {
		var fe validator.FieldErrors
		if stderrors.As(err, &fe) {
			return &errors.AppError{
				Code:    errors.ErrInvalidRequest,
				Status:  400,
				Message: fe.Error(),
				Details: map[string]any{"fields": map[string]string(fe)},
			}
		}
		return errors.NewInternal(err)
	}

	if dups := DuplicateIDs(cards); len(dups) > 0 {
		return errors.NewDuplicateCardID(dups)
	}
	return nil
}

// DuplicateIDs returns the sorted card ids that occur more than once.
func DuplicateIDs(cards []Card) []int {
	seen := make(map[int]int, len(cards))
	for _, c := range cards {
		seen[c.ID]++
	}
	var dups []int
	for id, n := range seen {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Ints(dups)
	return dups
}

// AssignIDs gives sequential ids to cards whose id is zero, starting after the highest id present.
// Used when decks are authored without explicit ids.
func AssignIDs(cards []Card) []Card {
	out := CloneCards(cards)
	next := 0
	for _, c := range out {
		if c.ID > next {
			next = c.ID
		}
	}
	for i := range out {
		if out[i].ID == 0 {
			next++
			out[i].ID = next
		}
	}
	return out
}
