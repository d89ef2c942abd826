package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/adapty/internal/db"
	"github.com/hpungsan/adapty/internal/deck"
	"github.com/hpungsan/adapty/internal/errors"
)

// StoreMode controls collision behavior.
type StoreMode string

const (
	StoreModeError   StoreMode = "error"   // default: fail on name collision
	StoreModeReplace StoreMode = "replace" // overwrite the deck with the same name
)

// StoreInput contains parameters for the StoreDeck operation.
type StoreInput struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Cards       []deck.Card `json:"cards"`
	Mode        StoreMode   `json:"mode,omitempty"` // default: StoreModeError
}

// StoreOutput contains the result of the StoreDeck operation.
type StoreOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CardCount int    `json:"card_count"`
	Replaced  bool   `json:"replaced"`
}

// StoreDeck creates a deck, or replaces the deck of the same name in replace mode.
// Cards without an id get sequential ids. The deck must pass deck.Validate.
func StoreDeck(ctx context.Context, database *sql.DB, input StoreInput) (*StoreOutput, error) {
	if input.Mode == "" {
		input.Mode = StoreModeError
	}
	if input.Mode != StoreModeError && input.Mode != StoreModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	name := strings.TrimSpace(input.Name)
	cards := deck.AssignIDs(input.Cards)
	if cards == nil {
		cards = []deck.Card{}
	}
	if err := deck.Validate(name, cards); err != nil {
		return nil, err
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().Unix()
	d := &deck.Deck{
		ID:          id,
		Name:        name,
		NameNorm:    deck.Normalize(name),
		Description: strings.TrimSpace(input.Description),
		Cards:       cards,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	replaced := false
	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		existing, err := db.GetDeckByName(ctx, tx, d.NameNorm)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return err
		}
		if existing == nil {
			return db.InsertDeck(ctx, tx, d)
		}
		if input.Mode == StoreModeError {
			return errors.NewNameAlreadyExists(name)
		}

		d.ID = existing.ID
		d.CreatedAt = existing.CreatedAt
		replaced = true
		return db.UpdateDeck(ctx, tx, d)
	})
	if err == db.ErrUniqueConstraint {
		return nil, errors.NewNameAlreadyExists(name)
	}
	if err != nil {
		return nil, err
	}

	return &StoreOutput{
		ID:        d.ID,
		Name:      d.Name,
		CardCount: len(d.Cards),
		Replaced:  replaced,
	}, nil
}
