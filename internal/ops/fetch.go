package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/adapty/internal/deck"
)

// FetchInput contains parameters for the FetchDeck operation.
type FetchInput struct {
	ID   string
	Name string
}

// FetchOutput contains the result of the FetchDeck operation.
type FetchOutput struct {
	deck.Deck        // embedded (copy, not pointer)
	CardCount int `json:"card_count"`
}

// FetchDeck retrieves a deck with its cards by ID or name.
func FetchDeck(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Name)
	if err != nil {
		return nil, err
	}

	d, err := loadDeck(ctx, database, addr)
	if err != nil {
		return nil, err
	}

	return &FetchOutput{
		Deck:      *d,
		CardCount: len(d.Cards),
	}, nil
}
