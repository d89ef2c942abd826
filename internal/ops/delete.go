package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/adapty/internal/db"
)

// DeleteInput contains parameters for the DeleteDeck operation.
type DeleteInput struct {
	ID   string
	Name string
}

// DeleteOutput contains the result of the DeleteDeck operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DeleteDeck permanently removes a deck and its cards.
func DeleteDeck(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Name)
	if err != nil {
		return nil, err
	}

	// Resolve the id when addressed by name
	d, err := loadDeck(ctx, database, addr)
	if err != nil {
		return nil, err
	}

	if err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		return db.DeleteDeck(ctx, tx, d.ID)
	}); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted: true,
		ID:      d.ID,
	}, nil
}
