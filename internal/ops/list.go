package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/adapty/internal/db"
	"github.com/hpungsan/adapty/internal/deck"
)

// ListInput contains parameters for the ListDecks operation.
type ListInput struct {
	Limit  int // default: 20, max: 100
	Offset int
}

// ListOutput contains the result of the ListDecks operation.
type ListOutput struct {
	Items      []deck.Summary `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

// ListDecks returns deck summaries for the deck picker, ordered by name.
func ListDecks(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	limit, offset := normalizePage(input.Limit, input.Offset)

	items, total, err := db.ListDecks(ctx, database, limit, offset)
	if err != nil {
		return nil, err
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
	}, nil
}
