package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/adapty/internal/db"
	"github.com/hpungsan/adapty/internal/deck"
)

// SeedSampleDecks stores the sample decks when the catalog is empty.
// Returns the number of decks added.
func SeedSampleDecks(ctx context.Context, database *sql.DB) (int, error) {
	n, err := db.CountDecks(ctx, database)
	if err != nil || n > 0 {
		return 0, err
	}

	added := 0
	for _, d := range deck.SampleDecks() {
		if _, err := StoreDeck(ctx, database, StoreInput{
			Name:        d.Name,
			Description: d.Description,
			Cards:       d.Cards,
		}); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
