package ops

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/adapty/internal/config"
	"github.com/hpungsan/adapty/internal/db"
	"github.com/hpungsan/adapty/internal/deck"
	"github.com/hpungsan/adapty/internal/errors"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

// testConfig allows import/export in dir.
func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{dir}
	return cfg
}

func storeTestDeck(t *testing.T, database *sql.DB, name string, cards ...deck.Card) *StoreOutput {
	t.Helper()
	if len(cards) == 0 {
		cards = []deck.Card{{ID: 1, Front: "Q1", Back: "A1"}, {ID: 2, Front: "Q2", Back: "A2"}}
	}
	out, err := StoreDeck(context.Background(), database, StoreInput{Name: name, Cards: cards})
	require.NoError(t, err)
	return out
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		deckName string
		wantCode errors.ErrorCode
		wantByID bool
		wantName string
	}{
		{"by id", "01ABC", "", "", true, ""},
		{"by name normalizes", "", "  Basic   MATH ", "", false, "basic math"},
		{"both", "01ABC", "x", errors.ErrAmbiguousAddressing, false, ""},
		{"neither", " ", "", errors.ErrInvalidRequest, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ValidateAddress(tt.id, tt.deckName)
			if tt.wantCode != "" {
				assert.True(t, errors.Is(err, tt.wantCode), "err = %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantByID, addr.ByID)
			assert.Equal(t, tt.wantName, addr.Name)
		})
	}
}

func TestNormalizePage(t *testing.T) {
	l, o := normalizePage(0, -5)
	assert.Equal(t, DefaultListLimit, l)
	assert.Zero(t, o)

	l, _ = normalizePage(1000, 0)
	assert.Equal(t, MaxListLimit, l)
}

func TestGenerateULID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := generateULID()
		require.NoError(t, err)
		require.Len(t, id, 26)
		require.False(t, seen[id])
		seen[id] = true
	}
}

// TestDeckWorkflow exercises store → list → fetch → replace → delete → fetch (not found).
func TestDeckWorkflow(t *testing.T) {
	ctx := context.Background()
	database := setupDB(t)

	stored := storeTestDeck(t, database, "Biology")
	require.NotEmpty(t, stored.ID)
	assert.Equal(t, 2, stored.CardCount)
	assert.False(t, stored.Replaced)

	list, err := ListDecks(ctx, database, ListInput{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 2, list.Items[0].CardCount)

	fetched, err := FetchDeck(ctx, database, FetchInput{Name: "biology"})
	require.NoError(t, err)
	assert.Equal(t, stored.ID, fetched.ID)

	replaced, err := StoreDeck(ctx, database, StoreInput{
		Name:  "BIOLOGY",
		Cards: []deck.Card{{Front: "cell", Back: "unit of life"}},
		Mode:  StoreModeReplace,
	})
	require.NoError(t, err)
	assert.True(t, replaced.Replaced)
	assert.Equal(t, stored.ID, replaced.ID)

	fetched, err = FetchDeck(ctx, database, FetchInput{ID: stored.ID})
	require.NoError(t, err)
	assert.Equal(t, "BIOLOGY", fetched.Name)
	require.Len(t, fetched.Cards, 1)
	assert.Equal(t, 1, fetched.Cards[0].ID, "missing ids are assigned")

	del, err := DeleteDeck(ctx, database, DeleteInput{Name: "biology"})
	require.NoError(t, err)
	assert.True(t, del.Deleted)
	assert.Equal(t, stored.ID, del.ID)

	_, err = FetchDeck(ctx, database, FetchInput{ID: stored.ID})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
