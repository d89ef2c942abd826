package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/adapty/internal/errors"
)

func TestDeleteDeck_ByID(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	stored := storeTestDeck(t, database, "Physics")

	out, err := DeleteDeck(ctx, database, DeleteInput{ID: stored.ID})
	require.NoError(t, err)
	assert.True(t, out.Deleted)

	_, err = DeleteDeck(ctx, database, DeleteInput{ID: stored.ID})
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// The name is free again
	storeTestDeck(t, database, "Physics")
}
