package ops

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/adapty/internal/db"
	"github.com/hpungsan/adapty/internal/deck"
	"github.com/hpungsan/adapty/internal/errors"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Address represents a validated deck address.
type Address struct {
	ByID bool
	ID   string
	Name string // normalized
}

// ValidateAddress validates addressing parameters and returns a normalized Address.
// Rules:
// - Must specify exactly one addressing mode: id OR name
// - If both are provided → ErrAmbiguousAddressing
// - If neither is provided → ErrInvalidRequest
func ValidateAddress(id, name string) (*Address, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)

	if id != "" && name != "" {
		return nil, errors.NewAmbiguousAddressing()
	}
	if id == "" && name == "" {
		return nil, errors.NewInvalidRequest("must specify either id or name")
	}

	if id != "" {
		return &Address{ByID: true, ID: id}, nil
	}
	return &Address{Name: deck.Normalize(name)}, nil
}

// loadDeck fetches the deck an address points at.
func loadDeck(ctx context.Context, q db.Querier, addr *Address) (*deck.Deck, error) {
	if addr.ByID {
		return db.GetDeckByID(ctx, q, addr.ID)
	}
	return db.GetDeckByName(ctx, q, addr.Name)
}

// normalizePage applies the default and maximum page size.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
