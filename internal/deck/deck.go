package deck

// Card is a front/back text pair with an identifier unique within its deck.
// Cards are immutable once loaded from the catalog.
type Card struct {
	ID    int    `json:"id"`
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
}

// Deck is a named, ordered collection of cards.
type Deck struct {
	// ID is a ULID that uniquely identifies this deck
	ID string `json:"id"`

	// Name is the deck name as provided by the user
	Name string `json:"name"`

	// NameNorm is the normalized name (lowercased, trimmed, collapsed spaces); unique in the catalog
	NameNorm string `json:"name_norm"`

	Description string `json:"description,omitempty"`

	// Cards is the catalog order. Study sessions work on their own copy.
	Cards []Card `json:"cards"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Summary is a deck's metadata without its cards.
// Used for the deck picker in every front end.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NameNorm    string `json:"name_norm"`
	Description string `json:"description,omitempty"`
	CardCount   int    `json:"card_count"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// ToSummary converts a Deck to a Summary by dropping the card list.
func (d *Deck) ToSummary() Summary {
	return Summary{
		ID:          d.ID,
		Name:        d.Name,
		NameNorm:    d.NameNorm,
		Description: d.Description,
		CardCount:   len(d.Cards),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// CloneCards returns a copy of cards that shares no backing array with the input.
func CloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}
