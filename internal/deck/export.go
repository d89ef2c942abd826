package deck

// ExportHeader is the first line of a JSONL deck export.
type ExportHeader struct {
	AdaptyExport  bool   `json:"_adapty_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
}

// ExportRecord is one line of a JSONL deck export.
// The header line parses into the same struct with AdaptyExport set.
type ExportRecord struct {
	AdaptyExport  bool   `json:"_adapty_export,omitempty"`
	SchemaVersion string `json:"schema_version,omitempty"`
	ExportedAt    int64  `json:"exported_at,omitempty"`

	ID          string `json:"id"`
	Name        string `json:"name"`
	NameNorm    string `json:"name_norm"` // ignored on import, recomputed
	Description string `json:"description,omitempty"`
	Cards       []Card `json:"cards"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// ToDeck converts an ExportRecord to a Deck, recomputing the normalized name.
func (r *ExportRecord) ToDeck() *Deck {
	return &Deck{
		ID:          r.ID,
		Name:        r.Name,
		NameNorm:    Normalize(r.Name),
		Description: r.Description,
		Cards:       CloneCards(r.Cards),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ToExportRecord converts a Deck to an ExportRecord.
func ToExportRecord(d *Deck) *ExportRecord {
	return &ExportRecord{
		ID:          d.ID,
		Name:        d.Name,
		NameNorm:    d.NameNorm,
		Description: d.Description,
		Cards:       d.Cards,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
