package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/hpungsan/adapty/internal/deck"
	"github.com/hpungsan/adapty/internal/errors"
	"github.com/hpungsan/adapty/internal/settings"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.AppError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// InsertDeck stores a new deck and its cards.
// Use a transaction as q so a failing card insert leaves no partial deck behind.
func InsertDeck(ctx context.Context, q Querier, d *deck.Deck) error {
	query := `
		INSERT INTO decks (id, name, name_norm, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		d.ID, d.Name, d.NameNorm, toNullString(d.Description), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	return insertCards(ctx, q, d.ID, d.Cards)
}

func insertCards(ctx context.Context, q Querier, deckID string, cards []deck.Card) error {
	query := `
		INSERT INTO cards (deck_id, card_id, position, front, back)
		VALUES (?, ?, ?, ?, ?)
	`
	for i, c := range cards {
		if _, err := q.ExecContext(ctx, query, deckID, c.ID, i, c.Front, c.Back); err != nil {
			if isUniqueConstraintError(err) {
				return ErrUniqueConstraint
			}
			return errors.NewInternal(err)
		}
	}
	return nil
}

// UpdateDeck replaces the name, description and cards of an existing deck.
// Sets updated_at to the current timestamp. Does NOT change: id, created_at.
func UpdateDeck(ctx context.Context, q Querier, d *deck.Deck) error {
	now := time.Now().Unix()

	query := `
		UPDATE decks
		SET name = ?, name_norm = ?, description = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query,
		d.Name, d.NameNorm, toNullString(d.Description), now, d.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("deck", d.ID)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM cards WHERE deck_id = ?`, d.ID); err != nil {
		return errors.NewInternal(err)
	}
	if err := insertCards(ctx, q, d.ID, d.Cards); err != nil {
		return err
	}

	d.UpdatedAt = now
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

const deckColumns = `id, name, name_norm, description, created_at, updated_at`

// GetDeckByID retrieves a deck and its cards by ULID.
func GetDeckByID(ctx context.Context, q Querier, id string) (*deck.Deck, error) {
	row := q.QueryRowContext(ctx, `SELECT `+deckColumns+` FROM decks WHERE id = ?`, id)
	d, err := scanDeck(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("deck", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if d.Cards, err = loadCards(ctx, q, d.ID); err != nil {
		return nil, err
	}
	return d, nil
}

// GetDeckByName retrieves a deck and its cards by normalized name.
func GetDeckByName(ctx context.Context, q Querier, nameNorm string) (*deck.Deck, error) {
	row := q.QueryRowContext(ctx, `SELECT `+deckColumns+` FROM decks WHERE name_norm = ?`, nameNorm)
	d, err := scanDeck(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("deck", nameNorm)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if d.Cards, err = loadCards(ctx, q, d.ID); err != nil {
		return nil, err
	}
	return d, nil
}

// CheckNameExists checks if a deck with the given normalized name exists.
func CheckNameExists(ctx context.Context, q Querier, nameNorm string) (bool, error) {
	var exists int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM decks WHERE name_norm = ? LIMIT 1`, nameNorm).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// ListDecks returns deck summaries ordered by name, with the total count.
func ListDecks(ctx context.Context, q Querier, limit, offset int) ([]deck.Summary, int, error) {
	total, err := CountDecks(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT d.id, d.name, d.name_norm, d.description, d.created_at, d.updated_at,
			(SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id)
		FROM decks d
		ORDER BY d.name_norm ASC, d.id ASC
		LIMIT ? OFFSET ?
	`
	rows, err := q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	items := []deck.Summary{}
	for rows.Next() {
		var (
			s    deck.Summary
			desc sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.NameNorm, &desc, &s.CreatedAt, &s.UpdatedAt, &s.CardCount); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		s.Description = desc.String
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return items, total, nil
}

// CountDecks returns the number of decks in the catalog.
func CountDecks(ctx context.Context, q Querier) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM decks`).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// ListDeckIDs returns every deck id ordered by name.
func ListDeckIDs(ctx context.Context, q Querier) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT id FROM decks ORDER BY name_norm ASC, id ASC`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewInternal(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return ids, nil
}

// DeleteDeck removes a deck and its cards.
func DeleteDeck(ctx context.Context, q Querier, id string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM cards WHERE deck_id = ?`, id); err != nil {
		return errors.NewInternal(err)
	}
	result, err := q.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("deck", id)
	}
	return nil
}

// GetSettings returns the stored settings. found is false if none were ever saved.
func GetSettings(ctx context.Context, q Querier) (s settings.Settings, found bool, err error) {
	var data string
	err = q.QueryRowContext(ctx, `SELECT data_json FROM settings WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return settings.Settings{}, false, nil
	}
	if err != nil {
		return settings.Settings{}, false, errors.NewInternal(err)
	}
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return settings.Settings{}, false, errors.NewInternal(err)
	}
	return s, true, nil
}

// PutSettings replaces the stored settings.
func PutSettings(ctx context.Context, q Querier, s settings.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.NewInternal(err)
	}
	query := `
		INSERT INTO settings (id, data_json, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data_json = excluded.data_json, updated_at = excluded.updated_at
	`
	if _, err := q.ExecContext(ctx, query, string(data), time.Now().Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func loadCards(ctx context.Context, q Querier, deckID string) ([]deck.Card, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT card_id, front, back FROM cards WHERE deck_id = ? ORDER BY position ASC`, deckID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	cards := []deck.Card{}
	for rows.Next() {
		var c deck.Card
		if err := rows.Scan(&c.ID, &c.Front, &c.Back); err != nil {
			return nil, errors.NewInternal(err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return cards, nil
}

// scanDeck scans a deck row without its cards.
func scanDeck(row *sql.Row) (*deck.Deck, error) {
	var (
		d    deck.Deck
		desc sql.NullString
	)
	if err := row.Scan(&d.ID, &d.Name, &d.NameNorm, &desc, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Description = desc.String
	return &d, nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
