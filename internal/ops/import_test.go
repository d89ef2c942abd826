package ops

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/adapty/internal/deck"
	"github.com/hpungsan/adapty/internal/errors"
)

func writeExportFile(t *testing.T, path string, records []deck.ExportRecord, extra ...string) {
	t.Helper()

	var b strings.Builder
	header, err := json.Marshal(deck.ExportHeader{AdaptyExport: true, SchemaVersion: ExportSchemaVersion, ExportedAt: 1})
	require.NoError(t, err)
	b.Write(header)
	b.WriteByte('\n')
	for _, r := range records {
		line, err := json.Marshal(r)
		require.NoError(t, err)
		b.Write(line)
		b.WriteByte('\n')
	}
	for _, l := range extra {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0600))
}

func record(id, name string) deck.ExportRecord {
	return deck.ExportRecord{
		ID:        id,
		Name:      name,
		Cards:     []deck.Card{{ID: 1, Front: "f", Back: "b"}},
		CreatedAt: 100,
		UpdatedAt: 100,
	}
}

func TestImportDecks_ModeError(t *testing.T) {
	database := setupDB(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "in.jsonl")
	writeExportFile(t, path, []deck.ExportRecord{record("01A", "One"), record("01B", "Two")})

	out, err := ImportDecks(context.Background(), database, testConfig(dir), ImportInput{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Imported)
	assert.Empty(t, out.Errors)

	d, err := FetchDeck(context.Background(), database, FetchInput{ID: "01A"})
	require.NoError(t, err)
	assert.Equal(t, "one", d.NameNorm)
	assert.Equal(t, int64(100), d.CreatedAt)
}

func TestImportDecks_ModeErrorIsAtomic(t *testing.T) {
	database := setupDB(t)
	dir := t.TempDir()
	storeTestDeck(t, database, "Two")

	path := filepath.Join(dir, "in.jsonl")
	writeExportFile(t, path, []deck.ExportRecord{record("01A", "One"), record("01B", "two")})

	out, err := ImportDecks(context.Background(), database, testConfig(dir), ImportInput{Path: path})
	require.NoError(t, err)
	assert.Zero(t, out.Imported)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "NAME_COLLISION", out.Errors[0].Code)
	assert.Equal(t, 3, out.Errors[0].Line)

	_, err = FetchDeck(context.Background(), database, FetchInput{ID: "01A"})
	assert.True(t, errors.Is(err, errors.ErrNotFound), "first record must be rolled back")
}

func TestImportDecks_ModeErrorRejectsParseErrors(t *testing.T) {
	database := setupDB(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "in.jsonl")
	writeExportFile(t, path, []deck.ExportRecord{record("01A", "One")}, "{broken")

	out, err := ImportDecks(context.Background(), database, testConfig(dir), ImportInput{Path: path})
	require.NoError(t, err)
	assert.Zero(t, out.Imported)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "PARSE_ERROR", out.Errors[0].Code)
}

func TestImportDecks_InvalidRecords(t *testing.T) {
	database := setupDB(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "in.jsonl")

	dup := record("01C", "Dup")
	dup.Cards = []deck.Card{{ID: 1, Front: "a", Back: "b"}, {ID: 1, Front: "c", Back: "d"}}
	writeExportFile(t, path, []deck.ExportRecord{record("", "NoID"), dup, record("01D", "Fine")})

	out, err := ImportDecks(context.Background(), database, testConfig(dir), ImportInput{Path: path, Mode: ImportModeRename})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Imported)
	assert.Equal(t, 2, out.Skipped)
	require.Len(t, out.Errors, 2)
	assert.Equal(t, "INVALID_RECORD", out.Errors[0].Code)
	assert.Equal(t, string(errors.ErrDuplicateCardID), out.Errors[1].Code)
}

func TestImportDecks_ModeReplace(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	dir := t.TempDir()
	existing := storeTestDeck(t, database, "Biology")

	byName := record("01NEW", "biology")
	byName.Cards = []deck.Card{{ID: 5, Front: "replaced", Back: "yes"}}
	path := filepath.Join(dir, "in.jsonl")
	writeExportFile(t, path, []deck.ExportRecord{byName, record("01X", "Fresh")})

	out, err := ImportDecks(ctx, database, testConfig(dir), ImportInput{Path: path, Mode: ImportModeReplace})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Imported)

	d, err := FetchDeck(ctx, database, FetchInput{ID: existing.ID})
	require.NoError(t, err)
	require.Len(t, d.Cards, 1)
	assert.Equal(t, "replaced", d.Cards[0].Front)

	list, err := ListDecks(ctx, database, ListInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Pagination.Total)
}

func TestImportDecks_ModeReplaceAmbiguous(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	dir := t.TempDir()
	a := storeTestDeck(t, database, "Alpha")
	storeTestDeck(t, database, "Beta")

	path := filepath.Join(dir, "in.jsonl")
	writeExportFile(t, path, []deck.ExportRecord{record(a.ID, "beta")})

	out, err := ImportDecks(ctx, database, testConfig(dir), ImportInput{Path: path, Mode: ImportModeReplace})
	require.NoError(t, err)
	assert.Zero(t, out.Imported)
	assert.Equal(t, 1, out.Skipped)
	assert.Equal(t, "AMBIGUOUS_COLLISION", out.Errors[0].Code)
}

func TestImportDecks_ModeRename(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	dir := t.TempDir()
	existing := storeTestDeck(t, database, "Biology")
	storeTestDeck(t, database, "Biology-1")

	path := filepath.Join(dir, "in.jsonl")
	writeExportFile(t, path, []deck.ExportRecord{record(existing.ID, "Biology")})

	out, err := ImportDecks(ctx, database, testConfig(dir), ImportInput{Path: path, Mode: ImportModeRename})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Imported)

	d, err := FetchDeck(ctx, database, FetchInput{Name: "Biology-2"})
	require.NoError(t, err)
	assert.NotEqual(t, existing.ID, d.ID, "colliding id is regenerated")
}

func TestImportDecks_InputErrors(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	dir := t.TempDir()
	cfg := testConfig(dir)

	_, err := ImportDecks(ctx, database, cfg, ImportInput{})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = ImportDecks(ctx, database, cfg, ImportInput{Path: filepath.Join(dir, "x.jsonl"), Mode: "merge"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = ImportDecks(ctx, database, cfg, ImportInput{Path: filepath.Join(dir, "missing.jsonl")})
	assert.True(t, errors.Is(err, errors.ErrFileNotFound))
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := setupDB(t)
	dst := setupDB(t)
	dir := t.TempDir()
	cfg := testConfig(dir)

	n, err := SeedSampleDecks(ctx, src)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	path := filepath.Join(dir, "samples.jsonl")
	exp, err := ExportDecks(ctx, src, cfg, ExportInput{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 3, exp.Count)

	imp, err := ImportDecks(ctx, dst, cfg, ImportInput{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 3, imp.Imported)

	want, err := FetchDeck(ctx, src, FetchInput{Name: "Basic Math"})
	require.NoError(t, err)
	got, err := FetchDeck(ctx, dst, FetchInput{Name: "Basic Math"})
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Cards, got.Cards)
}
