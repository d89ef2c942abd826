package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hpungsan/adapty/internal/config"
	"github.com/hpungsan/adapty/internal/db"
	"github.com/hpungsan/adapty/internal/deck"
	"github.com/hpungsan/adapty/internal/errors"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail on collision (atomic)
	ImportModeReplace ImportMode = "replace" // overwrite on collision
	ImportModeRename  ImportMode = "rename"  // auto-suffix name on collision
)

// maxImportLine bounds a single JSONL line (one deck).
const maxImportLine = 16 << 20

// maxRenameAttempts bounds the "-N" suffix search in rename mode.
const maxRenameAttempts = 1000

// ImportInput contains parameters for the ImportDecks operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the ImportDecks operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one line that was not imported.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type importRecord struct {
	line int
	deck *deck.Deck
}

// ImportDecks reads decks from a JSONL export file.
func ImportDecks(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeReplace && input.Mode != ImportModeRename {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace, rename")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openNoFollow(input.Path)
	if err != nil {
		if _, ok := err.(*errors.AppError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	records, parseErrors := parseExportFile(file)

	// mode:error imports nothing unless every line is usable
	if input.Mode == ImportModeError && len(parseErrors) > 0 {
		return &ImportOutput{Errors: parseErrors}, nil
	}

	switch input.Mode {
	case ImportModeReplace:
		return importModeReplace(ctx, database, records, parseErrors)
	case ImportModeRename:
		return importModeRename(ctx, database, records, parseErrors)
	default:
		return importModeError(ctx, database, records)
	}
}

// parseExportFile reads records, skipping the header line.
// Every record must pass deck.Validate.
func parseExportFile(r io.Reader) ([]importRecord, []ImportError) {
	var (
		records     []importRecord
		parseErrors []ImportError
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec deck.ExportRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}
		if rec.AdaptyExport {
			continue
		}
		if rec.ID == "" {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "INVALID_RECORD",
				Message: "missing id field",
			})
			continue
		}
		if err := deck.Validate(rec.Name, rec.Cards); err != nil {
			appErr := errors.As(err)
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				ID:      rec.ID,
				Name:    rec.Name,
				Code:    string(appErr.Code),
				Message: appErr.Message,
			})
			continue
		}

		records = append(records, importRecord{line: lineNum, deck: rec.ToDeck()})
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum + 1,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	return records, parseErrors
}

// importModeError imports all records in one transaction and aborts on the first collision.
func importModeError(ctx context.Context, database *sql.DB, records []importRecord) (*ImportOutput, error) {
	var collision *ImportError

	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		for _, rec := range records {
			d := rec.deck
			if _, err := db.GetDeckByID(ctx, tx, d.ID); err == nil {
				collision = &ImportError{
					Line: rec.line, ID: d.ID, Name: d.Name, Code: "ID_COLLISION",
					Message: fmt.Sprintf("deck with id %q already exists", d.ID),
				}
				return errAbortImport
			} else if !errors.Is(err, errors.ErrNotFound) {
				return err
			}

			exists, err := db.CheckNameExists(ctx, tx, d.NameNorm)
			if err != nil {
				return err
			}
			if exists {
				collision = &ImportError{
					Line: rec.line, ID: d.ID, Name: d.Name, Code: "NAME_COLLISION",
					Message: fmt.Sprintf("deck with name %q already exists", d.Name),
				}
				return errAbortImport
			}

			if err := db.InsertDeck(ctx, tx, d); err != nil {
				if err == db.ErrUniqueConstraint {
					// Two records in the same file share a name.
					collision = &ImportError{
						Line: rec.line, ID: d.ID, Name: d.Name, Code: "NAME_COLLISION",
						Message: fmt.Sprintf("deck with name %q appears more than once", d.Name),
					}
					return errAbortImport
				}
				return err
			}
		}
		return nil
	})

	if err == errAbortImport {
		return &ImportOutput{Errors: []ImportError{*collision}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ImportOutput{Imported: len(records), Errors: []ImportError{}}, nil
}

var errAbortImport = errors.NewInvalidRequest("import aborted")

// importModeReplace imports records, overwriting the deck with the same id or name.
func importModeReplace(ctx context.Context, database *sql.DB, records []importRecord, parseErrors []ImportError) (*ImportOutput, error) {
	out := &ImportOutput{Skipped: len(parseErrors), Errors: append([]ImportError{}, parseErrors...)}

	for _, rec := range records {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("import")
		}
		d := rec.deck

		byID, err := db.GetDeckByID(ctx, database, d.ID)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
		byName, err := db.GetDeckByName(ctx, database, d.NameNorm)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}

		// The id matches one deck and the name another: refuse to guess
		if byID != nil && byName != nil && byID.ID != byName.ID {
			out.Errors = append(out.Errors, ImportError{
				Line: rec.line, ID: d.ID, Name: d.Name, Code: "AMBIGUOUS_COLLISION",
				Message: fmt.Sprintf("id %q matches one deck but name %q matches another", d.ID, d.Name),
			})
			out.Skipped++
			continue
		}

		err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
			switch {
			case byID != nil:
				return db.UpdateDeck(ctx, tx, d)
			case byName != nil:
				d.ID = byName.ID
				return db.UpdateDeck(ctx, tx, d)
			default:
				return db.InsertDeck(ctx, tx, d)
			}
		})
		if err != nil {
			return nil, err
		}
		out.Imported++
	}

	return out, nil
}

// importModeRename imports records, giving fresh ids and "-N" name suffixes on collision.
func importModeRename(ctx context.Context, database *sql.DB, records []importRecord, parseErrors []ImportError) (*ImportOutput, error) {
	out := &ImportOutput{Skipped: len(parseErrors), Errors: append([]ImportError{}, parseErrors...)}

	for _, rec := range records {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("import")
		}
		d := rec.deck

		if _, err := db.GetDeckByID(ctx, database, d.ID); err == nil {
			if d.ID, err = generateULID(); err != nil {
				return nil, errors.NewInternal(err)
			}
		} else if !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}

		exists, err := db.CheckNameExists(ctx, database, d.NameNorm)
		if err != nil {
			return nil, err
		}
		if exists {
			newName, err := findUniqueName(ctx, database, d.Name)
			if err != nil {
				out.Errors = append(out.Errors, ImportError{
					Line: rec.line, ID: d.ID, Name: d.Name, Code: "RENAME_FAILED",
					Message: fmt.Sprintf("failed to find unique name: %v", err),
				})
				out.Skipped++
				continue
			}
			d.Name = newName
			d.NameNorm = deck.Normalize(newName)
		}

		if err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
			return db.InsertDeck(ctx, tx, d)
		}); err != nil {
			out.Errors = append(out.Errors, ImportError{
				Line: rec.line, ID: d.ID, Name: d.Name, Code: "INSERT_FAILED",
				Message: fmt.Sprintf("failed to insert: %v", err),
			})
			out.Skipped++
			continue
		}
		out.Imported++
	}

	return out, nil
}

// findUniqueName returns name with the first free "-N" suffix.
func findUniqueName(ctx context.Context, q db.Querier, name string) (string, error) {
	for i := 1; i <= maxRenameAttempts; i++ {
		candidate := fmt.Sprintf("%s-%d", name, i)
		exists, err := db.CheckNameExists(ctx, q, deck.Normalize(candidate))
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free name after %d attempts", maxRenameAttempts)
}
