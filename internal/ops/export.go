package ops

import (
	"bufio"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/adapty/internal/config"
	"github.com/hpungsan/adapty/internal/db"
	"github.com/hpungsan/adapty/internal/deck"
	"github.com/hpungsan/adapty/internal/errors"
)

// ExportSchemaVersion is written into the header line of every export.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for the ExportDecks operation.
type ExportInput struct {
	Path string // optional, default: ~/.adapty/exports/<deck|all>-<timestamp>.jsonl
	ID   string // optional: export a single deck by id
	Name string // optional: export a single deck by name
}

// ExportOutput contains the result of the ExportDecks operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportDecks writes decks to a JSONL file: a header line, then one deck per line.
// The file is written to a temp name and renamed into place, so a failed export
// leaves any existing file untouched.
func ExportDecks(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	var ids []string
	stem := "all"
	if input.ID != "" || input.Name != "" {
		addr, err := ValidateAddress(input.ID, input.Name)
		if err != nil {
			return nil, err
		}
		d, err := loadDeck(ctx, database, addr)
		if err != nil {
			return nil, err
		}
		ids = []string{d.ID}
		stem = SanitizeForFilename(d.NameNorm)
	} else {
		var err error
		if ids, err = db.ListDeckIDs(ctx, database); err != nil {
			return nil, err
		}
	}

	exportPath := input.Path
	if exportPath == "" {
		dir, err := DefaultExportsDir()
		if err != nil {
			return nil, err
		}
		exportPath = filepath.Join(dir, fmt.Sprintf("%s-%s%s", stem, now.Format("2006-01-02T150405"), ExportExt))
	}
	// Default paths are validated too; the stem comes from a user-chosen deck name.
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := createNoFollow(tempPath, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	header := deck.ExportHeader{
		AdaptyExport:  true,
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    now.Unix(),
	}
	if err := enc.Encode(header); err != nil {
		return nil, errors.NewInternal(err)
	}

	count := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("export")
		}
		d, err := db.GetDeckByID(ctx, database, id)
		if err != nil {
			return nil, err
		}
		if err := enc.Encode(deck.ToExportRecord(d)); err != nil {
			return nil, errors.NewInternal(err)
		}
		count++
	}

	if err := w.Flush(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination
	if isSymlink(exportPath) {
		return nil, errors.NewInvalidRequest("export path is a symlink")
	}
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Count:      count,
		ExportedAt: now.Unix(),
	}, nil
}
