// Package csvimport drives the two-phase CSV import flow: upload a file for
// a server-side parse preview, then confirm exactly the rows that validated.
package csvimport

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "tradevault/internal/errors"
	"tradevault/internal/models"
)

// MaxFileSize is the upload ceiling checked before any network round-trip.
const MaxFileSize = 5 * 1024 * 1024

// Uploader is the slice of the API client the reconciler needs.
type Uploader interface {
	PreviewCSV(ctx context.Context, fileName string, content io.Reader) (*models.CsvPreview, error)
	ConfirmImport(ctx context.Context, rows []models.CsvRow) (int, error)
}

// Reconciler mediates between local CSV files and the server-side parser.
type Reconciler struct {
	uploader Uploader
}

// NewReconciler creates a Reconciler backed by the given uploader.
func NewReconciler(uploader Uploader) *Reconciler {
	return &Reconciler{uploader: uploader}
}

// CheckFile rejects files that would fail anyway, before wasting a
// round-trip: non-.csv extensions and files over MaxFileSize.
func CheckFile(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return apperrors.ErrNotCSV
	}
	info, err := os.Stat(path)
	if err != nil {
		return apperrors.Wrap(err, "reading file")
	}
	if info.Size() > MaxFileSize {
		return apperrors.ErrFileTooLarge
	}
	return nil
}

// LoadPreview uploads the file and returns the server's parse preview.
// On any failure the caller's previous preview must be left untouched, so
// this never returns a partial preview alongside an error.
func (r *Reconciler) LoadPreview(ctx context.Context, path string) (*models.CsvPreview, error) {
	if err := CheckFile(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(err, "opening file")
	}
	defer f.Close()

	preview, err := r.uploader.PreviewCSV(ctx, filepath.Base(path), f)
	if err != nil {
		return nil, err
	}
	return preview, nil
}

// ImportableRows returns the rows lacking a validation error. This exact
// subset is what Confirm sends; the two must never diverge.
func ImportableRows(preview *models.CsvPreview) []models.CsvRow {
	if preview == nil {
		return nil
	}
	rows := make([]models.CsvRow, 0, len(preview.Rows))
	for _, row := range preview.Rows {
		if row.Importable() {
			rows = append(rows, row)
		}
	}
	return rows
}

// Confirm persists the importable subset of the preview and returns the
// server's imported count. The caller must follow up with a full trade-list
// re-fetch: server-side dedupe and id assignment are not mirrored locally.
func (r *Reconciler) Confirm(ctx context.Context, preview *models.CsvPreview) (int, error) {
	rows := ImportableRows(preview)
	if len(rows) == 0 {
		return 0, apperrors.ErrNoPreview
	}
	return r.uploader.ConfirmImport(ctx, rows)
}
