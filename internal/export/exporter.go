package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"skenterprise/billing/internal/document"
)

// ErrExportUnavailable means the export target could not be reached or
// written. It is reported to the caller; no retry is attempted here.
var ErrExportUnavailable = errors.New("export target unavailable")

// Result describes where a produced export ended up. Location is a local
// path or a presigned URL depending on the exporter.
type Result struct {
	Key      string `json:"key"`
	Location string `json:"location"`
}

// IExporter turns an assembled invoice document into a delivered PDF.
// Implementations must release any intermediate resource they open on
// success, failure and timeout paths alike.
type IExporter interface {
	Export(ctx context.Context, doc *document.InvoiceDocument) (*Result, error)
}

// fileExporter writes exports into a local directory. It is the default
// target when no S3 bucket is configured.
type fileExporter struct {
	dir string
}

// NewFileExporter creates an exporter that writes into dir, creating it if
// needed.
func NewFileExporter(dir string) (IExporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}
	return &fileExporter{dir: dir}, nil
}

// Export renders the document and writes it via a temp file that is renamed
// into place, so a failed write never leaves a truncated export behind.
func (e *fileExporter) Export(ctx context.Context, doc *document.InvoiceDocument) (*Result, error) {
	if doc == nil {
		return nil, document.ErrNothingToRender
	}

	pdfBytes, err := document.RenderPDF(doc)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportUnavailable, err)
	}

	key := exportKey(doc)
	finalPath := filepath.Join(e.dir, key)

	tmp, err := os.CreateTemp(e.dir, "export-*.pdf.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportUnavailable, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(pdfBytes); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%w: %v", ErrExportUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportUnavailable, err)
	}
	if err := os.Rename(tmpName, finalPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportUnavailable, err)
	}

	log.Printf("Exported invoice %s to %s", doc.InvoiceNumber, finalPath)
	return &Result{Key: key, Location: finalPath}, nil
}

// exportKey names the produced object. The random suffix keeps repeated
// exports of the same invoice from overwriting each other: each export is
// a snapshot of the invoice at that moment.
func exportKey(doc *document.InvoiceDocument) string {
	return fmt.Sprintf("Invoice_%s_%s.pdf", doc.InvoiceNumber, uuid.NewString()[:8])
}
