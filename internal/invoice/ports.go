package invoice

import (
	"context"

	"github.com/Tiliavir/monthly-invoicer/internal/billing"
	"github.com/Tiliavir/monthly-invoicer/internal/model"
)

// Entries returns the work-log entries of a period.
type Entries interface {
	Fetch(ctx context.Context, fileID, sheet string, p billing.Period) ([]model.WorkLogEntry, error)
}

// Documents duplicates the template and edits spreadsheet cells.
type Documents interface {
	Copy(ctx context.Context, srcID, name, folderID string) (model.File, error)
	SetCell(ctx context.Context, docID, sheet, addr string, value any) error
	Cell(ctx context.Context, docID, sheet, addr string) (any, error)
	SheetID(ctx context.Context, docID, sheet string) (int64, error)
}

// Exporter renders a spreadsheet to PDF. ExportPDF renders one sheet with the
// print options applied; ExportRaw exports the whole document and is the
// fallback when ExportPDF fails.
type Exporter interface {
	ExportPDF(ctx context.Context, docID string, sheetID int64) ([]byte, error)
	ExportRaw(ctx context.Context, docID string) ([]byte, error)
}

// Output stores finished PDFs.
type Output interface {
	Save(ctx context.Context, folder, name string, data []byte) (model.File, error)
}

// Archiver moves a file into another folder.
type Archiver interface {
	Move(ctx context.Context, fileID, folderID string) error
}

// Notifier sends a plain-text mail.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// RunLog records invocations.
type RunLog interface {
	Record(ctx context.Context, run model.Run) error
}
