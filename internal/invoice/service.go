// Package invoice runs the monthly invoice pipeline: aggregate the work log,
// fill a copy of the template, export it to PDF, file the PDF, archive the
// copy and notify.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/monthly-invoicer/internal/apperr"
	"github.com/Tiliavir/monthly-invoicer/internal/billing"
	"github.com/Tiliavir/monthly-invoicer/internal/config"
	"github.com/Tiliavir/monthly-invoicer/internal/model"
	"github.com/Tiliavir/monthly-invoicer/internal/worklog"
)

// Result describes a generated invoice.
type Result struct {
	Period        billing.Period
	TotalHours    float64
	Amount        string
	InvoiceNumber string
	// DraftID is the working copy, archived after a successful export.
	DraftID  string
	FileName string
	URL      string
}

// Deps are the collaborators of a Service. Notifier and Runs may be nil.
type Deps struct {
	Entries   Entries
	Documents Documents
	Exporter  Exporter
	Output    Output
	Archiver  Archiver
	Notifier  Notifier
	Runs      RunLog
	Logger    *slog.Logger
}

// Service generates invoices.
type Service struct {
	entries  Entries
	docs     Documents
	exporter Exporter
	output   Output
	archiver Archiver
	notifier Notifier
	runs     RunLog
	log      *slog.Logger
	now      func() time.Time
}

// NewService wires a Service.
func NewService(d Deps) *Service {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		entries:  d.Entries,
		docs:     d.Documents,
		exporter: d.Exporter,
		output:   d.Output,
		archiver: d.Archiver,
		notifier: d.Notifier,
		runs:     d.Runs,
		log:      log,
		now:      time.Now,
	}
}

// Create generates the invoice of period. Steps run in order and the first
// failure aborts the rest; nothing is retried or rolled back, so a working copy
// made before a failure stays in the work folder. Either way a notification is
// sent, and a failure is returned to the caller after it.
func (s *Service) Create(ctx context.Context, props config.Properties, period billing.Period) (Result, error) {
	started := s.now()
	log := s.log.With("period", period.String())
	log.Info("generating invoice")

	res, err := s.create(ctx, log, props, period)
	s.record(ctx, period, started, res, err)

	if err != nil {
		log.Error("invoice generation failed", "error", err, "kind", apperr.KindOf(err).String(), "draft", res.DraftID)
		s.notify(ctx, props.NotificationEmail,
			fmt.Sprintf("Invoice generation failed (%s)", period),
			failureBody(period, res, err))
		return res, err
	}

	log.Info("invoice created", "file", res.FileName, "url", res.URL, "hours", res.TotalHours, "amount", res.Amount)
	s.notify(ctx, props.NotificationEmail,
		fmt.Sprintf("Invoice created: %s", res.FileName),
		successBody(res))
	return res, nil
}

func (s *Service) create(ctx context.Context, log *slog.Logger, props config.Properties, period billing.Period) (Result, error) {
	res := Result{Period: period, InvoiceNumber: period.InvoiceNumber()}

	if err := props.Validate(); err != nil {
		return res, err
	}

	entries, err := s.entries.Fetch(ctx, props.WorkLogFileID, props.WorkLogSheetName, period)
	if err != nil {
		return res, fmt.Errorf("fetching work log: %w", err)
	}
	res.TotalHours = worklog.BilledHours(entries)
	log.Debug("aggregated work log", "entries", len(entries), "hours", res.TotalHours)

	draft, err := s.docs.Copy(ctx, props.InvoiceTemplateID, DraftName(period), props.WorkFolder())
	if err != nil {
		return res, fmt.Errorf("duplicating template: %w", err)
	}
	res.DraftID = draft.ID
	log.Debug("template duplicated", "draft", draft.ID, "name", draft.Name)

	sheet := props.InvoiceSheetName
	writes := []struct {
		addr  string
		value any
	}{
		{props.Cells.InvoiceDate, period.InvoiceDate()},
		{props.Cells.InvoiceNumber, res.InvoiceNumber},
		{props.Cells.WorkHours, hoursValue(res.TotalHours, props.WorkHoursSuffix)},
	}
	for _, w := range writes {
		if err := s.docs.SetCell(ctx, draft.ID, sheet, w.addr, w.value); err != nil {
			return res, fmt.Errorf("writing %s!%s: %w", sheet, w.addr, err)
		}
	}

	raw, err := s.docs.Cell(ctx, draft.ID, sheet, props.Cells.TotalAmount)
	if err != nil {
		return res, fmt.Errorf("reading total amount: %w", err)
	}
	res.Amount = FormatAmount(raw)
	if res.Amount == "" {
		return res, apperr.Wrap(apperr.KindData, "read total amount", sheet+"!"+props.Cells.TotalAmount,
			errors.New("cell is empty; check the template formula"))
	}

	pdf, err := s.exportPDF(ctx, log, draft.ID, props.InvoiceOutputSheetName)
	if err != nil {
		return res, err
	}

	res.FileName = PDFName(period, res.Amount, props.PayeeName)
	file, err := s.output.Save(ctx, props.InvoiceOutputFolderID, res.FileName, pdf)
	if err != nil {
		return res, fmt.Errorf("saving %s: %w", res.FileName, err)
	}
	res.URL = file.URL

	if err := s.archiver.Move(ctx, draft.ID, props.ArchiveFolderID); err != nil {
		return res, fmt.Errorf("archiving working copy: %w", err)
	}
	return res, nil
}

// exportPDF renders the output sheet, falling back to a raw export of the
// whole document when the print-options export fails.
func (s *Service) exportPDF(ctx context.Context, log *slog.Logger, docID, sheet string) ([]byte, error) {
	sheetID, err := s.docs.SheetID(ctx, docID, sheet)
	if err != nil {
		return nil, fmt.Errorf("locating output sheet: %w", err)
	}

	pdf, err := s.exporter.ExportPDF(ctx, docID, sheetID)
	if err == nil {
		return pdf, nil
	}
	log.Warn("pdf export failed, falling back to raw export", "error", err, "doc", docID)

	pdf, rawErr := s.exporter.ExportRaw(ctx, docID)
	if rawErr != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "export pdf", docID, errors.Join(err, rawErr))
	}
	return pdf, nil
}

// notify sends a mail. Failures are logged and never change the outcome.
func (s *Service) notify(ctx context.Context, to, subject, body string) {
	if s.notifier == nil || to == "" {
		s.log.Debug("notification skipped: no notifier or recipient", "subject", subject)
		return
	}
	if err := s.notifier.Send(ctx, to, subject, body); err != nil {
		s.log.Warn("sending notification failed", "to", to, "subject", subject, "error", err)
	}
}

func (s *Service) record(ctx context.Context, period billing.Period, started time.Time, res Result, err error) {
	run := model.Run{
		ID:         uuid.NewString(),
		Period:     period.String(),
		StartedAt:  started,
		FinishedAt: s.now(),
		Status:     model.RunSuccess,
		URL:        res.URL,
	}
	if err != nil {
		run.Status = model.RunFailure
		run.Error = err.Error()
	}
	s.recordRun(ctx, run)
}

func (s *Service) recordRun(ctx context.Context, run model.Run) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Record(ctx, run); err != nil {
		s.log.Warn("recording run failed", "error", err)
	}
}

func successBody(res Result) string {
	return fmt.Sprintf("The invoice for %s was created.\n\nFile: %s\nURL: %s\nHours: %g\nAmount: %s\n",
		res.Period, res.FileName, res.URL, res.TotalHours, res.Amount)
}

func failureBody(period billing.Period, res Result, err error) string {
	body := fmt.Sprintf("Generating the invoice for %s failed.\n\nError: %v\n", period, err)
	if res.DraftID != "" {
		body += fmt.Sprintf("\nThe working copy %s was left in place for manual cleanup.\n", res.DraftID)
	}
	return body
}
