// Package diagnose inspects the configured spreadsheets and folders so setup
// problems can be found without running the pipeline.
package diagnose

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Tiliavir/monthly-invoicer/internal/apperr"
	"github.com/Tiliavir/monthly-invoicer/internal/billing"
	"github.com/Tiliavir/monthly-invoicer/internal/config"
	"github.com/Tiliavir/monthly-invoicer/internal/gworkspace"
	"github.com/Tiliavir/monthly-invoicer/internal/worklog"
)

// Workspace is the read-only part of the Google client.
type Workspace interface {
	Sheets(ctx context.Context, fileID string) ([]gworkspace.Sheet, error)
	Rows(ctx context.Context, fileID, sheet string) ([][]any, error)
	Info(ctx context.Context, fileID string) (gworkspace.FileInfo, error)
}

// Checker runs the checks.
type Checker struct {
	ws  Workspace
	loc *time.Location
}

// NewChecker returns a Checker that reads through ws and interprets sheet
// dates in loc.
func NewChecker(ws Workspace, loc *time.Location) *Checker {
	return &Checker{ws: ws, loc: loc}
}

// WorkLogReport summarises the work-log sheet.
type WorkLogReport struct {
	FileID string
	Sheet  string
	// Sheets are all tabs of the spreadsheet.
	Sheets      []string
	Found       bool
	Rows        int
	Header      []string
	Entries     int
	Skipped     int
	Period      billing.Period
	PeriodRows  int
	PeriodHours float64
}

// WorkLog reads the configured sheet and aggregates period. A missing sheet
// is not an error: the report lists the tabs that exist instead.
func (c *Checker) WorkLog(ctx context.Context, props config.Properties, period billing.Period) (WorkLogReport, error) {
	r := WorkLogReport{FileID: props.WorkLogFileID, Sheet: props.WorkLogSheetName, Period: period}
	if props.WorkLogFileID == "" {
		return r, apperr.Config("check work log", config.KeyWorkLogFileID, "must be set")
	}

	tabs, err := c.ws.Sheets(ctx, props.WorkLogFileID)
	if err != nil {
		return r, err
	}
	for _, t := range tabs {
		r.Sheets = append(r.Sheets, t.Title)
		if t.Title == props.WorkLogSheetName {
			r.Found = true
		}
	}
	if !r.Found {
		return r, nil
	}

	rows, err := c.ws.Rows(ctx, props.WorkLogFileID, props.WorkLogSheetName)
	if err != nil {
		return r, err
	}
	r.Rows = len(rows)
	if len(rows) > 0 {
		for _, v := range rows[0] {
			r.Header = append(r.Header, fmt.Sprint(v))
		}
	}
	entries, skipped := worklog.ParseRows(rows, c.loc)
	r.Entries = len(entries)
	r.Skipped = skipped
	inPeriod := worklog.FilterPeriod(entries, period)
	r.PeriodRows = len(inPeriod)
	r.PeriodHours = worklog.BilledHours(inPeriod)
	return r, nil
}

// FileCheck is the outcome of opening one configured ID.
type FileCheck struct {
	Key  string
	ID   string
	Info gworkspace.FileInfo
	Err  error
}

// OK reports whether the file could be opened.
func (f FileCheck) OK() bool { return f.Err == nil }

// Files opens every configured file and folder ID. Unset keys are skipped.
func (c *Checker) Files(ctx context.Context, props config.Properties) []FileCheck {
	ids := []struct{ key, id string }{
		{config.KeyWorkLogFileID, props.WorkLogFileID},
		{config.KeyInvoiceTemplateID, props.InvoiceTemplateID},
		{config.KeyInvoiceWorkFolderID, props.InvoiceWorkFolderID},
		{config.KeyInvoiceOutputFolderID, props.InvoiceOutputFolderID},
		{config.KeyArchiveFolderID, props.ArchiveFolderID},
	}
	var out []FileCheck
	for _, x := range ids {
		if x.id == "" {
			continue
		}
		out = append(out, c.File(ctx, x.key, x.id))
	}
	return out
}

// File opens one ID.
func (c *Checker) File(ctx context.Context, key, id string) FileCheck {
	info, err := c.ws.Info(ctx, id)
	return FileCheck{Key: key, ID: id, Info: info, Err: err}
}

// PropertyLine is one key of the property dump.
type PropertyLine struct {
	Key      string
	Value    string
	Source   string // "stored", "default" or "unset"
	Required bool
}

// Lister returns every stored property.
type Lister interface {
	All(ctx context.Context) (map[string]string, error)
}

// Properties lists every known key with its effective value, followed by any
// stored keys that are not part of the catalog.
func Properties(ctx context.Context, store Lister) ([]PropertyLine, error) {
	stored, err := store.All(ctx)
	if err != nil {
		return nil, err
	}
	known := map[string]bool{}
	var out []PropertyLine
	for _, p := range config.Catalog {
		known[p.Key] = true
		line := PropertyLine{Key: p.Key, Required: p.Required}
		switch v, ok := stored[p.Key]; {
		case ok && v != "":
			line.Value, line.Source = v, "stored"
		case p.Default != "":
			line.Value, line.Source = p.Default, "default"
		default:
			line.Source = "unset"
		}
		out = append(out, line)
	}

	var extra []string
	for k := range stored {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		out = append(out, PropertyLine{Key: k, Value: stored[k], Source: "stored"})
	}
	return out, nil
}
