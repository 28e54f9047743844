package gworkspace

import (
	"context"
	"strings"

	"google.golang.org/api/sheets/v4"

	"github.com/Tiliavir/monthly-invoicer/internal/apperr"
)

// Sheet is one tab of a spreadsheet.
type Sheet struct {
	ID    int64
	Title string
}

// Sheets lists the tabs of a spreadsheet in order.
func (c *Client) Sheets(ctx context.Context, fileID string) ([]Sheet, error) {
	ss, err := c.sheets.Spreadsheets.Get(fileID).
		Fields("sheets.properties(sheetId,title)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("open spreadsheet", fileID, err)
	}
	out := make([]Sheet, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties == nil {
			continue
		}
		out = append(out, Sheet{ID: s.Properties.SheetId, Title: s.Properties.Title})
	}
	return out, nil
}

// SheetID returns the numeric ID of the named tab. A missing tab is reported
// together with the names that do exist.
func (c *Client) SheetID(ctx context.Context, fileID, name string) (int64, error) {
	tabs, err := c.Sheets(ctx, fileID)
	if err != nil {
		return 0, err
	}
	titles := make([]string, 0, len(tabs))
	for _, s := range tabs {
		if s.Title == name {
			return s.ID, nil
		}
		titles = append(titles, s.Title)
	}
	return 0, apperr.NotFound("find sheet", name, titles...)
}

// Rows returns every row of the named tab, header first. Numbers and date
// cells come back as numbers, dates as serial days, so the result does not
// depend on the spreadsheet locale. Text cells stay text.
func (c *Client) Rows(ctx context.Context, fileID, sheet string) ([][]any, error) {
	if _, err := c.SheetID(ctx, fileID, sheet); err != nil {
		return nil, err
	}
	vr, err := c.sheets.Spreadsheets.Values.Get(fileID, quoteSheet(sheet)).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("read sheet", sheet, err)
	}
	return vr.Values, nil
}

// SetCell writes one value as if typed by a user, so dates and numbers are
// parsed by the spreadsheet.
func (c *Client) SetCell(ctx context.Context, docID, sheet, addr string, value any) error {
	rng := cellRange(sheet, addr)
	_, err := c.sheets.Spreadsheets.Values.Update(docID, rng, &sheets.ValueRange{
		Values: [][]any{{value}},
	}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return classify("write cell", rng, err)
}

// Cell reads the unformatted value of one cell; an empty cell is nil.
func (c *Client) Cell(ctx context.Context, docID, sheet, addr string) (any, error) {
	rng := cellRange(sheet, addr)
	vr, err := c.sheets.Spreadsheets.Values.Get(docID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("read cell", rng, err)
	}
	if len(vr.Values) == 0 || len(vr.Values[0]) == 0 {
		return nil, nil
	}
	return vr.Values[0][0], nil
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func cellRange(sheet, addr string) string {
	return quoteSheet(sheet) + "!" + addr
}
