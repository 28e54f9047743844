package gworkspace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Tiliavir/monthly-invoicer/internal/apperr"
)

// pdfOptions render one sheet on A4 portrait, fitted to width, without any
// page decoration.
var pdfOptions = url.Values{
	"format":      {"pdf"},
	"size":        {"A4"},
	"portrait":    {"true"},
	"fitw":        {"true"},
	"sheetnames":  {"false"},
	"printtitle":  {"false"},
	"pagenumbers": {"false"},
	"gridlines":   {"false"},
	"fzr":         {"false"},
}

// ExportURL is the authenticated export endpoint for one sheet.
func (c *Client) ExportURL(docID string, sheetID int64) string {
	q := url.Values{}
	for k, v := range pdfOptions {
		q[k] = v
	}
	q.Set("gid", strconv.FormatInt(sheetID, 10))
	return fmt.Sprintf("%s/spreadsheets/d/%s/export?%s", c.exportBase, url.PathEscape(docID), q.Encode())
}

// ExportPDF renders sheetID of docID with the invoice print options.
func (c *Client) ExportPDF(ctx context.Context, docID string, sheetID int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ExportURL(docID, sheetID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify("export pdf", docID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify("export pdf", docID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Wrap(kindOf(resp.StatusCode), "export pdf", docID,
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200)))
	}
	// a sign-in page also comes back as 200
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		return nil, apperr.Wrap(apperr.KindTransient, "export pdf", docID,
			fmt.Errorf("response is not a PDF (%s)", resp.Header.Get("Content-Type")))
	}
	c.log.Debug("exported pdf", "doc", docID, "gid", sheetID, "bytes", len(body))
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
