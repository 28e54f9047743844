package gworkspace_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/monthly-invoicer/internal/apperr"
	"github.com/Tiliavir/monthly-invoicer/internal/gworkspace"
)

type fakeGoogle struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
	pdf      []byte
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	key := r.Method + " " + r.URL.Path
	f.requests = append(f.requests, key+"?"+r.URL.RawQuery)
	f.bodies[key] = string(body)
	f.mu.Unlock()

	p := r.URL.Path
	switch {
	case strings.HasSuffix(p, "/spreadsheets/missing"):
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{"error": map[string]any{"code": 404, "message": "Requested entity was not found."}})
	case strings.HasSuffix(p, "/spreadsheets/busy"):
		w.WriteHeader(http.StatusTooManyRequests)
		writeJSON(w, map[string]any{"error": map[string]any{"code": 429, "message": "quota"}})
	case strings.HasSuffix(p, "/spreadsheets/doc") && r.Method == http.MethodGet:
		writeJSON(w, map[string]any{"sheets": []any{
			map[string]any{"properties": map[string]any{"sheetId": 0, "title": "シート1"}},
			map[string]any{"properties": map[string]any{"sheetId": 42, "title": "ダウンロード用"}},
		}})
	case strings.Contains(p, "/values/") && r.Method == http.MethodGet && strings.Contains(p, "F30"):
		writeJSON(w, map[string]any{"values": [][]any{{60000}}})
	case strings.Contains(p, "/values/") && r.Method == http.MethodGet && strings.Contains(p, "E9"):
		writeJSON(w, map[string]any{})
	case strings.Contains(p, "/values/") && r.Method == http.MethodGet:
		writeJSON(w, map[string]any{"values": [][]any{
			{"ID", "日付", "時間"},
			{"1", 45778, 4},
		}})
	case strings.Contains(p, "/values/") && r.Method == http.MethodPut:
		writeJSON(w, map[string]any{"updatedCells": 1})
	case strings.HasSuffix(p, "/files/template/copy"):
		writeJSON(w, map[string]any{"id": "draft", "name": "請求書_20250531", "webViewLink": "https://drive/draft"})
	case strings.HasSuffix(p, "/files/draft") && r.Method == http.MethodGet:
		writeJSON(w, map[string]any{"id": "draft", "parents": []string{"work", "other"}})
	case strings.HasSuffix(p, "/files/draft") && r.Method == http.MethodPatch:
		writeJSON(w, map[string]any{"id": "draft", "parents": []string{"archive"}})
	case strings.HasSuffix(p, "/files/draft/export"):
		_, _ = w.Write([]byte("%PDF raw"))
	case strings.HasSuffix(p, "/files") && r.Method == http.MethodPost:
		writeJSON(w, map[string]any{"id": "pdf1", "name": "invoice.pdf"})
	case strings.HasSuffix(p, "/export"):
		_, _ = w.Write(f.pdf)
	case strings.HasSuffix(p, "/messages/send"):
		writeJSON(w, map[string]any{"id": "m1"})
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeGoogle) seen(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		if strings.HasPrefix(r, prefix) {
			out = append(out, r)
		}
	}
	return out
}

func newClient(t *testing.T) (*gworkspace.Client, *fakeGoogle) {
	t.Helper()
	fake := &fakeGoogle{bodies: map[string]string{}, pdf: []byte("%PDF-1.4 sheet")}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := gworkspace.New(context.Background(), gworkspace.Options{
		HTTPClient: srv.Client(),
		Endpoint:   srv.URL + "/",
		ExportBase: srv.URL,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return c, fake
}

func TestSheetID(t *testing.T) {
	c, _ := newClient(t)

	id, err := c.SheetID(context.Background(), "doc", "ダウンロード用")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = c.SheetID(context.Background(), "doc", "PDF")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Contains(t, err.Error(), "シート1, ダウンロード用")
}

func TestRows(t *testing.T) {
	c, fake := newClient(t)

	rows, err := c.Rows(context.Background(), "doc", "シート1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 45778, rows[1][1], "dates arrive as serial days")
	assert.EqualValues(t, 4, rows[1][2])

	gets := fake.seen("GET /v4/spreadsheets/doc/values/")
	require.Len(t, gets, 1)
	assert.Contains(t, gets[0], "valueRenderOption=UNFORMATTED_VALUE")
	assert.Contains(t, gets[0], "dateTimeRenderOption=SERIAL_NUMBER")
}

func TestRows_MissingSpreadsheet(t *testing.T) {
	c, _ := newClient(t)
	_, err := c.Rows(context.Background(), "missing", "シート1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRows_RateLimitedIsTransient(t *testing.T) {
	c, _ := newClient(t)
	_, err := c.Rows(context.Background(), "busy", "シート1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindTransient))
}

func TestSetCellAndCell(t *testing.T) {
	c, fake := newClient(t)
	ctx := context.Background()

	require.NoError(t, c.SetCell(ctx, "doc", "シート1", "E4", "2025/05/31"))
	puts := fake.seen("PUT ")
	require.Len(t, puts, 1)
	assert.Contains(t, puts[0], "valueInputOption=USER_ENTERED")
	assert.Contains(t, puts[0], "'シート1'!E4")

	v, err := c.Cell(ctx, "doc", "シート1", "F30")
	require.NoError(t, err)
	assert.EqualValues(t, 60000, v)

	v, err = c.Cell(ctx, "doc", "シート1", "E9")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCopySaveMove(t *testing.T) {
	c, fake := newClient(t)
	ctx := context.Background()

	f, err := c.Copy(ctx, "template", "請求書_20250531", "work")
	require.NoError(t, err)
	assert.Equal(t, "draft", f.ID)
	assert.Equal(t, "https://drive/draft", f.URL)
	var body map[string]any
	for k, v := range fake.bodies {
		if strings.HasSuffix(k, "/copy") {
			require.NoError(t, json.Unmarshal([]byte(v), &body))
		}
	}
	assert.Equal(t, "請求書_20250531", body["name"])
	assert.Equal(t, []any{"work"}, body["parents"])

	saved, err := c.Save(ctx, "out", "invoice.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "https://drive.google.com/file/d/pdf1/view", saved.URL)

	require.NoError(t, c.Move(ctx, "draft", "archive"))
	patches := fake.seen("PATCH ")
	require.Len(t, patches, 1)
	assert.Contains(t, patches[0], "addParents=archive")
	assert.Contains(t, patches[0], "removeParents=work%2Cother")
}

func TestExportPDF(t *testing.T) {
	c, fake := newClient(t)

	u := c.ExportURL("doc", 42)
	for _, want := range []string{"/spreadsheets/d/doc/export?", "format=pdf", "size=A4", "portrait=true",
		"fitw=true", "sheetnames=false", "printtitle=false", "pagenumbers=false", "gridlines=false", "fzr=false", "gid=42"} {
		assert.Contains(t, u, want)
	}

	pdf, err := c.ExportPDF(context.Background(), "doc", 42)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 sheet", string(pdf))

	fake.pdf = []byte("<html>sign in</html>")
	_, err = c.ExportPDF(context.Background(), "doc", 42)
	require.Error(t, err)

	raw, err := c.ExportRaw(context.Background(), "draft")
	require.NoError(t, err)
	assert.Equal(t, "%PDF raw", string(raw))
}

func TestSend(t *testing.T) {
	c, fake := newClient(t)
	require.NoError(t, c.Send(context.Background(), "me@example.com", "請求書を作成しました", "本文"))

	var msg struct{ Raw string }
	for k, v := range fake.bodies {
		if strings.HasSuffix(k, "/messages/send") {
			require.NoError(t, json.Unmarshal([]byte(v), &msg))
		}
	}
	raw, err := base64.URLEncoding.DecodeString(msg.Raw)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "To: me@example.com\r\n")
	assert.Contains(t, string(raw), "Subject: =?UTF-8?b?")
}

func TestCompose_WrapsBody(t *testing.T) {
	msg := string(gworkspace.Compose("a@b.c", "ascii", strings.Repeat("あ", 100)))
	head, body, ok := strings.Cut(msg, "\r\n\r\n")
	require.True(t, ok)
	assert.Contains(t, head, "Subject: ascii")
	for _, line := range strings.Split(strings.TrimSpace(body), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
}
