package s3store_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/monthly-invoicer/internal/apperr"
	"github.com/Tiliavir/monthly-invoicer/internal/s3store"
)

type objectServer struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	status  int
}

func (o *objectServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if o.status != 0 {
		w.WriteHeader(o.status)
		return
	}
	body, _ := io.ReadAll(r.Body)
	o.mu.Lock()
	o.objects[r.URL.Path] = body
	o.types[r.URL.Path] = r.Header.Get("Content-Type")
	o.mu.Unlock()
	w.Header().Set("ETag", `"etag"`)
	w.WriteHeader(http.StatusOK)
}

func newStore(t *testing.T, srv *httptest.Server) *s3store.Store {
	t.Helper()
	s, err := s3store.New(s3store.Options{
		Bucket:      "invoices",
		Region:      "ap-northeast-1",
		Endpoint:    srv.URL,
		Credentials: credentials.NewStaticCredentials("key", "secret", ""),
	})
	require.NoError(t, err)
	return s
}

func TestSave(t *testing.T) {
	objs := &objectServer{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(objs)
	defer srv.Close()

	f, err := newStore(t, srv).Save(context.Background(), "2025/", "20250531_60000_請求者.pdf", []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, "2025/20250531_60000_請求者.pdf", f.ID)
	assert.Equal(t, "%PDF", string(objs.objects["/invoices/2025/20250531_60000_請求者.pdf"]))
	assert.Equal(t, "application/pdf", objs.types["/invoices/2025/20250531_60000_請求者.pdf"])
	assert.Contains(t, f.URL, srv.URL+"/invoices/2025/20250531_60000_")
}

func TestSave_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(&objectServer{status: http.StatusServiceUnavailable})
	defer srv.Close()

	s, err := s3store.New(s3store.Options{
		Bucket:      "invoices",
		Endpoint:    srv.URL,
		Credentials: credentials.NewStaticCredentials("key", "secret", ""),
	})
	require.NoError(t, err)
	_, err = s.Save(context.Background(), "", "a.pdf", []byte("%PDF"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindTransient))
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := s3store.New(s3store.Options{})
	assert.True(t, apperr.Is(err, apperr.KindConfig))
}

func TestKeyAndURL(t *testing.T) {
	assert.Equal(t, "a.pdf", s3store.Key("", "a.pdf"))
	assert.Equal(t, "out/a.pdf", s3store.Key("/out/", "a.pdf"))

	s, err := s3store.New(s3store.Options{Bucket: "b", Region: "eu-west-1",
		Credentials: credentials.NewStaticCredentials("k", "s", "")})
	require.NoError(t, err)
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/out/a%20b.pdf", s.URL("out/a b.pdf"))
}
