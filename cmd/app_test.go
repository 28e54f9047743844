package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/Tiliavir/monthly-invoicer/internal/config"
	"github.com/Tiliavir/monthly-invoicer/internal/gworkspace"
	"github.com/Tiliavir/monthly-invoicer/internal/msgraph"
	"github.com/Tiliavir/monthly-invoicer/internal/store"
)

func newTestApp(t *testing.T, settings config.Settings) *app {
	t.Helper()
	ctx := context.Background()
	db, err := store.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	g, err := gworkspace.New(ctx, gworkspace.Options{
		HTTPClient: http.DefaultClient,
		Endpoint:   "http://127.0.0.1:0/",
	}, nil)
	if err != nil {
		t.Fatalf("gworkspace.New: %v", err)
	}
	return &app{
		settings: settings,
		loc:      time.UTC,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		db:       db,
		props:    store.NewProperties(db),
		triggers: store.NewTriggers(db),
		runs:     store.NewRuns(db),
		google:   g,
	}
}

func TestService_OutlookWithoutToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ctx := context.Background()
	a := newTestApp(t, config.Settings{
		Notify:  config.NotifySettings{Backend: config.NotifyOutlook},
		Outlook: config.OutlookSettings{TenantID: config.DefaultTenantID, ClientID: config.DefaultClientID},
		Output:  config.OutputSettings{Backend: config.OutputDrive},
	})

	if _, err := a.notifier(ctx, a.google); !errors.Is(err, msgraph.ErrNotAuthenticated) {
		t.Fatalf("notifier() error = %v, want ErrNotAuthenticated", err)
	}

	svc, err := a.service(ctx)
	if err != nil {
		t.Fatalf("service() with no Outlook token: %v", err)
	}
	if svc == nil {
		t.Fatal("service() returned nil")
	}
}

func TestUnavailableNotifier(t *testing.T) {
	cause := errors.New("not signed in")
	n := unavailableNotifier{err: cause}
	if err := n.Send(context.Background(), "me@example.com", "subject", "body"); !errors.Is(err, cause) {
		t.Errorf("Send() = %v, want %v", err, cause)
	}
}

func TestService_UnknownOutputStillFails(t *testing.T) {
	a := newTestApp(t, config.Settings{
		Notify: config.NotifySettings{Backend: config.NotifyNone},
		Output: config.OutputSettings{Backend: "ftp"},
	})
	if _, err := a.service(context.Background()); err == nil {
		t.Error("service() with unknown output backend should fail")
	}
}
