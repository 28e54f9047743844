package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tiliavir/monthly-invoicer/internal/apperr"
	"github.com/Tiliavir/monthly-invoicer/internal/config"
	"github.com/Tiliavir/monthly-invoicer/internal/gworkspace"
	"github.com/Tiliavir/monthly-invoicer/internal/invoice"
	"github.com/Tiliavir/monthly-invoicer/internal/msgraph"
	"github.com/Tiliavir/monthly-invoicer/internal/s3store"
	"github.com/Tiliavir/monthly-invoicer/internal/storage"
	"github.com/Tiliavir/monthly-invoicer/internal/store"
	"github.com/Tiliavir/monthly-invoicer/internal/worklog"
)

// app holds what every command needs: settings, the business time zone and
// the SQLite-backed stores.
type app struct {
	settings config.Settings
	loc      *time.Location
	log      *slog.Logger

	db       *sql.DB
	props    *store.Properties
	triggers *store.Triggers
	runs     *store.Runs

	google *gworkspace.Client
}

func openApp() (*app, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	loc, err := settings.Location()
	if err != nil {
		return nil, err
	}
	db, err := store.OpenDB(settings.Database)
	if err != nil {
		return nil, err
	}
	return &app{
		settings: settings,
		loc:      loc,
		log:      slog.Default(),
		db:       db,
		props:    store.NewProperties(db),
		triggers: store.NewTriggers(db),
		runs:     store.NewRuns(db),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// now is the current time in the business time zone.
func (a *app) now() time.Time {
	return time.Now().In(a.loc)
}

func (a *app) resolve(ctx context.Context) (config.Properties, error) {
	return config.Resolve(ctx, a.props)
}

func (a *app) workspace(ctx context.Context) (*gworkspace.Client, error) {
	if a.google != nil {
		return a.google, nil
	}
	c, err := gworkspace.New(ctx, gworkspace.Options{
		CredentialsFile: a.settings.Google.CredentialsFile,
		Subject:         a.settings.Google.Subject,
	}, a.log)
	if err != nil {
		return nil, err
	}
	a.google = c
	return c, nil
}

func (a *app) output(g *gworkspace.Client) (invoice.Output, error) {
	switch a.settings.Output.Backend {
	case config.OutputDrive:
		return g, nil
	case config.OutputS3:
		return s3store.New(s3store.Options{
			Bucket:   a.settings.S3.Bucket,
			Region:   a.settings.S3.Region,
			Endpoint: a.settings.S3.Endpoint,
		})
	case config.OutputLocal:
		return storage.NewLocal(a.settings.Output.LocalDir)
	default:
		return nil, apperr.Config("select output", "output.backend",
			fmt.Sprintf("unknown backend %q (drive, s3, local)", a.settings.Output.Backend))
	}
}

func (a *app) notifier(ctx context.Context, g *gworkspace.Client) (invoice.Notifier, error) {
	switch a.settings.Notify.Backend {
	case config.NotifyGmail:
		return g, nil
	case config.NotifyOutlook:
		file, err := msgraph.DefaultTokenFile()
		if err != nil {
			return nil, err
		}
		return msgraph.Connect(ctx, a.settings.Outlook.TenantID, a.settings.Outlook.ClientID, file)
	case config.NotifyNone:
		return nil, nil
	default:
		return nil, apperr.Config("select notifier", "notify.backend",
			fmt.Sprintf("unknown backend %q (gmail, outlook, none)", a.settings.Notify.Backend))
	}
}

// service wires the invoice pipeline to the configured backends.
func (a *app) service(ctx context.Context) (*invoice.Service, error) {
	g, err := a.workspace(ctx)
	if err != nil {
		return nil, err
	}
	out, err := a.output(g)
	if err != nil {
		return nil, err
	}
	n, err := a.notifier(ctx, g)
	if err != nil {
		a.log.Warn("notifications disabled", "backend", a.settings.Notify.Backend, "error", err)
		n = unavailableNotifier{err: err}
	}
	deps := invoice.Deps{
		Entries:   worklog.NewReader(g, a.loc, a.log),
		Documents: g,
		Exporter:  g,
		Output:    out,
		Archiver:  g,
		Runs:      a.runs,
		Logger:    a.log,
	}
	if n != nil {
		deps.Notifier = n
	}
	return invoice.NewService(deps), nil
}

// unavailableNotifier stands in for a notifier that could not be set up, so
// the invoice is still produced and every skipped mail is logged with the cause.
type unavailableNotifier struct {
	err error
}

func (n unavailableNotifier) Send(context.Context, string, string, string) error {
	return n.err
}
