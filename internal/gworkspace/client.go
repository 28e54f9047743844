// Package gworkspace adapts Google Sheets, Drive and Gmail to the invoice
// pipeline.
package gworkspace

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultExportBase is where spreadsheets are rendered to PDF.
const DefaultExportBase = "https://docs.google.com"

// Scopes requested for every credential.
var Scopes = []string{
	sheets.SpreadsheetsScope,
	drive.DriveScope,
	gmail.GmailSendScope,
}

// Options configure a Client.
type Options struct {
	// CredentialsFile is a service-account or authorized-user JSON key.
	// Empty means application default credentials.
	CredentialsFile string
	// Subject is the user a service account impersonates (domain-wide
	// delegation). Needed for Gmail with a service account.
	Subject string

	// HTTPClient and Endpoint replace authentication and the API host.
	HTTPClient *http.Client
	Endpoint   string
	ExportBase string
}

// Client talks to the Workspace APIs.
type Client struct {
	sheets     *sheets.Service
	drive      *drive.Service
	gmail      *gmail.Service
	http       *http.Client
	exportBase string
	log        *slog.Logger
}

// New authenticates and builds the API services.
func New(ctx context.Context, opts Options, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	hc := opts.HTTPClient
	if hc == nil {
		ts, err := tokenSource(ctx, opts)
		if err != nil {
			return nil, err
		}
		hc = oauth2.NewClient(ctx, oauth2.ReuseTokenSource(nil, ts))
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(hc)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	sheetsSvc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("sheets.NewService: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("drive.NewService: %w", err)
	}
	gmailSvc, err := gmail.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService: %w", err)
	}

	exportBase := opts.ExportBase
	if exportBase == "" {
		exportBase = DefaultExportBase
	}
	return &Client{
		sheets:     sheetsSvc,
		drive:      driveSvc,
		gmail:      gmailSvc,
		http:       hc,
		exportBase: exportBase,
		log:        log,
	}, nil
}

func tokenSource(ctx context.Context, opts Options) (oauth2.TokenSource, error) {
	if opts.CredentialsFile == "" {
		creds, err := google.FindDefaultCredentials(ctx, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("finding default credentials (set google.credentials_file or GOOGLE_APPLICATION_CREDENTIALS): %w", err)
		}
		return creds.TokenSource, nil
	}

	data, err := os.ReadFile(opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	if opts.Subject != "" {
		cfg, err := google.JWTConfigFromJSON(data, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("parsing service account key: %w", err)
		}
		cfg.Subject = opts.Subject
		return cfg.TokenSource(ctx), nil
	}
	creds, err := google.CredentialsFromJSON(ctx, data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	return creds.TokenSource, nil
}
