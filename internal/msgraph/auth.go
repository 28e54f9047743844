package msgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/monthly-invoicer/internal/apperr"
	"github.com/Tiliavir/monthly-invoicer/internal/config"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/Mail.Send",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// TokenFile is where the Outlook token is kept between runs.
type TokenFile string

// DefaultTokenFile is ~/.invoicer/auth/msgraph_tokens.json.
func DefaultTokenFile() (TokenFile, error) {
	base, err := config.BaseDir()
	if err != nil {
		return "", err
	}
	return TokenFile(filepath.Join(base, "auth", "msgraph_tokens.json")), nil
}

// Load returns the stored token, or nil when none was saved yet.
func (f TokenFile) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(string(f))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", f, err)
	}
	return &tok, nil
}

// Save writes tok atomically with owner-only permissions.
func (f TokenFile) Save(tok *oauth2.Token) error {
	path := string(f)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

func oauth2Config(tenantID, clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   requiredScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: msEndpoint(tenantID, "devicecode"),
			TokenURL:      msEndpoint(tenantID, "token"),
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// Login runs the device code flow, printing the sign-in instructions to out,
// and stores the granted token.
func Login(ctx context.Context, tenantID, clientID string, file TokenFile, out io.Writer) (*oauth2.Token, error) {
	cfg := oauth2Config(tenantID, clientID)

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(out, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(out, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(out)

	tok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := file.Save(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// ErrNotAuthenticated means no token has been stored yet.
var ErrNotAuthenticated = errors.New("not signed in to Outlook (run: invoicer auth outlook)")

// StoredTokenSource refreshes the stored token as needed and writes refreshed
// tokens back. It never prompts, so it is safe for unattended runs.
func StoredTokenSource(ctx context.Context, tenantID, clientID string, file TokenFile) (oauth2.TokenSource, error) {
	tok, err := file.Load()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, "load outlook token", string(file), err)
	}
	if tok == nil {
		return nil, apperr.Wrap(apperr.KindConfig, "load outlook token", string(file), ErrNotAuthenticated)
	}
	ts := oauth2Config(tenantID, clientID).TokenSource(ctx, tok)
	return &savingTokenSource{ts: ts, file: file, last: tok.AccessToken}, nil
}

// savingTokenSource persists a token whenever the wrapped source refreshed it.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	file TokenFile
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		// Best-effort save; the token in memory is still usable.
		_ = s.file.Save(tok)
		s.last = tok.AccessToken
	}
	return tok, nil
}
