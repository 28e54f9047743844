package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Settings is the local, per-machine configuration stored in
// ~/.invoicer/config.json. It says how to reach the external services; the
// business values (sheet IDs, payee, cells) live in the property store.
// The file supports single-line // comments for documentation purposes.
type Settings struct {
	// Timezone is the IANA business time zone used for "today" and sheet dates.
	Timezone string `json:"timezone"`
	// Database is the SQLite file holding properties, triggers and run history.
	Database string          `json:"database"`
	Google   GoogleSettings  `json:"google"`
	Notify   NotifySettings  `json:"notify"`
	Outlook  OutlookSettings `json:"outlook"`
	Output   OutputSettings  `json:"output"`
	S3       S3Settings      `json:"s3"`
	Trigger  TriggerSettings `json:"trigger"`
}

// GoogleSettings selects the Google credentials.
type GoogleSettings struct {
	// CredentialsFile is a service account or authorized-user JSON file.
	// Empty means Application Default Credentials.
	CredentialsFile string `json:"credentials_file"`
	// Subject is the user a service account impersonates (domain-wide delegation).
	Subject string `json:"subject"`
}

// NotifySettings selects the mail backend: "gmail", "outlook" or "none".
type NotifySettings struct {
	Backend string `json:"backend"`
}

// OutlookSettings holds Microsoft Graph settings for the outlook mail backend.
type OutlookSettings struct {
	TenantID string `json:"tenant_id"`
	ClientID string `json:"client_id"`
}

// OutputSettings selects where finished PDFs go: "drive", "s3" or "local".
type OutputSettings struct {
	Backend string `json:"backend"`
	// LocalDir is the target directory of the local backend.
	LocalDir string `json:"local_dir"`
}

// S3Settings configures the S3-compatible output backend.
type S3Settings struct {
	Bucket   string `json:"bucket"`
	Region   string `json:"region"`
	Endpoint string `json:"endpoint"`
}

// TriggerSettings configures the default daily trigger.
type TriggerSettings struct {
	Hour int `json:"hour"`
}

const (
	DefaultTimezone = "Asia/Tokyo"
	// DefaultTenantID is the Microsoft "common" tenant.
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID, which
	// supports the device code flow without a client secret.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"

	DefaultTriggerHour = 9

	NotifyGmail   = "gmail"
	NotifyOutlook = "outlook"
	NotifyNone    = "none"

	OutputDrive = "drive"
	OutputS3    = "s3"
	OutputLocal = "local"
)

func defaultSettings() Settings {
	return Settings{
		Timezone: DefaultTimezone,
		Notify:   NotifySettings{Backend: NotifyGmail},
		Outlook:  OutlookSettings{TenantID: DefaultTenantID, ClientID: DefaultClientID},
		Output:   OutputSettings{Backend: OutputDrive},
		S3:       S3Settings{Region: "us-east-1"},
		Trigger:  TriggerSettings{Hour: DefaultTriggerHour},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `// invoicer configuration – ~/.invoicer/config.json
//
// Connection settings only. Sheet IDs, folder IDs, payee and cell addresses are
// kept in the property store: see "invoicer props".
{
  // IANA business time zone. Decides what "today" is and how sheet dates are read.
  "timezone": "Asia/Tokyo",

  // SQLite database for properties, triggers and run history.
  // Empty = ~/.invoicer/invoicer.db
  "database": "",

  "google": {
    // Service account or authorized-user JSON. Empty = Application Default Credentials.
    "credentials_file": "",
    // User to impersonate with a service account (needed for Gmail).
    "subject": ""
  },

  // Notification mail backend: "gmail", "outlook" or "none".
  "notify": {
    "backend": "gmail"
  },

  // Microsoft Graph settings for the outlook backend. Sign in with: invoicer auth outlook
  "outlook": {
    "tenant_id": "common",
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab"
  },

  // Where finished PDFs are stored: "drive", "s3" or "local".
  // For s3 the INVOICE_OUTPUT_FOLDER_ID property is used as key prefix.
  "output": {
    "backend": "drive",
    "local_dir": ""
  },

  "s3": {
    "bucket": "",
    "region": "us-east-1",
    "endpoint": ""
  },

  // Hour of day (0-23) used by "invoicer trigger set" when --hour is omitted.
  "trigger": {
    "hour": 9
  }
}
`

// BaseDir returns the root data directory (~/.invoicer).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".invoicer"), nil
}

// DefaultPath returns the path to ~/.invoicer/config.json.
func DefaultPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the settings file at path (DefaultPath when empty), creating it
// with annotated defaults on first run, then applies INVOICER_* environment
// overrides.
func Load(path string) (Settings, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return defaultSettings(), err
		}
		path = p
	}

	cfg := defaultSettings()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return defaultSettings(), fmt.Errorf("reading config file %s: %w", path, err)
	default:
		cfg = Settings{Trigger: TriggerSettings{Hour: -1}}
		if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
			return defaultSettings(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	applyEnv(&cfg)
	fillDefaults(&cfg)

	if _, err := cfg.Location(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// fillDefaults replaces zero values with built-in defaults so callers always
// get a usable Settings even if the file is only partially filled in.
func fillDefaults(cfg *Settings) {
	def := defaultSettings()
	if cfg.Timezone == "" {
		cfg.Timezone = def.Timezone
	}
	if cfg.Database == "" {
		if base, err := BaseDir(); err == nil {
			cfg.Database = filepath.Join(base, "invoicer.db")
		}
	}
	if cfg.Notify.Backend == "" {
		cfg.Notify.Backend = def.Notify.Backend
	}
	if cfg.Outlook.TenantID == "" {
		cfg.Outlook.TenantID = def.Outlook.TenantID
	}
	if cfg.Outlook.ClientID == "" {
		cfg.Outlook.ClientID = def.Outlook.ClientID
	}
	if cfg.Output.Backend == "" {
		cfg.Output.Backend = def.Output.Backend
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = def.S3.Region
	}
	if cfg.Trigger.Hour < 0 || cfg.Trigger.Hour > 23 {
		cfg.Trigger.Hour = def.Trigger.Hour
	}
}

func applyEnv(cfg *Settings) {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	str("INVOICER_TIMEZONE", &cfg.Timezone)
	str("INVOICER_DB", &cfg.Database)
	str("INVOICER_GOOGLE_CREDENTIALS", &cfg.Google.CredentialsFile)
	str("INVOICER_GOOGLE_SUBJECT", &cfg.Google.Subject)
	str("INVOICER_NOTIFY_BACKEND", &cfg.Notify.Backend)
	str("INVOICER_OUTLOOK_TENANT_ID", &cfg.Outlook.TenantID)
	str("INVOICER_OUTLOOK_CLIENT_ID", &cfg.Outlook.ClientID)
	str("INVOICER_OUTPUT_BACKEND", &cfg.Output.Backend)
	str("INVOICER_LOCAL_DIR", &cfg.Output.LocalDir)
	str("INVOICER_S3_BUCKET", &cfg.S3.Bucket)
	str("INVOICER_S3_REGION", &cfg.S3.Region)
	str("INVOICER_S3_ENDPOINT", &cfg.S3.Endpoint)
	if v := os.Getenv("INVOICER_TRIGGER_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 23 {
			cfg.Trigger.Hour = n
		}
	}
}

// Location resolves Timezone.
func (s Settings) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
