package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WritesTemplateOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, NotifyGmail, cfg.Notify.Backend)
	assert.Equal(t, OutputDrive, cfg.Output.Backend)
	assert.Equal(t, DefaultTriggerHour, cfg.Trigger.Hour)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, configTemplate, string(data))

	// The template itself must parse to the same defaults.
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := "// comment\n{\n  // another\n  \"output\": {\"backend\": \"s3\"},\n  \"trigger\": {\"hour\": 0}\n}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, OutputS3, cfg.Output.Backend)
	assert.Equal(t, 0, cfg.Trigger.Hour)
	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, DefaultClientID, cfg.Outlook.ClientID)
	assert.NotEmpty(t, cfg.Database)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("INVOICER_TIMEZONE", "UTC")
	t.Setenv("INVOICER_NOTIFY_BACKEND", NotifyNone)
	t.Setenv("INVOICER_TRIGGER_HOUR", "7")
	t.Setenv("INVOICER_DB", "/tmp/x.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, NotifyNone, cfg.Notify.Backend)
	assert.Equal(t, 7, cfg.Trigger.Hour)
	assert.Equal(t, "/tmp/x.db", cfg.Database)
}

func TestLoad_InvalidTriggerHourEnvIgnored(t *testing.T) {
	t.Setenv("INVOICER_TRIGGER_HOUR", "25")
	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultTriggerHour, cfg.Trigger.Hour)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{bad"), 0o600))
	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config file")
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("INVOICER_TIMEZONE", "Mars/Olympus")
	_, err := Load(filepath.Join(t.TempDir(), "config.json"))
	assert.ErrorContains(t, err, "invalid timezone")
}

func TestStripLineComments(t *testing.T) {
	in := []byte("// a\n{\n   // b\n\"k\": \"http://x\"\n}")
	assert.Equal(t, "{\n\"k\": \"http://x\"\n}\n", string(stripLineComments(in)))
}
