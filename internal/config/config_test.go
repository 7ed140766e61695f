package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("KATABASIS_HOME", home)
	for _, k := range []string{"KATABASIS_PROFILE", "KATABASIS_BASE_URL", "KATABASIS_PERSONA", "KATABASIS_REQUEST_TIMEOUT", "KATABASIS_CREDENTIAL_STORE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return home
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	home := setHome(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".katabasis"), cfg.Dir())
	assert.FileExists(t, filepath.Join(home, ".katabasis", "config.yaml"))
	assert.Equal(t, DefaultProfileName, cfg.CurrentName())
	assert.Equal(t, DefaultProfile(), cfg.Current())
}

func TestLoadConfigReadsYAML(t *testing.T) {
	home := setHome(t)
	dir := filepath.Join(home, ".katabasis")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
active_profile: staging
profiles:
  staging:
    base_url: https://staging.example.com
    persona: ferryman
    request_timeout: 5s
    credential_store: sqlite
  local:
    base_url: http://127.0.0.1:9000
`), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"local", "staging"}, cfg.ProfileNames())
	assert.Equal(t, Profile{
		BaseURL:         "https://staging.example.com",
		Persona:         "ferryman",
		RequestTimeout:  5 * time.Second,
		CredentialStore: "sqlite",
	}, cfg.Current())

	require.NoError(t, cfg.Use("local"))
	p := cfg.Current()
	assert.Equal(t, "http://127.0.0.1:9000", p.BaseURL)
	assert.Equal(t, DefaultPersona, p.Persona)
	assert.Equal(t, DefaultRequestTimeout, p.RequestTimeout)
	assert.Equal(t, filepath.Join(dir, "profiles", "local"), cfg.CredentialDir())
	assert.Equal(t, "staging", cfg.ActiveProfile, "Use does not change the active profile")
}

func TestLoadConfigMalformed(t *testing.T) {
	home := setHome(t)
	dir := filepath.Join(home, ".katabasis")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("profiles: [unclosed"), 0600))

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "failed to load config")
}

func TestEnvOverrides(t *testing.T) {
	setHome(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.AddProfile("other", Profile{BaseURL: "http://other:1"}))
	require.NoError(t, cfg.Save())

	t.Setenv("KATABASIS_PROFILE", "other")
	t.Setenv("KATABASIS_PERSONA", "shade")
	t.Setenv("KATABASIS_REQUEST_TIMEOUT", "2s")
	t.Setenv("KATABASIS_CREDENTIAL_STORE", "sqlite")

	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.CurrentName())
	p := cfg.Current()
	assert.Equal(t, "http://other:1", p.BaseURL)
	assert.Equal(t, "shade", p.Persona)
	assert.Equal(t, 2*time.Second, p.RequestTimeout)
	assert.Equal(t, "sqlite", p.CredentialStore)

	require.NoError(t, cfg.Save())
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.Profiles["other"].Persona, "overrides are never persisted")
}

func TestEnvOverridesInvalid(t *testing.T) {
	setHome(t)
	t.Setenv("KATABASIS_REQUEST_TIMEOUT", "soon")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "parse env:")

	os.Unsetenv("KATABASIS_REQUEST_TIMEOUT")
	t.Setenv("KATABASIS_PROFILE", "missing")
	_, err = LoadConfig()
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfileLifecycle(t *testing.T) {
	setHome(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.NoError(t, cfg.AddProfile("prod", Profile{BaseURL: "https://api.example.com"}))
	assert.ErrorIs(t, cfg.AddProfile("prod", Profile{BaseURL: "https://api.example.com"}), ErrProfileExists)
	require.NoError(t, cfg.SetActive("prod"))
	require.NoError(t, cfg.UpdateProfile("prod", Profile{BaseURL: "https://api2.example.com"}))
	assert.ErrorIs(t, cfg.UpdateProfile("nope", Profile{BaseURL: "https://x"}), ErrProfileNotFound)
	require.NoError(t, cfg.Save())

	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.ActiveProfile)
	assert.Equal(t, "https://api2.example.com", cfg.Current().BaseURL)

	require.NoError(t, cfg.DeleteProfile("prod"))
	assert.Equal(t, DefaultProfileName, cfg.ActiveProfile)
	require.NoError(t, cfg.DeleteProfile(DefaultProfileName))
	assert.Equal(t, []string{DefaultProfileName}, cfg.ProfileNames(), "last profile is recreated")
	assert.ErrorIs(t, cfg.DeleteProfile("nope"), ErrProfileNotFound)
}

func TestProfileValidate(t *testing.T) {
	assert.NoError(t, DefaultProfile().Validate())
	assert.Error(t, Profile{BaseURL: "ftp://example.com"}.Validate())
	assert.Error(t, Profile{BaseURL: "http://"}.Validate())
	assert.Error(t, Profile{BaseURL: "http://x", CredentialStore: "keychain"}.Validate())
	assert.Error(t, Profile{BaseURL: "http://x", RequestTimeout: -time.Second}.Validate())
}
