package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaults and server URL format.
func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := new(Config)
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultServerURL, cfg.ServerURL)

	cfg = &Config{ServerURL: "http://127.0.0.1:21025/"}
	require.NoError(t, Validate(cfg))
	require.Equal(t, "http://127.0.0.1:21025", cfg.ServerURL)

	for _, bad := range []string{"screeps.com", "ftp://screeps.com", "https://", "://x"} {
		err := Validate(&Config{ServerURL: bad})
		require.ErrorIs(t, err, ErrInvalidServerURL, bad)
	}
}

// TestLoad_RequireToken reports a missing token ahead of a broken settings file.
func TestLoad_RequireToken(t *testing.T) {
	t.Setenv(TokenEnvVar, "  ")
	t.Chdir(t.TempDir())

	require.NoError(t, os.WriteFile(DefaultConfigFilename, []byte("server_url: [unterminated\n"), 0o600))

	cfg, err := Load(&Options{RequireToken: true})
	require.ErrorIs(t, err, ErrTokenRequired)
	require.Nil(t, cfg)

	_, err = Load(nil)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrTokenRequired)

	t.Setenv(TokenEnvVar, "t")
	require.NoError(t, os.Remove(DefaultConfigFilename))

	cfg, err = Load(&Options{RequireToken: true})
	require.NoError(t, err)
	require.Equal(t, "t", cfg.Token)
}

// TestLoad_FromFiles reads the token from a dotenv file and the server from YAML.
func TestLoad_FromFiles(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	require.NoError(t, os.Unsetenv(TokenEnvVar))

	dir := t.TempDir()
	envPath := filepath.Join(dir, "screeps.env")
	cfgPath := filepath.Join(dir, "settings.yaml")

	require.NoError(t, os.WriteFile(envPath, []byte(TokenEnvVar+"=from-dotenv\n"), 0o600))
	require.NoError(t, os.WriteFile(cfgPath, []byte("server_url: http://localhost:21025\n"), 0o600))

	cfg, err := Load(&Options{
		ConfigPath: cfgPath,
		EnvPath:    envPath,
	})
	require.NoError(t, err)
	require.Equal(t, "from-dotenv", cfg.Token)
	require.Equal(t, "http://localhost:21025", cfg.ServerURL)
}

// TestLoad_EnvironmentWinsOverDotenv ensures an exported token is not replaced by the file.
func TestLoad_EnvironmentWinsOverDotenv(t *testing.T) {
	t.Setenv(TokenEnvVar, "exported")

	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(TokenEnvVar+"=from-dotenv\n"), 0o600))

	cfg, err := Load(&Options{EnvPath: envPath, ServerURL: "https://example.com"})
	require.NoError(t, err)
	require.Equal(t, "exported", cfg.Token)
	require.Equal(t, "https://example.com", cfg.ServerURL)
}

// TestLoad_MissingFiles distinguishes absent defaults from absent explicit paths.
func TestLoad_MissingFiles(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultServerURL, cfg.ServerURL)
	require.Empty(t, cfg.Token)

	_, err = Load(&Options{ConfigPath: "missing.yaml"})
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(&Options{EnvPath: "missing.env"})
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestLoad_BadYAML surfaces parse errors.
func TestLoad_BadYAML(t *testing.T) {
	t.Setenv(TokenEnvVar, "x")

	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server_url: [unterminated\n"), 0o600))

	_, err := Load(&Options{ConfigPath: cfgPath})
	require.Error(t, err)
}
