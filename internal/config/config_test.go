package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"CHATX_ADDR", "CHATX_SESSION_TTL", "CHATX_SWEEP_INTERVAL", "CHATX_PREVIEW_ROWS",
		"CHATX_MAX_UPLOAD_MB", "CHATX_DELIMITER", "CHATX_STORE", "CHATX_DB_PATH",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()

	cfg, err := LoadFile(Path(home), home)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 100, cfg.PreviewRows)
	assert.Equal(t, 50, cfg.MaxUploadMB)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes())
	assert.Equal(t, ',', cfg.DelimiterRune())
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, filepath.Join(home, ".config", "chatx", "sessions.db"), cfg.DBPath)
}

func TestLoadReadsTOMLFile(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	path := Path(home)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`
addr = "127.0.0.1:9000"
session_ttl = "30m"
sweep_interval = "1m"
preview_rows = 25
delimiter = ";"
store = "sqlite"
db_path = "~/data/chatx.db"
`), 0o644))

	cfg, err := LoadFile(path, home)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, 25, cfg.PreviewRows)
	assert.Equal(t, 50, cfg.MaxUploadMB)
	assert.Equal(t, ';', cfg.DelimiterRune())
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, filepath.Join(home, "data", "chatx.db"), cfg.DBPath)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	path := Path(home)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`addr = ":9000"`), 0o644))

	t.Setenv("CHATX_ADDR", ":7000")
	t.Setenv("CHATX_SESSION_TTL", "2h")
	t.Setenv("CHATX_MAX_UPLOAD_MB", "10")
	t.Setenv("CHATX_DELIMITER", "\t")

	cfg, err := LoadFile(path, home)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, '\t', cfg.DelimiterRune())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad duration":    {"CHATX_SESSION_TTL": "soon"},
		"zero ttl":        {"CHATX_SESSION_TTL": "0s"},
		"negative sweep":  {"CHATX_SWEEP_INTERVAL": "-1m"},
		"bad int":         {"CHATX_PREVIEW_ROWS": "many"},
		"zero preview":    {"CHATX_PREVIEW_ROWS": "0"},
		"zero upload":     {"CHATX_MAX_UPLOAD_MB": "0"},
		"long delimiter":  {"CHATX_DELIMITER": ";;"},
		"quote delimiter": {"CHATX_DELIMITER": `"`},
		"unknown store":   {"CHATX_STORE": "redis"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			home := t.TempDir()
			_, err := LoadFile(Path(home), home)
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	path := Path(home)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`session_ttl = "forever"`), 0o644))

	_, err := LoadFile(path, home)
	assert.ErrorContains(t, err, "session_ttl")
}

func TestParseDelimiter(t *testing.T) {
	for raw, want := range map[string]rune{",": ',', ";": ';', "|": '|', "tab": '\t', `\t`: '\t', "\t": '\t', "§": '§'} {
		got, err := ParseDelimiter(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	for _, raw := range []string{"", ",,", "\n", "\r", `"`} {
		_, err := ParseDelimiter(raw)
		assert.Error(t, err, raw)
	}
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, filepath.Join("/home/u", "x.db"), expandHome("~/x.db", "/home/u"))
	assert.Equal(t, "/abs/x.db", expandHome("/abs/x.db", "/home/u"))
	assert.Equal(t, "~", expandHome("~", "/home/u"))
}
