package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("AI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load(writeConfig(t, "ai:\n  apiKey: k\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, BackendNone, cfg.Storage.Backend)
	assert.Equal(t, "grant:analysis:", cfg.Storage.Prefix)
	assert.Equal(t, 100, cfg.Storage.ScanCount)
	assert.Equal(t, 60, cfg.AI.TimeoutSeconds)
	assert.True(t, cfg.StrictEnums())
	assert.Nil(t, cfg.AI.Temperature)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "groq")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load(writeConfig(t, "server:\n  port: 1234\nai:\n  strictEnums: false\n  temperature: 0\n"))
	require.NoError(t, err)

	assert.Equal(t, "groq", cfg.AI.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.False(t, cfg.StrictEnums())
	require.NotNil(t, cfg.AI.Temperature)
	assert.Zero(t, *cfg.AI.Temperature)
	assert.NoError(t, cfg.Validate())

	t.Setenv("AI_API_KEY", "generic")
	cfg, err = Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "generic", cfg.AI.APIKey)
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("AI_API_KEY", "k")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.AI.APIKey)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [oops"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("AI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("REDIS_URL", "")

	cases := map[string]string{
		"missing key":     "storage:\n  backend: none\n",
		"unknown backend": "ai:\n  apiKey: k\nstorage:\n  backend: etcd\n",
		"redis no url":    "ai:\n  apiKey: k\nstorage:\n  backend: redis\n",
		"mysql no host":   "ai:\n  apiKey: k\nstorage:\n  backend: mysql\n",
		"minio no bucket": "ai:\n  apiKey: k\nminio:\n  enabled: true\n  endpoint: s3:9000\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, body))
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDSNs(t *testing.T) {
	var cfg Config
	cfg.Database.Host = "db"
	cfg.Database.User = "app"
	cfg.Database.Password = "p@ss"
	cfg.Database.Name = "grants"
	cfg.applyDefaults()

	assert.Equal(t, "app:p@ss@tcp(db:3306)/grants?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
	assert.Equal(t, "postgres://app:p%40ss@db:5432/grants?sslmode=disable", cfg.PostgresDSN())
}
