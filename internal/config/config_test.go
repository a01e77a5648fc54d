package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ARC56_SPEC_PATH", "contract.arc56.json")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:4001", cfg.AlgodURL)
	assert.Equal(t, "contract.arc56.json", cfg.SpecPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, uint64(4), cfg.WaitRounds)
	assert.Equal(t, "none", cfg.StoreDriver)
	assert.Equal(t, 256, cfg.ResolverCacheSize)
	assert.False(t, cfg.CanSign())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ARC56_SPEC_PATH", "contract.arc56.json")
	t.Setenv("ARC56_APP_ID", "1234")
	t.Setenv("ARC56_LOG_LEVEL", "debug")
	t.Setenv("ARC56_STORE_DRIVER", "bolt")
	t.Setenv("ARC56_BOLT_PATH", "/tmp/arc56.db")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, uint64(1234), cfg.AppID)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "bolt", cfg.StoreDriver)
	assert.Equal(t, "/tmp/arc56.db", cfg.BoltPath)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arc56.yaml")
	require.NoError(t, os.WriteFile(path, []byte("spec_path: app.arc56.json\napi_port: 9090\n"), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "app.arc56.json", cfg.SpecPath)
	assert.Equal(t, 9090, cfg.APIPort)

	_, err = Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AlgodURL:          "http://localhost:4001",
			SpecPath:          "c.json",
			LogLevel:          "info",
			LogFormat:         "json",
			WaitRounds:        4,
			StoreDriver:       "none",
			APIPort:           8080,
			ResolverCacheSize: 16,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing spec", func(c *Config) { c.SpecPath = "" }, true},
		{"bad url", func(c *Config) { c.AlgodURL = "not a url" }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"postgres without url", func(c *Config) { c.StoreDriver = "postgres" }, true},
		{"postgres with url", func(c *Config) {
			c.StoreDriver = "postgres"
			c.DatabaseURL = "postgres://localhost/arc56"
		}, false},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mysql" }, true},
		{"port out of range", func(c *Config) { c.APIPort = 70000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
