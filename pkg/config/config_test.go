package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/redline/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 12.0, cfg.Placement.TextClearance)
	assert.Equal(t, 6.0, cfg.Placement.MeasurementClearance)
	assert.Equal(t, 4.0, cfg.Placement.Margin)
	assert.Equal(t, CacheFile, cfg.Cache.Backend)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestDecodeOverlaysDefaults(t *testing.T) {
	cfg := Default()
	err := Decode(`
[placement]
margin = 8

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "2h"

[server]
read_timeout = "5s"
`, &cfg)
	require.NoError(t, err)
	assert.Equal(t, 8.0, cfg.Placement.Margin)
	assert.Equal(t, 12.0, cfg.Placement.TextClearance, "unset keys keep defaults")
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL.Duration)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout.Duration)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		code errors.Code
	}{
		{"syntax", "[placement\nmargin = 1", errors.ErrCodeInvalidFormat},
		{"unknown key", "[placement]\npadding = 1", errors.ErrCodeInvalidFormat},
		{"bad backend", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidInput},
		{"redis without addr", "[cache]\nbackend = \"redis\"", errors.ErrCodeInvalidInput},
		{"mongo without uri", "[store]\nbackend = \"mongo\"", errors.ErrCodeInvalidInput},
		{"negative margin", "[placement]\nmargin = -1", errors.ErrCodeInvalidInput},
		{"bad duration", "[server]\nread_timeout = \"soon\"", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := Decode(tt.text, &cfg)
			assert.True(t, errors.Is(err, tt.code), "got %v, want %s", err, tt.code)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err, "missing default file is fine")
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	path, err := DefaultPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[store]\nbackend = \"file\"\n"), 0o644))

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, StoreFile, cfg.Store.Backend)
}

func TestEncodeRoundTrip(t *testing.T) {
	want := Default()
	want.Cache.TTL = Duration{36 * time.Hour}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, want))

	got := Config{}
	require.NoError(t, Decode(buf.String(), &got))
	assert.Equal(t, want, got)
}
