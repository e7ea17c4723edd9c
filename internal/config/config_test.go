package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CAMPREG_JWT_SECRET", "s3cret")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "campreg.db", c.DBPath)
	assert.Equal(t, KVMemory, c.KVBackend)
	assert.Equal(t, SourceLocal, c.Source)
	assert.Equal(t, 10*time.Second, c.RemoteTimeout)
	assert.Equal(t, time.Duration(0), c.RefreshInterval)
	assert.Equal(t, "970", c.PhoneCC)
	assert.Equal(t, language.Arabic, c.Language())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CAMPREG_JWT_SECRET", "s3cret")
	t.Setenv("CAMPREG_KV_BACKEND", "redis")
	t.Setenv("CAMPREG_REDIS_DB", "3")
	t.Setenv("CAMPREG_SOURCE", "remote")
	t.Setenv("CAMPREG_REMOTE_URL", "http://hq:8080")
	t.Setenv("CAMPREG_REFRESH_INTERVAL", "30s")
	t.Setenv("CAMPREG_LOCALE", "en")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, c.RedisDB)
	assert.Equal(t, "http://hq:8080", c.RemoteURL)
	assert.Equal(t, 30*time.Second, c.RefreshInterval)
	assert.Equal(t, language.English, c.Language())
}

func TestLoad_DevFillsSecret(t *testing.T) {
	t.Setenv("CAMPREG_JWT_SECRET", "")
	t.Setenv("CAMPREG_DEV", "true")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, devSecret, c.JWTSecret)
}

func TestValidate(t *testing.T) {
	c := Config{KVBackend: "etcd", Source: SourceRemote, RemoteRetries: -1, Locale: "ar"}
	err := c.Validate()
	require.Error(t, err)
	for _, want := range []string{"CAMPREG_JWT_SECRET", "CAMPREG_KV_BACKEND", "CAMPREG_REMOTE_URL", "CAMPREG_REMOTE_RETRIES"} {
		assert.Contains(t, err.Error(), want)
	}

	bad := Config{JWTSecret: "x", KVBackend: KVMemory, Source: SourceLocal, Locale: "!!"}
	assert.ErrorContains(t, bad.Validate(), "CAMPREG_LOCALE")
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("CAMPREG_JWT_SECRET", "s3cret")
	t.Setenv("CAMPREG_REMOTE_TIMEOUT", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "parse env")
}
