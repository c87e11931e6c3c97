package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "bookmarkd.yml")
	err := os.WriteFile(filename, []byte(`
address: "localhost:8080"
secret_key: "file-secret"
session:
  token_ttl: 24h
screenshot:
  workers: 4
`), 0o600)
	require.NoError(t, err)

	t.Setenv("BOOKMARKD_SECRET_KEY", "env-secret")
	t.Setenv("BOOKMARKD_SCREENSHOT__APIFLASH_KEY", "apiflash")

	konf, err := load(filename)
	require.NoError(t, err)
	require.NoError(t, validate(konf))

	assert.Equal(t, "localhost:8080", konf.String("address"))
	assert.Equal(t, "env-secret", konf.String("secret_key"))
	assert.Equal(t, "apiflash", konf.String("screenshot.apiflash_key"))
	assert.Equal(t, 24*time.Hour, konf.Duration("session.token_ttl"))
	assert.Equal(t, 4, konf.Int("screenshot.workers"))
	// Defaults
	assert.Equal(t, 64, konf.Int("screenshot.queue"))
	assert.Equal(t, 10*time.Minute, konf.Duration("redis.ttl"))
	assert.False(t, konf.Bool("no_registration"))
}

func TestValidate(t *testing.T) {
	konf, err := load("")
	require.NoError(t, err)
	assert.EqualError(t, validate(konf), "secret_key not found")

	t.Setenv("BOOKMARKD_SECRET_KEY", "secret")
	t.Setenv("BOOKMARKD_REDIS__TTL", "forever")
	konf, err = load("")
	require.NoError(t, err)
	assert.Error(t, validate(konf))
}

func TestKDF(t *testing.T) {
	k1 := kdf(32, []byte("secret"))
	assert.Len(t, k1, 32)
	assert.Equal(t, k1, kdf(32, []byte("secret")))
	assert.NotEqual(t, k1, kdf(32, []byte("another")))
}

func TestDBNameWithPath(t *testing.T) {
	assert.Equal(t, "bookmarkd.db", dbnameWithPath(""))
	assert.Equal(t, filepath.Join("/var/lib", "bookmarkd.db"), dbnameWithPath("/var/lib"))
}
