package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

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
	path := writeConfig(t, "server:\n  redisAddr: localhost:6379\n")

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8000", conf.Server.Listen)
	assert.Equal(t, "localhost:6379", conf.Server.RedisAddr)
	assert.Equal(t, "daybook.db", conf.Server.SqlitePath)
	assert.Equal(t, "UTC", conf.Journal.Timezone)
	assert.Equal(t, time.UTC, conf.Journal.Location)
	assert.Equal(t, 15*time.Second, conf.Journal.UpdateTimeout)
	assert.Equal(t, time.Duration(0), conf.Journal.CreateTimeout)
	assert.Equal(t, "daybook", conf.Blob.Bucket)
}

func TestLoadReadsValues(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: ":9000"
  postgresDsn: "host=db user=postgres"
  enableTrace: true
journal:
  updateTimeout: 30s
  createTimeout: 5s
blob:
  endpoint: minio:9000
  bucket: journal
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", conf.Server.Listen)
	assert.Empty(t, conf.Server.SqlitePath)
	assert.True(t, conf.Server.EnableTrace)
	assert.Equal(t, 30*time.Second, conf.Journal.UpdateTimeout)
	assert.Equal(t, 5*time.Second, conf.Journal.CreateTimeout)
	assert.Equal(t, "minio:9000", conf.Blob.Endpoint)
	assert.Equal(t, "journal", conf.Blob.Bucket)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	path := writeConfig(t, "journal:\n  timezone: Mars/Olympus\n")

	_, err := Load(path)
	assert.Error(t, err)
}
