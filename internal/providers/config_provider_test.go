package providers

import (
	"os"
	"path/filepath"
	"portal/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
webServer:
  host: 127.0.0.1
  port: 8090
persistence:
  filePath: /tmp/portal.dat
  saveInterval: 15s
logger:
  level: debug
  mode: 420
  dir: /tmp
store:
  driver: memory
cache:
  enabled: true
  size: 4
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewConfigProvider_ReadsFileAndDefaults(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, 8090, conf.WebServer.Port)
	assert.Equal(t, 15*time.Second, conf.Persistence.SaveInterval)
	assert.Equal(t, "memory", conf.Store.Driver)
	assert.Equal(t, "portal:", conf.Store.Redis.KeyPrefix)
	assert.Equal(t, []string{"archives"}, conf.Store.Redis.ShardedRoots)
	assert.Equal(t, []string{"residents", "staff", "users"}, conf.Archive.IdentityEntities)
	assert.Equal(t, "photoPublicId", conf.Archive.AssetPreviewField)
	assert.Equal(t, 30*time.Second, conf.Cache.TTL)
	assert.True(t, conf.Debug)
	assert.Equal(t, path, conf.Path)
}

func TestNewConfigProvider_EnvOverride(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("PORTAL_LOG_LEVEL", "warn")

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "warn", conf.Logger.Level)
}

func TestNewConfigProvider_MissingFile(t *testing.T) {
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}

func TestNewConfigProvider_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "webServer:\n  host: \"\"\n")
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	assert.Error(t, err)
}
