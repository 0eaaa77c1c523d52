package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/reqlog/pkg/reqlog"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, zapcore.InfoLevel, cfg.Logging.Level)
	assert.Equal(t, reqlog.DefaultName, cfg.Reqlog.Name)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reqlogd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`server:
  port: 9000
  shutdown_timeout: 3s
logging:
  level: debug
  format: console
reqlog:
  format: ":method :url"
  excludes: [req, res]
  request_id:
    generator: ulid
`), 0600))

	t.Setenv("REQLOGD_SERVER_PORT", "9999")
	t.Setenv("REQLOGD_REQLOG_OBFUSCATE", "body.password,req.headers.authorization")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, zapcore.DebugLevel, cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, ":method :url", cfg.Reqlog.Format)
	assert.Equal(t, []string{"req", "res"}, cfg.Reqlog.Excludes)
	assert.Equal(t, []string{"body.password", "req.headers.authorization"}, cfg.Reqlog.Obfuscate)
	assert.Equal(t, reqlog.GeneratorULID, cfg.Reqlog.RequestID.Generator)
	assert.Equal(t, reqlog.DefaultRequestIDField, cfg.Reqlog.RequestID.Field, "unset keys keep defaults")
	assert.True(t, cfg.Reqlog.ParseUA)
}

func TestLoadConfig_ValidationJoinsErrors(t *testing.T) {
	t.Setenv("REQLOGD_LOGGING_FORMAT", "yaml")
	t.Setenv("REQLOGD_REQLOG_REQUEST_ID__GENERATOR", "sequence")

	_, err := loadConfig("")
	require.Error(t, err)
	assert.ErrorContains(t, err, "logging:")
	assert.ErrorContains(t, err, "reqlog:")
	assert.ErrorIs(t, err, reqlog.ErrInvalidConfig)
}
