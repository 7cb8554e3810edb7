package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguamentor/backend/internal/config"
)

func TestNewParsesLevel(t *testing.T) {
	log := New(config.LogConfig{Level: "debug"}, "")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = New(config.LogConfig{Level: "nonsense"}, "")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewAddsServiceField(t *testing.T) {
	log := New(config.LogConfig{Level: "info", Format: "json"}, "voice-worker")

	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.WithField("queue", "voice_analysis").Info("consuming")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "voice-worker", entry["service"])
	assert.Equal(t, "voice_analysis", entry["queue"])
}

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	log := New(config.LogConfig{Level: "info", Filename: path, MaxSize: 1}, "api")
	log.Info("hello")

	assert.FileExists(t, path)
}
