package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestNewWithEnv_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithEnv(env(map[string]string{"LOG_LEVEL": "debug", "LOG_FORMAT": "JSON"}), &buf)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l.WithField("cell", "1:2").Debug("hello")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "1:2", entry["cell"])
}

func TestNewWithEnv_Defaults(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithEnv(env(nil), &buf)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	_, isText := l.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)

	l = NewWithEnv(env(map[string]string{"LOG_LEVEL": "loud"}), &buf)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}
