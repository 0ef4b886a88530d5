package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParsesLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, "debug", false)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l = NewWithOutput(&buf, "loud", false)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.Contains(t, buf.String(), "unknown log level")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, "info", true)
	l.WithField("symbol", "NVDA").Info("downloaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "NVDA", entry["symbol"])
	assert.Equal(t, "downloaded", entry["msg"])
}
