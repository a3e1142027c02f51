package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info", false)
	require.NoError(t, err)
	Component(l, "scan").Info("hello")
	Component(l, "scan").Debug("hidden")
	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "component=scan")
	assert.NotContains(t, out, "hidden")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "debug", true)
	require.NoError(t, err)
	Component(l, "store").WithField("tenant", "acme").Debug("saved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "saved", entry["msg"])
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "acme", entry["tenant"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNew_DefaultAndInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "", false)
	require.NoError(t, err)
	assert.Equal(t, "warning", l.GetLevel().String())

	_, err = New(&buf, "loud", false)
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error("dropped") })
}
