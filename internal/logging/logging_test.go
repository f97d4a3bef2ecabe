package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info", "json")
	require.NoError(t, err)
	l.WithField("root", "/etc").Info("walked")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "walked", entry["msg"])
	assert.Equal(t, "/etc", entry["root"])
}

func TestNew_DefaultsAndErrors(t *testing.T) {
	l, err := New(&bytes.Buffer{}, "", "")
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())

	_, err = New(&bytes.Buffer{}, "loud", "")
	assert.Error(t, err)
	_, err = New(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	l := logrus.New()
	assert.Same(t, l, OrDiscard(l))
}
