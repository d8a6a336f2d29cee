package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesToOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLogger(WithOutput(buf), WithLevel(DebugLevel))

	l.Info().Str("key", "value").Msg("hello")
	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "value")
}

func TestLoggerLevelFilters(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLogger(WithOutput(buf), WithLevel(WarnLevel))

	l.Debug().Msg("quiet")
	assert.Empty(t, buf.String())

	l.Error().Msg("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestSetDefaultSwapsStd(t *testing.T) {
	old := Default()
	defer SetDefault(old)

	buf := &bytes.Buffer{}
	SetDefault(NewLogger(WithOutput(buf)))
	Info().Msg("routed")
	assert.Contains(t, buf.String(), "routed")
}
