package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerDefaultsToNoOp(t *testing.T) {
	// Must be usable before Initialize without panicking
	assert.NotNil(t, Logger)
	Logger.Debugw("no-op logger accepts calls", "key", "value")
}

func TestInitialize(t *testing.T) {
	err := Initialize(true)
	require.NoError(t, err)
	assert.True(t, JSONOutput)
	assert.NotNil(t, Logger)

	err = Initialize(false)
	require.NoError(t, err)
	assert.False(t, JSONOutput)
}
