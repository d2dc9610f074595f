package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	logger, err := New("debug")
	require.NoError(t, err)
	assert.True(t, logger.V(DEBUG).Enabled())

	logger, err = New("info")
	require.NoError(t, err)
	assert.True(t, logger.Enabled())
	assert.False(t, logger.V(DEBUG).Enabled())
	Sync(logger)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("chatty")
	assert.Error(t, err)
}
