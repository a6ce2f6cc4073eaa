package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/internal/testutil"
)

var _ logging.Logger = (*testutil.MockLogger)(nil)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	v, ok := messages[0].Field("key")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	logger.Clear()
	assert.Empty(t, logger.GetMessages())

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_ChildrenShareSink(t *testing.T) {
	root := testutil.NewMockLogger()
	child := root.Named("coverage").With(logging.String("platform_id", "lawyers")).Named("cache")

	child.Warn("miss", logging.Int("n", 1))

	e, ok := root.Find("warn", "miss")
	require.True(t, ok)
	assert.Equal(t, "coverage.cache", e.Logger)
	p, _ := e.Field("platform_id")
	assert.Equal(t, "lawyers", p)
	n, _ := e.Field("n")
	assert.Equal(t, 1, n)
}
