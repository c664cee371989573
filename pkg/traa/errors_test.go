package traa

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode(t *testing.T) {
	tests := []struct {
		code     Code
		sentinel error
		name     string
	}{
		{CodeUnknown, ErrUnknown, "unknown error"},
		{CodeInvalidArgument, ErrInvalidArgument, "invalid argument"},
		{CodeNotSupported, ErrNotSupported, "not supported"},
		{CodeTimedOut, ErrTimedOut, "timed out"},
		{CodeAlreadyExists, ErrAlreadyExists, "already exists"},
		{CodeNotFound, ErrNotFound, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.code.String())
			assert.Equal(t, tt.sentinel, tt.code.Err())
		})
	}

	t.Run("none has no error", func(t *testing.T) {
		assert.Equal(t, "none", CodeNone.String())
		assert.NoError(t, CodeNone.Err())
	})

	t.Run("out of range codes", func(t *testing.T) {
		assert.Equal(t, "code(99)", Code(99).String())
		assert.Equal(t, ErrUnknown, Code(99).Err())
	})
}

func TestError(t *testing.T) {
	err := result("init", int32(CodeInvalidArgument))

	require.Error(t, err)
	assert.Equal(t, "traa init: invalid argument (code 2)", err.Error())
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NotErrorIs(t, err, ErrInvalidState)

	wrapped := fmt.Errorf("startup: %w", err)
	assert.Equal(t, CodeInvalidArgument, CodeOf(wrapped))

	assert.NoError(t, result("init", 0))
	assert.Equal(t, CodeNone, CodeOf(nil))
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("boom")))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"trace", LogLevelTrace, false},
		{"DEBUG", LogLevelDebug, false},
		{"", LogLevelInfo, false},
		{"warning", LogLevelWarn, false},
		{" error ", LogLevelError, false},
		{"critical", LogLevelFatal, false},
		{"off", LogLevelOff, false},
		{"verbose", LogLevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLogLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}

	assert.Equal(t, "warn", LogLevelWarn.String())
	assert.Equal(t, "level(9)", LogLevel(9).String())
}

func TestLogConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultLogConfig().Validate())
	assert.NoError(t, LogConfig{Level: LogLevelOff}.Validate(), "console config ignores size limits")

	cfg := DefaultLogConfig()
	cfg.File = "traa.log"
	assert.NoError(t, cfg.Validate())

	cfg.MaxFiles = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidArgument)

	assert.ErrorIs(t, LogConfig{Level: -1}.Validate(), ErrInvalidArgument)

	t.Run("limits beyond int32 are rejected", func(t *testing.T) {
		if strconv.IntSize == 32 {
			t.Skip("int cannot exceed int32 on this platform")
		}
		var wide int64 = 1 << 32

		cfg := DefaultLogConfig()
		cfg.File = "traa.log"
		cfg.MaxSize = math.MaxInt32
		assert.NoError(t, cfg.Validate())

		cfg.MaxSize = int(wide)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidArgument)

		cfg.MaxSize = DefaultLogMaxSize
		cfg.MaxFiles = int(wide >> 1)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidArgument)

		assert.ErrorIs(t, LogConfig{MaxSize: int(wide)}.Validate(), ErrInvalidArgument, "console config still crosses as int32")
	})
}
