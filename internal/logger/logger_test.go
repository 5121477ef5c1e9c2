package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewLogger(t *testing.T) {
	testCases := []struct {
		name          string
		loglevel      string
		logformat     string
		expectedError error
	}{
		{
			name:      "text logger",
			loglevel:  "INFO",
			logformat: "text",
		},
		{
			name:      "json logger",
			loglevel:  "INFO",
			logformat: "json",
		},
		{
			name:      "tint logger, lower case level",
			loglevel:  "debug",
			logformat: "tint",
		},
		{
			name:          "invalid log format",
			loglevel:      "INFO",
			logformat:     "invalid format",
			expectedError: ErrLoggerInvalidLogFormat,
		},
		{
			name:          "invalid log level",
			loglevel:      "INVALID_LEVEL",
			logformat:     "text",
			expectedError: ErrLoggerInvalidLogLevel,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var buf bytes.Buffer

			// when
			sut, err := NewLogger(tc.loglevel, tc.logformat, WithWriter(&buf))

			// then
			assert.ErrorIs(t, err, tc.expectedError)
			if tc.expectedError != nil {
				return
			}

			sut.Info("test")
			assert.True(t, sut.Enabled(context.Background(), slog.LevelInfo))
			assert.Contains(t, buf.String(), "test")
		})
	}
}

func Test_NewLogger_Trace(t *testing.T) {
	// given
	var buf bytes.Buffer
	sut, err := NewLogger("TRACE", "json", WithWriter(&buf))
	require.NoError(t, err)

	// when
	sut.Log(context.Background(), LevelTrace, "frame received")

	// then
	assert.Contains(t, buf.String(), `"level":"TRACE"`)
	assert.Contains(t, buf.String(), "frame received")
}

func Test_NewLogger_TraceDisabled(t *testing.T) {
	// given
	var buf bytes.Buffer
	sut, err := NewLogger("DEBUG", "text", WithWriter(&buf))
	require.NoError(t, err)

	// when
	sut.Log(context.Background(), LevelTrace, "frame received")

	// then
	assert.Empty(t, buf.String())
}
