package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel(t *testing.T) {
	levels := map[LogLevel]string{
		DEBUG: "debug",
		INFO:  "info",
		WARN:  "warn",
		ERROR: "error",
	}

	for level, str := range levels {
		t.Run("level "+str, func(t *testing.T) {
			var l LogLevel
			require.NoError(t, l.Set(str))
			assert.Equal(t, level, l)
			assert.Equal(t, str, l.String())

			require.NoError(t, l.UnmarshalText([]byte(str)))
			assert.Equal(t, level, l)
		})
	}

	var l LogLevel
	assert.ErrorIs(t, l.Set("blah"), ErrUnknownLogLevel)
}

func TestNew(t *testing.T) {
	for _, format := range []string{"console", "json", "text"} {
		t.Run(format, func(t *testing.T) {
			logger, err := New(INFO, format)
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}

	_, err := New(INFO, "xml")
	assert.ErrorIs(t, err, ErrUnknownLogFormat)
}
