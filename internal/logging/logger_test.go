package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"Info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"ERROR", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "unknown", Level(42).String())
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput("warn", &buf)

	logger.Debugf("debug message")
	logger.Infof("info message")
	logger.Warnf("warn message")
	logger.Errorf("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "[WARN] warn message")
	assert.Contains(t, out, "[ERROR] error message")
}

func TestLogger_DebugLevelLogsEverything(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput("debug", &buf)

	logger.Debugf("one %d", 1)
	logger.Infof("two %d", 2)
	logger.Warnf("three %d", 3)
	logger.Errorf("four %d", 4)

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] one 1")
	assert.Contains(t, out, "[INFO] two 2")
	assert.Contains(t, out, "[WARN] three 3")
	assert.Contains(t, out, "[ERROR] four 4")
}

func TestLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput("nonsense", &buf)

	assert.Equal(t, LevelInfo, logger.Level())

	logger.Debugf("hidden")
	logger.Infof("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[INFO] visible")
}

func TestValidLevels(t *testing.T) {
	assert.ElementsMatch(t, []string{"debug", "info", "warn", "error"}, ValidLevels())
}
