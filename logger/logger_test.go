package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(WARN, &buf)

	log.Debug("debug %d", 1)
	log.Info("info %d", 2)
	assert.Empty(t, buf.String())

	log.Warn("warn %d", 3)
	log.Error("error %d", 4)

	out := buf.String()
	assert.Contains(t, out, "[WARN] warn 3")
	assert.Contains(t, out, "[ERROR] error 4")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(ERROR, &buf)

	log.Warn("dropped")
	assert.Empty(t, buf.String())

	log.SetLevel(DEBUG)
	log.Debug("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestOffSilencesEverything(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(OFF, &buf)

	log.Error("should not appear")
	assert.Empty(t, buf.String())
}

func TestDiscardLogger(t *testing.T) {
	log := NewDiscardLogger()
	log.Debug("x")
	log.Info("x")
	log.Warn("x")
	log.Error("x")
	log.SetLevel(DEBUG)
	log.Error("still discarded")
}

func TestDefaultLoggerSwap(t *testing.T) {
	original := GetDefault()
	defer SetDefault(original)

	var buf bytes.Buffer
	SetDefault(NewLogger(DEBUG, &buf))

	Debug("through package func")
	assert.Contains(t, buf.String(), "through package func")
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", DEBUG.String())
	assert.Equal(t, "INFO", INFO.String())
	assert.Equal(t, "WARN", WARN.String())
	assert.Equal(t, "ERROR", ERROR.String())
	assert.Equal(t, "OFF", OFF.String())
}
