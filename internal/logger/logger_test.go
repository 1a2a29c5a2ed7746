package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNew_LevelParsing(t *testing.T) {
	log, err := New("debug", "production")
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New("", "development")
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))

	_, err = New("loud", "development")
	assert.Error(t, err)
}
