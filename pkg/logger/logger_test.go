package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewLevel(t *testing.T) {
	l, err := New("warn")
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zap.InfoLevel) {
		t.Fatal("info must be disabled at warn")
	}
	if !l.Core().Enabled(zap.ErrorLevel) {
		t.Fatal("error must be enabled at warn")
	}

	if _, err := New("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
