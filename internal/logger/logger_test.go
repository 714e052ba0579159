package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("run_id", "r-1").Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, "r-1") {
		t.Errorf("expected output to contain run_id field, got: %s", output)
	}
}

func TestFromContextRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("via context")

	if buf.Len() == 0 {
		t.Error("expected log output from logger retrieved via context")
	}
}

func TestFromContextDefault(t *testing.T) {
	log := FromContext(context.Background())
	if log.GetLevel() == zerolog.Disabled {
		t.Error("expected default logger to be enabled")
	}
}
