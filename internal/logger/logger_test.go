package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf, "info", "json")

	log.Info().Str("batch", "2015").Msg("loading workbook")

	output := buf.String()
	if !strings.Contains(output, `"batch":"2015"`) || !strings.Contains(output, "loading workbook") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestNewWithWriter_Level(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf, "warn", "json")

	log.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered, got %s", buf.String())
	}

	if log.GetLevel() != zerolog.WarnLevel {
		t.Errorf("level = %v, want warn", log.GetLevel())
	}
}

func TestNewWithWriter_BadLevelFallsBackToInfo(t *testing.T) {
	log := NewWithWriter(&bytes.Buffer{}, "loud", "console")
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("level = %v, want info", log.GetLevel())
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf, "debug", "json"))

	log := FromContext(ctx)
	log.Debug().Msg("test")

	if buf.Len() == 0 {
		t.Error("expected log output from retrieved logger")
	}
}

func TestFromContext_Default(t *testing.T) {
	log := FromContext(context.Background())
	if log.GetLevel() != zerolog.Disabled {
		t.Errorf("expected a disabled logger, got level %v", log.GetLevel())
	}
}
