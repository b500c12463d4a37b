package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestComponentAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})
	defer Init(Config{})

	log := Component("recall.cf")
	log.Debug().Msg("no neighbors")
	if !strings.Contains(buf.String(), `"component":"recall.cf"`) {
		t.Errorf("missing component field: %s", buf.String())
	}

	buf.Reset()
	ctx := WithRequestID(context.Background(), "req-1")
	Ctx(ctx).Info().Msg("served")
	if !strings.Contains(buf.String(), `"request_id":"req-1"`) {
		t.Errorf("missing request_id field: %s", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	defer Init(Config{})

	l := Logger()
	l.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info must be filtered at warn level, got %s", buf.String())
	}
}
