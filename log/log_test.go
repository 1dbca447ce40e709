package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("warn")
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	logger := NewLogger("Test")
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
	if err := SetLevel("INFO"); err != nil {
		t.Fatalf("%v", err)
	}
	logger.Info("shown")
	if !strings.Contains(buf.String(), "shown") || !strings.Contains(buf.String(), "name=Test") {
		t.Errorf("output = %q", buf.String())
	}
	if err := SetLevel("loud"); err == nil {
		t.Errorf("expected error for unknown level")
	}
}

func TestTracer(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	path := filepath.Join(t.TempDir(), "infopipe")
	AddTracer(path)
	NewLogger("Tracer").Warn("traced warning")

	raw, err := os.ReadFile(path + ".warn")
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !strings.Contains(string(raw), `"msg":"traced warning"`) {
		t.Errorf("warn file = %q", raw)
	}
}

func TestTracerAddedOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repeat")
	before := len(base.Hooks[logrus.WarnLevel])
	for i := 0; i < 3; i++ {
		AddTracer(path)
	}
	if got := len(base.Hooks[logrus.WarnLevel]); got != before+1 {
		t.Errorf("warn hooks = %d, want %d", got, before+1)
	}
}
