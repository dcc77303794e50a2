package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithWriterFormats(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("prod", &buf).Info("ready", "port", 8080)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "ready" {
		t.Fatalf("unexpected record %v", record)
	}

	buf.Reset()
	NewWithWriter("dev", &buf).Debug("tick")
	if !strings.Contains(buf.String(), "msg=tick") {
		t.Fatalf("expected text output, got %q", buf.String())
	}
}

func TestProdDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("prod", &buf).Debug("noise")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be dropped in prod, got %q", buf.String())
	}

	NewWithWriter("staging", &buf).Debug("noise")
	if buf.Len() == 0 {
		t.Fatalf("expected debug in staging")
	}
}
