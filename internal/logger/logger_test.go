package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(line, &m); err != nil {
			t.Fatalf("Log line is not JSON: %s", line)
		}
		out = append(out, m)
	}
	return out
}

func TestStudioLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Level: "debug", Output: &buf})

	l.StudioLogger("offer").LogGeneration("v-1", 3, 2, 15*time.Millisecond, nil)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	got := lines[0]
	if got["service"] != "copyforge" || got["component"] != "studio" || got["tool"] != "offer" {
		t.Errorf("Missing scope fields: %v", got)
	}
	if got["drift_corrections"] != float64(2) {
		t.Errorf("Expected drift_corrections=2, got %v", got["drift_corrections"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Level: "warn", Output: &buf})

	l.ExportLogger("v-1").LogExportItem("i-1", "01-a.txt", time.Millisecond, "")
	l.ExportLogger("v-1").LogExportItem("i-2", "", time.Millisecond, "fetch failed")
	l.GrpcLogger("/copyforge.v1.Studio/Generate").LogGrpcRequest("OK", time.Millisecond, nil)
	l.GrpcLogger("/copyforge.v1.Studio/Generate").LogGrpcRequest("Unavailable", time.Millisecond, errors.New("boom"))

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("Expected debug and ok lines filtered, got %d lines", len(lines))
	}
	if lines[0]["reason"] != "fetch failed" || lines[0]["level"] != "warn" {
		t.Errorf("Unexpected export failure line: %v", lines[0])
	}
	if lines[1]["level"] != "error" || lines[1]["error"] != "boom" || lines[1]["code"] != "Unavailable" {
		t.Errorf("Unexpected grpc line: %v", lines[1])
	}
	if lines[1]["component"] != "grpc" || lines[1]["method"] != "/copyforge.v1.Studio/Generate" {
		t.Errorf("Expected grpc scope fields: %v", lines[1])
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("nonsense").String() != "info" {
		t.Error("Unknown levels should fall back to info")
	}
	if ParseLevel("debug").String() != "debug" {
		t.Error("Expected debug level")
	}
}
