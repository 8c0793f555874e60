package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nainya/copyforge/pkg/drift"
	"github.com/nainya/copyforge/pkg/facts"
)

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("copyforge %v failed: %v (stderr: %s)", args, err, errOut.String())
	}
	return out.String()
}

func TestCorrectCommand(t *testing.T) {
	out := execute(t, "Enjoy 15% off until March 20.\n",
		"correct", "--json", "--value", "20%", "--date", "March 15")

	var res drift.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, out)
	}
	if !res.Drifted {
		t.Fatal("Expected drift")
	}
	if res.Text != "Enjoy 20% off until March 15." {
		t.Errorf("Unexpected corrected text %q", res.Text)
	}
	if len(res.Corrections) != 2 {
		t.Errorf("Expected numeric and date corrections, got %+v", res.Corrections)
	}
}

func TestFactsCommand(t *testing.T) {
	out := execute(t, "", "facts", "--json", "New customers only: $15 off through 3/15/2025")

	var lf facts.LockedFacts
	if err := json.Unmarshal([]byte(out), &lf); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, out)
	}
	if lf.Numeric == nil || lf.Numeric.String() != "$15" {
		t.Errorf("Expected $15, got %+v", lf.Numeric)
	}
	if lf.Expires == nil || lf.Expires.Year != 2025 || lf.Expires.Day != 15 {
		t.Errorf("Expected 2025-03-15, got %+v", lf.Expires)
	}
	if lf.Restricted == nil || !*lf.Restricted {
		t.Error("Expected restriction detected")
	}
}

func TestRejectsBadLockedValue(t *testing.T) {
	rootCmd.SetIn(strings.NewReader("text"))
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"correct", "--value", "lots"})
	if err := rootCmd.Execute(); err == nil {
		t.Error("Expected error for unparseable --value")
	}
	lockValue = ""
}
