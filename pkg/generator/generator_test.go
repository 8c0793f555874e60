// ABOUTME: Tests for the generator boundary
// ABOUTME: Output parsing, prompt building and the template generator

package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nainya/copyforge/pkg/content"
	"github.com/nainya/copyforge/pkg/facts"
)

func TestParseOutput(t *testing.T) {
	raw := "```json\n{\"slots\":[{\"label\":\"headline\",\"text\":\"Spring sale\"},{\"label\":\"body\",\"text\":\"  \"}]}\n```"
	out, err := ParseOutput(raw)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if len(out.Slots) != 1 || out.Slots[0].Label != "headline" {
		t.Errorf("Expected one non-empty slot, got %+v", out.Slots)
	}

	if _, err := ParseOutput(`{"slots":[]}`); !errors.Is(err, ErrEmptyOutput) {
		t.Errorf("Expected ErrEmptyOutput, got %v", err)
	}
	if _, err := ParseOutput("not json"); err == nil {
		t.Errorf("Expected decode error")
	}
}

func TestBuildPromptIncludesLockedFacts(t *testing.T) {
	brief, _ := content.NewBrief(map[string]any{"business": "Acme"})
	restricted := false
	prompt, err := BuildPrompt(Request{
		Tool:  content.ToolOffer,
		Brief: brief,
		Locked: &facts.LockedFacts{
			Numeric:    &facts.Numeric{Value: 20, Kind: facts.KindPercent},
			Restricted: &restricted,
			CTA:        "Shop now",
		},
	})
	if err != nil {
		t.Fatalf("Failed to build prompt: %v", err)
	}
	for _, want := range []string{"Acme", "headline, body, cta", "20%", "open to all customers", `"Shop now"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q:\n%s", want, prompt)
		}
	}

	if _, err := BuildPrompt(Request{Tool: "poster"}); err == nil {
		t.Errorf("Expected error for unknown tool")
	}
}

func TestTemplateOffer(t *testing.T) {
	brief, _ := content.NewBrief(map[string]any{
		"business":           "Acme",
		"offer":              "20% off",
		"expires":            "March 15",
		"new_customers_only": true,
		"platforms":          []any{"instagram", "x"},
	})

	out, err := Template{}.Generate(context.Background(), Request{Tool: content.ToolOffer, Brief: brief})
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	if len(out.Slots) != 5 {
		t.Fatalf("Expected 5 slots, got %d", len(out.Slots))
	}
	body := out.Slots[1].Text
	if !strings.Contains(body, "20% off") || !strings.Contains(body, "March 15") || !facts.ExtractRestriction(body) {
		t.Errorf("Body missing brief facts: %q", body)
	}
	if out.Slots[4].Label != "post:x" {
		t.Errorf("Expected post:x, got %s", out.Slots[4].Label)
	}
}

func TestTemplateLogo(t *testing.T) {
	brief, _ := content.NewBrief(map[string]any{"business": "Acme", "asset_base_url": "https://img.example/"})
	out, err := Template{}.Generate(context.Background(), Request{Tool: content.ToolLogo, Brief: brief, Count: 3})
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	if len(out.Slots) != 3 {
		t.Fatalf("Expected 3 concepts, got %d", len(out.Slots))
	}
	if out.Slots[0].AssetURL != "https://img.example/bold-1.png" {
		t.Errorf("Unexpected asset url %s", out.Slots[0].AssetURL)
	}
}

func TestTemplateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Template{}).Generate(ctx, Request{Tool: content.ToolJob}); err == nil {
		t.Errorf("Expected context error")
	}
}
