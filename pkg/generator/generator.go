// ABOUTME: Boundary to the external content generator
// ABOUTME: Request/response shapes, prompt building and output parsing

package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nainya/copyforge/pkg/content"
	"github.com/nainya/copyforge/pkg/facts"
)

var ErrEmptyOutput = errors.New("generator returned no content")

// Request asks the generator for one batch
type Request struct {
	Tool   content.ToolKind
	Brief  content.Brief
	Count  int                // Item count for item-oriented tools
	Locked *facts.LockedFacts // Facts the new wording must keep, on regeneration
}

// Output is one generated batch
type Output struct {
	Slots []content.Slot `json:"slots"`
	Model string         `json:"model,omitempty"`
}

// Generator produces content batches. Implementations treat the exchange
// as one request/response; failures abort the whole generation.
type Generator interface {
	Generate(ctx context.Context, req Request) (Output, error)
}

// Func adapts a function to Generator
type Func func(ctx context.Context, req Request) (Output, error)

// Generate calls f
func (f Func) Generate(ctx context.Context, req Request) (Output, error) {
	return f(ctx, req)
}

// ParseOutput decodes a JSON batch of the form {"slots":[{"label":..,"text":..}]}.
// Markdown code fences around the JSON are tolerated.
func ParseOutput(raw string) (Output, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var out Output
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return Output{}, fmt.Errorf("decode generator output: %w", err)
	}
	slots := out.Slots[:0]
	for _, s := range out.Slots {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		slots = append(slots, s)
	}
	out.Slots = slots
	if len(out.Slots) == 0 {
		return Output{}, ErrEmptyOutput
	}
	return out, nil
}

// BuildPrompt renders the instruction text for a request
func BuildPrompt(req Request) (string, error) {
	tool, ok := content.LookupTool(req.Tool)
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", req.Tool)
	}
	brief, err := json.MarshalIndent(req.Brief, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode brief: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You write marketing copy for the %q tool.\n", tool.Name)
	if tool.ItemOriented {
		count := req.Count
		if count <= 0 {
			count = 4
		}
		fmt.Fprintf(&b, "Produce %d distinct concepts. Each slot uses label \"concept\", a short name as text, and an image URL in asset_url when available.\n", count)
	} else {
		fmt.Fprintf(&b, "Produce one slot per section with these labels, in order: %s.\n", strings.Join(tool.Sections, ", "))
		if len(tool.CTAPrefixes) > 0 {
			b.WriteString("Add one slot per requested platform labelled \"post:<platform>\", each ending with the call-to-action.\n")
		}
	}
	b.WriteString("Reply with JSON only: {\"slots\":[{\"label\":\"...\",\"text\":\"...\",\"asset_url\":\"...\",\"attributes\":{}}]}\n")
	b.WriteString("Brief:\n")
	b.Write(brief)
	b.WriteString("\n")

	if req.Locked != nil && !req.Locked.IsEmpty() {
		b.WriteString("Keep these details exactly as stated; only improve the wording:\n")
		if n := req.Locked.Numeric; n != nil {
			fmt.Fprintf(&b, "- offer value: %s\n", n)
		}
		if d := req.Locked.Expires; d != nil {
			fmt.Fprintf(&b, "- expiration date: %s\n", d)
		}
		if r := req.Locked.Restricted; r != nil {
			if *r {
				b.WriteString("- the offer is for new customers only\n")
			} else {
				b.WriteString("- the offer is open to all customers\n")
			}
		}
		if req.Locked.CTA != "" {
			fmt.Fprintf(&b, "- call-to-action: %q\n", req.Locked.CTA)
		}
	}
	return b.String(), nil
}
