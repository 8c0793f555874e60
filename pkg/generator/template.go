// ABOUTME: Offline generator that fills fixed templates from the brief
// ABOUTME: Used for local runs without a model and as a deterministic fallback

package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/nainya/copyforge/pkg/content"
)

var logoStyles = []string{"Bold", "Wave", "Peak", "Leaf", "Orbit", "Crest"}

// Template fills canned copy from brief fields
type Template struct{}

// Generate implements Generator
func (Template) Generate(ctx context.Context, req Request) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	b := req.Brief
	business := fallback(b.String("business"), "Your Business")

	var slots []content.Slot
	switch req.Tool {
	case content.ToolLogo:
		count := req.Count
		if count <= 0 || count > len(logoStyles) {
			count = 4
		}
		base := strings.TrimRight(b.String("asset_base_url"), "/")
		for i := 0; i < count; i++ {
			s := content.Slot{
				Label:      "concept",
				Text:       business + " " + logoStyles[i],
				Attributes: map[string]string{"style": strings.ToLower(logoStyles[i])},
			}
			if base != "" {
				s.AssetURL = fmt.Sprintf("%s/%s-%d.png", base, strings.ToLower(logoStyles[i]), i+1)
			}
			slots = append(slots, s)
		}

	case content.ToolJob:
		role := fallback(b.String("role"), "Team Member")
		location := fallback(b.String("location"), "our main office")
		slots = []content.Slot{
			{Label: "title", Text: role},
			{Label: "summary", Text: fmt.Sprintf("%s is hiring a %s in %s.", business, role, location)},
			{Label: "responsibilities", Text: fallback(b.String("responsibilities"), "Own your work and help the team grow.")},
			{Label: "requirements", Text: fallback(b.String("requirements"), "Curiosity and reliability.")},
			{Label: "benefits", Text: fallback(b.String("benefits"), "Competitive pay and flexible hours.")},
			{Label: "cta", Text: fallback(b.String("cta"), "Apply today")},
		}

	case content.ToolOffer:
		offer := fallback(b.String("offer"), "a special discount")
		cta := fallback(b.String("cta"), "Shop now")
		body := fmt.Sprintf("Enjoy %s at %s.", offer, business)
		if exp := b.String("expires"); exp != "" {
			body += " Offer ends " + exp + "."
		}
		if flag, ok := b.AsMap()["new_customers_only"].(bool); ok && flag {
			body += " New customers only."
		}
		slots = []content.Slot{
			{Label: "headline", Text: fmt.Sprintf("%s: %s", business, offer)},
			{Label: "body", Text: body},
			{Label: "cta", Text: cta},
		}
		if platforms, ok := b.AsMap()["platforms"].([]any); ok {
			for _, p := range platforms {
				name, _ := p.(string)
				if name == "" {
					continue
				}
				slots = append(slots, content.Slot{
					Label:      "post:" + name,
					Text:       fmt.Sprintf("%s %s", body, cta+"!"),
					Attributes: map[string]string{"platform": name},
				})
			}
		}

	default:
		return Output{}, fmt.Errorf("unknown tool: %s", req.Tool)
	}

	return Output{Slots: slots, Model: "template"}, nil
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
