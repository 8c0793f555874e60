// ABOUTME: Descriptors for the generator tools sharing the content model
// ABOUTME: Logo concepts, job postings and promotional offers

package content

import "strings"

// ToolKind identifies a generator tool
type ToolKind string

const (
	ToolLogo  ToolKind = "logo"
	ToolJob   ToolKind = "job"
	ToolOffer ToolKind = "offer"
)

// Tool describes how a tool's generated slots are shaped
type Tool struct {
	Kind         ToolKind
	Name         string
	ItemOriented bool     // Items are peers (concepts) rather than named sections
	Sections     []string // Canonical section labels for section-oriented tools
	CTALabel     string   // Label of the section holding the call-to-action
	CTAPrefixes  []string // Labels starting with these also carry a CTA
}

var tools = map[ToolKind]Tool{
	ToolLogo: {
		Kind:         ToolLogo,
		Name:         "Logo concepts",
		ItemOriented: true,
	},
	ToolJob: {
		Kind:     ToolJob,
		Name:     "Job posting",
		Sections: []string{"title", "summary", "responsibilities", "requirements", "benefits", "cta"},
		CTALabel: "cta",
	},
	ToolOffer: {
		Kind:        ToolOffer,
		Name:        "Promotional offer",
		Sections:    []string{"headline", "body", "cta"},
		CTALabel:    "cta",
		CTAPrefixes: []string{"post:"},
	},
}

// LookupTool returns the descriptor for kind
func LookupTool(kind ToolKind) (Tool, bool) {
	t, ok := tools[kind]
	return t, ok
}

// Tools returns all known tool kinds
func Tools() []ToolKind {
	return []ToolKind{ToolLogo, ToolJob, ToolOffer}
}

// IsCTABearing reports whether the slot with this label must restate the CTA
func (t Tool) IsCTABearing(label string) bool {
	if t.CTALabel != "" && label == t.CTALabel {
		return true
	}
	for _, p := range t.CTAPrefixes {
		if strings.HasPrefix(label, p) {
			return true
		}
	}
	return false
}

// DefaultField returns the editable field for items of this tool
func (t Tool) DefaultField() Field {
	if t.ItemOriented {
		return FieldName
	}
	return FieldText
}
