// Package design provides AI design guidance for banner creation.
//
// The advisor is an external text-completion collaborator: it receives a
// free-text banner request and returns a response that may contain a JSON
// design specification. [ParseResponse] is the single pure function that
// turns such a response into a [Guidance], falling back to a fixed default
// structure when no JSON can be extracted - it never fails, so advisor
// flakiness can never block banner creation.
package design

import (
	"encoding/json"
	"strings"
)

// Guidance is the parsed design recommendation for a banner.
type Guidance struct {
	Concept     string         `json:"concept"`
	Colors      []string       `json:"colors"`
	Typography  string         `json:"typography"`
	Layout      string         `json:"layout"`
	ImagePrompt string         `json:"image_prompt"`
	Hints       map[string]any `json:"controlnet_hints,omitempty"`

	// RawResponse preserves the advisor's original text when the response
	// could not be parsed as JSON.
	RawResponse string `json:"raw_response,omitempty"`
}

// DefaultGuidance returns the fixed fallback guidance used when the
// advisor response carries no parseable JSON, with raw preserved.
// The default colors and prompt are part of the parsing contract and are
// relied on by downstream consumers.
func DefaultGuidance(raw string) Guidance {
	return Guidance{
		Concept:     "See raw response",
		Colors:      []string{"#3498db", "#2ecc71", "#f39c12", "#e74c3c", "#ffffff"},
		Typography:  "Sans-serif, bold",
		Layout:      "center",
		ImagePrompt: "professional modern abstract background",
		RawResponse: raw,
	}
}

// ParseResponse extracts design guidance from an advisor response.
//
// It locates the first '{' and the last '}' in the text and parses the
// substring as JSON, reading recognized fields tolerantly (unrecognized
// keys and oddly-typed values are ignored rather than rejected). If no
// such substring exists or it is not valid JSON, the fixed default from
// [DefaultGuidance] is returned with the raw text preserved. ParseResponse
// never fails.
func ParseResponse(text string) Guidance {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return DefaultGuidance(text)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return DefaultGuidance(text)
	}

	g := Guidance{
		Concept:     stringField(raw, "concept"),
		Typography:  stringField(raw, "typography"),
		Layout:      stringField(raw, "layout"),
		ImagePrompt: stringField(raw, "image_prompt"),
		Colors:      stringSlice(raw, "colors"),
	}
	if hints, ok := raw["controlnet_hints"].(map[string]any); ok {
		g.Hints = hints
	}
	return g
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func stringSlice(m map[string]any, key string) []string {
	vals, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// TextColor returns the first guidance color, or fallback when the
// guidance carries none. The orchestrator uses this to let the advisor
// pick the banner text color.
func (g Guidance) TextColor(fallback string) string {
	if len(g.Colors) > 0 && g.Colors[0] != "" {
		return g.Colors[0]
	}
	return fallback
}
