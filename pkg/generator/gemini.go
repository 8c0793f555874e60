// ABOUTME: Gemini-backed generator using the Google GenAI SDK
// ABOUTME: Requests JSON output and parses it into slots

package generator

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini generates batches with a Gemini model
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGemini creates a Gemini generator
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{client: client, model: model, temperature: 0.9}, nil
}

// Generate implements Generator
func (g *Gemini) Generate(ctx context.Context, req Request) (Output, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return Output{}, err
	}

	temp := g.temperature
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temp,
	})
	if err != nil {
		return Output{}, fmt.Errorf("gemini generate: %w", err)
	}

	out, err := ParseOutput(resp.Text())
	if err != nil {
		return Output{}, err
	}
	out.Model = g.model
	return out, nil
}
