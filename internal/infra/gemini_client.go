package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

var ErrEmptyResponse = errors.New("model returned no text")

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &GeminiClient{client: c, model: model}, nil
}

// GenerateJSON asks the model for a JSON array of pizza records. The schema
// constrains field names and the category enum; everything else is checked
// by the caller.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   pizzaArraySchema(),
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func pizzaArraySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"id":          {Type: genai.TypeString},
				"name":        {Type: genai.TypeString},
				"description": {Type: genai.TypeString},
				"price":       {Type: genai.TypeNumber},
				"image":       {Type: genai.TypeString},
				"category":    {Type: genai.TypeString, Enum: []string{"Veg", "Non-Veg", "Premium"}},
				"rating":      {Type: genai.TypeNumber},
				"ingredients": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			},
			Required: []string{"id", "name", "description", "price", "image", "category", "rating", "ingredients"},
		},
	}
}
