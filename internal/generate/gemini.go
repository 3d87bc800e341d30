package generate

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// implements Generator using Google Imagen via the genai SDK
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiGenerator(ctx context.Context, apiKey string, opts Options) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "imagen-3.0-generate-002"
	}

	return &GeminiGenerator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// generates a single portrait image for the prompt
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "9:16",
		OutputMIMEType: "image/png",
	}

	result, err := g.client.Models.GenerateImages(ctx, g.model, prompt, config)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	if result == nil || len(result.GeneratedImages) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}
	img := result.GeneratedImages[0].Image
	if img == nil || len(img.ImageBytes) == 0 {
		return nil, fmt.Errorf("no image payload in Gemini response")
	}

	return img.ImageBytes, nil
}
