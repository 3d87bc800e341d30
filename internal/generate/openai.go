package generate

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Generator using the OpenAI Images API
type OpenAIGenerator struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAIGenerator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "gpt-image-1"
	}

	return &OpenAIGenerator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// generates a single portrait image for the prompt
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	params := openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(g.model),
		N:      openai.Int(1),
		Size:   portraitSize(g.model),
	}

	// gpt-image-1 always answers base64; the dall-e models default to
	// URLs and have to be asked
	if strings.HasPrefix(g.model, "dall-e") {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormat("b64_json")
	}

	resp, err := g.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	if resp == nil || len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}
	if resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("no image payload in OpenAI response")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}

	return data, nil
}

// nearest supported portrait size for the model
func portraitSize(model string) openai.ImageGenerateParamsSize {
	if strings.HasPrefix(model, "dall-e") {
		return openai.ImageGenerateParamsSize("1024x1792")
	}
	return openai.ImageGenerateParamsSize("1024x1536")
}
