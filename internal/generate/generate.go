package generate

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mgpai22/paperreel/internal/inflight"
	"github.com/mgpai22/paperreel/internal/logging"
	"github.com/mgpai22/paperreel/internal/media"
)

// image generation service provider
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// generation options
type Options struct {
	Model  string
	Width  int // target canvas, providers map it to their nearest portrait size
	Height int
}

// Generator produces one still image per prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Factory creates a generator for the provider.
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Generator, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiGenerator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAIGenerator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// Request is one image unit awaiting generation.
type Request struct {
	ID         string // correlation id shared with the prompt file name
	Prompt     string
	OutputPath string
}

// Result is one unit's outcome after a run.
type Result struct {
	ID   string
	Path string
	Err  error
}

// Summary of a generation run. A unit lands in exactly one list.
type Summary struct {
	Generated []Result
	Skipped   []Result
}

// Runner drives a generator through the in-flight gate: one request per
// unit, a bounded wait each, and units that fail or time out are logged
// and skipped so the rest of the batch still completes.
type Runner struct {
	gen    Generator
	gate   *inflight.Gate
	logger *logging.Logger
}

func NewRunner(gen Generator, gate *inflight.Gate, logger *logging.Logger) *Runner {
	return &Runner{gen: gen, gate: gate, logger: logger}
}

// Run works through the requests in order. It only returns an error
// when the batch as a whole cannot proceed; per-unit failures are
// reported in the summary.
func (r *Runner) Run(ctx context.Context, reqs []Request) Summary {
	var summary Summary

	for _, req := range reqs {
		req := req
		err := r.gate.Do(ctx, req.ID, func(ctx context.Context) error {
			return r.generateOne(ctx, req)
		})

		switch {
		case err == nil:
			r.logger.Infow("Image generated", "image", req.ID, "path", req.OutputPath)
			summary.Generated = append(summary.Generated, Result{ID: req.ID, Path: req.OutputPath})
		default:
			var timeout *inflight.TimeoutError
			if errors.As(err, &timeout) {
				r.logger.Warnw("Image generation timed out, skipping",
					"image", req.ID,
					"waited", timeout.Wait)
			} else {
				r.logger.Warnw("Image generation failed, skipping",
					"image", req.ID,
					"error", err)
			}
			summary.Skipped = append(summary.Skipped, Result{ID: req.ID, Path: req.OutputPath, Err: err})
		}
	}

	return summary
}

func (r *Runner) generateOne(ctx context.Context, req Request) error {
	data, err := r.gen.Generate(ctx, req.Prompt)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("provider returned an empty image")
	}
	if !media.LooksLikeImage(data) {
		return fmt.Errorf("provider response is not a PNG or JPEG")
	}

	if err := os.WriteFile(req.OutputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}
