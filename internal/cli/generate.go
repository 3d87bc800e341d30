package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mgpai22/paperreel/internal/generate"
	"github.com/mgpai22/paperreel/internal/inflight"
	"github.com/mgpai22/paperreel/internal/project"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [project_id]",
	Short: "Generate missing images from the project's prompt files",
	Long: `Generate still images for every prompt file in the project that does not
have a generated image yet.

Each paper_image_<id>_prompt.txt in the resource directory is sent to the
configured image provider, and the result is saved next to it as
paper_image_<id>_generated.png. Images that already exist are left alone
unless --force is given.

A unit that fails or exceeds the wait ceiling is skipped so the rest of the
batch still completes; rerun the command to retry the stragglers.

Examples:
  paperreel generate a1b2c3d4
  paperreel generate a1b2c3d4 --provider openai --model gpt-image-1
  paperreel generate a1b2c3d4 -k YOUR_KEY --timeout 60
  paperreel generate a1b2c3d4 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().
		StringP("api-key", "k", "", "Provider API key (or set GEMINI_API_KEY / OPENAI_API_KEY)")
	generateCmd.Flags().
		String("provider", "", "Image provider (gemini, openai); defaults to the config value")
	generateCmd.Flags().
		String("model", "", "Image model to use; defaults to the provider's standard model")
	generateCmd.Flags().
		Int("timeout", 0, "Per-image wait ceiling in seconds; defaults to the config value")
	generateCmd.Flags().
		Bool("force", false, "Regenerate images that already exist")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	proj, err := project.Find(cfg.ResourcesDir, args[0])
	if err != nil {
		return err
	}

	apiKey, _ := cmd.Flags().GetString("api-key")
	providerStr, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	force, _ := cmd.Flags().GetBool("force")

	if providerStr == "" {
		providerStr = cfg.Generation.Provider
	}
	provider := generate.Provider(strings.ToLower(providerStr))

	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnvVar(provider))
	}
	if apiKey == "" {
		return fmt.Errorf("%s API key is required: use --api-key flag or set %s environment variable",
			provider, apiKeyEnvVar(provider))
	}

	if model == "" {
		model = cfg.Generation.Model
	}

	wait := cfg.GenerationTimeout()
	if timeoutSecs > 0 {
		wait = time.Duration(timeoutSecs) * time.Second
	}

	prompts, err := proj.PromptFiles()
	if err != nil {
		return fmt.Errorf("failed to list prompt files: %w", err)
	}
	if len(prompts) == 0 {
		return fmt.Errorf("project %s has no prompt files: add paper_image_<id>_prompt.txt files to %s",
			proj.ID, proj.Dir)
	}

	var requests []generate.Request
	existing := 0
	for _, p := range prompts {
		outPath := proj.GeneratedImagePath(p.ID)
		if !force {
			if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
				existing++
				continue
			}
		}

		data, err := os.ReadFile(p.Path)
		if err != nil {
			return fmt.Errorf("failed to read prompt file: %w", err)
		}
		prompt := strings.TrimSpace(string(data))
		if prompt == "" {
			return fmt.Errorf("prompt file %s is empty", p.Path)
		}

		requests = append(requests, generate.Request{
			ID:         p.ID,
			Prompt:     prompt,
			OutputPath: outPath,
		})
	}

	if len(requests) == 0 {
		fmt.Printf("All %d images already generated; use --force to regenerate.\n", existing)
		return nil
	}

	logger.Infow("Starting image generation",
		"project", proj.ID,
		"provider", provider,
		"pending", len(requests),
		"existing", existing,
		"wait", wait.String(),
	)

	gen, err := generate.Factory(ctx, provider, apiKey, generate.Options{
		Model:  model,
		Width:  cfg.Video.Width,
		Height: cfg.Video.Height,
	})
	if err != nil {
		return fmt.Errorf("failed to create image generator: %w", err)
	}

	runner := generate.NewRunner(gen, inflight.NewGate(wait), logger)
	summary := runner.Run(ctx, requests)

	fmt.Printf("Images generated: %d of %d\n", len(summary.Generated), len(requests))
	for _, skip := range summary.Skipped {
		fmt.Printf("  skipped %s: %v\n", skip.ID, skip.Err)
	}
	if len(summary.Skipped) > 0 {
		fmt.Printf("Rerun the command to retry the %d skipped image(s).\n", len(summary.Skipped))
	}

	return nil
}

func apiKeyEnvVar(p generate.Provider) string {
	if p == generate.ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}
