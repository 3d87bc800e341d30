package cli

import (
	"context"
	"fmt"

	"github.com/mgpai22/paperreel/internal/compositor"
	"github.com/mgpai22/paperreel/internal/ffmpeg"
	"github.com/mgpai22/paperreel/internal/pipeline"
	"github.com/mgpai22/paperreel/internal/project"
	"github.com/spf13/cobra"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble [project_id]",
	Short: "Assemble the final video for a project",
	Long: `Assemble the final video for a project from its resource directory.

The project's time script is parsed and checked, every referenced image
and the narration track are validated, the script is reconciled against
the measured narration length, and ffmpeg renders the result in one
pass. Nothing is written to the output location until the render
succeeds.

Examples:
  paperreel assemble a1b2c3d4
  paperreel assemble a1b2c3d4 -o /tmp/preview.mp4
  paperreel assemble a1b2c3d4 --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runAssemble,
}

func init() {
	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	projectID := args[0]
	ctx := context.Background()

	proj, err := project.Find(cfg.ResourcesDir, projectID)
	if err != nil {
		return err
	}

	paths, err := ffmpeg.Resolve(ffmpeg.BinaryPaths{
		FFmpeg:  cfg.FFmpeg.FFmpegPath,
		FFprobe: cfg.FFmpeg.FFprobePath,
	})
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")

	logger.Infow("Starting video assembly",
		"project", proj.ID,
		"resources", proj.Dir,
	)

	backend := compositor.NewFFmpegBackend(paths.FFmpeg, compositor.EncodeOptions{
		CRF:          cfg.Video.CRF,
		Preset:       cfg.Video.Preset,
		AudioBitrate: cfg.Video.AudioBitrate,
	})

	result, err := pipeline.Run(ctx, proj, pipeline.Options{
		Config:      cfg,
		Renderer:    backend,
		FFprobePath: paths.FFprobe,
		OutputPath:  outputPath,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Video assembled successfully: %s\n", result.OutputPath)
	fmt.Printf("  Duration: %s\n", result.Duration.String())
	fmt.Printf("  Segments: %d\n", result.Segments)

	return nil
}
