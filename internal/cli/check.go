package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mgpai22/paperreel/internal/ffmpeg"
	"github.com/mgpai22/paperreel/internal/manifest"
	"github.com/mgpai22/paperreel/internal/project"
	"github.com/mgpai22/paperreel/internal/timeline"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [project_id]",
	Short: "Validate a project's resources without rendering",
	Long: `Validate a project's resources without rendering anything.

The time script is parsed, every image reference is resolved and probed,
the narration track is measured, and the reconciliation verdict is
reported. The command fails when the project would not assemble.

Examples:
  paperreel check a1b2c3d4`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	projectID := args[0]
	ctx := context.Background()

	proj, err := project.Find(cfg.ResourcesDir, projectID)
	if err != nil {
		return err
	}

	tl, err := timeline.ParseFile(proj.TimelinePath())
	if err != nil {
		return err
	}

	params := manifest.Params{
		Dir:             proj.Dir,
		AudioFile:       project.AudioFileName,
		AspectTolerance: cfg.Assembly.AspectTolerance,
	}
	// the audio probe needs ffprobe; a missing binary is itself a finding
	paths, ffErr := ffmpeg.Resolve(ffmpeg.BinaryPaths{
		FFmpeg:  cfg.FFmpeg.FFmpegPath,
		FFprobe: cfg.FFmpeg.FFprobePath,
	})
	if ffErr != nil {
		return ffErr
	}
	params.FFprobe = paths.FFprobe

	m, problems := manifest.Inspect(ctx, tl, params)

	fmt.Printf("Project %s (%s)\n", proj.ID, proj.Dir)
	fmt.Printf("Time script: %d segments covering %s\n\n", len(tl.Segments), tl.Total)

	fmt.Println(resourceTable(tl, m, problems))

	var verdictErr error
	if m.Audio.Duration > 0 {
		fmt.Println()
		verdictErr = printVerdict(tl, m)
	}

	printScriptNote(proj)
	printPromptInventory(proj)

	if len(problems) > 0 {
		return fmt.Errorf("project %s is not ready: %d resource problem(s)", proj.ID, len(problems))
	}
	return verdictErr
}

func resourceTable(tl *timeline.Timeline, m *manifest.Manifest, problems []manifest.Problem) string {
	badRefs := make(map[string]string, len(problems))
	for _, p := range problems {
		badRefs[p.Ref] = p.Reason
	}

	var rows [][]string
	for _, ref := range tl.Refs() {
		if reason, bad := badRefs[ref]; bad {
			rows = append(rows, []string{ref, "-", "-", reason})
			continue
		}
		img := m.Images[ref]
		rows = append(rows, []string{
			ref,
			filepath.Base(img.Path),
			fmt.Sprintf("%dx%d", img.Width, img.Height),
			"ok",
		})
	}

	if reason, bad := badRefs["audio"]; bad {
		rows = append(rows, []string{"audio", project.AudioFileName, "-", reason})
	} else {
		rows = append(rows, []string{
			"audio",
			filepath.Base(m.Audio.Path),
			m.Audio.Duration.String(),
			"ok",
		})
	}

	return renderTable([]string{"RESOURCE", "FILE", "SIZE", "STATUS"}, rows, 3)
}

func printVerdict(tl *timeline.Timeline, m *manifest.Manifest) error {
	_, err := timeline.Reconcile(tl, m.Audio.Duration, cfg.DurationTolerance())
	if err != nil {
		fmt.Printf("Narration: %v\n", err)
		return err
	}

	diff := m.Audio.Duration - tl.Total
	switch {
	case diff == 0:
		fmt.Printf("Narration: matches the time script exactly (%s)\n", tl.Total)
	case diff > 0:
		fmt.Printf("Narration: %s; the last segment will stretch by %s\n", m.Audio.Duration, diff)
	default:
		fmt.Printf("Narration: %s; the last segment will trim by %s\n", m.Audio.Duration, -diff)
	}
	return nil
}

// script.txt is informational; its absence never blocks assembly
func printScriptNote(proj *project.Project) {
	if _, err := os.Stat(proj.ScriptPath()); err == nil {
		fmt.Printf("Script: %s on file\n", project.ScriptFileName)
	} else {
		fmt.Printf("Script: %s not present (optional)\n", project.ScriptFileName)
	}
}

func printPromptInventory(proj *project.Project) {
	prompts, err := proj.PromptFiles()
	if err != nil || len(prompts) == 0 {
		return
	}

	missing := 0
	for _, p := range prompts {
		if _, err := os.Stat(proj.GeneratedImagePath(p.ID)); err != nil {
			missing++
		}
	}

	if missing > 0 {
		fmt.Printf("Prompts: %d on file, %d awaiting generation (run: paperreel generate)\n",
			len(prompts), missing)
	} else {
		fmt.Printf("Prompts: %d on file, all generated\n", len(prompts))
	}
}
