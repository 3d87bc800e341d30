package cli

import (
	"fmt"

	"github.com/mgpai22/paperreel/internal/project"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an empty project resource directory",
	Long: `Create a new project resource directory under the configured resources root.

The directory is named video_<date>_<id>_resources and starts empty. Deposit
the narration audio, the time script, and the still images there, then run
'paperreel check' to validate and 'paperreel assemble' to render.

Examples:
  paperreel new
  paperreel new -c paperreel.yaml`,
	Args: cobra.NoArgs,
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	proj, err := project.New(cfg.ResourcesDir)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	logger.Infow("Created project", "id", proj.ID, "dir", proj.Dir)

	fmt.Printf("Project created: %s\n", proj.ID)
	fmt.Printf("  Directory: %s\n", proj.Dir)
	fmt.Println()
	fmt.Println("Deposit these resources before assembling:")
	fmt.Printf("  %s           the narration track\n", project.AudioFileName)
	fmt.Printf("  %s                the timed image sequence\n", project.TimelineFileName)
	fmt.Println("  *.png / *.jpg                  one still per time script reference")
	fmt.Println()
	fmt.Printf("Then run: paperreel check %s\n", proj.ID)

	return nil
}
