package cli

import (
	"github.com/mgpai22/paperreel/internal/config"
	"github.com/mgpai22/paperreel/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	cfgPath string
	cfg     *config.Config
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "paperreel",
	Short: "Assemble vertical videos from narration, stills, and a time script",
	Long: `Paperreel turns a research paper's narration track, a set of still
images, and a time script into a single vertical video, with image
changes locked to the narration's pacing.

Each video's resources live in their own project directory. Paperreel
validates them, reconciles the time script against the real audio
length, and drives ffmpeg to render the final file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		c, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}
