package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Core settings
	ResourcesDir string `yaml:"resources_dir"`
	OutputDir    string `yaml:"output_dir"`

	// Video encode settings
	Video VideoConfig `yaml:"video"`

	// Assembly settings
	Assembly AssemblyConfig `yaml:"assembly"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Image generation settings
	Generation GenerationConfig `yaml:"generation"`
}

type VideoConfig struct {
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	FPS          int    `yaml:"fps"`
	CRF          int    `yaml:"crf"`
	Preset       string `yaml:"preset"`
	AudioBitrate string `yaml:"audio_bitrate"`
}

type AssemblyConfig struct {
	// DurationToleranceSeconds is the largest gap between the declared
	// timeline total and the measured narration length that assembly
	// will absorb by stretching or trimming the last segment.
	DurationToleranceSeconds float64 `yaml:"duration_tolerance_seconds"`

	// CrossfadeSeconds is the transition length between consecutive
	// images. Zero means hard cuts.
	CrossfadeSeconds float64 `yaml:"crossfade_seconds"`

	// AspectTolerance is how far an image's width:height ratio may sit
	// from 9:16 and still be accepted.
	AspectTolerance float64 `yaml:"aspect_tolerance"`
}

type FFmpegConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
}

type GenerationConfig struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Load reads configuration from file or returns defaults. A missing
// file is not an error; a file that fails to parse or validate is.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DurationTolerance returns the reconciliation tolerance as a duration.
func (c *Config) DurationTolerance() time.Duration {
	return secondsToDuration(c.Assembly.DurationToleranceSeconds)
}

// Crossfade returns the image transition length as a duration.
func (c *Config) Crossfade() time.Duration {
	return secondsToDuration(c.Assembly.CrossfadeSeconds)
}

// GenerationTimeout returns the per-image generation wait ceiling.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.Generation.TimeoutSeconds) * time.Second
}

var videoPresets = map[string]bool{
	"ultrafast": true,
	"superfast": true,
	"veryfast":  true,
	"faster":    true,
	"fast":      true,
	"medium":    true,
	"slow":      true,
	"slower":    true,
	"veryslow":  true,
}

// Validate rejects configurations the encoder or the assembly pipeline
// cannot honor.
func (c *Config) Validate() error {
	if c.ResourcesDir == "" {
		return fmt.Errorf("resources_dir must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return fmt.Errorf("video dimensions must be positive, got %dx%d", c.Video.Width, c.Video.Height)
	}
	// libx264 with yuv420p needs even dimensions
	if c.Video.Width%2 != 0 || c.Video.Height%2 != 0 {
		return fmt.Errorf("video dimensions must be even, got %dx%d", c.Video.Width, c.Video.Height)
	}
	if c.Video.FPS <= 0 {
		return fmt.Errorf("video fps must be positive, got %d", c.Video.FPS)
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		return fmt.Errorf("video crf must be between 0 and 51, got %d", c.Video.CRF)
	}
	if !videoPresets[c.Video.Preset] {
		return fmt.Errorf("unknown video preset %q", c.Video.Preset)
	}
	if c.Assembly.DurationToleranceSeconds < 0 {
		return fmt.Errorf("duration_tolerance_seconds must not be negative")
	}
	if c.Assembly.CrossfadeSeconds < 0 {
		return fmt.Errorf("crossfade_seconds must not be negative")
	}
	if c.Assembly.AspectTolerance < 0 {
		return fmt.Errorf("aspect_tolerance must not be negative")
	}
	switch c.Generation.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown generation provider %q (supported: gemini, openai)", c.Generation.Provider)
	}
	if c.Generation.TimeoutSeconds <= 0 {
		return fmt.Errorf("generation timeout_seconds must be positive, got %d", c.Generation.TimeoutSeconds)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		ResourcesDir: "./resources",
		OutputDir:    "./videos",
		Video: VideoConfig{
			Width:        720,
			Height:       1280,
			FPS:          30,
			CRF:          23,
			Preset:       "medium",
			AudioBitrate: "192k",
		},
		Assembly: AssemblyConfig{
			DurationToleranceSeconds: 0.5,
			CrossfadeSeconds:         0.4,
			AspectTolerance:          0.10,
		},
		FFmpeg: FFmpegConfig{},
		Generation: GenerationConfig{
			Provider:       "gemini",
			TimeoutSeconds: 30,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./paperreel.yaml",
		"./paperreel.yml",
		filepath.Join(os.Getenv("HOME"), ".paperreel", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
