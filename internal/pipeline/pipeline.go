package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mgpai22/paperreel/internal/compositor"
	"github.com/mgpai22/paperreel/internal/config"
	"github.com/mgpai22/paperreel/internal/logging"
	"github.com/mgpai22/paperreel/internal/manifest"
	"github.com/mgpai22/paperreel/internal/project"
	"github.com/mgpai22/paperreel/internal/timeline"
)

// Renderer drives the media backend to produce the final file.
type Renderer interface {
	Render(ctx context.Context, plan *compositor.Plan, outPath string) error
}

// Options collect everything a run needs beyond the project itself.
type Options struct {
	Config      *config.Config
	Renderer    Renderer
	FFprobePath string

	// OutputPath overrides the derived output location when set.
	OutputPath string

	// ProbeAudio overrides the ffprobe measurement, for tests.
	ProbeAudio func(ctx context.Context, path string) (time.Duration, error)

	Logger *logging.Logger
}

// Result of a successful assembly run.
type Result struct {
	OutputPath string
	Duration   time.Duration
	Segments   int
}

// Run assembles one project: parse the time script, resolve and probe
// every resource, reconcile against the measured narration, then render.
// The final path never holds a partial file; the render goes to a hidden
// sibling that is moved into place only after it checks out.
func Run(ctx context.Context, proj *project.Project, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}

	tl, err := timeline.ParseFile(proj.TimelinePath())
	if err != nil {
		return nil, err
	}
	log.Debugw("Parsed time script",
		"segments", len(tl.Segments),
		"declared", tl.Total)

	m, err := manifest.Build(ctx, tl, manifest.Params{
		Dir:             proj.Dir,
		AudioFile:       project.AudioFileName,
		FFprobe:         opts.FFprobePath,
		AspectTolerance: opts.Config.Assembly.AspectTolerance,
		ProbeAudio:      opts.ProbeAudio,
	})
	if err != nil {
		return nil, err
	}
	log.Debugw("Resources resolved",
		"images", len(m.Images),
		"audio", m.Audio.Duration)

	rec, err := timeline.Reconcile(tl, m.Audio.Duration, opts.Config.DurationTolerance())
	if err != nil {
		return nil, err
	}
	if rec.Total != tl.Total {
		log.Infow("Adjusted last segment to the narration",
			"declared", tl.Total,
			"measured", rec.Total)
	}

	plan, err := compositor.BuildPlan(rec, m, compositor.Spec{
		Width:     opts.Config.Video.Width,
		Height:    opts.Config.Video.Height,
		FPS:       opts.Config.Video.FPS,
		Crossfade: opts.Config.Crossfade(),
	})
	if err != nil {
		return nil, err
	}

	outPath := opts.OutputPath
	if outPath == "" {
		outPath = filepath.Join(opts.Config.OutputDir, proj.OutputFileName())
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmpPath := filepath.Join(filepath.Dir(outPath), ".partial-"+filepath.Base(outPath))
	defer os.Remove(tmpPath)

	log.Infow("Rendering video",
		"output", outPath,
		"segments", len(plan.Ops),
		"duration", rec.Total)

	if err := opts.Renderer.Render(ctx, plan, tmpPath); err != nil {
		return nil, err
	}

	info, err := os.Stat(tmpPath)
	if err != nil || info.Size() == 0 {
		return nil, &compositor.BackendError{
			Err: fmt.Errorf("backend produced no output at %s", tmpPath),
		}
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return nil, fmt.Errorf("failed to move output into place: %w", err)
	}

	return &Result{
		OutputPath: outPath,
		Duration:   rec.Total,
		Segments:   len(plan.Ops),
	}, nil
}
