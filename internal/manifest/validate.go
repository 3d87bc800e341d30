package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/paperreel/internal/media"
	"github.com/mgpai22/paperreel/internal/timeline"
)

// extensions an image reference may resolve to, in probe order
var imageExts = []string{".png", ".jpg", ".jpeg"}

// image formats we recognize but do not accept on the canvas
var rejectedExts = map[string]bool{
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
	".svg":  true,
}

// Params configure a validation pass over one project directory.
type Params struct {
	Dir             string
	AudioFile       string
	FFprobe         string
	AspectTolerance float64

	// ProbeAudio overrides the ffprobe measurement. Tests use it; when
	// nil the real probe runs with Params.FFprobe.
	ProbeAudio func(ctx context.Context, path string) (time.Duration, error)
}

// Build resolves every timeline reference against the project directory
// and probes each resource. All problems are collected before failing,
// so the caller sees the complete repair list at once.
func Build(ctx context.Context, tl *timeline.Timeline, p Params) (*Manifest, error) {
	m, problems := Inspect(ctx, tl, p)
	if len(problems) > 0 {
		return nil, &ResolutionError{Problems: problems}
	}
	return m, nil
}

// Inspect is Build without the failure: it returns whatever resolved
// cleanly together with the problem list. The check command renders
// both.
func Inspect(ctx context.Context, tl *timeline.Timeline, p Params) (*Manifest, []Problem) {
	m := &Manifest{Images: make(map[string]ImageAsset)}
	var problems []Problem

	for _, ref := range tl.Refs() {
		path, problem := resolveImageRef(p.Dir, ref)
		if problem != nil {
			problems = append(problems, *problem)
			continue
		}

		info, err := media.ProbeImage(path)
		if err != nil {
			problems = append(problems, Problem{Ref: ref, Path: path, Reason: err.Error()})
			continue
		}

		if !info.FitsVertical(p.AspectTolerance) {
			problems = append(problems, Problem{
				Ref:    ref,
				Path:   path,
				Reason: aspectReason(info, p.AspectTolerance),
			})
			continue
		}

		abs := path
		if a, err := filepath.Abs(path); err == nil {
			abs = a
		}
		m.Images[ref] = ImageAsset{Ref: ref, Path: abs, Width: info.Width, Height: info.Height}
	}

	audio, problem := probeAudio(ctx, p)
	if problem != nil {
		problems = append(problems, *problem)
	} else {
		m.Audio = audio
	}

	return m, problems
}

// resolveImageRef maps a bare reference to exactly one file. References
// carrying a supported extension resolve verbatim; bare names must match
// exactly one of the supported extensions.
func resolveImageRef(dir, ref string) (string, *Problem) {
	ext := strings.ToLower(filepath.Ext(ref))

	if rejectedExts[ext] {
		return "", &Problem{
			Ref:    ref,
			Path:   filepath.Join(dir, ref),
			Reason: fmt.Sprintf("unsupported image format %s (supported: png, jpg, jpeg)", ext),
		}
	}

	for _, allowed := range imageExts {
		if ext == allowed {
			path := filepath.Join(dir, ref)
			if !regularFile(path) {
				return "", &Problem{Ref: ref, Path: path, Reason: "file not found"}
			}
			return path, nil
		}
	}

	var hits []string
	for _, allowed := range imageExts {
		path := filepath.Join(dir, ref+allowed)
		if regularFile(path) {
			hits = append(hits, path)
		}
	}

	pattern := filepath.Join(dir, ref+".{png,jpg,jpeg}")
	switch len(hits) {
	case 0:
		return "", &Problem{Ref: ref, Path: pattern, Reason: "no matching image file"}
	case 1:
		return hits[0], nil
	default:
		bases := make([]string, len(hits))
		for i, h := range hits {
			bases[i] = filepath.Base(h)
		}
		return "", &Problem{
			Ref:    ref,
			Path:   pattern,
			Reason: fmt.Sprintf("ambiguous reference, matches %s", strings.Join(bases, " and ")),
		}
	}
}

func probeAudio(ctx context.Context, p Params) (AudioAsset, *Problem) {
	path := filepath.Join(p.Dir, p.AudioFile)
	if !regularFile(path) {
		return AudioAsset{}, &Problem{Ref: "audio", Path: path, Reason: "narration audio missing or empty"}
	}

	probe := p.ProbeAudio
	if probe == nil {
		probe = func(ctx context.Context, path string) (time.Duration, error) {
			return media.AudioDuration(ctx, p.FFprobe, path)
		}
	}

	dur, err := probe(ctx, path)
	if err != nil {
		return AudioAsset{}, &Problem{Ref: "audio", Path: path, Reason: err.Error()}
	}
	if dur <= 0 {
		return AudioAsset{}, &Problem{Ref: "audio", Path: path, Reason: "audio has no playable duration"}
	}

	abs := path
	if a, err := filepath.Abs(path); err == nil {
		abs = a
	}
	return AudioAsset{Path: abs, Duration: dur}, nil
}

func aspectReason(info *media.ImageInfo, tolerance float64) string {
	if !info.IsPortrait() {
		return fmt.Sprintf("image is %dx%d, not portrait; the vertical canvas needs portrait stills",
			info.Width, info.Height)
	}
	return fmt.Sprintf("aspect ratio %.3f is outside the accepted vertical range (9:16 ±%.2f)",
		info.Aspect(), tolerance)
}

func regularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}
