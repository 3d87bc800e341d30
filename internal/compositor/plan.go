package compositor

import (
	"fmt"
	"time"

	"github.com/mgpai22/paperreel/internal/manifest"
	"github.com/mgpai22/paperreel/internal/timeline"
)

// Op is one compositing operation: a single image held on screen for a
// window of the output, with crossfades into its neighbors. Fades are
// centered on the segment boundaries, so a fade of f eats f/2 from each
// side and the boundary stays where the timeline put it.
type Op struct {
	ImagePath string
	Start     time.Duration
	End       time.Duration

	// FadeIn is the crossfade shared with the previous op (zero for the
	// first op or a hard cut); FadeOut the one shared with the next.
	FadeIn  time.Duration
	FadeOut time.Duration
}

// Duration is the display window length, fades not included.
func (o Op) Duration() time.Duration {
	return o.End - o.Start
}

// Spec fixes the output canvas and transition policy for a plan.
type Spec struct {
	Width     int
	Height    int
	FPS       int
	Crossfade time.Duration
}

// Plan is the full set of operations for one output video. It is
// derived from the reconciled timeline right before rendering and never
// persisted.
type Plan struct {
	Ops       []Op
	AudioPath string
	Total     time.Duration
	Width     int
	Height    int
	FPS       int
}

// InputDuration is how long the image of op i must be looped for: its
// display window plus the halves of the fades it shares with its
// neighbors.
func (p *Plan) InputDuration(i int) time.Duration {
	op := p.Ops[i]
	return op.Duration() + op.FadeIn/2 + op.FadeOut/2
}

// BuildPlan turns a reconciled timeline and its manifest into
// compositing operations. Each interior boundary gets a crossfade of
// the configured length, clamped so a transition never outlasts either
// neighboring segment; a clamp to zero degrades to a hard cut.
func BuildPlan(tl *timeline.Timeline, m *manifest.Manifest, spec Spec) (*Plan, error) {
	if len(tl.Segments) == 0 {
		return nil, fmt.Errorf("timeline has no segments")
	}

	ops := make([]Op, len(tl.Segments))
	for i, seg := range tl.Segments {
		asset, ok := m.Images[seg.ImageRef]
		if !ok {
			return nil, fmt.Errorf("image reference %q is not in the manifest", seg.ImageRef)
		}
		ops[i] = Op{
			ImagePath: asset.Path,
			Start:     seg.Start,
			End:       seg.End,
		}
	}

	for i := 0; i < len(ops)-1; i++ {
		fade := spec.Crossfade
		if d := ops[i].Duration(); d < fade {
			fade = d
		}
		if d := ops[i+1].Duration(); d < fade {
			fade = d
		}
		if fade <= 0 {
			continue
		}
		ops[i].FadeOut = fade
		ops[i+1].FadeIn = fade
	}

	return &Plan{
		Ops:       ops,
		AudioPath: m.Audio.Path,
		Total:     tl.Total,
		Width:     spec.Width,
		Height:    spec.Height,
		FPS:       spec.FPS,
	}, nil
}
