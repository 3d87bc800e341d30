package manifest

import (
	"fmt"
	"strings"
	"time"
)

// ImageAsset is one resolved and probed still image.
type ImageAsset struct {
	Ref    string
	Path   string
	Width  int
	Height int
}

// AudioAsset is the resolved narration track with its measured length.
type AudioAsset struct {
	Path     string
	Duration time.Duration
}

// Manifest maps every timeline reference to a validated absolute path.
// It is only handed to the compositor when the whole resource set is
// sound; a partially valid project never assembles.
type Manifest struct {
	Audio  AudioAsset
	Images map[string]ImageAsset
}

// Problem is one unresolved or invalid resource.
type Problem struct {
	Ref    string // image reference, or "audio" for the narration track
	Path   string // the path or pattern that was inspected
	Reason string
}

// ResolutionError aggregates every resource problem found in a single
// validation pass, so one run reports the full repair list.
type ResolutionError struct {
	Problems []Problem
}

func (e *ResolutionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d invalid or missing resources:", len(e.Problems))
	for _, p := range e.Problems {
		fmt.Fprintf(&sb, "\n  - %s: %s", p.Ref, p.Reason)
	}
	return sb.String()
}
