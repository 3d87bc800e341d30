package timeline

import (
	"fmt"
	"strconv"
	"time"
)

// represents one contiguous window of the output video during which a
// single image is on screen
type Segment struct {
	Start    time.Duration
	End      time.Duration
	ImageRef string
}

// length of the segment's display window
func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

// represents a parsed time script: the declared narration total plus the
// ordered segment sequence covering [0, Total] without gaps or overlaps
type Timeline struct {
	Total    time.Duration
	Segments []Segment
}

// Refs returns the distinct image references in first-appearance order.
func (t *Timeline) Refs() []string {
	seen := make(map[string]bool, len(t.Segments))
	var refs []string
	for _, seg := range t.Segments {
		if !seen[seg.ImageRef] {
			seen[seg.ImageRef] = true
			refs = append(refs, seg.ImageRef)
		}
	}
	return refs
}

// ParseError reports a structurally invalid time script. Line is 1-based
// and points at the offending line.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed time script at line %d: %s", e.Line, e.Reason)
}

// DurationMismatchError reports a declared timeline total that diverges
// from the measured narration length by more than the tolerance. The
// time script has to be rewritten against the final audio; assembly
// never papers over a gap this large.
type DurationMismatchError struct {
	Declared  time.Duration
	Measured  time.Duration
	Tolerance time.Duration
}

func (e *DurationMismatchError) Error() string {
	return fmt.Sprintf(
		"time script declares %ss of narration but the audio lasts %ss (tolerance %ss)",
		formatSeconds(e.Declared),
		formatSeconds(e.Measured),
		formatSeconds(e.Tolerance),
	)
}

// seconds with no trailing zeros, round-trippable through parseSeconds
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
