package timeline

import (
	"fmt"
	"time"
)

// Reconcile aligns a timeline with the measured narration length. When
// the declared total and the measurement agree within tolerance, the
// last segment is stretched or trimmed so the segments cover exactly the
// measured duration; every earlier boundary is untouched. Beyond
// tolerance reconciliation refuses with a DurationMismatchError.
//
// The input timeline is never mutated; a corrected copy is returned.
func Reconcile(t *Timeline, measured, tolerance time.Duration) (*Timeline, error) {
	if len(t.Segments) == 0 {
		return nil, fmt.Errorf("timeline has no segments")
	}
	if measured <= 0 {
		return nil, fmt.Errorf("measured narration duration must be positive, got %s", measured)
	}

	diff := measured - t.Total
	if diff < 0 {
		diff = -diff
	}
	if diff > tolerance {
		return nil, &DurationMismatchError{
			Declared:  t.Total,
			Measured:  measured,
			Tolerance: tolerance,
		}
	}

	// trimming must not swallow the last segment entirely
	last := t.Segments[len(t.Segments)-1]
	if measured <= last.Start {
		return nil, &DurationMismatchError{
			Declared:  t.Total,
			Measured:  measured,
			Tolerance: tolerance,
		}
	}

	segments := make([]Segment, len(t.Segments))
	copy(segments, t.Segments)
	segments[len(segments)-1].End = measured

	return &Timeline{Total: measured, Segments: segments}, nil
}
