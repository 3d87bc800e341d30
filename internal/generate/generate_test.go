package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mgpai22/paperreel/internal/inflight"
	"github.com/mgpai22/paperreel/internal/logging"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

// scripted fake generator keyed by prompt
type fakeGenerator struct {
	responses map[string][]byte
	errs      map[string]error
	delay     map[string]time.Duration
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if d, ok := f.delay[prompt]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.errs[prompt]; ok {
		return nil, err
	}
	return f.responses[prompt], nil
}

func TestRunnerGeneratesAndSkips(t *testing.T) {
	dir := t.TempDir()

	gen := &fakeGenerator{
		responses: map[string][]byte{
			"a diagram": pngBytes,
			"a chart":   pngBytes,
		},
		errs: map[string]error{
			"a graph": errors.New("rate limited"),
		},
	}

	runner := NewRunner(gen, inflight.NewGate(time.Second), logging.NewNop())

	reqs := []Request{
		{ID: "img1", Prompt: "a diagram", OutputPath: filepath.Join(dir, "img1.png")},
		{ID: "img2", Prompt: "a graph", OutputPath: filepath.Join(dir, "img2.png")},
		{ID: "img3", Prompt: "a chart", OutputPath: filepath.Join(dir, "img3.png")},
	}

	summary := runner.Run(context.Background(), reqs)

	if len(summary.Generated) != 2 {
		t.Fatalf("len(Generated) = %d, want 2", len(summary.Generated))
	}
	if len(summary.Skipped) != 1 || summary.Skipped[0].ID != "img2" {
		t.Fatalf("Skipped = %+v, want img2 only", summary.Skipped)
	}

	// the failed unit must not block the ones after it
	if summary.Generated[1].ID != "img3" {
		t.Errorf("Generated[1].ID = %q, want img3", summary.Generated[1].ID)
	}

	for _, res := range summary.Generated {
		if _, err := os.Stat(res.Path); err != nil {
			t.Errorf("generated file missing for %s: %v", res.ID, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "img2.png")); !os.IsNotExist(err) {
		t.Error("skipped unit left a file behind")
	}
}

func TestRunnerTimesOutSlowUnits(t *testing.T) {
	dir := t.TempDir()

	gen := &fakeGenerator{
		responses: map[string][]byte{
			"fast": pngBytes,
			"slow": pngBytes,
		},
		delay: map[string]time.Duration{
			"slow": 5 * time.Second,
		},
	}

	gate := inflight.NewGate(20 * time.Millisecond)
	runner := NewRunner(gen, gate, logging.NewNop())

	summary := runner.Run(context.Background(), []Request{
		{ID: "s1", Prompt: "slow", OutputPath: filepath.Join(dir, "s1.png")},
		{ID: "f1", Prompt: "fast", OutputPath: filepath.Join(dir, "f1.png")},
	})

	if len(summary.Skipped) != 1 || summary.Skipped[0].ID != "s1" {
		t.Fatalf("Skipped = %+v, want s1", summary.Skipped)
	}
	var timeout *inflight.TimeoutError
	if !errors.As(summary.Skipped[0].Err, &timeout) {
		t.Errorf("skip reason = %v, want *TimeoutError", summary.Skipped[0].Err)
	}
	if len(summary.Generated) != 1 || summary.Generated[0].ID != "f1" {
		t.Fatalf("Generated = %+v, want f1", summary.Generated)
	}
	if got := gate.Status("s1"); got != inflight.StatusTimedOut {
		t.Errorf("gate status for s1 = %v, want timed-out", got)
	}
}

func TestRunnerRejectsNonImagePayload(t *testing.T) {
	dir := t.TempDir()

	gen := &fakeGenerator{
		responses: map[string][]byte{
			"bad": []byte("<html>error page</html>"),
		},
	}

	runner := NewRunner(gen, inflight.NewGate(time.Second), logging.NewNop())

	summary := runner.Run(context.Background(), []Request{
		{ID: "b1", Prompt: "bad", OutputPath: filepath.Join(dir, "b1.png")},
	})

	if len(summary.Skipped) != 1 {
		t.Fatalf("Skipped = %+v, want 1 entry", summary.Skipped)
	}
	if _, err := os.Stat(filepath.Join(dir, "b1.png")); !os.IsNotExist(err) {
		t.Error("non-image payload was written to disk")
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	if _, err := Factory(context.Background(), Provider("imaginary"), "key", Options{}); err == nil {
		t.Fatal("Factory() = nil error for unknown provider")
	}
}

func TestPortraitSize(t *testing.T) {
	if got := portraitSize("dall-e-3"); string(got) != "1024x1792" {
		t.Errorf("portraitSize(dall-e-3) = %s", got)
	}
	if got := portraitSize("gpt-image-1"); string(got) != "1024x1536" {
		t.Errorf("portraitSize(gpt-image-1) = %s", got)
	}
}
