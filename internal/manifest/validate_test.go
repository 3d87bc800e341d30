package manifest

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/paperreel/internal/timeline"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func fixedProbe(d time.Duration) func(context.Context, string) (time.Duration, error) {
	return func(context.Context, string) (time.Duration, error) { return d, nil }
}

func parseTL(t *testing.T, script string) *timeline.Timeline {
	t.Helper()
	tl, err := timeline.Parse(strings.NewReader(script))
	if err != nil {
		t.Fatal(err)
	}
	return tl
}

func TestBuildResolvesEverything(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "imgA.png"), 720, 1280)
	writePNG(t, filepath.Join(dir, "figure_2.png"), 1080, 1920)
	if err := os.WriteFile(filepath.Join(dir, "generated_voice.mp3"), []byte("mp3"), 0644); err != nil {
		t.Fatal(err)
	}

	tl := parseTL(t, "10\n0-4 imgA\n4-10 figure_2.png\n")

	m, err := Build(context.Background(), tl, Params{
		Dir:             dir,
		AudioFile:       "generated_voice.mp3",
		AspectTolerance: 0.10,
		ProbeAudio:      fixedProbe(10 * time.Second),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(m.Images) != 2 {
		t.Fatalf("len(Images) = %d, want 2", len(m.Images))
	}
	a := m.Images["imgA"]
	if !filepath.IsAbs(a.Path) {
		t.Errorf("image path %q is not absolute", a.Path)
	}
	if a.Width != 720 || a.Height != 1280 {
		t.Errorf("imgA dims = %dx%d", a.Width, a.Height)
	}
	if m.Audio.Duration != 10*time.Second {
		t.Errorf("audio duration = %v, want 10s", m.Audio.Duration)
	}
	if !filepath.IsAbs(m.Audio.Path) {
		t.Errorf("audio path %q is not absolute", m.Audio.Path)
	}
}

func TestBuildCollectsAllProblems(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "imgA.png"), 720, 1280)
	// imgC and the narration track are both absent

	tl := parseTL(t, "12\n0-4 imgA\n4-8 imgC\n8-12 imgA\n")

	_, err := Build(context.Background(), tl, Params{
		Dir:             dir,
		AudioFile:       "generated_voice.mp3",
		AspectTolerance: 0.10,
		ProbeAudio:      fixedProbe(12 * time.Second),
	})
	if err == nil {
		t.Fatal("Build() = nil error with missing resources")
	}

	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("error = %T, want *ResolutionError", err)
	}
	if len(resErr.Problems) != 2 {
		t.Fatalf("len(Problems) = %d, want 2: %v", len(resErr.Problems), err)
	}
	if resErr.Problems[0].Ref != "imgC" {
		t.Errorf("Problems[0].Ref = %q, want imgC", resErr.Problems[0].Ref)
	}
	if resErr.Problems[1].Ref != "audio" {
		t.Errorf("Problems[1].Ref = %q, want audio", resErr.Problems[1].Ref)
	}
	if !strings.Contains(err.Error(), "imgC") {
		t.Errorf("error message %q does not name imgC", err)
	}
}

func TestResolveImageRef(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "both.png"), 720, 1280)
	writePNG(t, filepath.Join(dir, "both.jpg"), 720, 1280)
	writePNG(t, filepath.Join(dir, "solo.png"), 720, 1280)

	t.Run("bare ref with one match", func(t *testing.T) {
		path, problem := resolveImageRef(dir, "solo")
		if problem != nil {
			t.Fatalf("problem = %v", problem)
		}
		if filepath.Base(path) != "solo.png" {
			t.Errorf("path = %q", path)
		}
	})

	t.Run("ambiguous bare ref", func(t *testing.T) {
		_, problem := resolveImageRef(dir, "both")
		if problem == nil || !strings.Contains(problem.Reason, "ambiguous") {
			t.Fatalf("problem = %v, want ambiguity", problem)
		}
	})

	t.Run("explicit extension bypasses ambiguity", func(t *testing.T) {
		path, problem := resolveImageRef(dir, "both.jpg")
		if problem != nil {
			t.Fatalf("problem = %v", problem)
		}
		if filepath.Base(path) != "both.jpg" {
			t.Errorf("path = %q", path)
		}
	})

	t.Run("explicit extension missing file", func(t *testing.T) {
		_, problem := resolveImageRef(dir, "gone.png")
		if problem == nil || !strings.Contains(problem.Reason, "not found") {
			t.Fatalf("problem = %v, want not-found", problem)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, problem := resolveImageRef(dir, "anim.gif")
		if problem == nil || !strings.Contains(problem.Reason, "unsupported") {
			t.Fatalf("problem = %v, want unsupported-format", problem)
		}
	})
}

func TestBuildRejectsBadImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "wide.png"), 1280, 720)
	writePNG(t, filepath.Join(dir, "squarish.png"), 1000, 1100)
	if err := os.WriteFile(filepath.Join(dir, "fake.png"), []byte("text"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "generated_voice.mp3"), []byte("mp3"), 0644); err != nil {
		t.Fatal(err)
	}

	tl := parseTL(t, "9\n0-3 wide\n3-6 squarish\n6-9 fake\n")

	_, problems := Inspect(context.Background(), tl, Params{
		Dir:             dir,
		AudioFile:       "generated_voice.mp3",
		AspectTolerance: 0.10,
		ProbeAudio:      fixedProbe(9 * time.Second),
	})

	if len(problems) != 3 {
		t.Fatalf("len(problems) = %d, want 3: %+v", len(problems), problems)
	}

	byRef := map[string]string{}
	for _, p := range problems {
		byRef[p.Ref] = p.Reason
	}
	if !strings.Contains(byRef["wide"], "not portrait") {
		t.Errorf("wide reason = %q", byRef["wide"])
	}
	if !strings.Contains(byRef["squarish"], "outside the accepted vertical range") {
		t.Errorf("squarish reason = %q", byRef["squarish"])
	}
	if !strings.Contains(byRef["fake"], "not a PNG or JPEG") {
		t.Errorf("fake reason = %q", byRef["fake"])
	}
}

func TestBuildReportsAudioProbeFailure(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "imgA.png"), 720, 1280)
	if err := os.WriteFile(filepath.Join(dir, "generated_voice.mp3"), []byte("junk"), 0644); err != nil {
		t.Fatal(err)
	}

	tl := parseTL(t, "10\n0-10 imgA\n")

	_, err := Build(context.Background(), tl, Params{
		Dir:             dir,
		AudioFile:       "generated_voice.mp3",
		AspectTolerance: 0.10,
		ProbeAudio: func(context.Context, string) (time.Duration, error) {
			return 0, errors.New("no decodable stream")
		},
	})

	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("error = %T, want *ResolutionError", err)
	}
	if len(resErr.Problems) != 1 || resErr.Problems[0].Ref != "audio" {
		t.Fatalf("Problems = %+v", resErr.Problems)
	}
	if !strings.Contains(resErr.Problems[0].Reason, "no decodable stream") {
		t.Errorf("Reason = %q", resErr.Problems[0].Reason)
	}
}
