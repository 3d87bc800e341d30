package media

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
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

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestProbeImage(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "a.png")
	writePNG(t, pngPath, 720, 1280)

	jpgPath := filepath.Join(dir, "b.jpg")
	writeJPEG(t, jpgPath, 640, 480)

	t.Run("png", func(t *testing.T) {
		info, err := ProbeImage(pngPath)
		if err != nil {
			t.Fatalf("ProbeImage() error = %v", err)
		}
		if info.Format != "png" || info.Width != 720 || info.Height != 1280 {
			t.Errorf("info = %+v", info)
		}
		if !info.IsPortrait() {
			t.Error("720x1280 should be portrait")
		}
	})

	t.Run("jpeg", func(t *testing.T) {
		info, err := ProbeImage(jpgPath)
		if err != nil {
			t.Fatalf("ProbeImage() error = %v", err)
		}
		if info.Format != "jpeg" || info.Width != 640 {
			t.Errorf("info = %+v", info)
		}
		if info.IsPortrait() {
			t.Error("640x480 should not be portrait")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ProbeImage(filepath.Join(dir, "nope.png")); err == nil {
			t.Fatal("ProbeImage() = nil error for a missing file")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.png")
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
		_, err := ProbeImage(path)
		if err == nil || !strings.Contains(err.Error(), "empty") {
			t.Fatalf("ProbeImage() error = %v, want empty-file error", err)
		}
	})

	t.Run("renamed text file", func(t *testing.T) {
		path := filepath.Join(dir, "fake.png")
		if err := os.WriteFile(path, []byte("not pixels"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := ProbeImage(path)
		if err == nil || !strings.Contains(err.Error(), "not a PNG or JPEG") {
			t.Fatalf("ProbeImage() error = %v, want magic-byte error", err)
		}
	})

	t.Run("truncated png", func(t *testing.T) {
		data, err := os.ReadFile(pngPath)
		if err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(dir, "cut.png")
		if err := os.WriteFile(path, data[:12], 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ProbeImage(path); err == nil {
			t.Fatal("ProbeImage() = nil error for a truncated file")
		}
	})
}

func TestFitsVertical(t *testing.T) {
	tests := []struct {
		name      string
		w, h      int
		tolerance float64
		want      bool
	}{
		{"exact 9:16", 720, 1280, 0.10, true},
		{"portrait near 9:16", 1080, 1920, 0.10, true},
		{"portrait but squarish", 1000, 1100, 0.10, false},
		{"landscape", 1280, 720, 0.10, false},
		{"square", 800, 800, 0.10, false},
		{"loose tolerance admits squarish", 1000, 1100, 0.35, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ImageInfo{Width: tt.w, Height: tt.h}
			if got := info.FitsVertical(tt.tolerance); got != tt.want {
				t.Errorf("FitsVertical(%v) = %v for %dx%d, want %v",
					tt.tolerance, got, tt.w, tt.h, tt.want)
			}
		})
	}
}
