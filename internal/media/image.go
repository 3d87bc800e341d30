package media

import (
	"bytes"
	"fmt"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"
)

// target aspect for vertical video canvases
const VerticalAspect = 9.0 / 16.0

var (
	jpegMagic = []byte{0xff, 0xd8, 0xff}
	pngMagic  = []byte{0x89, 'P', 'N', 'G'}
)

// ImageInfo describes a probed still image.
type ImageInfo struct {
	Path   string
	Format string // "png" or "jpeg"
	Width  int
	Height int
}

// width:height ratio
func (i ImageInfo) Aspect() float64 {
	return float64(i.Width) / float64(i.Height)
}

func (i ImageInfo) IsPortrait() bool {
	return i.Height > i.Width
}

// FitsVertical reports whether the image is portrait and sits within
// tolerance of 9:16.
func (i ImageInfo) FitsVertical(tolerance float64) bool {
	if !i.IsPortrait() {
		return false
	}
	delta := i.Aspect() - VerticalAspect
	if delta < 0 {
		delta = -delta
	}
	return delta <= tolerance
}

// LooksLikeImage reports whether data starts with PNG or JPEG magic
// bytes. Generation responses are checked with this before anything is
// written to disk.
func LooksLikeImage(data []byte) bool {
	return bytes.HasPrefix(data, jpegMagic) || bytes.HasPrefix(data, pngMagic)
}

// ProbeImage checks that a file is a real PNG or JPEG and reads its
// pixel dimensions. The magic bytes are checked first so a renamed text
// file fails fast with a clear reason.
func ProbeImage(path string) (*ImageInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("file is empty: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	if !LooksLikeImage(data) {
		return nil, fmt.Errorf("not a PNG or JPEG image: %s", path)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("undecodable image %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image has no pixels: %s", path)
	}

	return &ImageInfo{
		Path:   path,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
