package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	resolveOnce sync.Once
	resolveErr  error
	resolvePath BinaryPaths
)

// Resolve locates the ffmpeg and ffprobe binaries once per process.
// Explicitly configured paths win, then the PAPERREEL_FFMPEG_PATH /
// PAPERREEL_FFPROBE_PATH environment variables, then PATH lookup.
func Resolve(explicit BinaryPaths) (BinaryPaths, error) {
	resolveOnce.Do(func() {
		resolvePath, resolveErr = resolve(explicit)
	})
	return resolvePath, resolveErr
}

func resolve(explicit BinaryPaths) (BinaryPaths, error) {
	ffmpegPath, err := resolveOne("ffmpeg", explicit.FFmpeg, "PAPERREEL_FFMPEG_PATH")
	if err != nil {
		return BinaryPaths{}, err
	}
	ffprobePath, err := resolveOne("ffprobe", explicit.FFprobe, "PAPERREEL_FFPROBE_PATH")
	if err != nil {
		return BinaryPaths{}, err
	}
	return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}

func resolveOne(name, explicit, envVar string) (string, error) {
	if explicit != "" {
		if !fileExists(explicit) {
			return "", fmt.Errorf("configured %s path does not exist: %s", name, explicit)
		}
		return explicit, nil
	}

	if fromEnv := os.Getenv(envVar); fromEnv != "" {
		if !fileExists(fromEnv) {
			return "", fmt.Errorf("%s points to a missing file: %s", envVar, fromEnv)
		}
		return fromEnv, nil
	}

	if found, err := exec.LookPath(name); err == nil {
		return found, nil
	}

	return "", errors.New(name + " not found; install it or set its path in the config")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
