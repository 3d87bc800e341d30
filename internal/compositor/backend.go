package compositor

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// EncodeOptions tune the final libx264/aac encode.
type EncodeOptions struct {
	CRF          int
	Preset       string
	AudioBitrate string
}

// FFmpegBackend renders a plan in a single ffmpeg invocation: every
// image becomes a looped input scaled and padded onto the canvas, the
// chains are joined by xfade (or concat for hard cuts), and the
// narration track is muxed in underneath.
type FFmpegBackend struct {
	ffmpegPath string
	encode     EncodeOptions
}

func NewFFmpegBackend(ffmpegPath string, encode EncodeOptions) *FFmpegBackend {
	return &FFmpegBackend{ffmpegPath: ffmpegPath, encode: encode}
}

// BackendError reports a failed render. Detail carries the tail of
// ffmpeg's stderr, which is where ffmpeg explains itself.
type BackendError struct {
	Err    error
	Detail string
}

func (e *BackendError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("compositing backend failed: %v\n%s", e.Err, e.Detail)
	}
	return fmt.Sprintf("compositing backend failed: %v", e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Render produces outPath from the plan. Rendering blocks until ffmpeg
// exits; once started it is not cancellable.
func (b *FFmpegBackend) Render(ctx context.Context, plan *Plan, outPath string) error {
	stream, err := b.buildStream(plan, outPath)
	if err != nil {
		return err
	}

	cmd := stream.OverWriteOutput().SetFfmpegPath(b.ffmpegPath).Compile()
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &BackendError{Err: err, Detail: tail(stderr.String(), 1000)}
	}
	return nil
}

func (b *FFmpegBackend) buildStream(plan *Plan, outPath string) (*ffmpeg.Stream, error) {
	if len(plan.Ops) == 0 {
		return nil, fmt.Errorf("plan has no operations")
	}

	canvas := fmt.Sprintf("%d", plan.Width)
	canvasH := fmt.Sprintf("%d", plan.Height)

	chains := make([]*ffmpeg.Stream, len(plan.Ops))
	for i, op := range plan.Ops {
		in := ffmpeg.Input(op.ImagePath, ffmpeg.KwArgs{
			"loop":      1,
			"t":         secondsArg(plan.InputDuration(i)),
			"framerate": plan.FPS,
		})
		chains[i] = in.
			Filter("scale", ffmpeg.Args{canvas, canvasH},
				ffmpeg.KwArgs{"force_original_aspect_ratio": "decrease"}).
			Filter("pad", ffmpeg.Args{canvas, canvasH, "(ow-iw)/2", "(oh-ih)/2"}).
			Filter("setsar", ffmpeg.Args{"1"}).
			Filter("fps", ffmpeg.Args{strconv.Itoa(plan.FPS)}).
			Filter("format", ffmpeg.Args{"yuv420p"})
	}

	video := chains[0]
	for i := 1; i < len(chains); i++ {
		prev := plan.Ops[i-1]
		if fade := prev.FadeOut; fade > 0 {
			// offset is in the accumulated chain's own timeline, which the
			// boundary-centered fades keep identical to the output timeline
			offset := prev.End - fade/2
			video = ffmpeg.Filter([]*ffmpeg.Stream{video, chains[i]}, "xfade",
				ffmpeg.Args{},
				ffmpeg.KwArgs{
					"transition": "fade",
					"duration":   secondsArg(fade),
					"offset":     secondsArg(offset),
				})
		} else {
			video = ffmpeg.Filter([]*ffmpeg.Stream{video, chains[i]}, "concat",
				ffmpeg.Args{},
				ffmpeg.KwArgs{"n": 2, "v": 1, "a": 0})
		}
	}

	audio := ffmpeg.Input(plan.AudioPath)

	return ffmpeg.Output([]*ffmpeg.Stream{video, audio}, outPath, ffmpeg.KwArgs{
		"c:v":      "libx264",
		"preset":   b.encode.Preset,
		"crf":      b.encode.CRF,
		"pix_fmt":  "yuv420p",
		"c:a":      "aac",
		"b:a":      b.encode.AudioBitrate,
		"movflags": "+faststart",
		"t":        secondsArg(plan.Total),
	}), nil
}

func secondsArg(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
