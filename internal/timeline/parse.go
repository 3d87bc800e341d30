package timeline

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Parse reads a time script. The first non-blank line is the total
// narration duration in seconds; every following non-blank line is
// "<start>-<end> <image>" with seconds timestamps. Segments must start
// at 0, stay contiguous, and end exactly at the declared total.
func Parse(r io.Reader) (*Timeline, error) {
	scanner := bufio.NewScanner(r)

	var (
		total       time.Duration
		haveTotal   bool
		segments    []Segment
		lineNum     int
		lastSegLine int
	)

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !haveTotal {
			secs, err := parseSeconds(line)
			if err != nil {
				return nil, &ParseError{
					Line:   lineNum,
					Reason: fmt.Sprintf("total duration must be a number of seconds, got %q", line),
				}
			}
			if secs <= 0 {
				return nil, &ParseError{
					Line:   lineNum,
					Reason: fmt.Sprintf("total duration must be positive, got %q", line),
				}
			}
			total = secs
			haveTotal = true
			continue
		}

		seg, perr := parseSegmentLine(line, lineNum)
		if perr != nil {
			return nil, perr
		}

		if len(segments) == 0 {
			if seg.Start != 0 {
				return nil, &ParseError{
					Line:   lineNum,
					Reason: fmt.Sprintf("first segment must start at 0, starts at %s", formatSeconds(seg.Start)),
				}
			}
		} else {
			prev := segments[len(segments)-1]
			if seg.Start < prev.End {
				return nil, &ParseError{
					Line:   lineNum,
					Reason: fmt.Sprintf("segment starts at %s, overlapping the previous segment ending at %s",
						formatSeconds(seg.Start), formatSeconds(prev.End)),
				}
			}
			if seg.Start > prev.End {
				return nil, &ParseError{
					Line:   lineNum,
					Reason: fmt.Sprintf("gap before segment: previous segment ends at %s, this one starts at %s",
						formatSeconds(prev.End), formatSeconds(seg.Start)),
				}
			}
		}

		segments = append(segments, seg)
		lastSegLine = lineNum
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading time script: %w", err)
	}

	if !haveTotal {
		return nil, &ParseError{Line: 1, Reason: "time script is empty"}
	}
	if len(segments) == 0 {
		return nil, &ParseError{Line: lineNum, Reason: "time script declares no segments"}
	}
	if last := segments[len(segments)-1]; last.End != total {
		return nil, &ParseError{
			Line: lastSegLine,
			Reason: fmt.Sprintf("segments end at %s but the declared total is %s",
				formatSeconds(last.End), formatSeconds(total)),
		}
	}

	return &Timeline{Total: total, Segments: segments}, nil
}

// ParseFile opens and parses a time script file.
func ParseFile(path string) (*Timeline, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open time script: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

func parseSegmentLine(line string, lineNum int) (Segment, *ParseError) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Segment{}, &ParseError{
			Line:   lineNum,
			Reason: fmt.Sprintf(`expected "<start>-<end> <image>", got %q`, line),
		}
	}

	timeRange, ref := fields[0], fields[1]
	parts := strings.Split(timeRange, "-")
	if len(parts) != 2 {
		return Segment{}, &ParseError{
			Line:   lineNum,
			Reason: fmt.Sprintf("time range must be <start>-<end>, got %q", timeRange),
		}
	}

	start, err := parseSeconds(parts[0])
	if err != nil {
		return Segment{}, &ParseError{
			Line:   lineNum,
			Reason: fmt.Sprintf("invalid start timestamp %q", parts[0]),
		}
	}
	end, err := parseSeconds(parts[1])
	if err != nil {
		return Segment{}, &ParseError{
			Line:   lineNum,
			Reason: fmt.Sprintf("invalid end timestamp %q", parts[1]),
		}
	}
	if end <= start {
		return Segment{}, &ParseError{
			Line: lineNum,
			Reason: fmt.Sprintf("segment end %s is not after start %s",
				formatSeconds(end), formatSeconds(start)),
		}
	}

	if reason := checkRef(ref); reason != "" {
		return Segment{}, &ParseError{Line: lineNum, Reason: reason}
	}

	return Segment{Start: start, End: end, ImageRef: ref}, nil
}

// image references are bare names resolved inside the resource
// directory, never paths
func checkRef(ref string) string {
	if strings.ContainsAny(ref, `/\`) {
		return fmt.Sprintf("image reference %q must be a bare file name, not a path", ref)
	}
	if ref == "." || ref == ".." {
		return fmt.Sprintf("image reference %q is not a file name", ref)
	}
	return ""
}

func parseSeconds(s string) (time.Duration, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %s", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative timestamp: %s", s)
	}
	return time.Duration(math.Round(f * float64(time.Second))), nil
}
