package timeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Encode writes a timeline back in time script form. Parsing the output
// yields an identical timeline.
func Encode(w io.Writer, t *Timeline) error {
	var sb strings.Builder

	sb.WriteString(formatSeconds(t.Total))
	sb.WriteString("\n")

	for _, seg := range t.Segments {
		sb.WriteString(fmt.Sprintf("%s-%s %s\n",
			formatSeconds(seg.Start),
			formatSeconds(seg.End),
			seg.ImageRef))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteFile encodes a timeline to a time script file.
func WriteFile(path string, t *Timeline) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var sb strings.Builder
	if err := Encode(&sb, t); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}
