package project

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Well-known file names inside a project resource directory.
const (
	AudioFileName    = "generated_voice.mp3"
	TimelineFileName = "time_script.txt"
	ScriptFileName   = "script.txt"
	PaperFileName    = "paper.pdf"
)

const (
	dirPrefix = "video_"
	dirSuffix = "_resources"

	imagePrefix     = "paper_image_"
	generatedSuffix = "_generated.png"
	promptSuffix    = "_prompt.txt"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Project is one video's resource directory, addressed by the short id
// embedded in the directory name video_<datestamp>_<id>_resources.
type Project struct {
	ID        string
	DateStamp string
	Dir       string
}

// New creates a fresh resource directory under root with a generated
// short id and today's date stamp.
func New(root string) (*Project, error) {
	id := shortID()
	stamp := time.Now().Format("20060102")
	dir := filepath.Join(root, dirPrefix+stamp+"_"+id+dirSuffix)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}
	return &Project{ID: id, DateStamp: stamp, Dir: dir}, nil
}

// Find locates the resource directory for id under root. Exactly one
// directory must match; the date stamp is recovered from its name, so a
// project assembled days after its resources were laid down keeps its
// original stamp.
func Find(root, id string) (*Project, error) {
	if !idPattern.MatchString(id) {
		return nil, fmt.Errorf("invalid project id %q", id)
	}

	matches, err := filepath.Glob(filepath.Join(root, dirPrefix+"*_"+id+dirSuffix))
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.IsDir() {
			dirs = append(dirs, m)
		}
	}

	switch len(dirs) {
	case 0:
		return nil, fmt.Errorf("no resource directory for project %s under %s", id, root)
	case 1:
	default:
		sort.Strings(dirs)
		return nil, fmt.Errorf("project id %s is ambiguous: %s", id, strings.Join(dirs, ", "))
	}

	dir := dirs[0]
	base := filepath.Base(dir)
	stamp := strings.TrimSuffix(strings.TrimPrefix(base, dirPrefix), "_"+id+dirSuffix)
	return &Project{ID: id, DateStamp: stamp, Dir: dir}, nil
}

func (p *Project) AudioPath() string    { return filepath.Join(p.Dir, AudioFileName) }
func (p *Project) TimelinePath() string { return filepath.Join(p.Dir, TimelineFileName) }
func (p *Project) ScriptPath() string   { return filepath.Join(p.Dir, ScriptFileName) }

// OutputFileName is the final video name, sharing the project's date
// stamp and id.
func (p *Project) OutputFileName() string {
	return fmt.Sprintf("%s%s_%s.mp4", dirPrefix, p.DateStamp, p.ID)
}

// PromptFile is one image prompt awaiting (or already paired with) a
// generated image.
type PromptFile struct {
	ID   string
	Path string
}

// PromptFiles lists the image prompts in the project, sorted by id.
func (p *Project) PromptFiles() ([]PromptFile, error) {
	matches, err := filepath.Glob(filepath.Join(p.Dir, imagePrefix+"*"+promptSuffix))
	if err != nil {
		return nil, err
	}

	prompts := make([]PromptFile, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		id := strings.TrimSuffix(strings.TrimPrefix(base, imagePrefix), promptSuffix)
		if id == "" || strings.Contains(id, "_prompt") {
			continue
		}
		prompts = append(prompts, PromptFile{ID: id, Path: m})
	}
	sort.Slice(prompts, func(i, j int) bool { return prompts[i].ID < prompts[j].ID })
	return prompts, nil
}

// GeneratedImagePath is where the generated image for an image id lands.
func (p *Project) GeneratedImagePath(imageID string) string {
	return filepath.Join(p.Dir, GeneratedImageName(imageID))
}

// GeneratedImageName returns the file name for a generated image.
func GeneratedImageName(imageID string) string {
	return imagePrefix + imageID + generatedSuffix
}

// FoundImageName returns the file name for an image sourced from the
// paper itself rather than generated. Ext carries the leading dot.
func FoundImageName(imageID, ext string) string {
	return imagePrefix + imageID + "_found" + ext
}

// PromptFileName returns the file name holding an image's prompt text.
func PromptFileName(imageID string) string {
	return imagePrefix + imageID + promptSuffix
}

// NewImageID mints a short correlation id for a new image unit.
func NewImageID() string {
	return shortID()
}

func shortID() string {
	return uuid.NewString()[:8]
}
