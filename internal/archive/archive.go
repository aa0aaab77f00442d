// Package archive persists accepted images to the output directory,
// deriving filenames from the item kind, creation time, and — for
// transforms — the original upload name.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/proofsheet/proofsheet-api/internal/domain"
)

// maxFilenameLength caps derived names so they stay portable across
// filesystems.
const maxFilenameLength = 200

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// Archiver writes accepted images under a fixed output directory.
type Archiver struct {
	dir string
}

// New creates an Archiver rooted at dir. The directory is created lazily
// on the first save.
func New(dir string) *Archiver {
	return &Archiver{dir: dir}
}

// Dir returns the output directory.
func (a *Archiver) Dir() string {
	return a.dir
}

// Save writes the item's result image and returns the full path. The
// item must have a result; on any I/O failure nothing is recorded and
// the error is returned so the caller can leave the item untouched.
func (a *Archiver) Save(item *domain.WorkItem) (string, error) {
	if item.Result == nil {
		return "", domain.ErrNoResult
	}

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(a.dir, Filename(item))
	if err := os.WriteFile(path, item.Result.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return path, nil
}

// Filename derives the on-disk name for an accepted item:
// generated_<unix>.<ext> for text-to-image items and
// transformed_<base>_<unix>.<ext> for transforms of uploads.
func Filename(item *domain.WorkItem) string {
	ext := extensionFor(item.Result)
	ts := item.CreatedAt.Unix()

	if item.Kind == domain.KindImageTransform && item.OriginalFilename != "" {
		base := strings.TrimSuffix(item.OriginalFilename, filepath.Ext(item.OriginalFilename))
		return SanitizeFilename(fmt.Sprintf("transformed_%s_%d%s", base, ts, ext))
	}

	return SanitizeFilename(fmt.Sprintf("generated_%d%s", ts, ext))
}

// SanitizeFilename replaces characters that are invalid on common
// filesystems and caps the length, preserving the extension.
func SanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "_")
	if len(name) > maxFilenameLength {
		ext := filepath.Ext(name)
		base := name[:len(name)-len(ext)]
		keep := maxFilenameLength - len(ext)
		if keep < 1 {
			keep = 1
		}
		name = base[:keep] + ext
	}
	return name
}

func extensionFor(img *domain.Image) string {
	if img == nil {
		return ".png"
	}
	switch img.MIMEType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
