package form

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/rezai-admin/internal/domain"
	"github.com/felixgeelhaar/rezai-admin/internal/upload"
)

// ParseOption splits an option spec of the form "Label" or "Label=icon".
// The icon is either a hosted URL or a local image file to upload. A "="
// only separates the icon when the text after it names one, so labels
// such as "1+1=2" stay whole.
func ParseOption(spec string) (label, icon string) {
	for i := 0; i < len(spec); i++ {
		if spec[i] != '=' {
			continue
		}
		if candidate := strings.TrimSpace(spec[i+1:]); isIconRef(candidate) {
			return strings.TrimSpace(spec[:i]), candidate
		}
	}
	return strings.TrimSpace(spec), ""
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".bmp": true, ".ico": true,
}

func isIconRef(s string) bool {
	if s == "" {
		return false
	}
	if IsHostedIcon(s) || imageExts[strings.ToLower(filepath.Ext(s))] {
		return true
	}
	info, err := os.Stat(s)
	return err == nil && info.Mode().IsRegular()
}

// FormatOption is the inverse of ParseOption.
func FormatOption(o domain.Option) string {
	if o.Icon == "" {
		return o.Label
	}
	return o.Label + "=" + o.Icon
}

// IsHostedIcon reports whether icon is already a URL rather than a file path.
func IsHostedIcon(icon string) bool {
	return strings.HasPrefix(icon, "http://") || strings.HasPrefix(icon, "https://")
}

// ApplyOptions replaces the form's options with specs. Hosted icons are
// set directly; local icon paths are returned by option index for upload.
func ApplyOptions(f *QuestionForm, specs []string) map[int]string {
	opts := make([]domain.Option, len(specs))
	local := make(map[int]string)
	for i, spec := range specs {
		label, icon := ParseOption(spec)
		opts[i].Label = label
		switch {
		case icon == "":
		case IsHostedIcon(icon):
			opts[i].Icon = icon
		default:
			local[i] = icon
		}
	}
	f.SetOptions(opts)
	return local
}

// BatchUploader uploads several files concurrently.
type BatchUploader interface {
	UploadFiles(ctx context.Context, paths map[int]string) map[int]upload.Result
}

// UploadIcons uploads the local icon files for the given option indexes
// and records each outcome on the form. A failed upload leaves that
// option's icon unchanged and does not affect the others. It returns the
// number of failures.
func UploadIcons(ctx context.Context, f *QuestionForm, up BatchUploader, paths map[int]string) int {
	if len(paths) == 0 {
		return 0
	}

	tickets := make(map[int]Upload, len(paths))
	for i := range paths {
		if t, ok := f.BeginUpload(i); ok {
			tickets[i] = t
		}
	}

	results := up.UploadFiles(ctx, paths)

	failed := 0
	for i, t := range tickets {
		r, ok := results[i]
		if !ok || r.Err != nil {
			f.FailUpload(t)
			failed++
			continue
		}
		f.FinishUpload(t, r.URL)
	}
	return failed
}
