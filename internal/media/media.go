// Package media interprets the free-form attached_media field of a case:
// splitting it into individual references, classifying each as image or
// video, and resolving relative references against the storage base.
package media

import (
	"regexp"
	"strings"
)

// Kind classifies a media reference for display.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

var (
	splitRe = regexp.MustCompile(`[,\n;]+`)

	videoExts = []string{".mp4", ".webm", ".ogg", ".mov", ".avi", ".m4v"}
)

// Split breaks an attached_media value into individual references. Separators
// are commas, newlines, and semicolons; tokens are trimmed and empty tokens
// dropped. Order is preserved.
func Split(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, tok := range splitRe.Split(raw, -1) {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// DetectKind classifies a single reference. Anything containing a known video
// extension or the word "video" is a video; everything else is an image.
func DetectKind(ref string) Kind {
	lower := strings.ToLower(ref)
	for _, ext := range videoExts {
		if strings.Contains(lower, ext) {
			return KindVideo
		}
	}
	if strings.Contains(lower, "video") {
		return KindVideo
	}
	return KindImage
}

// Resolver turns media references into fetchable URLs.
type Resolver struct {
	// StorageBase is prefixed onto references that are not already
	// absolute URLs, e.g. a bucket or static-file host.
	StorageBase string
}

// URL resolves a reference. Absolute http(s) references pass through
// untouched; anything else is joined to the storage base.
func (r Resolver) URL(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	base := strings.TrimRight(r.StorageBase, "/")
	return base + "/" + strings.TrimLeft(ref, "/")
}

// Filename extracts the last path segment of a reference, dropping any query
// string. Used for display labels in the gallery.
func Filename(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}
	return ref
}
