// Package upload checks and sanitizes user supplied background images
// before they are written to disk.
package upload

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrFileTypeNotAllowed is returned when an uploaded file's extension is not
// in the allow-list.
var ErrFileTypeNotAllowed = errors.New("upload: file type not allowed")

// RejectionMessage is the text shown to a user whose upload was refused.
const RejectionMessage = "File type not allowed. Only PNG, JPG, JPEG, and GIF are allowed."

var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// Allowed reports whether filename carries one of the accepted image
// extensions. The comparison is case-insensitive.
func Allowed(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(filename[i+1:])]
	return ok
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// SecureFilename reduces an uploaded name to a flat ASCII file name that is
// safe to join onto the upload directory. The extension is kept, lower-cased;
// a stem that sanitizes to nothing becomes "background".
func SecureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	stem, ext := name, ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		stem, ext = name[:i], strings.ToLower(name[i+1:])
	}
	stem = unsafeChars.ReplaceAllString(strings.Join(strings.Fields(stem), "_"), "")
	stem = strings.Trim(stem, "_-")
	if stem == "" {
		stem = "background"
	}
	ext = unsafeChars.ReplaceAllString(ext, "")
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}
