package mediatypes

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Class is the coarse media class of a file.
type Class string

const (
	// ClassImage is a still image.
	ClassImage Class = "image"
	// ClassVideo is a video clip.
	ClassVideo Class = "video"
	// ClassOther is anything the library does not catalog.
	ClassOther Class = "other"
)

// ImageExtensions lists the still image formats the indexer catalogs.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
}

// VideoExtensions lists the video formats the indexer catalogs.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",

	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
}

// ClassOf returns the class for a lowercase extension with its leading dot.
func ClassOf(ext string) Class {
	if ImageExtensions[ext] {
		return ClassImage
	}
	if VideoExtensions[ext] {
		return ClassVideo
	}
	return ClassOther
}

// MimeTypeOf returns the MIME type for a lowercase extension, or "" when the
// extension is not in the table.
func MimeTypeOf(ext string) string {
	return MimeTypes[ext]
}

// IsMediaFile reports whether path has a cataloged extension.
func IsMediaFile(path string) bool {
	return ClassOf(Ext(path)) != ClassOther
}

// Ext returns the lowercase extension of path.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Detect sniffs the content of path and returns its class and MIME type.
// Content wins over the extension; the extension table is the fallback when
// sniffing fails or yields a generic type.
func Detect(path string) (Class, string) {
	ext := Ext(path)

	mt, err := mimetype.DetectFile(path)
	if err == nil {
		mime := mt.String()
		if i := strings.IndexByte(mime, ';'); i >= 0 {
			mime = mime[:i]
		}
		switch {
		case strings.HasPrefix(mime, "image/"):
			return ClassImage, mime
		case strings.HasPrefix(mime, "video/"):
			return ClassVideo, mime
		}
	}

	class := ClassOf(ext)
	if class == ClassOther {
		return ClassOther, ""
	}
	return class, MimeTypeOf(ext)
}
