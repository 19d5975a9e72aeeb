// Package mediatypes classifies files found under the media directory.
//
// The indexer uses it to decide which files become catalog records and which
// MIME type they carry:
//
//	class, mime := mediatypes.Detect(path)
//	switch class {
//	case mediatypes.ClassImage:
//	    // catalog as an image record
//	case mediatypes.ClassVideo:
//	    // catalog as a video record
//	}
//
// Detect sniffs file content with mimetype and falls back to the extension
// tables (ImageExtensions, VideoExtensions, MimeTypes) when the content is
// not recognized. IsMediaFile is the cheap extension-only pre-filter used
// while walking directories.
package mediatypes
