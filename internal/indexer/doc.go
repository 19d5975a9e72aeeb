// Package indexer keeps the photo catalog in step with the media directory.
//
// Each run walks the directory with a pool of probe goroutines and builds one
// catalog record per image or video:
//   - dimensions from the image header, or ffprobe for videos
//   - video duration and recorded creation time
//   - the parent directory as the record's album
//   - the file modification time as its date added
//
// Records are upserted in batches. Rows whose files were not seen during a
// clean run are deleted afterwards; a run with a failed batch leaves them in
// place.
//
// The indexer runs once at startup, then on a fixed interval, and on demand
// through TriggerIndex. Hidden files and directories are skipped.
package indexer
