package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the media kind of a catalog record.
type Kind string

const (
	// KindImage marks a still image.
	KindImage Kind = "image"
	// KindVideo marks a video.
	KindVideo Kind = "video"
)

// Valid reports whether k is one of the kinds the library serves.
func (k Kind) Valid() bool {
	return k == KindImage || k == KindVideo
}

// Record is one catalog entry. Timestamps keep the store's native units:
// date taken in milliseconds, date added and date modified in seconds.
type Record struct {
	ID                  int64
	Kind                Kind
	Path                string // relative to the media root
	MimeType            string
	DisplayName         string
	ByteSize            int64
	Width               int
	Height              int
	DurationMillis      int64
	DateTakenMillis     int64
	DateAddedSeconds    int64
	DateModifiedSeconds int64
	AlbumID             string
	AlbumTitle          string
}

// AssetID returns the client-facing identifier of the record.
func (r Record) AssetID() AssetID {
	return NewAssetID(r.Kind, r.ID)
}

// AssetID is the opaque "<kind>:<nativeId>" identifier handed to clients.
type AssetID string

// NewAssetID formats an AssetID from its parts.
func NewAssetID(kind Kind, id int64) AssetID {
	return AssetID(fmt.Sprintf("%s:%d", kind, id))
}

// ParseAssetID splits s into kind and native id. ok is false for anything
// that is not exactly "<image|video>:<integer>" with the integer in the form
// NewAssetID writes, so "image:01" and "image:+1" are rejected.
func ParseAssetID(s string) (kind Kind, id int64, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return "", 0, false
	}

	kind = Kind(parts[0])
	if !kind.Valid() {
		return "", 0, false
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || strconv.FormatInt(id, 10) != parts[1] {
		return "", 0, false
	}
	return kind, id, true
}

// String implements fmt.Stringer.
func (a AssetID) String() string {
	return string(a)
}

// Bucket is one record's album membership as reported by AlbumBuckets.
type Bucket struct {
	ID    string
	Title string
}

// Page pushes offset and limit down into the query. A nil *Page reads the
// whole result set.
type Page struct {
	Offset int
	Limit  int
}

// Stats summarises catalog contents for the metrics collector.
type Stats struct {
	Images int
	Videos int
	Albums int
}
