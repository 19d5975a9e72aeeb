package media

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"photo-library/internal/catalog"
)

// Variant distinguishes the kinds of derived assets.
type Variant string

const (
	// VariantThumbnail is a resized JPEG rendition.
	VariantThumbnail Variant = "thumbnail"
	// VariantFull is a verbatim copy of the original bytes.
	VariantFull Variant = "full"
)

// DefaultMimeType is reported when a record has no mime type.
const DefaultMimeType = "application/octet-stream"

// ThumbnailMimeType is the format every thumbnail is encoded in.
const ThumbnailMimeType = "image/jpeg"

// Key identifies one derived asset. Full-file keys carry no size or quality;
// their extension comes from the source mime type.
type Key struct {
	AssetID        catalog.AssetID
	Variant        Variant
	Width          int
	Height         int
	QualityPercent int
	Extension      string
}

// ThumbnailKey builds the key of a width×height thumbnail at quality in [0,1].
func ThumbnailKey(id catalog.AssetID, width, height int, quality float64) Key {
	return Key{
		AssetID:        id,
		Variant:        VariantThumbnail,
		Width:          width,
		Height:         height,
		QualityPercent: QualityPercent(quality),
		Extension:      ".jpg",
	}
}

// FullKey builds the key of the full-resolution copy of a record.
func FullKey(id catalog.AssetID, mimeType string) Key {
	return Key{
		AssetID:   id,
		Variant:   VariantFull,
		Extension: GuessExtension(mimeType),
	}
}

// FileName returns the deterministic cache file name for k.
func (k Key) FileName() string {
	base := hashAssetID(k.AssetID)
	if k.Variant == VariantThumbnail {
		return fmt.Sprintf("%s_%dx%d_q%d%s", base, k.Width, k.Height, k.QualityPercent, k.Extension)
	}
	return base + k.Extension
}

func hashAssetID(id catalog.AssetID) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

// QualityPercent converts a [0,1] quality to an integer percentage, rounding
// half away from zero and clamping to [0,100].
func QualityPercent(quality float64) int {
	if math.IsNaN(quality) {
		return 0
	}
	pct := math.Round(quality * 100)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return int(pct)
}

var knownExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
}

// GuessExtension picks a file extension for mimeType: a fixed table for the
// common types, else the mime subtype, else ".dat" when the type is unknown.
func GuessExtension(mimeType string) string {
	if mimeType == "" {
		return ".dat"
	}
	if ext, ok := knownExtensions[mimeType]; ok {
		return ext
	}
	return "." + mimeType[strings.IndexByte(mimeType, '/')+1:]
}
