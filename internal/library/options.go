package library

import (
	"math"

	"photo-library/internal/catalog"
)

// Defaults applied to listing options and thumbnail lookups.
const (
	DefaultThumbnailWidth   = 512
	DefaultThumbnailHeight  = 384
	DefaultThumbnailQuality = 0.5
)

// ListingRequest is the raw form of a listing call. Nil fields take their
// defaults.
type ListingRequest struct {
	Offset                    *int     `json:"offset,omitempty"`
	Limit                     *int     `json:"limit,omitempty"`
	IncludeImages             *bool    `json:"includeImages,omitempty"`
	IncludeVideos             *bool    `json:"includeVideos,omitempty"`
	IncludeAlbumData          *bool    `json:"includeAlbumData,omitempty"`
	IncludeCloudData          *bool    `json:"includeCloudData,omitempty"`
	UseOriginalFileNames      *bool    `json:"useOriginalFileNames,omitempty"`
	ThumbnailWidth            *int     `json:"thumbnailWidth,omitempty"`
	ThumbnailHeight           *int     `json:"thumbnailHeight,omitempty"`
	ThumbnailQuality          *float64 `json:"thumbnailQuality,omitempty"`
	IncludeFullResolutionData *bool    `json:"includeFullResolutionData,omitempty"`
}

// ListingOptions are validated listing parameters. A zero Limit means the
// listing is unbounded.
type ListingOptions struct {
	Offset                    int
	Limit                     int
	IncludeImages             bool
	IncludeVideos             bool
	IncludeAlbumData          bool
	IncludeCloudData          bool
	UseOriginalFileNames      bool
	ThumbnailWidth            int
	ThumbnailHeight           int
	ThumbnailQuality          float64
	IncludeFullResolutionData bool
}

// DefaultListingOptions returns the options used for an empty request.
func DefaultListingOptions() ListingOptions {
	return ListingOptions{
		IncludeImages:    true,
		IncludeCloudData: true,
		ThumbnailWidth:   DefaultThumbnailWidth,
		ThumbnailHeight:  DefaultThumbnailHeight,
		ThumbnailQuality: DefaultThumbnailQuality,
	}
}

// NewListingOptions validates req and fills in defaults. A negative offset
// or limit is a validation error; a zero limit is the same as no limit.
func NewListingOptions(req ListingRequest) (ListingOptions, error) {
	opts := DefaultListingOptions()

	if req.Offset != nil {
		if *req.Offset < 0 {
			return ListingOptions{}, invalid("offset must be greater than or equal to 0")
		}
		opts.Offset = *req.Offset
	}
	if req.Limit != nil {
		if *req.Limit < 0 {
			return ListingOptions{}, invalid("limit must be greater than or equal to 0")
		}
		opts.Limit = *req.Limit
	}

	setBool(&opts.IncludeImages, req.IncludeImages)
	setBool(&opts.IncludeVideos, req.IncludeVideos)
	setBool(&opts.IncludeAlbumData, req.IncludeAlbumData)
	setBool(&opts.IncludeCloudData, req.IncludeCloudData)
	setBool(&opts.UseOriginalFileNames, req.UseOriginalFileNames)
	setBool(&opts.IncludeFullResolutionData, req.IncludeFullResolutionData)
	if !opts.IncludeImages && !opts.IncludeVideos {
		opts.IncludeImages = true
	}

	if req.ThumbnailWidth != nil {
		opts.ThumbnailWidth = max(0, *req.ThumbnailWidth)
	}
	if req.ThumbnailHeight != nil {
		opts.ThumbnailHeight = max(0, *req.ThumbnailHeight)
	}
	if req.ThumbnailQuality != nil && !math.IsNaN(*req.ThumbnailQuality) {
		opts.ThumbnailQuality = math.Min(1, math.Max(0, *req.ThumbnailQuality))
	}

	return opts, nil
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// Bounded reports whether the listing has a limit.
func (o ListingOptions) Bounded() bool {
	return o.Limit > 0
}

// Kinds returns the record kinds selected by the options.
func (o ListingOptions) Kinds() []catalog.Kind {
	var kinds []catalog.Kind
	if o.IncludeImages {
		kinds = append(kinds, catalog.KindImage)
	}
	if o.IncludeVideos {
		kinds = append(kinds, catalog.KindVideo)
	}
	return kinds
}

// WantsThumbnail reports whether listed assets carry a thumbnail.
func (o ListingOptions) WantsThumbnail() bool {
	return o.ThumbnailWidth > 0 && o.ThumbnailHeight > 0
}
