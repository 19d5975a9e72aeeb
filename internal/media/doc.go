/*
Package media owns the derived-asset cache: JPEG thumbnails and verbatim
full-resolution copies of catalog records, generated on first request and
reused forever after.

# Naming

Every derived asset has a deterministic file name built from the SHA-256 of
its asset id:

	<sha256>_<w>x<h>_q<pct>.jpg   thumbnails/
	<sha256><ext>                 files/

The extension of a full copy comes from the record's MIME type (see
GuessExtension). A lookup that finds the file on disk returns it without
checking whether the original changed.

# Generation

Thumbnails are decoded by the first Decoder in a ranked list that accepts the
record kind and succeeds:

	VipsDecoder    libvips with decode-time shrinking, when InitVips ran
	ImagingDecoder pure Go decode with EXIF orientation
	FFmpegDecoder  a frame grabbed by ffmpeg, for videos and odd images

The bitmap is resized to exactly the requested size and encoded as JPEG. When
nothing can decode the original the lookup reports not found.

Files are written to a unique temp name and renamed into place, so a reader
never sees a partial file. Concurrent misses for the same key are coalesced
with singleflight.

# Usage

	cache, err := media.New(media.Config{
	    Dir:          "/cache",
	    PublicPrefix: "/cache",
	}, store)

	entry, err := cache.Thumbnail(ctx, rec, 512, 384, 0.5)
	if entry == nil && err == nil {
	    // not found
	}
*/
package media
