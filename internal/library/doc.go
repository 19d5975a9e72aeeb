/*
Package library serves the photo library: paginated listings of the catalog
and lookups of thumbnails and full-resolution files by asset id.

The pieces, in the order a listing flows through them:

  - CatalogQuery counts the records selected by ListingOptions and reads one
    page of them, newest first.
  - Assembler turns each record into an Asset payload and attaches derived
    files from the cache when asked to.
  - AssetResolver maps an asset id such as "image:42" back to the current
    catalog record for direct lookups.
  - Service ties them together behind an Authorizer and a fixed worker pool.

# Pagination

A listing with a positive limit is bounded: the offset and limit go to the
store and

	hasMore = offset + returned < total

Without a limit the store returns everything, the first offset rows are
skipped here and

	hasMore = min(total, offset) + returned < total

# Errors

Operations return ErrPermissionDenied when access is not granted,
ErrValidation (as *ValidationError) for bad arguments and ErrNotFound when an
id is malformed, the record is gone or its media cannot be decoded. Anything
else is a store or filesystem failure. A thumbnail or full file that fails
while assembling a listing is only logged; the asset is returned without it.
*/
package library
