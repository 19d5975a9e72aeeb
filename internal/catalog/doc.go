// Package catalog is the SQLite-backed store of media records that the
// library service reads from.
//
// Every record is an image or a video discovered under the media directory.
// Records are addressed internally by their integer row id and externally by
// an AssetID of the form "<kind>:<id>". Listings are ordered newest-added
// first; the store offers counted, optionally paged iteration, point lookups
// by id, per-record album buckets, and access to the original file bytes.
//
// Writes go through a Batch, which the indexer uses to upsert the records it
// sees on a scan and delete the ones that disappeared.
package catalog
