// Package filesystem retries os.Stat and os.Open when an NFS mount answers
// with ESTALE, which happens after the file server replaces a file or
// directory under a client's feet. Every other error returns at once.
//
// The catalog opens originals through [Open]; the derived asset cache and the
// cache file handler check existence through [Stat]. Retries are reported to
// an [Observer], labelled with the volume a [VolumeResolver] assigns to the
// path:
//
//	filesystem.SetObserver(metrics.NewFilesystemObserver())
//	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
//	    "media": cfg.MediaDir,
//	    "cache": cfg.CacheDir,
//	}))
package filesystem
