package filesystem

import (
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
)

const unknownVolume = "unknown"

// VolumeResolver names the configured volume a path lives on, for metric
// labels. The deepest matching mount wins.
type VolumeResolver struct {
	mounts []mount
}

type mount struct {
	prefix string // absolute, with trailing separator
	name   string
}

// NewVolumeResolver builds a resolver from volume name to directory:
//
//	NewVolumeResolver(map[string]string{
//	    "media": "/media",
//	    "cache": "/cache",
//	})
func NewVolumeResolver(volumes map[string]string) *VolumeResolver {
	vr := &VolumeResolver{mounts: make([]mount, 0, len(volumes))}
	for name, dir := range volumes {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		vr.mounts = append(vr.mounts, mount{prefix: withSep(dir), name: name})
	}
	slices.SortFunc(vr.mounts, func(a, b mount) int {
		return len(b.prefix) - len(a.prefix)
	})
	return vr
}

// Resolve returns the volume holding path, or "unknown".
func (vr *VolumeResolver) Resolve(path string) string {
	if vr == nil {
		return unknownVolume
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return unknownVolume
	}
	abs = withSep(abs)
	for _, m := range vr.mounts {
		if strings.HasPrefix(abs, m.prefix) {
			return m.name
		}
	}
	return unknownVolume
}

func withSep(p string) string {
	if strings.HasSuffix(p, string(filepath.Separator)) {
		return p
	}
	return p + string(filepath.Separator)
}

var defaultResolver atomic.Pointer[VolumeResolver]

// SetDefaultVolumeResolver installs the resolver used by the package-level
// Stat and Open. Call it once the volume directories are known.
func SetDefaultVolumeResolver(vr *VolumeResolver) {
	defaultResolver.Store(vr)
}
