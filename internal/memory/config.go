package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"
)

const (
	// DefaultMemoryRatio is the share of the container limit given to the Go
	// heap. The rest is left to libvips and ffmpeg, which allocate outside it.
	DefaultMemoryRatio = 0.75

	// EnvMemoryLimit holds the container memory limit in bytes.
	EnvMemoryLimit = "MEMORY_LIMIT"
	// EnvMemoryRatio overrides DefaultMemoryRatio.
	EnvMemoryRatio = "MEMORY_RATIO"
)

// LimitSource says where the soft memory limit came from.
type LimitSource string

const (
	SourceNone       LimitSource = "none"
	SourceGoMemLimit LimitSource = "GOMEMLIMIT"
	SourceContainer  LimitSource = "MEMORY_LIMIT"
)

// LimitResult reports what ConfigureFromEnv decided.
type LimitResult struct {
	Source         LimitSource
	ContainerLimit int64 // bytes, 0 when unknown
	GoMemLimit     int64 // bytes, 0 when no limit is in effect
	Ratio          float64
}

// Configured reports whether a soft limit is in effect.
func (r LimitResult) Configured() bool {
	return r.GoMemLimit > 0
}

// ConfigureFromEnv sets the runtime soft memory limit. An explicit GOMEMLIMIT
// wins; otherwise the limit is MEMORY_LIMIT scaled by MEMORY_RATIO. Call it
// early in main before the decoders start allocating.
func ConfigureFromEnv() LimitResult {
	return configure(os.Getenv, debug.SetMemoryLimit)
}

func configure(getenv func(string) string, setLimit func(int64) int64) LimitResult {
	if v := getenv("GOMEMLIMIT"); v != "" {
		res := LimitResult{Source: SourceGoMemLimit}
		if limit := setLimit(-1); limit > 0 && limit < math.MaxInt64 {
			res.GoMemLimit = limit
		}
		log.Info("GOMEMLIMIT set via environment: %s", v)
		return res
	}

	raw := getenv(EnvMemoryLimit)
	if raw == "" {
		log.Debug("%s not set, leaving the soft memory limit alone", EnvMemoryLimit)
		return LimitResult{Source: SourceNone}
	}

	containerLimit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || containerLimit <= 0 {
		log.Warn("Ignoring invalid %s %q", EnvMemoryLimit, raw)
		return LimitResult{Source: SourceNone}
	}

	ratio := DefaultMemoryRatio
	if v := getenv(EnvMemoryRatio); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		switch {
		case err != nil:
			log.Warn("Failed to parse %s %q: %v, using %.2f", EnvMemoryRatio, v, err, DefaultMemoryRatio)
		case parsed <= 0 || parsed > 1:
			log.Warn("%s %q out of range (0,1], using %.2f", EnvMemoryRatio, v, DefaultMemoryRatio)
		default:
			ratio = parsed
		}
	}

	goLimit := int64(float64(containerLimit) * ratio)
	setLimit(goLimit)

	log.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s container limit)",
		formatBytes(goLimit), ratio*100, formatBytes(containerLimit))

	return LimitResult{
		Source:         SourceContainer,
		ContainerLimit: containerLimit,
		GoMemLimit:     goLimit,
		Ratio:          ratio,
	}
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
