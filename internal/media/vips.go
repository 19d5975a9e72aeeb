package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"photo-library/internal/catalog"
	"photo-library/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
)

var (
	vipsMu          sync.Mutex
	vipsInitialized bool
	vipsAvailable   bool
	vipsLog         = logging.For("vips")
)

// vipsLogSettings maps the application log level onto the libvips level and
// a handler that forwards messages into our logger.
func vipsLogSettings(level logging.LogLevel) (vips.LogLevel, func(string, vips.LogLevel, string)) {
	forward := func(minimum vips.LogLevel) func(string, vips.LogLevel, string) {
		return func(domain string, l vips.LogLevel, msg string) {
			if l > minimum {
				return
			}
			switch {
			case l <= vips.LogLevelCritical:
				vipsLog.Error("[%s] %s", domain, msg)
			case l == vips.LogLevelWarning:
				vipsLog.Warn("[%s] %s", domain, msg)
			default:
				vipsLog.Debug("[%s] %s", domain, msg)
			}
		}
	}

	switch level {
	case logging.LevelDebug:
		return vips.LogLevelInfo, forward(vips.LogLevelDebug)
	case logging.LevelInfo:
		return vips.LogLevelWarning, forward(vips.LogLevelWarning)
	case logging.LevelWarn:
		return vips.LogLevelError, forward(vips.LogLevelError)
	default:
		return vips.LogLevelCritical, forward(vips.LogLevelCritical)
	}
}

// InitVips starts libvips once per process. Later calls are no-ops.
func InitVips() error {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsInitialized {
		return nil
	}

	level, handler := vipsLogSettings(logging.GetLevel())
	vips.LoggingSettings(handler, level)

	// One operation at a time keeps memory flat while thumbnailing large
	// originals; the library pool already bounds concurrency.
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsInitialized = true
	vipsAvailable = true
	vipsLog.Info("libvips initialized (version: %s)", vips.Version)
	return nil
}

// ShutdownVips releases libvips. govips cannot restart afterwards.
func ShutdownVips() {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		vipsLog.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable reports whether libvips has been initialized.
func IsVipsAvailable() bool {
	vipsMu.Lock()
	defer vipsMu.Unlock()
	return vipsAvailable
}

// VipsDecoder shrinks images at decode time with libvips. It is the
// preferred image decoder when libvips is running.
type VipsDecoder struct{}

// Name implements Decoder.
func (VipsDecoder) Name() string { return "vips" }

// Supports implements Decoder.
func (VipsDecoder) Supports(kind catalog.Kind) bool {
	return kind == catalog.KindImage && IsVipsAvailable()
}

// Decode implements Decoder.
func (VipsDecoder) Decode(_ context.Context, path string, width, height int) (image.Image, error) {
	if !IsVipsAvailable() {
		return nil, fmt.Errorf("libvips not available")
	}

	ref, err := vips.LoadImageFromFile(path, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("vips failed to load image: %w", err)
	}
	defer ref.Close()

	vipsLog.Debug("loaded %s: %dx%d, shrinking to %dx%d",
		filepath.Base(path), ref.Width(), ref.Height(), width, height)

	// Shrink close to the target; the cache does the exact resize.
	if err := ref.Thumbnail(width, height, vips.InterestingNone); err != nil {
		return nil, fmt.Errorf("vips resize failed: %w", err)
	}

	buf, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, fmt.Errorf("vips export failed: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to decode vips output: %w", err)
	}
	return img, nil
}
