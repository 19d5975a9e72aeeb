package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os/exec"
	"time"

	"photo-library/internal/catalog"
	"photo-library/internal/metrics"
)

// Decoder turns an original file into pixels. Width and height are the
// requested thumbnail size; decoders may use them to shrink early but the
// cache always resizes the result to the exact size.
type Decoder interface {
	Name() string
	Supports(kind catalog.Kind) bool
	Decode(ctx context.Context, path string, width, height int) (image.Image, error)
}

// ErrUndecodable is returned when no decoder could read the original.
var ErrUndecodable = errors.New("media could not be decoded")

// DefaultDecoders returns the decoders in preference order: libvips when
// running, then pure Go, then ffmpeg for video frames and exotic images.
func DefaultDecoders() []Decoder {
	return []Decoder{VipsDecoder{}, ImagingDecoder{}, FFmpegDecoder{}}
}

// decode walks decoders in order and returns the first successful image.
func decode(ctx context.Context, decoders []Decoder, kind catalog.Kind, path string, width, height int) (image.Image, error) {
	var errs []error
	for _, d := range decoders {
		if !d.Supports(kind) {
			metrics.DecoderAttemptsTotal.WithLabelValues(d.Name(), "skipped").Inc()
			continue
		}
		img, err := d.Decode(ctx, path, width, height)
		if err == nil && img != nil {
			metrics.DecoderAttemptsTotal.WithLabelValues(d.Name(), "success").Inc()
			return img, nil
		}
		metrics.DecoderAttemptsTotal.WithLabelValues(d.Name(), "error").Inc()
		if err == nil {
			err = fmt.Errorf("%s returned no image", d.Name())
		}
		log.Debug("decoder %s failed for %s: %v", d.Name(), path, err)
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("%w: %w", ErrUndecodable, errors.Join(errs...))
}

// FFmpegTimeout bounds a single ffmpeg invocation.
const FFmpegTimeout = 30 * time.Second

// FFmpegDecoder grabs a frame with the ffmpeg binary. For videos it seeks one
// second in and falls back to the first frame for shorter clips.
type FFmpegDecoder struct{}

// Name implements Decoder.
func (FFmpegDecoder) Name() string { return "ffmpeg" }

// Supports implements Decoder.
func (FFmpegDecoder) Supports(kind catalog.Kind) bool {
	if !kind.Valid() {
		return false
	}
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// Decode implements Decoder.
func (FFmpegDecoder) Decode(ctx context.Context, path string, _, _ int) (image.Image, error) {
	img, err := ffmpegFrame(ctx, path, "00:00:01")
	if err == nil {
		return img, nil
	}
	log.Debug("ffmpeg seek attempt failed for %s: %v", path, err)
	return ffmpegFrame(ctx, path, "")
}

func ffmpegFrame(ctx context.Context, path, seek string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, FFmpegTimeout)
	defer cancel()

	args := []string{"-hide_banner", "-loglevel", "error", "-i", path}
	if seek != "" {
		args = append(args, "-ss", seek)
	}
	args = append(args, "-vframes", "1", "-f", "image2pipe", "-vcodec", "png", "-")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", path)
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return img, nil
}
