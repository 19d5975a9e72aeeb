package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"
)

// probeTimeout bounds a single ffprobe run.
const probeTimeout = 15 * time.Second

// VideoInfo is what the indexer needs from a video container.
type VideoInfo struct {
	Width          int
	Height         int
	DurationMillis int64
	CreatedMillis  int64
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
}

// ProbeVideo reads dimensions, duration and the recorded creation time of a
// video with ffprobe.
func ProbeVideo(ctx context.Context, path string) (*VideoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe error: %w - %s", err, stderr.String())
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &VideoInfo{}
	for _, s := range out.Streams {
		if s.CodecType == "video" || (s.CodecType == "" && s.Width > 0) {
			info.Width, info.Height = s.Width, s.Height
			break
		}
	}
	if secs, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil && secs > 0 {
		info.DurationMillis = int64(math.Round(secs * 1000))
	}
	if created, ok := out.Format.Tags["creation_time"]; ok {
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			info.CreatedMillis = t.UnixMilli()
		}
	}
	return info, nil
}
