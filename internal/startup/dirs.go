package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"photo-library/internal/logging"
)

// prepareDirectories makes every directory absolute, checks the media root
// and creates the writable directories.
func (c *Config) prepareDirectories() error {
	section("DIRECTORY SETUP")

	for _, d := range []*string{&c.MediaDir, &c.CacheDir, &c.DatabaseDir} {
		abs, err := filepath.Abs(*d)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", *d, err)
		}
		*d = abs
	}

	// The media root is a mount; a missing one only means an empty library.
	if err := checkReadableDir(c.MediaDir); err != nil {
		logging.Warn("  Media directory %s: %v", c.MediaDir, err)
	} else {
		logging.Info("  [OK] media directory %s", c.MediaDir)
	}

	for _, d := range []struct{ name, path string }{
		{"database", c.DatabaseDir},
		{"cache", c.CacheDir},
	} {
		if err := ensureWritableDir(d.path); err != nil {
			return fmt.Errorf("%s directory %s: %w", d.name, d.path, err)
		}
		logging.Info("  [OK] %s directory %s is writable", d.name, d.path)
	}
	return nil
}

func checkReadableDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	if logging.IsDebugEnabled() {
		if entries, err := os.ReadDir(path); err == nil {
			logging.Debug("    %d top-level entries", len(entries))
		}
	}
	return nil
}

// ensureWritableDir creates path when missing and proves it accepts writes.
func ensureWritableDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		logging.Debug("  Creating %s", path)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create: %w", err)
		}
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("not a directory")
	}

	probe, err := os.CreateTemp(path, ".write-test-*")
	if err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	if err := os.Remove(name); err != nil {
		logging.Warn("  Failed to remove %s: %v", name, err)
	}
	return nil
}

// checkTool verifies that an ffmpeg-family binary is on PATH and runs.
func checkTool(name string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return fmt.Errorf("%s -version failed: %w", name, err)
	}
	first, _, _ := strings.Cut(string(out), "\n")
	logging.Debug("  %s: %s", path, strings.TrimSpace(first))
	return nil
}
