package filesystem

import (
	"context"
	"errors"
	"os"
	"syscall"
	"time"

	"photo-library/internal/logging"
)

var log = logging.For("filesystem")

// Retrier repeats filesystem calls that fail with a stale NFS handle,
// backing off exponentially between tries. Any other error ends the call.
type Retrier struct {
	// Retries is the number of extra attempts after the first.
	Retries    int
	Backoff    time.Duration
	MaxBackoff time.Duration
	// Volumes and Observer default to the package-level ones when nil.
	Volumes  *VolumeResolver
	Observer Observer
}

// DefaultRetrier returns the retrier used by Stat and Open.
func DefaultRetrier() *Retrier {
	return &Retrier{
		Retries:    3,
		Backoff:    50 * time.Millisecond,
		MaxBackoff: 500 * time.Millisecond,
	}
}

// Stat is os.Stat with ESTALE retries.
func Stat(ctx context.Context, path string) (os.FileInfo, error) {
	return DefaultRetrier().Stat(ctx, path)
}

// Open is os.Open with ESTALE retries.
func Open(ctx context.Context, path string) (*os.File, error) {
	return DefaultRetrier().Open(ctx, path)
}

func (r *Retrier) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	var info os.FileInfo
	err := r.do(ctx, "stat", path, func() (err error) {
		info, err = os.Stat(path)
		return err
	})
	return info, err
}

func (r *Retrier) Open(ctx context.Context, path string) (*os.File, error) {
	var f *os.File
	err := r.do(ctx, "open", path, func() (err error) {
		f, err = os.Open(path)
		return err
	})
	return f, err
}

func isStale(err error) bool {
	return errors.Is(err, syscall.ESTALE)
}

func (r *Retrier) do(ctx context.Context, op, path string, fn func() error) error {
	obs := r.Observer
	if obs == nil {
		obs = currentObserver()
	}
	volumes := r.Volumes
	if volumes == nil {
		volumes = defaultResolver.Load()
	}
	volume := volumes.Resolve(path)
	wait := r.Backoff

	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				log.Info("%s %s recovered after %d retries", op, path, attempt)
			}
			return nil
		}
		if !isStale(err) {
			return err
		}

		if obs != nil {
			obs.ObserveStaleError(op, volume)
		}
		if attempt >= r.Retries {
			log.Warn("%s %s still stale after %d retries: %v", op, path, r.Retries, err)
			if obs != nil {
				obs.ObserveRetryFailure(op, volume)
			}
			return err
		}

		if obs != nil {
			obs.ObserveRetryAttempt(op, volume)
		}
		log.Debug("stale handle on %s %s, retry %d/%d in %v", op, path, attempt+1, r.Retries, wait)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		}
		wait = min(wait*2, r.MaxBackoff)
	}
}
