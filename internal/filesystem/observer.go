package filesystem

import "sync/atomic"

// Observer receives retry events. The metrics package provides the
// Prometheus implementation.
type Observer interface {
	ObserveRetryAttempt(op, volume string)
	ObserveRetryFailure(op, volume string)
	ObserveStaleError(op, volume string)
}

type observerBox struct{ Observer }

var defaultObserver atomic.Pointer[observerBox]

// SetObserver installs the observer used by the package-level Stat and
// Open. nil disables recording.
func SetObserver(o Observer) {
	if o == nil {
		defaultObserver.Store(nil)
		return
	}
	defaultObserver.Store(&observerBox{o})
}

func currentObserver() Observer {
	if b := defaultObserver.Load(); b != nil {
		return b.Observer
	}
	return nil
}
