// Package memory sizes the Go heap for containers and holds back thumbnail
// generation while the heap is close to its budget.
//
// # Soft limit
//
// Go reads the CPU quota from cgroups but not the memory limit, so the soft
// limit has to be set explicitly. [ConfigureFromEnv] does it from:
//
//   - GOMEMLIMIT: the standard runtime variable. When set it wins and is
//     only reported.
//   - MEMORY_LIMIT: the container limit in bytes, usually injected with the
//     Kubernetes Downward API.
//   - MEMORY_RATIO: the share of MEMORY_LIMIT given to the heap, in (0,1].
//     Defaults to 0.75; libvips and ffmpeg allocate outside the Go heap.
//
// In a deployment manifest:
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
//
// # Backpressure
//
// [Monitor] samples HeapAlloc every CheckInterval. At PauseRatio of the
// limit it pauses and triggers a GC; below ResumeRatio it resumes. The media
// cache calls [Monitor.Wait] before decoding an original:
//
//	monitor := memory.NewMonitor(memory.DefaultConfig())
//	monitor.Start()
//	defer monitor.Stop()
//
//	cache, _ := media.New(media.Config{Dir: dir, Gate: monitor}, store)
//
// Cache hits and full-file copies are never held back.
package memory
