package metrics

import (
	"context"
	"time"

	"photo-library/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	Stats(ctx context.Context) (Stats, error)
}

// Stats holds the catalog counts published as gauges
type Stats struct {
	TotalImages int
	TotalVideos int
	TotalAlbums int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
	refresh       chan struct{}
	done          chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
		refresh:       make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Refresh asks the loop to collect now. Requests made while one is pending
// are merged.
func (c *Collector) Refresh() {
	select {
	case c.refresh <- struct{}{}:
	default:
	}
}

// Stop stops the metrics collection and waits for the loop to exit
func (c *Collector) Stop() {
	close(c.stopChan)
	<-c.done
}

func (c *Collector) collectLoop() {
	defer close(c.done)

	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.refresh:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := c.statsProvider.Stats(ctx)
	if err != nil {
		logging.Warn("Metrics collection failed: %v", err)
		return
	}

	CatalogRecordsTotal.WithLabelValues("image").Set(float64(stats.TotalImages))
	CatalogRecordsTotal.WithLabelValues("video").Set(float64(stats.TotalVideos))
	CatalogAlbumsTotal.Set(float64(stats.TotalAlbums))

	logging.Debug("Metrics collected: images=%d, videos=%d, albums=%d",
		stats.TotalImages, stats.TotalVideos, stats.TotalAlbums)
}
