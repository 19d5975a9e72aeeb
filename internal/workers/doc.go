/*
Package workers sizes and runs the goroutine pools used by the service.

# Sizing

Count and its helpers derive a worker count from GOMAXPROCS, which Go 1.19+
sets from the container CPU limit, rather than from runtime.NumCPU, which
reports the host:

	numWorkers := workers.ForIO(8) // 2 per CPU, at most 8

The INDEXER_WORKERS environment variable pins the count for the indexer's
probe workers.

# Pool

Pool is a fixed-size pool with a bounded queue. The library service executes
every listing and lookup through one, so a request runs start to finish on a
single worker and the number of concurrent catalog reads and cache
generations is capped:

	pool := workers.NewPool(2, 64)
	pool.Start()
	defer pool.Stop()

	page, err := workers.Run(ctx, pool, func() (*Page, error) {
		return buildPage()
	})

Run only uses ctx while waiting for a queue slot. Accepted jobs are never
cancelled; Stop lets queued jobs finish before returning. Jobs submitted
before Start or after Stop are refused.
*/
package workers
