// File: pkg/combine/worker.go
package combine

import (
	"context"
	"runtime"
	"sync"

	"eazypaste/pkg/filter"

	"go.uber.org/zap"
)

type job struct {
	index int
	path  string
}

type result struct {
	index   int
	content FileContent
}

// ProcessFilesConcurrently formats files using a worker pool. The returned slice
// keeps the order of files.
func ProcessFilesConcurrently(ctx context.Context, files []string, maxWorkers int, root string, reader filter.ContentReader, logger *zap.Logger) ([]FileContent, error) {
	jobs := make(chan job, len(files))
	results := make(chan result, len(files))
	var wg sync.WaitGroup

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
		logger.Debug("Adjusted worker count", zap.Int("workers", maxWorkers))
	}
	if maxWorkers > len(files) {
		maxWorkers = len(files)
	}

	logger.Debug("Initializing worker pool", zap.Int("workers", maxWorkers))
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go worker(ctx, jobs, results, root, reader, &wg, logger.With(zap.Int("workerID", w)))
	}

	for i, file := range files {
		jobs <- job{index: i, path: file}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	contents := make([]FileContent, len(files))
	for r := range results {
		contents[r.index] = r.content
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("All files processed", zap.Int("processedFiles", len(contents)))
	return contents, nil
}

// worker formats files from the jobs channel until it is drained or ctx is done.
func worker(ctx context.Context, jobs <-chan job, results chan<- result, root string, reader filter.ContentReader, wg *sync.WaitGroup, logger *zap.Logger) {
	defer wg.Done()

	for j := range jobs {
		if ctx.Err() != nil {
			continue
		}
		results <- result{index: j.index, content: ProcessSingleFile(j.path, root, reader, logger)}
	}
}
