package sph

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum particle count to use the worker pool.
// Below this, running inline is faster than the channel round trip.
const parallelThreshold = 64

// workChunk is a contiguous index range handed to one worker.
type workChunk struct {
	start, end int
	fn         func(start, end int)
}

// WorkerPool runs per-particle stages on persistent goroutines.
// For blocks until every batch of the stage has finished, so the output of
// one stage is fully visible before the next one starts.
type WorkerPool struct {
	numWorkers int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

// NewWorkerPool creates a pool with n workers (GOMAXPROCS when n < 1).
// Workers start lazily on the first parallel stage.
func NewWorkerPool(n int) *WorkerPool {
	if n < 1 {
		n = runtime.GOMAXPROCS(0)
	}
	return &WorkerPool{numWorkers: n}
}

// Workers returns the number of batches a stage is split into.
func (p *WorkerPool) Workers() int { return p.numWorkers }

// start launches the worker goroutines.
func (p *WorkerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Close signals all workers to exit and waits for them.
func (p *WorkerPool) Close() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// batchRange returns the w-th of workers contiguous ranges over [0, n).
// Ranges have size n/workers; the last absorbs the remainder.
func batchRange(w, workers, n int) (start, end int) {
	size := n / workers
	start = w * size
	end = start + size
	if w == workers-1 {
		end = n
	}
	return start, end
}

// For runs fn over [0, n) and returns once every batch is done.
// fn must only write state belonging to its own index range.
func (p *WorkerPool) For(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if n < parallelThreshold || p.numWorkers == 1 {
		fn(0, n)
		return
	}

	if !p.running {
		p.start()
	}

	workers := p.numWorkers
	if workers > n {
		workers = n
	}

	for w := 0; w < workers; w++ {
		start, end := batchRange(w, workers, n)
		p.workChan <- workChunk{start: start, end: end, fn: fn}
	}

	// Join: wait for all chunks to complete
	for i := 0; i < workers; i++ {
		<-p.doneChan
	}
}
