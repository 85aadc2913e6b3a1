// Package workerpool implements the fixed-size worker pool Engines and
// Detectors run on (§4.9). Grounded on original_source's
// proc/{Runnable.h, ThreadPool.cpp,.h}: N goroutines share one blocking
// queue, shutdown is a sentinel (nil) job pushed once per worker, and a
// panicking job never takes down the pool. Deliberately hand-built rather
// than importing the teacher's own pool dependency — see DESIGN.md,
// "Why Emeline-1/pool is reimplemented, not imported".
package workerpool

import (
	"log"
	"sync"

	"github.com/DNSBelgium/qlad/internal/syncutil"
)

// Job is anything the pool can run. A plain function adapter (JobFunc) is
// provided for callers that don't want to define a type.
type Job interface {
	Run()
}

// JobFunc adapts a plain function to Job.
type JobFunc func()

// Run implements Job.
func (f JobFunc) Run() { f() }

// Pool is a fixed number of worker goroutines draining one shared FIFO
// queue. Submitting a nil Job is reserved for internal shutdown
// signaling and panics if attempted by a caller.
type Pool struct {
	jobs    *syncutil.BlockingQueue[Job]
	wg      sync.WaitGroup
	workers int
	running bool
	mu      sync.Mutex
}

// New prepares a pool with the given number of workers. Workers are not
// started until Run is called, mirroring the original's separate
// construct/run/stop lifecycle.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		jobs:    syncutil.NewBlockingQueue[Job](),
		workers: workers,
	}
}

// ThreadCount returns the configured worker count.
func (p *Pool) ThreadCount() int { return p.workers }

// Run starts every worker goroutine. Calling Run twice without an
// intervening Stop is a no-op.
func (p *Pool) Run() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.runWorker()
	}
}

// Submit enqueues a job for some worker to run. Panics if job is nil.
func (p *Pool) Submit(job Job) {
	if job == nil {
		panic("workerpool: Submit called with a nil job")
	}
	p.jobs.Push(job)
}

// Stop pushes one shutdown sentinel per worker and blocks until every
// worker has drained its queue and exited. Safe to call once; a second
// call is a no-op since the pool is no longer running.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.jobs.Push(nil)
	}
	p.wg.Wait()
}

// runWorker pops jobs until it sees a nil sentinel, running each job with
// panic isolation so one bad job never stops the worker or the pool.
func (p *Pool) runWorker() {
	defer p.wg.Done()
	for {
		job, ok := p.jobs.Pop()
		if !ok || job == nil {
			return
		}
		runJob(job)
	}
}

func runJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("workerpool: job panicked: %v", r)
		}
	}()
	job.Run()
}
