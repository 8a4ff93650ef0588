package identity

import (
	"context"
	"sync"
)

// Result is the outcome of hashing a single submitted path. Results are
// delivered in submission order regardless of which worker finished first.
type Result struct {
	Seq      uint64
	Path     string
	Identity Identity
	Err      error
}

type poolJob struct {
	seq  uint64
	path string
}

// Pool hashes submitted paths across a fixed set of workers and re-serializes
// the results in submission order. One goroutine submits, one consumes; the
// reorder join in between keeps downstream admission deterministic even when
// workers finish out of order.
type Pool struct {
	resolver *Resolver
	workers  int

	jobs     chan poolJob
	outcomes chan Result
	results  chan Result

	wg      sync.WaitGroup
	nextSeq uint64
	started bool
}

// NewPool builds a pool over resolver with the given worker count. Counts
// below one are clamped to one.
func NewPool(resolver *Resolver, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	depth := workers * 2
	return &Pool{
		resolver: resolver,
		workers:  workers,
		jobs:     make(chan poolJob, depth),
		outcomes: make(chan Result, depth),
		results:  make(chan Result, depth),
	}
}

// Start launches the workers and the reorder join. Call once.
func (p *Pool) Start(ctx context.Context) {
	if p.started {
		return
	}
	p.started = true
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	go func() {
		p.wg.Wait()
		close(p.outcomes)
	}()
	go p.join(ctx)
}

// Submit queues one path for hashing. Returns ctx.Err() if the context ends
// before the job can be queued. Must not be called after Close.
func (p *Pool) Submit(ctx context.Context, path string) error {
	j := poolJob{seq: p.nextSeq, path: path}
	select {
	case p.jobs <- j:
		p.nextSeq++
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close signals that no more paths will be submitted. Results drains and then
// closes once in-flight work finishes.
func (p *Pool) Close() {
	close(p.jobs)
}

// Results returns the ordered result stream. The channel closes after Close
// once every submitted path has been delivered.
func (p *Pool) Results() <-chan Result {
	return p.results
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for j := range p.jobs {
		res := Result{Seq: j.seq, Path: j.path}
		if err := ctx.Err(); err != nil {
			res.Err = err
		} else {
			res.Identity, res.Err = p.resolver.Resolve(j.path)
		}
		// Every sequence number must surface exactly once or the join
		// stalls waiting for the gap.
		p.outcomes <- res
	}
}

func (p *Pool) join(ctx context.Context) {
	defer close(p.results)
	next := uint64(0)
	pending := make(map[uint64]Result, p.workers*2)
	for res := range p.outcomes {
		pending[res.Seq] = res
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			select {
			case p.results <- ready:
			case <-ctx.Done():
				// Consumer is gone; keep draining so workers can exit.
			}
		}
	}
}
