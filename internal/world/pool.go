package world

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/voxel-sandbox/internal/terrain"
)

type genJob struct {
	pos   terrain.ChunkPos
	epoch uint64
	field *terrain.HeightField
}

type genResult struct {
	pos   terrain.ChunkPos
	epoch uint64
	chunk *terrain.Chunk
}

// Pool builds chunks on background goroutines. Results are collected by the
// simulation loop between frames; workers never touch the Store.
type Pool struct {
	jobs    chan genJob
	results chan genResult
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// NewPool starts workers goroutines that generate chunks until ctx is done or
// Close is called. queue bounds both pending jobs and unclaimed results.
func NewPool(ctx context.Context, workers, queue int, log *slog.Logger) *Pool {
	workers = max(workers, 1)
	queue = max(queue, workers)

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	p := &Pool{
		jobs:    make(chan genJob, queue),
		results: make(chan genResult, queue),
		cancel:  cancel,
		group:   g,
	}
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return p.work(ctx)
		})
	}
	log.Debug("chunk pool started", "workers", workers, "queue", queue)
	return p
}

func (p *Pool) work(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-p.jobs:
			r := genResult{pos: j.pos, epoch: j.epoch, chunk: terrain.Build(j.field, j.pos)}
			select {
			case p.results <- r:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// submit queues a job without blocking. It reports false when the queue is full.
func (p *Pool) submit(j genJob) bool {
	select {
	case p.jobs <- j:
		return true
	default:
		return false
	}
}

// collect drains every finished result without blocking.
func (p *Pool) collect() []genResult {
	var out []genResult
	for {
		select {
		case r := <-p.results:
			out = append(out, r)
		default:
			return out
		}
	}
}

// Close stops the workers and waits for them to exit.
func (p *Pool) Close() error {
	p.cancel()
	return p.group.Wait()
}
