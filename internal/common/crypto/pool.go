package crypto

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/AlibekovAA/authd/internal/observability/metrics"
)

// HashPool runs hash and compare calls on at most size goroutines at a time.
// A caller whose context ends stops waiting and gets ctx.Err(); work that has
// already started runs to completion and then frees its slot.
type HashPool struct {
	hasher PasswordHasher
	sem    *semaphore.Weighted
	size   int
}

func NewHashPool(hasher PasswordHasher, size int) *HashPool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &HashPool{
		hasher: hasher,
		sem:    semaphore.NewWeighted(int64(size)),
		size:   size,
	}
}

func (p *HashPool) Size() int {
	return p.size
}

type hashResult struct {
	hash string
	err  error
}

func (p *HashPool) Hash(ctx context.Context, password string) (string, error) {
	res, err := p.run(ctx, "hash", func() hashResult {
		h, err := p.hasher.Hash(password)
		return hashResult{hash: h, err: err}
	})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

func (p *HashPool) Compare(ctx context.Context, hash string, password string) error {
	res, err := p.run(ctx, "compare", func() hashResult {
		return hashResult{err: p.hasher.Compare(hash, password)}
	})
	if err != nil {
		return err
	}
	return res.err
}

func (p *HashPool) run(ctx context.Context, operation string, fn func() hashResult) (hashResult, error) {
	metrics.HashPoolWaiting.Inc()
	err := p.sem.Acquire(ctx, 1)
	metrics.HashPoolWaiting.Dec()
	if err != nil {
		return hashResult{}, err
	}

	done := make(chan hashResult, 1)
	go func() {
		defer p.sem.Release(1)
		start := time.Now()
		res := fn()
		metrics.PasswordHashDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		done <- res
	}()

	select {
	case res := <-done:
		return res, nil
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	}
}
