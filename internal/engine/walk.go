package engine

import (
	"context"
	"fmt"

	"docket/internal/identity"
	"docket/internal/logging"
	"docket/internal/record"
	"docket/internal/walker"
)

// walk consumes the directory walk, resolving identity on demand and
// admitting candidates that are not already known. Content mode hashes
// through the worker pool; path mode only stats.
func (e *Engine) walk(ctx context.Context) error {
	w := walker.New(e.cfg.Scan.SearchDirs, e.cfg.Scan.Exclude)

	var err error
	if e.cfg.Scan.ContentCheck {
		err = e.walkHashing(ctx, w)
	} else {
		err = e.walkStat(ctx, w)
	}
	e.walkStats = w.Stats()
	if err != nil {
		return err
	}

	e.logger.Info("walk finished",
		logging.Int("files", e.walkStats.Files),
		logging.Int("admitted", e.summary.New),
		logging.Int("already_known", e.summary.AlreadyKnown),
		logging.Int("skipped", e.skips.Total()),
		logging.Int("excluded_dirs", e.walkStats.ExcludedDirs))
	return nil
}

// walkHashing feeds every candidate through the hashing pool and consumes
// the re-serialized results. The pool preserves submission order, so the
// admitted sequence matches the traversal order no matter how many workers
// run. Admission and store buffering stay on this one goroutine.
func (e *Engine) walkHashing(ctx context.Context, w *walker.Walker) error {
	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := identity.NewPool(e.resolver, e.cfg.Hash.Workers)
	pool.Start(walkCtx)

	walkDone := make(chan error, 1)
	go func() {
		err := w.Walk(walkCtx, func(entry walker.Entry) error {
			return pool.Submit(walkCtx, entry.Path)
		})
		pool.Close()
		walkDone <- err
	}()

	var consumeErr error
	for res := range pool.Results() {
		// After a failure, keep draining so the producer and workers can
		// wind down; cancel already signalled them.
		if consumeErr != nil {
			continue
		}
		if res.Err != nil {
			if err := e.recordSkip(res.Err); err != nil {
				consumeErr = err
				cancel()
			}
			continue
		}
		rec := record.FromWalk(res.Path, e.cfg.Scan.BaseDir)
		rec.SetIdentity(res.Identity.Size, res.Identity.Checksum, res.Identity.Algorithm)
		if e.known(rec) {
			continue
		}
		if err := e.admit(ctx, rec, true); err != nil {
			consumeErr = err
			cancel()
		}
	}

	walkErr := <-walkDone
	if consumeErr != nil {
		return consumeErr
	}
	if walkErr != nil {
		return fmt.Errorf("walk: %w", walkErr)
	}
	return nil
}

// walkStat is the path-equality variant: no hashing, so equality needs no
// file I/O and the size stat runs only for records actually admitted.
func (e *Engine) walkStat(ctx context.Context, w *walker.Walker) error {
	return w.Walk(ctx, func(entry walker.Entry) error {
		rec := record.FromWalk(entry.Path, e.cfg.Scan.BaseDir)
		if e.known(rec) {
			return nil
		}
		size, err := e.resolver.Stat(entry.Path)
		if err != nil {
			return e.recordSkip(err)
		}
		rec.SetSize(size)
		return e.admit(ctx, rec, true)
	})
}
