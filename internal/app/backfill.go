package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/prospect/internal/adapters/mq/queue"
	"github.com/okian/prospect/internal/adapters/mq/worker"
	"github.com/okian/prospect/internal/domain/model"
	"github.com/okian/prospect/internal/domain/types"
	"github.com/okian/prospect/pkg/logger"
	"github.com/okian/prospect/pkg/metrics"
)

// emitFunc hands one athlete id to the running backfill.
type emitFunc func(ctx context.Context, athleteID string) error

// RecalculateAll runs RecomputeAll on behalf of an administrator.
func (s *Service) RecalculateAll(ctx context.Context, p model.Principal) (types.BackfillReport, error) {
	if err := requireAdmin(p); err != nil {
		return types.BackfillReport{}, err
	}
	return s.RecomputeAll(ctx)
}

// RecomputeAll recomputes the star rating of every stored athlete.
func (s *Service) RecomputeAll(ctx context.Context) (types.BackfillReport, error) {
	return s.backfill(ctx, "recompute all", s.pageIDs)
}

// Recompute recomputes the given athletes. Ids repeated within one call are
// processed once and counted as duplicates.
func (s *Service) Recompute(ctx context.Context, ids ...string) (types.BackfillReport, error) {
	return s.backfill(ctx, "recompute", func(ctx context.Context, emit emitFunc) error {
		for _, id := range ids {
			if err := emit(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// LastBackfill returns the report of the most recent completed run.
func (s *Service) LastBackfill() (types.BackfillReport, bool) {
	if r := s.lastBackfill.Load(); r != nil {
		return *r, true
	}
	return types.BackfillReport{}, false
}

func (s *Service) pageIDs(ctx context.Context, emit emitFunc) error {
	after := ""
	for {
		ids, err := s.store.IDs(ctx, after, s.backfillPageSize)
		if err != nil {
			return storeErr("page ids", err)
		}
		for _, id := range ids {
			if err := emit(ctx, id); err != nil {
				return err
			}
		}
		if len(ids) < s.backfillPageSize {
			return nil
		}
		after = ids[len(ids)-1]
	}
}

// backfill feeds ids from produce through a bounded queue into a worker
// pool. Only one run may be active at a time.
func (s *Service) backfill(ctx context.Context, op string, produce func(context.Context, emitFunc) error) (types.BackfillReport, error) {
	if !s.backfilling.CompareAndSwap(false, true) {
		return types.BackfillReport{}, ErrBackfillRunning
	}
	defer s.backfilling.Store(false)

	if err := ctx.Err(); err != nil {
		return types.BackfillReport{}, fmt.Errorf("%s: %w", op, err)
	}

	start := time.Now()
	runID := s.newID()
	log := s.log().With(logger.String("run_id", runID))
	metrics.RecordBackfillRun()

	q := queue.NewInMemoryQueue(queue.WithCapacity(s.backfillQueueSize))
	pool := worker.NewPool(s.backfillWorkers, q, worker.RecomputeFunc(s.recompute))

	var duplicates int
	g, gctx := errgroup.WithContext(ctx)
	pool.Start(gctx)

	g.Go(func() error {
		defer q.Close()
		return produce(gctx, func(ctx context.Context, id string) error {
			job := queue.Job{RunID: runID, AthleteID: id}
			if s.deduper.SeenAndRecord(ctx, job.Key()) {
				duplicates++
				metrics.RecordJobDuplicate()
				return nil
			}
			if err := q.EnqueueWait(ctx, job); err != nil {
				s.deduper.Unrecord(ctx, job.Key())
				return fmt.Errorf("enqueue %s: %w", id, err)
			}
			return nil
		})
	})
	// Workers stop once the queue is drained or gctx is cancelled.
	g.Go(func() error {
		return pool.Wait(context.WithoutCancel(gctx))
	})
	err := g.Wait()

	stats := pool.Stats()
	report := types.BackfillReport{
		Processed:  stats.Processed,
		Changed:    stats.Changed,
		Failed:     stats.Failed,
		Duplicates: duplicates,
		TookMS:     time.Since(start).Milliseconds(),
	}
	if err != nil {
		metrics.RecordErrorByComponent("service", "backfill_failed")
		log.Error(ctx, "backfill aborted", logger.Error(err), logger.Int("processed", report.Processed))
		return report, fmt.Errorf("%s: %w", op, err)
	}

	s.lastBackfill.Store(&report)
	log.Info(ctx, "backfill completed",
		logger.Int("processed", report.Processed),
		logger.Int("changed", report.Changed),
		logger.Int("failed", report.Failed),
		logger.Int("duplicates", report.Duplicates),
		logger.Int("workers", pool.Size()),
		logger.Int("queue_capacity", q.Cap()),
	)
	return report, nil
}

func (s *Service) recompute(ctx context.Context, athleteID string) (bool, error) {
	_, changed, err := s.updateRating(ctx, athleteID)
	return changed, err
}
