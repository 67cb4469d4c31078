package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/quizzine/quizzine-backend/internal/config"
	"github.com/quizzine/quizzine-backend/internal/model"
	"github.com/quizzine/quizzine-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	AttemptBatchSize    = 50
	AttemptBatchTimeout = 2 * time.Second
	AttemptPollTimeout  = 1 * time.Second
)

// AttemptWorker drains the attempt queue into PostgreSQL. Attempts are
// idempotent rows keyed by id, so a crash between insert and queue ack at
// worst replays an insert that conflicts away.
type AttemptWorker struct {
	attempts *repository.AttemptRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

func NewAttemptWorker(attempts *repository.AttemptRepository, rdb *redis.Client, log zerolog.Logger) *AttemptWorker {
	return &AttemptWorker{
		attempts: attempts,
		rdb:      rdb,
		log:      log.With().Str("component", "attempt_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *AttemptWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AttemptWorker started")

	batch := make([]*model.AttemptRecord, 0, AttemptBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= AttemptBatchSize || time.Since(lastFlush) >= AttemptBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AttemptPollTimeout, config.WorkerKey.PersistAttemptsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var rec model.AttemptRecord
			if err := json.Unmarshal([]byte(item[1]), &rec); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &rec)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with single-row fallback
// ----------------------------------------------------------------

func (w *AttemptWorker) flushSafe(ctx context.Context, batch []*model.AttemptRecord) {
	if len(batch) == 0 {
		return
	}

	if err := w.attempts.InsertBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk attempt insert failed, using fallback")

		for _, rec := range batch {
			if err := w.attempts.Insert(ctx, rec); err != nil {
				w.log.Error().Err(err).
					Str("attempt_id", rec.ID.String()).
					Msg("single insert failed — requeueing")
				raw, _ := json.Marshal(rec)
				w.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw)
			}
		}
		return
	}

	w.log.Debug().Int("count", len(batch)).Msg("Attempt batch persisted")
}
