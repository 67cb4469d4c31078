package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizzine/quizzine-backend/internal/model"
)

// QuizAttemptResult joins an attempt with the attempting user, for quiz
// owners reviewing results.
type QuizAttemptResult struct {
	AttemptID           uuid.UUID `json:"attempt_id"`
	UserID              uuid.UUID `json:"user_id"`
	UserName            string    `json:"user_name"`
	ScorePercentage     float64   `json:"score_percentage"`
	TotalElapsedSeconds int64     `json:"total_elapsed_seconds"`
	CompletedAt         time.Time `json:"completed_at"`
}

// AttemptRepository handles attempt-record data access. Inserts normally go
// through the persistence worker; Insert here is exposed for the worker's
// single-row fallback and for tooling.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

func encodeArrays(a *model.AttemptRecord) (answers, elapsed []byte, err error) {
	answers, err = json.Marshal(a.SelectedAnswers)
	if err != nil {
		return nil, nil, fmt.Errorf("encode answers: %w", err)
	}
	elapsed, err = json.Marshal(a.ElapsedSecondsPerItem)
	if err != nil {
		return nil, nil, fmt.Errorf("encode elapsed: %w", err)
	}
	return answers, elapsed, nil
}

// Insert stores one attempt record. Re-delivery of the same record is a
// no-op thanks to the conflict clause.
func (r *AttemptRepository) Insert(ctx context.Context, a *model.AttemptRecord) error {
	answers, elapsed, err := encodeArrays(a)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO attempts (id, session_id, quiz_id, user_id, selected_answers,
		    elapsed_seconds, total_elapsed_seconds, score_percentage, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`,
		a.ID, a.SessionID, a.QuizID, a.UserID, answers, elapsed,
		a.TotalElapsedSeconds, a.ScorePercentage, a.CompletedAt)
	return err
}

// InsertBatch stores many attempt records in one round trip by unnesting
// parallel arrays server-side.
func (r *AttemptRepository) InsertBatch(ctx context.Context, batch []*model.AttemptRecord) error {
	if len(batch) == 0 {
		return nil
	}

	n := len(batch)
	ids := make([]uuid.UUID, n)
	sessionIDs := make([]uuid.UUID, n)
	quizIDs := make([]uuid.UUID, n)
	userIDs := make([]uuid.UUID, n)
	answers := make([]string, n)
	elapsed := make([]string, n)
	totals := make([]int64, n)
	scores := make([]float64, n)
	completed := make([]time.Time, n)

	for i, a := range batch {
		ans, el, err := encodeArrays(a)
		if err != nil {
			return err
		}
		ids[i] = a.ID
		sessionIDs[i] = a.SessionID
		quizIDs[i] = a.QuizID
		userIDs[i] = a.UserID
		answers[i] = string(ans)
		elapsed[i] = string(el)
		totals[i] = a.TotalElapsedSeconds
		scores[i] = a.ScorePercentage
		completed[i] = a.CompletedAt
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO attempts (id, session_id, quiz_id, user_id, selected_answers,
		    elapsed_seconds, total_elapsed_seconds, score_percentage, completed_at)
		 SELECT u.id, u.session_id, u.quiz_id, u.user_id, u.answers::jsonb,
		        u.elapsed::jsonb, u.total, u.score, u.completed_at
		 FROM unnest($1::uuid[], $2::uuid[], $3::uuid[], $4::uuid[], $5::text[],
		             $6::text[], $7::bigint[], $8::double precision[], $9::timestamptz[])
		      AS u(id, session_id, quiz_id, user_id, answers, elapsed, total, score, completed_at)
		 ON CONFLICT (id) DO NOTHING`,
		ids, sessionIDs, quizIDs, userIDs, answers, elapsed, totals, scores, completed)
	return err
}

// GetByID retrieves one attempt record.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AttemptRecord, error) {
	a := &model.AttemptRecord{}
	var answers, elapsed []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, session_id, quiz_id, user_id, selected_answers, elapsed_seconds,
		        total_elapsed_seconds, score_percentage, completed_at
		 FROM attempts WHERE id = $1`, id,
	).Scan(&a.ID, &a.SessionID, &a.QuizID, &a.UserID, &answers, &elapsed,
		&a.TotalElapsedSeconds, &a.ScorePercentage, &a.CompletedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &a.SelectedAnswers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if err := json.Unmarshal(elapsed, &a.ElapsedSecondsPerItem); err != nil {
		return nil, fmt.Errorf("decode elapsed: %w", err)
	}
	return a, nil
}

// ListByUser retrieves a page of a user's own attempts, newest first.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.AttemptRecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, quiz_id, user_id, selected_answers, elapsed_seconds,
		        total_elapsed_seconds, score_percentage, completed_at
		 FROM attempts
		 WHERE user_id = $1
		 ORDER BY completed_at DESC
		 LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var attempts []model.AttemptRecord
	for rows.Next() {
		var a model.AttemptRecord
		var answers, elapsed []byte
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuizID, &a.UserID, &answers, &elapsed,
			&a.TotalElapsedSeconds, &a.ScorePercentage, &a.CompletedAt); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(answers, &a.SelectedAnswers); err != nil {
			return nil, 0, fmt.Errorf("decode answers: %w", err)
		}
		if err := json.Unmarshal(elapsed, &a.ElapsedSecondsPerItem); err != nil {
			return nil, 0, fmt.Errorf("decode elapsed: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}

// ListByQuiz retrieves a page of results for one quiz, joined with user
// names, newest first.
func (r *AttemptRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID, limit, offset int) ([]QuizAttemptResult, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE quiz_id = $1`, quizID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.user_id, u.name, a.score_percentage,
		        a.total_elapsed_seconds, a.completed_at
		 FROM attempts a
		 JOIN users u ON u.id = a.user_id
		 WHERE a.quiz_id = $1
		 ORDER BY a.completed_at DESC
		 LIMIT $2 OFFSET $3`, quizID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []QuizAttemptResult
	for rows.Next() {
		var res QuizAttemptResult
		if err := rows.Scan(&res.AttemptID, &res.UserID, &res.UserName,
			&res.ScorePercentage, &res.TotalElapsedSeconds, &res.CompletedAt); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}
