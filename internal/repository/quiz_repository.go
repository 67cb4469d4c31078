package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizzine/quizzine-backend/internal/model"
)

// QuizRepository handles quiz and grant data access. Quiz items live in a
// jsonb column; the repository is the only place they are (de)serialized.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizColumns = `id, owner_id, folder_id, title, items,
	session_time_limit_seconds, per_item_time_limit_seconds,
	randomize, share_code, created_at, updated_at`

func scanQuiz(row interface{ Scan(...any) error }) (*model.Quiz, error) {
	q := &model.Quiz{}
	var items []byte
	err := row.Scan(&q.ID, &q.OwnerID, &q.FolderID, &q.Title, &items,
		&q.SessionTimeLimitSeconds, &q.PerItemTimeLimitSeconds,
		&q.Randomize, &q.ShareCode, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &q.Items); err != nil {
		return nil, fmt.Errorf("decode quiz items: %w", err)
	}
	return q, nil
}

// Create inserts a new quiz and fills in the generated fields.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	items, err := json.Marshal(q.Items)
	if err != nil {
		return fmt.Errorf("encode quiz items: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (owner_id, folder_id, title, items,
		    session_time_limit_seconds, per_item_time_limit_seconds,
		    randomize, share_code)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		q.OwnerID, q.FolderID, q.Title, items,
		q.SessionTimeLimitSeconds, q.PerItemTimeLimitSeconds,
		q.Randomize, q.ShareCode,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// GetByID retrieves a quiz by its UUID.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	return scanQuiz(r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id))
}

// GetByShareCode retrieves a quiz by its share code.
func (r *QuizRepository) GetByShareCode(ctx context.Context, code string) (*model.Quiz, error) {
	return scanQuiz(r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE share_code = $1`, code))
}

// Update rewrites a quiz's mutable fields.
func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	items, err := json.Marshal(q.Items)
	if err != nil {
		return fmt.Errorf("encode quiz items: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE quizzes
		 SET folder_id = $1, title = $2, items = $3,
		     session_time_limit_seconds = $4, per_item_time_limit_seconds = $5,
		     randomize = $6, updated_at = NOW()
		 WHERE id = $7`,
		q.FolderID, q.Title, items,
		q.SessionTimeLimitSeconds, q.PerItemTimeLimitSeconds,
		q.Randomize, q.ID,
	)
	return err
}

// SetShareCode replaces a quiz's share code.
func (r *QuizRepository) SetShareCode(ctx context.Context, id uuid.UUID, code string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET share_code = $1, updated_at = NOW() WHERE id = $2`,
		code, id)
	return err
}

// Delete removes a quiz. Grants and attempts cascade in the schema.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	return err
}

// ListByOwnerPaginated retrieves a page of quizzes owned by a user.
func (r *QuizRepository) ListByOwnerPaginated(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]model.Quiz, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quizzes WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+`
		 FROM quizzes
		 WHERE owner_id = $1
		 ORDER BY updated_at DESC
		 LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, 0, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, total, rows.Err()
}

// ListByFolder retrieves quizzes in a folder.
func (r *QuizRepository) ListByFolder(ctx context.Context, folderID uuid.UUID) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+`
		 FROM quizzes
		 WHERE folder_id = $1
		 ORDER BY updated_at DESC`, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}

// AddGrant inserts a permission grant. Returns pgx.ErrNoRows via the
// ON CONFLICT DO NOTHING path when the grant already exists.
func (r *QuizRepository) AddGrant(ctx context.Context, g *model.QuizGrant) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quiz_grants (quiz_id, user_id, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (quiz_id, user_id) DO NOTHING
		 RETURNING created_at`,
		g.QuizID, g.UserID, g.Role,
	).Scan(&g.CreatedAt)
}

// RemoveGrant deletes a permission grant.
func (r *QuizRepository) RemoveGrant(ctx context.Context, quizID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM quiz_grants WHERE quiz_id = $1 AND user_id = $2`,
		quizID, userID)
	return err
}

// GetGrant retrieves the grant one user holds on one quiz.
func (r *QuizRepository) GetGrant(ctx context.Context, quizID, userID uuid.UUID) (*model.QuizGrant, error) {
	g := &model.QuizGrant{}
	err := r.pool.QueryRow(ctx,
		`SELECT quiz_id, user_id, role, created_at
		 FROM quiz_grants
		 WHERE quiz_id = $1 AND user_id = $2`, quizID, userID,
	).Scan(&g.QuizID, &g.UserID, &g.Role, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListGrants retrieves all grants on a quiz.
func (r *QuizRepository) ListGrants(ctx context.Context, quizID uuid.UUID) ([]model.QuizGrant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT quiz_id, user_id, role, created_at
		 FROM quiz_grants
		 WHERE quiz_id = $1
		 ORDER BY created_at`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []model.QuizGrant
	for rows.Next() {
		var g model.QuizGrant
		if err := rows.Scan(&g.QuizID, &g.UserID, &g.Role, &g.CreatedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
