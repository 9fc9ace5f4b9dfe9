package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"examportal/internal/model"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, title, description, duration_minutes, num_questions, category_quota,
	passing_score, max_attempts, is_active, scheduled_start, scheduled_end, created_at, updated_at`

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.DurationMinutes, &e.NumQuestions,
		&e.CategoryQuota, &e.PassingScore, &e.MaxAttempts, &e.IsActive,
		&e.ScheduledStart, &e.ScheduledEnd, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id))
}

// GetActive retrieves the currently active exam, if any.
// Returns pgx.ErrNoRows when no exam is active.
func (r *ExamRepository) GetActive(ctx context.Context) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE is_active ORDER BY updated_at DESC LIMIT 1`))
}

// List retrieves exams with pagination, newest first.
func (r *ExamRepository) List(ctx context.Context, limit, offset int) ([]model.Exam, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exams`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, 0, err
		}
		exams = append(exams, *e)
	}
	return exams, total, rows.Err()
}

// Create inserts a new exam (inactive by default).
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (title, description, duration_minutes, num_questions, category_quota,
		                    passing_score, max_attempts, scheduled_start, scheduled_end)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, is_active, created_at, updated_at`,
		e.Title, e.Description, e.DurationMinutes, e.NumQuestions, e.CategoryQuota,
		e.PassingScore, e.MaxAttempts, e.ScheduledStart, e.ScheduledEnd,
	).Scan(&e.ID, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
}

// Update modifies an existing exam definition.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET title = $1, description = $2, duration_minutes = $3, num_questions = $4,
		     category_quota = $5, passing_score = $6, max_attempts = $7,
		     scheduled_start = $8, scheduled_end = $9, updated_at = NOW()
		 WHERE id = $10`,
		e.Title, e.Description, e.DurationMinutes, e.NumQuestions, e.CategoryQuota,
		e.PassingScore, e.MaxAttempts, e.ScheduledStart, e.ScheduledEnd, e.ID)
	return err
}

// Delete removes an exam.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	return err
}

// Activate marks one exam active after clearing every other active flag,
// inside a single transaction so at most one exam is ever active.
func (r *ExamRepository) Activate(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE exams SET is_active = FALSE WHERE is_active`); err != nil {
		return fmt.Errorf("clear active flags: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE exams SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("set active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

// Deactivate clears a single exam's active flag.
func (r *ExamRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exams SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
