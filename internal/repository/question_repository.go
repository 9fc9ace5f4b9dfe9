package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"examportal/internal/model"
)

// QuestionRepository handles question pool data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, question_text, option_a, option_b, option_c, option_d, option_e, option_f,
	correct_option, difficulty, media_kind, question_image, question_youtube, option_images,
	created_at, updated_at`

// legacyCategory derives the combined selection category in SQL:
// media tags win over the difficulty tier, image before video.
const legacyCategory = `(CASE
	WHEN media_kind = 'image' THEN 'image'
	WHEN media_kind = 'video' THEN 'video'
	ELSE difficulty
END)`

func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	err := row.Scan(&q.ID, &q.QuestionText, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD,
		&q.OptionE, &q.OptionF, &q.CorrectOption, &q.Difficulty, &q.MediaKind,
		&q.QuestionImage, &q.QuestionYT, &q.OptionImages, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *QuestionRepository) queryMany(ctx context.Context, sql string, args ...any) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// List retrieves the whole pool ordered by creation time, newest first.
func (r *QuestionRepository) List(ctx context.Context, limit, offset int) ([]model.Question, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&total); err != nil {
		return nil, 0, err
	}

	questions, err := r.queryMany(ctx,
		`SELECT `+questionColumns+` FROM questions ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

// RandomByCategory draws up to limit questions uniformly at random from one
// legacy category. Fewer rows than requested is not an error.
func (r *QuestionRepository) RandomByCategory(ctx context.Context, category string, limit int) ([]model.Question, error) {
	return r.queryMany(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE `+legacyCategory+` = $1
		 ORDER BY RANDOM() LIMIT $2`, category, limit)
}

// RandomAny draws up to limit questions uniformly at random from the whole pool.
func (r *QuestionRepository) RandomAny(ctx context.Context, limit int) ([]model.Question, error) {
	return r.queryMany(ctx,
		`SELECT `+questionColumns+` FROM questions ORDER BY RANDOM() LIMIT $1`, limit)
}

// CountByCategory returns how many questions each legacy category holds.
// Admins use this to size category quotas against the available pool.
func (r *QuestionRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+legacyCategory+` AS category, COUNT(*) FROM questions GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (question_text, option_a, option_b, option_c, option_d, option_e, option_f,
		                        correct_option, difficulty, media_kind, question_image, question_youtube, option_images)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		q.QuestionText, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.OptionE, q.OptionF,
		q.CorrectOption, q.Difficulty, q.MediaKind, q.QuestionImage, q.QuestionYT, q.OptionImages,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update replaces a question's content. Sessions that already snapshotted
// the question are unaffected; they carry their own frozen copy.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET question_text = $1, option_a = $2, option_b = $3, option_c = $4, option_d = $5,
		     option_e = $6, option_f = $7, correct_option = $8, difficulty = $9, media_kind = $10,
		     question_image = $11, question_youtube = $12, option_images = $13, updated_at = NOW()
		 WHERE id = $14`,
		q.QuestionText, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.OptionE, q.OptionF,
		q.CorrectOption, q.Difficulty, q.MediaKind, q.QuestionImage, q.QuestionYT, q.OptionImages, q.ID)
	return err
}

// Delete removes a question from the pool.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}
