package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"examportal/internal/model"
)

// SessionRepository handles exam session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, user_id, exam_id, start_time, end_time, questions_json, question_count,
	answers, answers_detail, score, is_completed, duration_minutes`

func scanSession(row pgx.Row) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := row.Scan(&s.ID, &s.UserID, &s.ExamID, &s.StartTime, &s.EndTime, &s.Snapshot,
		&s.QuestionCount, &s.Answers, &s.AnswersDetail, &s.Score, &s.IsCompleted, &s.DurationMinutes)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a session by its UUID.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, id))
}

// GetIncomplete retrieves the single incomplete session for a (user, exam)
// pair. A partial unique index guarantees at most one such row exists.
func (r *SessionRepository) GetIncomplete(ctx context.Context, userID int, examID uuid.UUID) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions
		 WHERE user_id = $1 AND exam_id = $2 AND NOT is_completed`, userID, examID))
}

// CountCompleted returns how many completed attempts the user has for an exam.
func (r *SessionRepository) CountCompleted(ctx context.Context, userID int, examID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_sessions
		 WHERE user_id = $1 AND exam_id = $2 AND is_completed`, userID, examID,
	).Scan(&count)
	return count, err
}

// Create inserts a new incomplete session carrying its frozen snapshot in the
// same row, so session start and snapshot write are a single atomic insert.
// On a concurrent duplicate the partial unique index makes the insert a no-op
// and pgx.ErrNoRows is returned; callers then refetch the winner's session.
func (r *SessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions (user_id, exam_id, start_time, questions_json, question_count)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, exam_id) WHERE NOT is_completed DO NOTHING
		 RETURNING id`,
		s.UserID, s.ExamID, s.StartTime, s.Snapshot, s.QuestionCount,
	).Scan(&s.ID)
}

// ReplaceSnapshot overwrites the frozen snapshot of an incomplete session.
// Used to recover sessions whose stored snapshot is missing or unparseable.
func (r *SessionRepository) ReplaceSnapshot(ctx context.Context, id uuid.UUID, snapshot json.RawMessage, questionCount int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions SET questions_json = $1, question_count = $2
		 WHERE id = $3 AND NOT is_completed`,
		snapshot, questionCount, id)
	return err
}

// Finalize writes the scored outcome and marks the session completed.
// Completed sessions are immutable; the guard makes a replay a no-op.
func (r *SessionRepository) Finalize(ctx context.Context, id uuid.UUID, endTime time.Time,
	score int, answers, answersDetail json.RawMessage, durationMinutes float64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET end_time = $1, score = $2, answers = $3, answers_detail = $4,
		     is_completed = TRUE, duration_minutes = $5
		 WHERE id = $6 AND NOT is_completed`,
		endTime, score, answers, answersDetail, durationMinutes, id)
	return err
}

// UserHistoryEntry is one completed attempt in a user's exam history.
type UserHistoryEntry struct {
	SessionID       uuid.UUID `json:"session_id"`
	ExamID          uuid.UUID `json:"exam_id"`
	ExamTitle       string    `json:"exam_title"`
	Score           int       `json:"score"`
	QuestionCount   int       `json:"question_count"`
	PassingScore    float64   `json:"passing_score"`
	DurationMinutes float64   `json:"duration_minutes"`
	EndTime         time.Time `json:"end_time"`
}

// ListCompletedByUser retrieves a user's completed attempts, newest first.
func (r *SessionRepository) ListCompletedByUser(ctx context.Context, userID int) ([]UserHistoryEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT es.id, es.exam_id, e.title, es.score, es.question_count, e.passing_score,
		        es.duration_minutes, es.end_time
		 FROM exam_sessions es
		 JOIN exams e ON es.exam_id = e.id
		 WHERE es.user_id = $1 AND es.is_completed
		 ORDER BY es.end_time DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []UserHistoryEntry
	for rows.Next() {
		var h UserHistoryEntry
		if err := rows.Scan(&h.SessionID, &h.ExamID, &h.ExamTitle, &h.Score, &h.QuestionCount,
			&h.PassingScore, &h.DurationMinutes, &h.EndTime); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
