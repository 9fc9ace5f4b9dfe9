package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultRepository reads completed sessions for standings, leaderboards and
// the admin results views.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// StandingRow is one completed attempt joined with the attempting user,
// before ranking is applied.
type StandingRow struct {
	SessionID       uuid.UUID `json:"session_id"`
	UserID          int       `json:"user_id"`
	ServiceNo       string    `json:"service_no"`
	Name            string    `json:"name"`
	WingName        string    `json:"wing_name"`
	Score           int       `json:"score"`
	QuestionCount   int       `json:"question_count"`
	DurationMinutes float64   `json:"duration_minutes"`
	EndTime         time.Time `json:"end_time"`
}

// ListCompletedByExam retrieves every completed attempt for an exam. Rank
// order is computed in the service layer, not here.
func (r *ResultRepository) ListCompletedByExam(ctx context.Context, examID uuid.UUID) ([]StandingRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT es.id, u.id, u.service_no, u.name, u.wing_name,
		        es.score, es.question_count, es.duration_minutes, es.end_time
		 FROM exam_sessions es
		 JOIN users u ON es.user_id = u.id
		 WHERE es.exam_id = $1 AND es.is_completed`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standings []StandingRow
	for rows.Next() {
		var s StandingRow
		if err := rows.Scan(&s.SessionID, &s.UserID, &s.ServiceNo, &s.Name, &s.WingName,
			&s.Score, &s.QuestionCount, &s.DurationMinutes, &s.EndTime); err != nil {
			return nil, err
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}

// LeaderboardRow is one user's aggregate standing across all completed exams.
type LeaderboardRow struct {
	UserID       int     `json:"user_id"`
	ServiceNo    string  `json:"service_no"`
	Name         string  `json:"name"`
	WingName     string  `json:"wing_name"`
	ExamsTaken   int     `json:"exams_taken"`
	AveragePct   float64 `json:"average_percentage"`
	AvgDuration  float64 `json:"average_duration"`
	TotalScore   int     `json:"total_score"`
	LastActivity string  `json:"last_activity"`
}

// Leaderboard aggregates per-user average percentage across completed
// sessions. Percentages are computed against each session's own question
// count so shortfall sessions are weighted by what they actually served.
func (r *ResultRepository) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.service_no, u.name, u.wing_name,
		        COUNT(es.id) AS exams_taken,
		        AVG(CASE WHEN es.question_count > 0
		                 THEN es.score * 100.0 / es.question_count
		                 ELSE 0 END) AS average_pct,
		        AVG(es.duration_minutes) AS average_duration,
		        COALESCE(SUM(es.score), 0) AS total_score,
		        TO_CHAR(MAX(es.end_time), 'YYYY-MM-DD HH24:MI') AS last_activity
		 FROM users u
		 JOIN exam_sessions es ON es.user_id = u.id AND es.is_completed
		 GROUP BY u.id, u.service_no, u.name, u.wing_name
		 ORDER BY average_pct DESC, total_score DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var board []LeaderboardRow
	for rows.Next() {
		var l LeaderboardRow
		if err := rows.Scan(&l.UserID, &l.ServiceNo, &l.Name, &l.WingName,
			&l.ExamsTaken, &l.AveragePct, &l.AvgDuration, &l.TotalScore, &l.LastActivity); err != nil {
			return nil, err
		}
		board = append(board, l)
	}
	return board, rows.Err()
}

// ResultFilter narrows the admin results listing.
type ResultFilter struct {
	ExamID    *uuid.UUID
	WingName  string
	ServiceNo string
	Limit     int
	Offset    int
}

// AdminResultRow is one completed attempt in the admin results view.
type AdminResultRow struct {
	SessionID       uuid.UUID `json:"session_id"`
	ServiceNo       string    `json:"service_no"`
	UserName        string    `json:"user_name"`
	WingName        string    `json:"wing_name"`
	ExamID          uuid.UUID `json:"exam_id"`
	ExamTitle       string    `json:"exam_title"`
	Score           int       `json:"score"`
	QuestionCount   int       `json:"question_count"`
	DurationMinutes float64   `json:"duration_minutes"`
	EndTime         time.Time `json:"end_time"`
}

// ListForAdmin retrieves completed attempts matching the filter with the
// total count for pagination.
func (r *ResultRepository) ListForAdmin(ctx context.Context, f ResultFilter) ([]AdminResultRow, int, error) {
	where := `es.is_completed`
	args := []any{}
	arg := 1
	if f.ExamID != nil {
		where += ` AND es.exam_id = $` + strconv.Itoa(arg)
		args = append(args, *f.ExamID)
		arg++
	}
	if f.WingName != "" {
		where += ` AND u.wing_name = $` + strconv.Itoa(arg)
		args = append(args, f.WingName)
		arg++
	}
	if f.ServiceNo != "" {
		where += ` AND u.service_no ILIKE $` + strconv.Itoa(arg)
		args = append(args, "%"+f.ServiceNo+"%")
		arg++
	}

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_sessions es JOIN users u ON es.user_id = u.id WHERE `+where,
		args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT es.id, u.service_no, u.name, u.wing_name, e.id, e.title,
	                 es.score, es.question_count, es.duration_minutes, es.end_time
	          FROM exam_sessions es
	          JOIN users u ON es.user_id = u.id
	          JOIN exams e ON es.exam_id = e.id
	          WHERE ` + where + `
	          ORDER BY es.end_time DESC
	          LIMIT $` + strconv.Itoa(arg) + ` OFFSET $` + strconv.Itoa(arg+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []AdminResultRow
	for rows.Next() {
		var a AdminResultRow
		if err := rows.Scan(&a.SessionID, &a.ServiceNo, &a.UserName, &a.WingName,
			&a.ExamID, &a.ExamTitle, &a.Score, &a.QuestionCount,
			&a.DurationMinutes, &a.EndTime); err != nil {
			return nil, 0, err
		}
		results = append(results, a)
	}
	return results, total, rows.Err()
}

// CorruptScore is a completed session whose stored score exceeds the number
// of questions it actually served.
type CorruptScore struct {
	SessionID     uuid.UUID `json:"session_id"`
	UserID        int       `json:"user_id"`
	ServiceNo     string    `json:"service_no"`
	Score         int       `json:"score"`
	QuestionCount int       `json:"question_count"`
}

// FindCorruptScores lists completed sessions where score > question_count.
func (r *ResultRepository) FindCorruptScores(ctx context.Context) ([]CorruptScore, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT es.id, u.id, u.service_no, es.score, es.question_count
		 FROM exam_sessions es
		 JOIN users u ON es.user_id = u.id
		 WHERE es.is_completed AND es.score > es.question_count`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var corrupt []CorruptScore
	for rows.Next() {
		var c CorruptScore
		if err := rows.Scan(&c.SessionID, &c.UserID, &c.ServiceNo, &c.Score, &c.QuestionCount); err != nil {
			return nil, err
		}
		corrupt = append(corrupt, c)
	}
	return corrupt, rows.Err()
}

// ClampScores caps every corrupt score at its session's question count and
// returns how many rows were repaired.
func (r *ResultRepository) ClampScores(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions SET score = question_count
		 WHERE is_completed AND score > question_count`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ExamStats summarizes completed attempts for one exam.
type ExamStats struct {
	Attempts   int     `json:"attempts"`
	AveragePct float64 `json:"average_percentage"`
	HighestPct float64 `json:"highest_percentage"`
	LowestPct  float64 `json:"lowest_percentage"`
	PassCount  int     `json:"pass_count"`
}

// StatsByExam computes aggregate statistics for one exam's completed attempts.
func (r *ResultRepository) StatsByExam(ctx context.Context, examID uuid.UUID, passingScore float64) (*ExamStats, error) {
	s := &ExamStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(AVG(pct), 0), COALESCE(MAX(pct), 0), COALESCE(MIN(pct), 0),
		        COUNT(*) FILTER (WHERE pct >= $2)
		 FROM (
		   SELECT CASE WHEN question_count > 0
		               THEN score * 100.0 / question_count
		               ELSE 0 END AS pct
		   FROM exam_sessions
		   WHERE exam_id = $1 AND is_completed
		 ) t`, examID, passingScore,
	).Scan(&s.Attempts, &s.AveragePct, &s.HighestPct, &s.LowestPct, &s.PassCount)
	if err != nil {
		return nil, err
	}
	return s, nil
}
