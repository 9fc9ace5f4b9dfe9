package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository aggregates counters for the admin dashboard.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// DashboardCounts holds the headline numbers shown on the admin dashboard.
type DashboardCounts struct {
	Users             int `json:"users"`
	Questions         int `json:"questions"`
	Exams             int `json:"exams"`
	CompletedSessions int `json:"completed_sessions"`
	ActiveSessions    int `json:"active_sessions"`
}

// Counts gathers all dashboard counters in a single query.
func (r *DashboardRepository) Counts(ctx context.Context) (*DashboardCounts, error) {
	c := &DashboardCounts{}
	err := r.pool.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM users),
		   (SELECT COUNT(*) FROM questions),
		   (SELECT COUNT(*) FROM exams),
		   (SELECT COUNT(*) FROM exam_sessions WHERE is_completed),
		   (SELECT COUNT(*) FROM exam_sessions WHERE NOT is_completed)`,
	).Scan(&c.Users, &c.Questions, &c.Exams, &c.CompletedSessions, &c.ActiveSessions)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// RecentResult is one recently completed attempt on the dashboard feed.
type RecentResult struct {
	SessionID     uuid.UUID `json:"session_id"`
	ServiceNo     string    `json:"service_no"`
	UserName      string    `json:"user_name"`
	ExamTitle     string    `json:"exam_title"`
	Score         int       `json:"score"`
	QuestionCount int       `json:"question_count"`
	EndTime       time.Time `json:"end_time"`
}

// RecentResults lists the latest completed attempts, newest first.
func (r *DashboardRepository) RecentResults(ctx context.Context, limit int) ([]RecentResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT es.id, u.service_no, u.name, e.title, es.score, es.question_count, es.end_time
		 FROM exam_sessions es
		 JOIN users u ON es.user_id = u.id
		 JOIN exams e ON es.exam_id = e.id
		 WHERE es.is_completed
		 ORDER BY es.end_time DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recent []RecentResult
	for rows.Next() {
		var rr RecentResult
		if err := rows.Scan(&rr.SessionID, &rr.ServiceNo, &rr.UserName, &rr.ExamTitle,
			&rr.Score, &rr.QuestionCount, &rr.EndTime); err != nil {
			return nil, err
		}
		recent = append(recent, rr)
	}
	return recent, rows.Err()
}
