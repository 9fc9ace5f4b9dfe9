package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Exam represents an exam definition.
// CategoryQuota maps a question category to the number of questions
// drawn from it per session; a nil/empty quota falls back to drawing
// NumQuestions from the whole pool.
type Exam struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	DurationMinutes int             `json:"duration_minutes"`
	NumQuestions    int             `json:"num_questions"`
	CategoryQuota   json.RawMessage `json:"category_quota,omitempty"`
	PassingScore    float64         `json:"passing_score"`
	MaxAttempts     int             `json:"max_attempts"`
	IsActive        bool            `json:"is_active"`
	ScheduledStart  *time.Time      `json:"scheduled_start,omitempty"`
	ScheduledEnd    *time.Time      `json:"scheduled_end,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Quota decodes the category quota. A missing or unparseable quota
// returns nil, which callers treat as "draw from the whole pool".
func (e *Exam) Quota() map[string]int {
	if len(e.CategoryQuota) == 0 {
		return nil
	}
	var quota map[string]int
	if err := json.Unmarshal(e.CategoryQuota, &quota); err != nil {
		return nil
	}
	return quota
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title           string         `json:"title" binding:"required,min=3,max=255"`
	Description     string         `json:"description" binding:"omitempty,max=2000"`
	DurationMinutes int            `json:"duration_minutes" binding:"required,min=1,max=480"`
	NumQuestions    int            `json:"num_questions" binding:"required,min=1,max=500"`
	CategoryQuota   map[string]int `json:"category_quota" binding:"omitempty"`
	PassingScore    float64        `json:"passing_score" binding:"min=0,max=100"`
	MaxAttempts     int            `json:"max_attempts" binding:"required,min=1,max=10"`
	ScheduledStart  *time.Time     `json:"scheduled_start" binding:"omitempty"`
	ScheduledEnd    *time.Time     `json:"scheduled_end" binding:"omitempty,gtfield=ScheduledStart"`
}

// UpdateExamRequest is the payload for updating an existing exam.
type UpdateExamRequest = CreateExamRequest

// ActivateExamRequest is the AJAX payload for the activate/deactivate toggles.
type ActivateExamRequest struct {
	ExamID uuid.UUID `json:"exam_id" binding:"required"`
}
