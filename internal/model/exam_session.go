package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExamSession represents one attempt of an exam by a user.
// Snapshot holds the frozen question list generated at start time;
// it is the only record of what the examinee actually saw.
type ExamSession struct {
	ID              uuid.UUID       `json:"id"`
	UserID          int             `json:"user_id"`
	ExamID          uuid.UUID       `json:"exam_id"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         *time.Time      `json:"end_time,omitempty"`
	Snapshot        json.RawMessage `json:"-"`
	QuestionCount   int             `json:"question_count"`
	Answers         json.RawMessage `json:"answers,omitempty"`
	AnswersDetail   json.RawMessage `json:"answers_detail,omitempty"`
	Score           int             `json:"score"`
	IsCompleted     bool            `json:"is_completed"`
	DurationMinutes float64         `json:"duration_minutes"`
}

// AnswerDetail records the outcome for a single snapshot question.
// UserAnswer is nil when the question was left blank.
type AnswerDetail struct {
	UserAnswer    *string `json:"user_answer"`
	CorrectAnswer string  `json:"correct_answer"`
	IsCorrect     bool    `json:"is_correct"`
}

// SubmitExamRequest is the payload for submitting answers.
// Missing entries are blank questions, which is a valid submission.
type SubmitExamRequest struct {
	Answers map[string]string `json:"answers"`
}

// ExamResult is the scored outcome returned to the examinee.
type ExamResult struct {
	SessionID       uuid.UUID `json:"session_id"`
	ExamTitle       string    `json:"exam_title"`
	Score           int       `json:"score"`
	TotalQuestions  int       `json:"total_questions"`
	Percentage      float64   `json:"percentage"`
	PassingScore    float64   `json:"passing_score"`
	Passed          bool      `json:"passed"`
	DurationMinutes float64   `json:"duration_minutes"`
	EndTime         time.Time `json:"end_time"`
}
