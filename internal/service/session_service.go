package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"examportal/internal/model"
)

// Exam taking errors.
var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrExamNotActive      = errors.New("exam is not active")
	ErrExamNotStarted     = errors.New("exam has not started yet")
	ErrExamWindowClosed   = errors.New("exam window has closed")
	ErrMaxAttemptsReached = errors.New("maximum attempts reached")
	ErrNoValidQuestions   = errors.New("no servable questions available")
	ErrSessionNotFound    = errors.New("session not found")
	ErrCorruptSnapshot    = errors.New("session snapshot is corrupt")
)

// ExamStore loads exam definitions.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
}

// SessionStore persists exam sessions.
type SessionStore interface {
	Create(ctx context.Context, s *model.ExamSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error)
	GetIncomplete(ctx context.Context, userID int, examID uuid.UUID) (*model.ExamSession, error)
	CountCompleted(ctx context.Context, userID int, examID uuid.UUID) (int, error)
	ReplaceSnapshot(ctx context.Context, id uuid.UUID, snapshot json.RawMessage, questionCount int) error
	Finalize(ctx context.Context, id uuid.UUID, endTime time.Time, score int,
		answers, answersDetail json.RawMessage, durationMinutes float64) error
}

// QuestionSource draws random questions from the bank.
type QuestionSource interface {
	RandomByCategory(ctx context.Context, category string, limit int) ([]model.Question, error)
	RandomAny(ctx context.Context, limit int) ([]model.Question, error)
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SessionService assembles exam papers, tracks live sessions and scores
// submissions.
type SessionService struct {
	exams     ExamStore
	sessions  SessionStore
	questions QuestionSource
	clock     Clock
	newRNG    func() *rand.Rand
}

// NewSessionService creates a new SessionService.
func NewSessionService(exams ExamStore, sessions SessionStore, questions QuestionSource) *SessionService {
	return &SessionService{
		exams:     exams,
		sessions:  sessions,
		questions: questions,
		clock:     systemClock{},
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// ActiveSession is a live session together with what the student may see.
type ActiveSession struct {
	Session          *model.ExamSession       `json:"session"`
	Exam             *model.Exam              `json:"exam"`
	Questions        []model.SnapshotQuestion `json:"questions"`
	RemainingSeconds int                      `json:"remaining_seconds"`
}

// StartExam opens (or resumes) a session for the user on the given exam. The
// question paper is drawn once, frozen into the session row, and every later
// read serves the same paper.
func (s *SessionService) StartExam(ctx context.Context, userID int, examID uuid.UUID) (*ActiveSession, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if !exam.IsActive {
		return nil, ErrExamNotActive
	}

	now := s.clock.Now()
	if exam.ScheduledStart != nil && now.Before(*exam.ScheduledStart) {
		return nil, ErrExamNotStarted
	}
	if exam.ScheduledEnd != nil && now.After(*exam.ScheduledEnd) {
		return nil, ErrExamWindowClosed
	}

	// Resume an open session instead of drawing a fresh paper.
	if existing, err := s.sessions.GetIncomplete(ctx, userID, examID); err == nil {
		return s.resume(ctx, exam, existing)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get incomplete session: %w", err)
	}

	if exam.MaxAttempts > 0 {
		completed, err := s.sessions.CountCompleted(ctx, userID, examID)
		if err != nil {
			return nil, fmt.Errorf("count attempts: %w", err)
		}
		if completed >= exam.MaxAttempts {
			return nil, ErrMaxAttemptsReached
		}
	}

	snapshot, err := s.assemblePaper(ctx, exam)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	session := &model.ExamSession{
		UserID:        userID,
		ExamID:        examID,
		StartTime:     now,
		Snapshot:      raw,
		QuestionCount: len(snapshot),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a concurrent race: another request already opened the
			// session. Serve the winner's paper.
			winner, ferr := s.sessions.GetIncomplete(ctx, userID, examID)
			if ferr != nil {
				return nil, fmt.Errorf("refetch session after conflict: %w", ferr)
			}
			return s.resume(ctx, exam, winner)
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &ActiveSession{
		Session:          session,
		Exam:             exam,
		Questions:        studentView(snapshot),
		RemainingSeconds: remainingSeconds(exam, session.StartTime, now),
	}, nil
}

// GetState returns the live state of the user's session for the given exam.
func (s *SessionService) GetState(ctx context.Context, userID int, examID uuid.UUID) (*ActiveSession, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	session, err := s.sessions.GetIncomplete(ctx, userID, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s.resume(ctx, exam, session)
}

// resume decodes a session's frozen paper. A snapshot that no longer parses
// is replaced with a freshly drawn one so the student is not locked out.
func (s *SessionService) resume(ctx context.Context, exam *model.Exam, session *model.ExamSession) (*ActiveSession, error) {
	snapshot, err := model.DecodeSnapshot(session.Snapshot)
	if err != nil {
		log.Warn().Err(err).
			Str("session_id", session.ID.String()).
			Msg("stored snapshot unreadable, redrawing paper")

		snapshot, err = s.assemblePaper(ctx, exam)
		if err != nil {
			return nil, err
		}
		raw, merr := json.Marshal(snapshot)
		if merr != nil {
			return nil, fmt.Errorf("encode snapshot: %w", merr)
		}
		if err := s.sessions.ReplaceSnapshot(ctx, session.ID, raw, len(snapshot)); err != nil {
			return nil, fmt.Errorf("replace snapshot: %w", err)
		}
		session.Snapshot = raw
		session.QuestionCount = len(snapshot)
	}

	return &ActiveSession{
		Session:          session,
		Exam:             exam,
		Questions:        studentView(snapshot),
		RemainingSeconds: remainingSeconds(exam, session.StartTime, s.clock.Now()),
	}, nil
}

// assemblePaper draws questions per the exam's category quota, falling back
// to an unconstrained draw when no quota is configured. A category that has
// fewer servable questions than requested contributes what it has.
func (s *SessionService) assemblePaper(ctx context.Context, exam *model.Exam) ([]model.SnapshotQuestion, error) {
	var picked []model.Question

	quota := exam.Quota()
	if len(quota) > 0 {
		for category, want := range quota {
			if want <= 0 {
				continue
			}
			batch, err := s.questions.RandomByCategory(ctx, category, want)
			if err != nil {
				return nil, fmt.Errorf("draw category %s: %w", category, err)
			}
			got := filterServable(batch)
			if len(got) < want {
				log.Warn().
					Str("exam_id", exam.ID.String()).
					Str("category", category).
					Int("requested", want).
					Int("available", len(got)).
					Msg("category quota shortfall")
			}
			picked = append(picked, got...)
		}
	} else {
		batch, err := s.questions.RandomAny(ctx, exam.NumQuestions)
		if err != nil {
			return nil, fmt.Errorf("draw questions: %w", err)
		}
		picked = filterServable(batch)
	}

	if len(picked) == 0 {
		return nil, ErrNoValidQuestions
	}
	snapshot := buildSnapshot(picked, s.newRNG())
	if len(snapshot) == 0 {
		return nil, ErrNoValidQuestions
	}
	return snapshot, nil
}

// Submit scores the user's answers against the session's frozen paper and
// finalizes the session. Unanswered questions count as incorrect.
func (s *SessionService) Submit(ctx context.Context, userID int, sessionID uuid.UUID, answers map[string]string) (*model.ExamResult, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	if session.IsCompleted {
		// Duplicate submission replays the stored result without re-scoring.
		result, _, err := s.GetResult(ctx, userID, sessionID)
		return result, err
	}

	snapshot, err := model.DecodeSnapshot(session.Snapshot)
	if err != nil {
		return nil, ErrCorruptSnapshot
	}

	exam, err := s.exams.GetByID(ctx, session.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}

	score := 0
	detail := make(map[string]model.AnswerDetail, len(snapshot))
	for _, q := range snapshot {
		qid := q.ID.String()
		given, answered := answers[qid]
		given = strings.ToUpper(strings.TrimSpace(given))

		correct := answered && given == q.CorrectOption
		if correct {
			score++
		}

		d := model.AnswerDetail{CorrectAnswer: q.CorrectOption, IsCorrect: correct}
		if answered && given != "" {
			d.UserAnswer = &given
		}
		detail[qid] = d
	}

	endTime := s.clock.Now()
	duration := round2(endTime.Sub(session.StartTime).Minutes())
	if duration < 0 {
		duration = 0
	}

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	detailJSON, err := json.Marshal(detail)
	if err != nil {
		return nil, fmt.Errorf("encode answer detail: %w", err)
	}

	if err := s.sessions.Finalize(ctx, session.ID, endTime, score, answersJSON, detailJSON, duration); err != nil {
		return nil, fmt.Errorf("finalize session: %w", err)
	}

	percentage := percent(score, session.QuestionCount)

	return &model.ExamResult{
		SessionID:       session.ID,
		ExamTitle:       exam.Title,
		Score:           score,
		TotalQuestions:  session.QuestionCount,
		Percentage:      percentage,
		PassingScore:    exam.PassingScore,
		Passed:          percentage >= exam.PassingScore,
		DurationMinutes: duration,
		EndTime:         endTime,
	}, nil
}

// GetResult builds the result view of a completed session owned by the user.
func (s *SessionService) GetResult(ctx context.Context, userID int, sessionID uuid.UUID) (*model.ExamResult, *model.ExamSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != userID {
		return nil, nil, ErrSessionNotFound
	}
	if !session.IsCompleted || session.EndTime == nil {
		return nil, nil, ErrSessionNotFound
	}

	exam, err := s.exams.GetByID(ctx, session.ExamID)
	if err != nil {
		return nil, nil, fmt.Errorf("get exam: %w", err)
	}

	percentage := percent(session.Score, session.QuestionCount)

	return &model.ExamResult{
		SessionID:       session.ID,
		ExamTitle:       exam.Title,
		Score:           session.Score,
		TotalQuestions:  session.QuestionCount,
		Percentage:      percentage,
		PassingScore:    exam.PassingScore,
		Passed:          percentage >= exam.PassingScore,
		DurationMinutes: session.DurationMinutes,
		EndTime:         *session.EndTime,
	}, session, nil
}

func studentView(snapshot []model.SnapshotQuestion) []model.SnapshotQuestion {
	view := make([]model.SnapshotQuestion, len(snapshot))
	for i := range snapshot {
		view[i] = snapshot[i].StudentView()
	}
	return view
}

func remainingSeconds(exam *model.Exam, start, now time.Time) int {
	deadline := start.Add(time.Duration(exam.DurationMinutes) * time.Minute)
	remaining := int(deadline.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// percent converts a raw score into a display percentage. The result is
// capped at 100 so a corrupt stored score never renders an impossible value;
// a zero question count reads as 0.
func percent(score, count int) float64 {
	if count <= 0 {
		return 0
	}
	pct := round2(float64(score) * 100 / float64(count))
	if pct > 100 {
		return 100
	}
	return pct
}
