package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"examportal/internal/model"
)

type fakeExamStore struct {
	exams map[uuid.UUID]*model.Exam
}

func (f *fakeExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	if e, ok := f.exams[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

type fakeSessionStore struct {
	sessions  map[uuid.UUID]*model.ExamSession
	completed map[string]int // "userID/examID" -> completed count
	createErr error
	finalized int
	replaced  int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions:  make(map[uuid.UUID]*model.ExamSession),
		completed: make(map[string]int),
	}
}

func key(userID int, examID uuid.UUID) string {
	return fmt.Sprintf("%d/%s", userID, examID)
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.ExamSession) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.sessions {
		if existing.UserID == s.UserID && existing.ExamID == s.ExamID && !existing.IsCompleted {
			return pgx.ErrNoRows
		}
	}
	s.ID = uuid.New()
	copied := *s
	f.sessions[s.ID] = &copied
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.ExamSession, error) {
	if s, ok := f.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSessionStore) GetIncomplete(_ context.Context, userID int, examID uuid.UUID) (*model.ExamSession, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.ExamID == examID && !s.IsCompleted {
			copied := *s
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSessionStore) CountCompleted(_ context.Context, userID int, examID uuid.UUID) (int, error) {
	return f.completed[key(userID, examID)], nil
}

func (f *fakeSessionStore) ReplaceSnapshot(_ context.Context, id uuid.UUID, snapshot json.RawMessage, questionCount int) error {
	s, ok := f.sessions[id]
	if !ok {
		return pgx.ErrNoRows
	}
	s.Snapshot = snapshot
	s.QuestionCount = questionCount
	f.replaced++
	return nil
}

func (f *fakeSessionStore) Finalize(_ context.Context, id uuid.UUID, endTime time.Time,
	score int, answers, answersDetail json.RawMessage, durationMinutes float64) error {
	s, ok := f.sessions[id]
	if !ok || s.IsCompleted {
		return nil
	}
	s.EndTime = &endTime
	s.Score = score
	s.Answers = answers
	s.AnswersDetail = answersDetail
	s.IsCompleted = true
	s.DurationMinutes = durationMinutes
	f.completed[key(s.UserID, s.ExamID)]++
	f.finalized++
	return nil
}

type fakeQuestionSource struct {
	byCategory map[string][]model.Question
	pool       []model.Question
}

func (f *fakeQuestionSource) RandomByCategory(_ context.Context, category string, limit int) ([]model.Question, error) {
	qs := f.byCategory[category]
	if len(qs) > limit {
		qs = qs[:limit]
	}
	return qs, nil
}

func (f *fakeQuestionSource) RandomAny(_ context.Context, limit int) ([]model.Question, error) {
	qs := f.pool
	if len(qs) > limit {
		qs = qs[:limit]
	}
	return qs, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func makeQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = validQuestion()
		qs[i].ID = uuid.New()
	}
	return qs
}

func testService(exam *model.Exam, store *fakeSessionStore, source *fakeQuestionSource, now time.Time) *SessionService {
	svc := NewSessionService(
		&fakeExamStore{exams: map[uuid.UUID]*model.Exam{exam.ID: exam}},
		store, source)
	svc.clock = fixedClock{now: now}
	svc.newRNG = func() *rand.Rand { return rand.New(rand.NewSource(99)) }
	return svc
}

func activeExam() *model.Exam {
	return &model.Exam{
		ID:              uuid.New(),
		Title:           "General Knowledge",
		DurationMinutes: 30,
		NumQuestions:    5,
		PassingScore:    60,
		MaxAttempts:     1,
		IsActive:        true,
	}
}

func TestStartExamRejectsInactiveExam(t *testing.T) {
	exam := activeExam()
	exam.IsActive = false
	svc := testService(exam, newFakeSessionStore(), &fakeQuestionSource{}, time.Now())

	_, err := svc.StartExam(context.Background(), 1, exam.ID)
	if !errors.Is(err, ErrExamNotActive) {
		t.Fatalf("err = %v, want ErrExamNotActive", err)
	}
}

func TestStartExamRejectsUnknownExam(t *testing.T) {
	exam := activeExam()
	svc := testService(exam, newFakeSessionStore(), &fakeQuestionSource{}, time.Now())

	_, err := svc.StartExam(context.Background(), 1, uuid.New())
	if !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("err = %v, want ErrExamNotFound", err)
	}
}

func TestStartExamHonorsSchedule(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	early := now.Add(time.Hour)
	late := now.Add(-time.Hour)

	t.Run("before window", func(t *testing.T) {
		exam := activeExam()
		exam.ScheduledStart = &early
		svc := testService(exam, newFakeSessionStore(), &fakeQuestionSource{}, now)
		_, err := svc.StartExam(context.Background(), 1, exam.ID)
		if !errors.Is(err, ErrExamNotStarted) {
			t.Fatalf("err = %v, want ErrExamNotStarted", err)
		}
	})

	t.Run("after window", func(t *testing.T) {
		exam := activeExam()
		exam.ScheduledEnd = &late
		svc := testService(exam, newFakeSessionStore(), &fakeQuestionSource{}, now)
		_, err := svc.StartExam(context.Background(), 1, exam.ID)
		if !errors.Is(err, ErrExamWindowClosed) {
			t.Fatalf("err = %v, want ErrExamWindowClosed", err)
		}
	})
}

func TestStartExamEnforcesMaxAttempts(t *testing.T) {
	exam := activeExam()
	store := newFakeSessionStore()
	store.completed[key(1, exam.ID)] = 1
	svc := testService(exam, store, &fakeQuestionSource{pool: makeQuestions(5)}, time.Now())

	_, err := svc.StartExam(context.Background(), 1, exam.ID)
	if !errors.Is(err, ErrMaxAttemptsReached) {
		t.Fatalf("err = %v, want ErrMaxAttemptsReached", err)
	}
}

func TestStartExamRejectsEmptyPool(t *testing.T) {
	exam := activeExam()
	svc := testService(exam, newFakeSessionStore(), &fakeQuestionSource{}, time.Now())

	_, err := svc.StartExam(context.Background(), 1, exam.ID)
	if !errors.Is(err, ErrNoValidQuestions) {
		t.Fatalf("err = %v, want ErrNoValidQuestions", err)
	}
}

func TestStartExamDrawsWholePoolWithoutQuota(t *testing.T) {
	exam := activeExam()
	svc := testService(exam, newFakeSessionStore(), &fakeQuestionSource{pool: makeQuestions(5)}, time.Now())

	active, err := svc.StartExam(context.Background(), 1, exam.ID)
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}
	if len(active.Questions) != 5 {
		t.Errorf("served %d questions, want 5", len(active.Questions))
	}
	if active.Session.QuestionCount != 5 {
		t.Errorf("question_count = %d, want 5", active.Session.QuestionCount)
	}
	for _, q := range active.Questions {
		if q.CorrectOption != "" {
			t.Error("student view leaks the correct option")
		}
	}
}

func TestStartExamQuotaShortfallServesWhatExists(t *testing.T) {
	exam := activeExam()
	exam.CategoryQuota = json.RawMessage(`{"easy": 3, "image": 2}`)
	source := &fakeQuestionSource{byCategory: map[string][]model.Question{
		"easy": makeQuestions(3),
		// only one image question exists of the two requested
		"image": makeQuestions(1),
	}}
	svc := testService(exam, newFakeSessionStore(), source, time.Now())

	active, err := svc.StartExam(context.Background(), 1, exam.ID)
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}
	if len(active.Questions) != 4 {
		t.Errorf("served %d questions, want 4", len(active.Questions))
	}
}

func TestStartExamInvalidQuotaFallsBackToPool(t *testing.T) {
	exam := activeExam()
	exam.CategoryQuota = json.RawMessage(`"not an object"`)
	svc := testService(exam, newFakeSessionStore(), &fakeQuestionSource{pool: makeQuestions(5)}, time.Now())

	active, err := svc.StartExam(context.Background(), 1, exam.ID)
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}
	if len(active.Questions) != 5 {
		t.Errorf("served %d questions, want 5", len(active.Questions))
	}
}

func TestStartExamResumesExistingSession(t *testing.T) {
	exam := activeExam()
	store := newFakeSessionStore()
	svc := testService(exam, store, &fakeQuestionSource{pool: makeQuestions(5)}, time.Now())

	first, err := svc.StartExam(context.Background(), 1, exam.ID)
	if err != nil {
		t.Fatalf("first StartExam: %v", err)
	}
	second, err := svc.StartExam(context.Background(), 1, exam.ID)
	if err != nil {
		t.Fatalf("second StartExam: %v", err)
	}

	if first.Session.ID != second.Session.ID {
		t.Error("second start opened a new session instead of resuming")
	}
	if len(first.Questions) != len(second.Questions) {
		t.Fatal("resumed paper has a different size")
	}
	for i := range first.Questions {
		if first.Questions[i].ID != second.Questions[i].ID {
			t.Fatal("resumed paper differs from the frozen one")
		}
	}
}

// raceStore hides the existing incomplete session from the first lookup so
// the caller proceeds to Create and loses the insert race.
type raceStore struct {
	*fakeSessionStore
	misses int
}

func (r *raceStore) GetIncomplete(ctx context.Context, userID int, examID uuid.UUID) (*model.ExamSession, error) {
	if r.misses > 0 {
		r.misses--
		return nil, pgx.ErrNoRows
	}
	return r.fakeSessionStore.GetIncomplete(ctx, userID, examID)
}

func TestStartExamConflictServesWinnersPaper(t *testing.T) {
	exam := activeExam()
	store := newFakeSessionStore()
	svc := testService(exam, store, &fakeQuestionSource{pool: makeQuestions(5)}, time.Now())

	winner, err := svc.StartExam(context.Background(), 1, exam.ID)
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}

	// Second request races: it misses the open session, tries to insert,
	// hits the unique index, and must come back with the winner's paper.
	svc.sessions = &raceStore{fakeSessionStore: store, misses: 1}
	loser, err := svc.StartExam(context.Background(), 1, exam.ID)
	if err != nil {
		t.Fatalf("racing StartExam: %v", err)
	}
	if loser.Session.ID != winner.Session.ID {
		t.Error("racing request did not adopt the winner's session")
	}
}

func TestSubmitScoresAnswers(t *testing.T) {
	exam := activeExam()
	store := newFakeSessionStore()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := testService(exam, store, &fakeQuestionSource{pool: makeQuestions(4)}, start)

	active, err := svc.StartExam(context.Background(), 7, exam.ID)
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}

	snapshot, err := model.DecodeSnapshot(store.sessions[active.Session.ID].Snapshot)
	if err != nil {
		t.Fatalf("decode stored snapshot: %v", err)
	}

	// Answer two right, one wrong, leave one blank.
	answers := map[string]string{
		snapshot[0].ID.String(): snapshot[0].CorrectOption,
		snapshot[1].ID.String(): " " + snapshot[1].CorrectOption + " ", // whitespace tolerated
		snapshot[2].ID.String(): wrongLetter(snapshot[2].CorrectOption),
	}

	svc.clock = fixedClock{now: start.Add(12*time.Minute + 30*time.Second)}
	result, err := svc.Submit(context.Background(), 7, active.Session.ID, answers)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.Score != 2 {
		t.Errorf("score = %d, want 2", result.Score)
	}
	if result.TotalQuestions != 4 {
		t.Errorf("total = %d, want 4", result.TotalQuestions)
	}
	if result.Percentage != 50 {
		t.Errorf("percentage = %v, want 50", result.Percentage)
	}
	if result.Passed {
		t.Error("percentage 50 should not pass threshold 60")
	}
	if result.DurationMinutes != 12.5 {
		t.Errorf("duration = %v, want 12.5", result.DurationMinutes)
	}

	var detail map[string]model.AnswerDetail
	if err := json.Unmarshal(store.sessions[active.Session.ID].AnswersDetail, &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	blank := detail[snapshot[3].ID.String()]
	if blank.IsCorrect {
		t.Error("blank answer marked correct")
	}
	if blank.UserAnswer != nil {
		t.Error("blank answer should have no user answer recorded")
	}
}

func TestSubmitReplaysStoredResult(t *testing.T) {
	exam := activeExam()
	store := newFakeSessionStore()
	svc := testService(exam, store, &fakeQuestionSource{pool: makeQuestions(3)}, time.Now())

	active, err := svc.StartExam(context.Background(), 1, exam.ID)
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}
	first, err := svc.Submit(context.Background(), 1, active.Session.ID, nil)
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	// A duplicate submission must report the stored result without
	// re-scoring, even if it carries different answers.
	answers := map[string]string{active.Questions[0].ID.String(): "A"}
	second, err := svc.Submit(context.Background(), 1, active.Session.ID, answers)
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if second.Score != first.Score || second.Percentage != first.Percentage {
		t.Errorf("replayed result %+v, want %+v", second, first)
	}
	if store.finalized != 1 {
		t.Errorf("Finalize called %d times, want 1", store.finalized)
	}
}

func TestSubmitRejectsForeignSession(t *testing.T) {
	exam := activeExam()
	store := newFakeSessionStore()
	svc := testService(exam, store, &fakeQuestionSource{pool: makeQuestions(3)}, time.Now())

	active, err := svc.StartExam(context.Background(), 1, exam.ID)
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}
	_, err = svc.Submit(context.Background(), 2, active.Session.ID, nil)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSubmitRejectsCorruptSnapshot(t *testing.T) {
	exam := activeExam()
	store := newFakeSessionStore()
	svc := testService(exam, store, &fakeQuestionSource{pool: makeQuestions(3)}, time.Now())

	active, err := svc.StartExam(context.Background(), 1, exam.ID)
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}
	store.sessions[active.Session.ID].Snapshot = json.RawMessage(`{broken`)

	_, err = svc.Submit(context.Background(), 1, active.Session.ID, nil)
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("err = %v, want ErrCorruptSnapshot", err)
	}
}

func TestGetResultClampsCorruptScore(t *testing.T) {
	exam := activeExam()
	store := newFakeSessionStore()
	svc := testService(exam, store, &fakeQuestionSource{pool: makeQuestions(3)}, time.Now())

	active, err := svc.StartExam(context.Background(), 1, exam.ID)
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}
	if _, err := svc.Submit(context.Background(), 1, active.Session.ID, nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Simulate the corruption the repair audit hunts for: a stored score
	// above the number of questions served.
	stored := store.sessions[active.Session.ID]
	stored.Score = stored.QuestionCount + 5

	result, _, err := svc.GetResult(context.Background(), 1, active.Session.ID)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if result.Percentage != 100 {
		t.Errorf("percentage = %v, want clamped to 100", result.Percentage)
	}
}

func TestGetStateRedrawsUnreadableSnapshot(t *testing.T) {
	exam := activeExam()
	store := newFakeSessionStore()
	svc := testService(exam, store, &fakeQuestionSource{pool: makeQuestions(5)}, time.Now())

	active, err := svc.StartExam(context.Background(), 1, exam.ID)
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}
	store.sessions[active.Session.ID].Snapshot = json.RawMessage(`[]`)

	state, err := svc.GetState(context.Background(), 1, exam.ID)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if len(state.Questions) != 5 {
		t.Errorf("redrawn paper has %d questions, want 5", len(state.Questions))
	}
	if store.replaced != 1 {
		t.Errorf("ReplaceSnapshot called %d times, want 1", store.replaced)
	}
}

func wrongLetter(correct string) string {
	if correct == "A" {
		return "B"
	}
	return "A"
}
