package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"examportal/internal/model"
	"examportal/internal/repository"
	"examportal/internal/response"
)

// ErrInvalidQuota reports a category quota containing a negative count.
var ErrInvalidQuota = errors.New("category quota counts must be non-negative")

// ExamService handles exam administration.
type ExamService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
}

// NewExamService creates a new ExamService.
func NewExamService(examRepo *repository.ExamRepository, questionRepo *repository.QuestionRepository) *ExamService {
	return &ExamService{examRepo: examRepo, questionRepo: questionRepo}
}

// List retrieves exams with pagination.
func (s *ExamService) List(ctx context.Context, page, perPage int) ([]model.Exam, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	exams, total, err := s.examRepo.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if exams == nil {
		exams = []model.Exam{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return exams, pagination, nil
}

// Get retrieves a single exam.
func (s *ExamService) Get(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.examRepo.GetByID(ctx, id)
}

// GetActive retrieves the currently active exam, or nil when none is set.
func (s *ExamService) GetActive(ctx context.Context) (*model.Exam, error) {
	exam, err := s.examRepo.GetActive(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return exam, nil
}

// Create stores a new exam. A malformed quota is rejected outright rather
// than silently falling back at exam time.
func (s *ExamService) Create(ctx context.Context, req *model.CreateExamRequest) (*model.Exam, error) {
	quota, err := normalizeQuota(req.CategoryQuota)
	if err != nil {
		return nil, err
	}

	exam := &model.Exam{
		ID:              uuid.New(),
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		NumQuestions:    req.NumQuestions,
		CategoryQuota:   quota,
		PassingScore:    req.PassingScore,
		MaxAttempts:     req.MaxAttempts,
		ScheduledStart:  req.ScheduledStart,
		ScheduledEnd:    req.ScheduledEnd,
	}
	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// Update replaces an exam's definition. Already-open sessions keep the paper
// they froze at start.
func (s *ExamService) Update(ctx context.Context, id uuid.UUID, req *model.CreateExamRequest) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	quota, err := normalizeQuota(req.CategoryQuota)
	if err != nil {
		return nil, err
	}

	exam.Title = req.Title
	exam.Description = req.Description
	exam.DurationMinutes = req.DurationMinutes
	exam.NumQuestions = req.NumQuestions
	exam.CategoryQuota = quota
	exam.PassingScore = req.PassingScore
	exam.MaxAttempts = req.MaxAttempts
	exam.ScheduledStart = req.ScheduledStart
	exam.ScheduledEnd = req.ScheduledEnd

	if err := s.examRepo.Update(ctx, exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// Delete removes an exam and its sessions.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.examRepo.Delete(ctx, id)
}

// Activate makes the exam the single active one, deactivating whichever exam
// held the slot before. The clear and set happen in one transaction so two
// exams can never be active at once.
func (s *ExamService) Activate(ctx context.Context, id uuid.UUID) error {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Warn when the quota asks for more than the bank can supply. Activation
	// still proceeds; the draw serves what exists.
	if quota := exam.Quota(); len(quota) > 0 {
		counts, err := s.questionRepo.CountByCategory(ctx)
		if err == nil {
			for category, want := range quota {
				if have := counts[category]; have < want {
					log.Warn().
						Str("exam_id", id.String()).
						Str("category", category).
						Int("requested", want).
						Int("available", have).
						Msg("activating exam with category shortfall")
				}
			}
		}
	}

	return s.examRepo.Activate(ctx, id)
}

// Deactivate clears the exam's active flag.
func (s *ExamService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.examRepo.Deactivate(ctx, id)
}

// normalizeQuota encodes the request quota for storage. An empty quota is
// stored as NULL and means the exam draws num_questions from the whole pool.
func normalizeQuota(quota map[string]int) (json.RawMessage, error) {
	if len(quota) == 0 {
		return nil, nil
	}
	for _, n := range quota {
		if n < 0 {
			return nil, ErrInvalidQuota
		}
	}
	raw, err := json.Marshal(quota)
	if err != nil {
		return nil, ErrInvalidQuota
	}
	return raw, nil
}
