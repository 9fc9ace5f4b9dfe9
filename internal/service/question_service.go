package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"examportal/internal/model"
	"examportal/internal/repository"
	"examportal/internal/response"
)

// ErrCorrectOptionMissing flags a correct letter pointing at an absent or
// empty option, which would make the question unservable.
var ErrCorrectOptionMissing = errors.New("correct option has no content")

// QuestionService handles question bank business logic.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo}
}

// List retrieves questions with pagination.
func (s *QuestionService) List(ctx context.Context, page, perPage int) ([]model.Question, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	questions, total, err := s.questionRepo.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return questions, pagination, nil
}

// Get retrieves a single question.
func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// Create stores a new question. The media kind is derived from the attached
// media rather than trusted from the client.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	q, err := questionFromRequest(req)
	if err != nil {
		return nil, err
	}
	q.ID = uuid.New()
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Update replaces a question's content.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	if _, err := s.questionRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	q, err := questionFromRequest(req)
	if err != nil {
		return nil, err
	}
	q.ID = id
	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Delete removes a question. Sessions that already froze it keep serving
// their stored copy.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.questionRepo.Delete(ctx, id)
}

// CategoryCounts reports how many servable questions each category holds,
// which admins use to sanity-check a quota before activating an exam.
func (s *QuestionService) CategoryCounts(ctx context.Context) (map[string]int, error) {
	return s.questionRepo.CountByCategory(ctx)
}

func questionFromRequest(req *model.CreateQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		QuestionText:  req.QuestionText,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
		OptionE:       req.OptionE,
		OptionF:       req.OptionF,
		CorrectOption: req.CorrectOption,
		Difficulty:    model.Difficulty(req.Difficulty),
		QuestionImage: req.QuestionImage,
		QuestionYT:    req.QuestionYT,
		OptionImages:  req.OptionImages,
	}
	if q.Difficulty == "" {
		q.Difficulty = model.DifficultyMedium
	}
	if q.OptionImages == nil {
		q.OptionImages = map[string]string{}
	}
	q.MediaKind = model.DeriveMediaKind(q.QuestionImage, q.OptionImages, q.QuestionYT)

	// Letters A-D are guaranteed by binding; E and F may name an option
	// the author never filled in. Catch that at write time instead of at
	// the serve-time discard.
	if text, ok := q.OptionText(q.CorrectOption); !ok || text == "" {
		return nil, ErrCorrectOptionMissing
	}
	return q, nil
}
