package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"examportal/internal/config"
	"examportal/internal/middleware"
	"examportal/internal/model"
	"examportal/internal/repository"
	"examportal/internal/response"
	"examportal/internal/service"
	"examportal/internal/validator"
)

// StudentPortalHandler serves the exam-taking flow.
type StudentPortalHandler struct {
	examService    *service.ExamService
	sessionService *service.SessionService
	sessionRepo    *repository.SessionRepository
	resultService  *service.ResultService
	settingService *service.SettingService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(
	examService *service.ExamService,
	sessionService *service.SessionService,
	sessionRepo *repository.SessionRepository,
	resultService *service.ResultService,
	settingService *service.SettingService,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		examService:    examService,
		sessionService: sessionService,
		sessionRepo:    sessionRepo,
		resultService:  resultService,
		settingService: settingService,
	}
}

// GetActiveExam godoc
// GET /api/v1/student/exam/active
// Returns the currently active exam together with the client-side controls.
func (h *StudentPortalHandler) GetActiveExam(c *gin.Context) {
	exam, err := h.examService.GetActive(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	controls, err := h.settingService.GetControls(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if exam == nil {
		response.Success(c, http.StatusOK, gin.H{"exam": nil, "controls": controls})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam, "controls": controls})
}

// StartExam godoc
// POST /api/v1/student/exam/:id/start
// Opens or resumes the caller's session on the exam.
func (h *StudentPortalHandler) StartExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	active, err := h.sessionService.StartExam(c.Request.Context(), claims.UserID, examID)
	if err != nil {
		h.failExamStart(c, err)
		return
	}
	response.Success(c, http.StatusOK, active)
}

// GetSessionState godoc
// GET /api/v1/student/exam/:id/state
// Returns the caller's open session on the exam, including the frozen paper
// and remaining time.
func (h *StudentPortalHandler) GetSessionState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	active, err := h.sessionService.GetState(c.Request.Context(), claims.UserID, examID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, active)
}

// SubmitExam godoc
// POST /api/v1/student/session/:id/submit
// Scores the caller's answers against the frozen paper and closes the
// session. The result payload is withheld when immediate results are off.
func (h *StudentPortalHandler) SubmitExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.sessionService.Submit(c.Request.Context(), claims.UserID, sessionID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrCorruptSnapshot):
			response.Fail(c, http.StatusInternalServerError, response.ErrSessionCorrupt)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	// New results change the aggregate board.
	h.resultService.InvalidateLeaderboard(c.Request.Context(), config.DefaultLeaderboardSize)

	controls, cerr := h.settingService.GetControls(c.Request.Context())
	if cerr == nil && !controls.ShowResultImmediately {
		response.Success(c, http.StatusOK, gin.H{"session_id": result.SessionID, "submitted": true})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetResult godoc
// GET /api/v1/student/session/:id/result
// Returns the result of one of the caller's completed sessions.
func (h *StudentPortalHandler) GetResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	controls, err := h.settingService.GetControls(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if !controls.ShowResultImmediately && !controls.ShowResultHistory {
		response.Fail(c, http.StatusForbidden, response.ErrResultsHidden)
		return
	}

	result, _, err := h.sessionService.GetResult(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ReviewSession godoc
// GET /api/v1/student/session/:id/review
// Returns the frozen paper with the caller's answers and the correct letters.
// Only available when answer review is enabled.
func (h *StudentPortalHandler) ReviewSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	controls, err := h.settingService.GetControls(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if !controls.AllowAnswerReview {
		response.Fail(c, http.StatusForbidden, response.ErrReviewDisabled)
		return
	}

	result, session, err := h.sessionService.GetResult(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	snapshot, err := model.DecodeSnapshot(session.Snapshot)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrSessionCorrupt)
		return
	}

	var detail map[string]model.AnswerDetail
	if len(session.AnswersDetail) > 0 {
		if err := json.Unmarshal(session.AnswersDetail, &detail); err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrSessionCorrupt)
			return
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"result":    result,
		"questions": snapshot,
		"answers":   detail,
	})
}

// GetHistory godoc
// GET /api/v1/student/history
// Lists the caller's completed attempts, newest first.
func (h *StudentPortalHandler) GetHistory(c *gin.Context) {
	claims := middleware.GetClaims(c)

	controls, err := h.settingService.GetControls(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if !controls.ShowResultHistory {
		response.Fail(c, http.StatusForbidden, response.ErrResultsHidden)
		return
	}

	history, err := h.sessionRepo.ListCompletedByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if history == nil {
		history = []repository.UserHistoryEntry{}
	}
	response.Success(c, http.StatusOK, gin.H{"history": history})
}

// GetRankings godoc
// GET /api/v1/student/exam/:id/rankings
// Returns the exam's ranked standings and the caller's own position.
func (h *StudentPortalHandler) GetRankings(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	controls, err := h.settingService.GetControls(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if !controls.ShowRankings {
		response.Fail(c, http.StatusForbidden, response.ErrRankingsHidden)
		return
	}

	standings, err := h.resultService.ExamStandings(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	var mine *service.RankedStanding
	for i := range standings {
		if standings[i].UserID == claims.UserID {
			mine = &standings[i]
			break
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"standings":    standings,
		"own_standing": mine,
		"total":        len(standings),
	})
}

// GetLeaderboard godoc
// GET /api/v1/student/leaderboard
// Returns the cross-exam top performers.
func (h *StudentPortalHandler) GetLeaderboard(c *gin.Context) {
	controls, err := h.settingService.GetControls(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if !controls.ShowRankings {
		response.Fail(c, http.StatusForbidden, response.ErrRankingsHidden)
		return
	}

	limit := config.DefaultLeaderboardSize
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	board, err := h.resultService.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if board == nil {
		board = []repository.LeaderboardRow{}
	}
	response.Success(c, http.StatusOK, gin.H{"leaderboard": board})
}

func (h *StudentPortalHandler) failExamStart(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrExamNotActive):
		response.Fail(c, http.StatusForbidden, response.ErrExamNotActive)
	case errors.Is(err, service.ErrExamNotStarted):
		response.Fail(c, http.StatusForbidden, response.ErrExamNotStarted)
	case errors.Is(err, service.ErrExamWindowClosed):
		response.Fail(c, http.StatusForbidden, response.ErrExamNotActive)
	case errors.Is(err, service.ErrMaxAttemptsReached):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyAttempted)
	case errors.Is(err, service.ErrNoValidQuestions):
		response.Fail(c, http.StatusConflict, response.ErrNoValidQuestions)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
