package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"examportal/internal/repository"
	"examportal/internal/response"
	"examportal/internal/service"
)

// ResultsHandler serves the admin results and reporting views.
type ResultsHandler struct {
	resultRepo    *repository.ResultRepository
	resultService *service.ResultService
	examService   *service.ExamService
}

// NewResultsHandler creates a new ResultsHandler.
func NewResultsHandler(
	resultRepo *repository.ResultRepository,
	resultService *service.ResultService,
	examService *service.ExamService,
) *ResultsHandler {
	return &ResultsHandler{
		resultRepo:    resultRepo,
		resultService: resultService,
		examService:   examService,
	}
}

// List godoc
// GET /api/v1/admin/results
// Lists completed attempts with optional exam, wing and service number
// filters.
func (h *ResultsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	filter := repository.ResultFilter{
		WingName:  c.Query("wing"),
		ServiceNo: c.Query("service_no"),
		Limit:     perPage,
		Offset:    (page - 1) * perPage,
	}
	if raw := c.Query("exam_id"); raw != "" {
		examID, err := uuid.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		filter.ExamID = &examID
	}

	results, total, err := h.resultRepo.ListForAdmin(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if results == nil {
		results = []repository.AdminResultRow{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, pagination)
}

// Standings godoc
// GET /api/v1/admin/results/exam/:id/standings
// Returns the full ranked standings for one exam.
func (h *ResultsHandler) Standings(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	standings, err := h.resultService.ExamStandings(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"standings": standings, "total": len(standings)})
}

// Stats godoc
// GET /api/v1/admin/results/exam/:id/stats
// Aggregate statistics for one exam's completed attempts.
func (h *ResultsHandler) Stats(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	stats, err := h.resultRepo.StatsByExam(c.Request.Context(), examID, exam.PassingScore)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam, "stats": stats})
}

// RepairScores godoc
// POST /api/v1/admin/results/repair
// Clamps completed sessions whose stored score exceeds the number of
// questions served and reports the touched rows.
func (h *ResultsHandler) RepairScores(c *gin.Context) {
	corrupt, fixed, err := h.resultService.RepairScores(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if corrupt == nil {
		corrupt = []repository.CorruptScore{}
	}
	response.Success(c, http.StatusOK, gin.H{"corrupt": corrupt, "repaired": fixed})
}
