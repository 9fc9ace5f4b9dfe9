package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"examportal/internal/model"
	"examportal/internal/response"
	"examportal/internal/service"
	"examportal/internal/validator"
)

// SettingHandler manages the exam behaviour toggles.
type SettingHandler struct {
	settingService *service.SettingService
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(settingService *service.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

// GetControls godoc
// GET /api/v1/admin/controls
func (h *SettingHandler) GetControls(c *gin.Context) {
	controls, err := h.settingService.GetControls(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"controls": controls})
}

// UpdateControls godoc
// PUT /api/v1/admin/controls
func (h *SettingHandler) UpdateControls(c *gin.Context) {
	var req model.UpdateControlsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	controls, err := h.settingService.UpdateControls(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"controls": controls})
}
