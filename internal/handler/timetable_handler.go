package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/uni-scheduler/timetable-api/internal/dto"
	"github.com/uni-scheduler/timetable-api/internal/models"
	"github.com/uni-scheduler/timetable-api/internal/service"
	appErrors "github.com/uni-scheduler/timetable-api/pkg/errors"
	"github.com/uni-scheduler/timetable-api/pkg/response"
)

// TimetableHandler wires generation and timetable endpoints to HTTP routes.
type TimetableHandler struct {
	timetables *service.TimetableService
	exports    *service.ExportService
}

// NewTimetableHandler constructs a new TimetableHandler.
func NewTimetableHandler(timetables *service.TimetableService, exports *service.ExportService) *TimetableHandler {
	return &TimetableHandler{timetables: timetables, exports: exports}
}

// Generate godoc
// @Summary Generate a timetable
// @Description Runs the genetic search over the catalog slice matching the filters
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation parameters"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}
	actorID := ""
	if claims := claimsFromContext(c); claims != nil {
		actorID = claims.UserID
	}
	res, err := h.timetables.Generate(c.Request.Context(), actorID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusCreated
	if req.Async {
		status = http.StatusAccepted
	}
	response.JSON(c, status, res, nil)
}

// List godoc
// @Summary List timetables
// @Tags Timetables
// @Produce json
// @Param departmentId query string false "Filter by department"
// @Param year query int false "Filter by year"
// @Param semester query int false "Filter by semester"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	filter := models.TimetableFilter{
		DepartmentID: strings.TrimSpace(c.Query("departmentId")),
	}
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	if semester, err := strconv.Atoi(c.Query("semester")); err == nil {
		filter.Semester = semester
	}
	if active := c.Query("active"); active != "" {
		val := strings.EqualFold(active, "true")
		filter.IsActive = &val
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	timetables, pagination, err := h.timetables.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetables, pagination)
}

// Get godoc
// @Summary Get timetable detail with entries
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	timetable, err := h.timetables.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// Progression godoc
// @Summary Fitness progression of a run
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/progression [get]
func (h *TimetableHandler) Progression(c *gin.Context) {
	progression, err := h.timetables.Progression(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progression, nil)
}

// CheckMove godoc
// @Summary Validate moving a session to a new slot
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.CheckMoveRequest true "Proposed move"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/check-conflicts [post]
func (h *TimetableHandler) CheckMove(c *gin.Context) {
	var req dto.CheckMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid move payload"))
		return
	}
	res, err := h.timetables.CheckMove(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Activate godoc
// @Summary Mark a timetable as active
// @Tags Timetables
// @Param id path string true "Timetable ID"
// @Success 204
// @Router /timetables/{id}/activate [post]
func (h *TimetableHandler) Activate(c *gin.Context) {
	if err := h.timetables.Activate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a timetable
// @Tags Timetables
// @Param id path string true "Timetable ID"
// @Success 204
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.timetables.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export a timetable as PDF or CSV
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Param format query string false "pdf or csv" default(pdf)
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/export [post]
func (h *TimetableHandler) Export(c *gin.Context) {
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", "pdf")))
	result, err := h.exports.Generate(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"url":       result.URL,
		"token":     result.Token,
		"format":    result.Format,
		"expiresAt": result.ExpiresAt,
	}, nil)
}

// Download godoc
// @Summary Download a previously exported file
// @Tags Timetables
// @Param token path string true "Signed download token"
// @Success 200
// @Router /export/{token} [get]
func (h *TimetableHandler) Download(c *gin.Context) {
	_, relPath, _, err := h.exports.ParseToken(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token"))
		return
	}
	file, err := h.exports.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export file not found"))
		return
	}
	defer file.Close()
	c.FileAttachment(file.Name(), relPath)
}
