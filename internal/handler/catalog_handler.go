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

// CatalogHandler wires catalog CRUD endpoints to HTTP routes.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs a new CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, size
}

func boolQuery(c *gin.Context, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	val := strings.EqualFold(raw, "true")
	return &val
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// ListInstructors godoc
// @Summary List instructors
// @Tags Catalog
// @Produce json
// @Param search query string false "Search by name/code/email"
// @Param available query bool false "Filter by availability"
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *CatalogHandler) ListInstructors(c *gin.Context) {
	filter := models.InstructorFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		Available: boolQuery(c, "available"),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	filter.Page, filter.PageSize = pageQuery(c)
	instructors, pagination, err := h.catalog.ListInstructors(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors, pagination)
}

func (h *CatalogHandler) GetInstructor(c *gin.Context) {
	instructor, err := h.catalog.GetInstructor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor, nil)
}

// CreateInstructor godoc
// @Summary Create an instructor
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateInstructorRequest true "Instructor payload"
// @Success 201 {object} response.Envelope
// @Router /instructors [post]
func (h *CatalogHandler) CreateInstructor(c *gin.Context) {
	var req dto.CreateInstructorRequest
	if !bindJSON(c, &req) {
		return
	}
	instructor, err := h.catalog.CreateInstructor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, instructor)
}

func (h *CatalogHandler) UpdateInstructor(c *gin.Context) {
	var req dto.CreateInstructorRequest
	if !bindJSON(c, &req) {
		return
	}
	instructor, err := h.catalog.UpdateInstructor(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor, nil)
}

func (h *CatalogHandler) DeleteInstructor(c *gin.Context) {
	if err := h.catalog.DeleteInstructor(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ImportInstructors godoc
// @Summary Bulk import instructors from CSV
// @Tags Catalog
// @Accept text/csv
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructors/import [post]
func (h *CatalogHandler) ImportInstructors(c *gin.Context) {
	summary, err := h.catalog.ImportInstructorsCSV(c.Request.Context(), c.Request.Body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ListRooms godoc
// @Summary List rooms
// @Tags Catalog
// @Produce json
// @Param type query string false "Filter by room type"
// @Param minCapacity query int false "Minimum capacity"
// @Param available query bool false "Filter by availability"
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *CatalogHandler) ListRooms(c *gin.Context) {
	filter := models.RoomFilter{
		Type:      models.RoomType(c.Query("type")),
		Available: boolQuery(c, "available"),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if min, err := strconv.Atoi(c.Query("minCapacity")); err == nil {
		filter.MinCapacity = min
	}
	filter.Page, filter.PageSize = pageQuery(c)
	rooms, pagination, err := h.catalog.ListRooms(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, pagination)
}

func (h *CatalogHandler) GetRoom(c *gin.Context) {
	room, err := h.catalog.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

func (h *CatalogHandler) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.catalog.CreateRoom(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

func (h *CatalogHandler) UpdateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.catalog.UpdateRoom(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

func (h *CatalogHandler) DeleteRoom(c *gin.Context) {
	if err := h.catalog.DeleteRoom(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *CatalogHandler) ImportRooms(c *gin.Context) {
	summary, err := h.catalog.ImportRoomsCSV(c.Request.Context(), c.Request.Body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ListDepartments godoc
// @Summary List departments
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *CatalogHandler) ListDepartments(c *gin.Context) {
	departments, err := h.catalog.ListDepartments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

func (h *CatalogHandler) CreateDepartment(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}
	department, err := h.catalog.CreateDepartment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, department)
}

func (h *CatalogHandler) UpdateDepartment(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}
	department, err := h.catalog.UpdateDepartment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, department, nil)
}

func (h *CatalogHandler) DeleteDepartment(c *gin.Context) {
	if err := h.catalog.DeleteDepartment(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListCourses godoc
// @Summary List courses
// @Tags Catalog
// @Produce json
// @Param departmentId query string false "Filter by department"
// @Param year query int false "Filter by year"
// @Param semester query int false "Filter by semester"
// @Param type query string false "Filter by course type"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	filter := models.CourseFilter{
		DepartmentID: strings.TrimSpace(c.Query("departmentId")),
		Type:         models.CourseType(c.Query("type")),
		Search:       strings.TrimSpace(c.Query("search")),
	}
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	if semester, err := strconv.Atoi(c.Query("semester")); err == nil {
		filter.Semester = semester
	}
	filter.Page, filter.PageSize = pageQuery(c)
	courses, pagination, err := h.catalog.ListCourses(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, pagination)
}

func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, err := h.catalog.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.catalog.CreateCourse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

func (h *CatalogHandler) UpdateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.catalog.UpdateCourse(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

func (h *CatalogHandler) DeleteCourse(c *gin.Context) {
	if err := h.catalog.DeleteCourse(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *CatalogHandler) ImportCourses(c *gin.Context) {
	summary, err := h.catalog.ImportCoursesCSV(c.Request.Context(), c.Request.Body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ListSections godoc
// @Summary List sections
// @Tags Catalog
// @Produce json
// @Param departmentId query string false "Filter by department"
// @Param year query int false "Filter by year"
// @Param semester query int false "Filter by semester"
// @Success 200 {object} response.Envelope
// @Router /sections [get]
func (h *CatalogHandler) ListSections(c *gin.Context) {
	filter := models.SectionFilter{}
	if dep := strings.TrimSpace(c.Query("departmentId")); dep != "" {
		filter.DepartmentIDs = []string{dep}
	}
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Years = []int{year}
	}
	if semester, err := strconv.Atoi(c.Query("semester")); err == nil {
		filter.Semesters = []int{semester}
	}
	filter.Page, filter.PageSize = pageQuery(c)
	sections, pagination, err := h.catalog.ListSections(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, pagination)
}

func (h *CatalogHandler) GetSection(c *gin.Context) {
	section, err := h.catalog.GetSection(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

func (h *CatalogHandler) CreateSection(c *gin.Context) {
	var req dto.CreateSectionRequest
	if !bindJSON(c, &req) {
		return
	}
	section, err := h.catalog.CreateSection(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

func (h *CatalogHandler) UpdateSection(c *gin.Context) {
	var req dto.CreateSectionRequest
	if !bindJSON(c, &req) {
		return
	}
	section, err := h.catalog.UpdateSection(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

func (h *CatalogHandler) DeleteSection(c *gin.Context) {
	if err := h.catalog.DeleteSection(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListMeetingTimes godoc
// @Summary List the weekly slot grid
// @Tags Catalog
// @Produce json
// @Param day query string false "Filter by day"
// @Param lunch query bool false "Filter lunch break slots"
// @Success 200 {object} response.Envelope
// @Router /meeting-times [get]
func (h *CatalogHandler) ListMeetingTimes(c *gin.Context) {
	filter := models.MeetingTimeFilter{
		Day:          strings.TrimSpace(c.Query("day")),
		IsLunchBreak: boolQuery(c, "lunch"),
	}
	filter.Page, filter.PageSize = pageQuery(c)
	slots, pagination, err := h.catalog.ListMeetingTimes(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, pagination)
}

func (h *CatalogHandler) CreateMeetingTime(c *gin.Context) {
	var req dto.CreateMeetingTimeRequest
	if !bindJSON(c, &req) {
		return
	}
	slot, err := h.catalog.CreateMeetingTime(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

func (h *CatalogHandler) DeleteMeetingTime(c *gin.Context) {
	if err := h.catalog.DeleteMeetingTime(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SeedMeetingTimes godoc
// @Summary Seed the default weekly slot grid
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /meeting-times/seed [post]
func (h *CatalogHandler) SeedMeetingTimes(c *gin.Context) {
	created, err := h.catalog.SeedDefaultMeetingTimes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"created": created}, nil)
}
