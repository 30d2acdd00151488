package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uni-scheduler/timetable-api/internal/dto"
	"github.com/uni-scheduler/timetable-api/internal/engine"
	"github.com/uni-scheduler/timetable-api/internal/models"
	appErrors "github.com/uni-scheduler/timetable-api/pkg/errors"
)

type instructorRepository interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error)
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
	Create(ctx context.Context, instructor *models.Instructor) error
	Update(ctx context.Context, instructor *models.Instructor) error
	Delete(ctx context.Context, id string) error
}

type roomRepository interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
}

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id string) error
}

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type sectionRepository interface {
	List(ctx context.Context, filter models.SectionFilter) ([]models.Section, int, error)
	FindByID(ctx context.Context, id string) (*models.Section, error)
	Create(ctx context.Context, section *models.Section) error
	Update(ctx context.Context, section *models.Section) error
	Delete(ctx context.Context, id string) error
}

type meetingTimeRepository interface {
	List(ctx context.Context, filter models.MeetingTimeFilter) ([]models.MeetingTime, int, error)
	Create(ctx context.Context, slot *models.MeetingTime) error
	Delete(ctx context.Context, id string) error
	SeedDefaults(ctx context.Context) (int, error)
}

// CatalogService manages the scheduling inputs: instructors, rooms,
// departments, courses, sections, and the weekly slot grid.
type CatalogService struct {
	instructors  instructorRepository
	rooms        roomRepository
	departments  departmentRepository
	courses      courseRepository
	sections     sectionRepository
	meetingTimes meetingTimeRepository
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewCatalogService(
	instructors instructorRepository,
	rooms roomRepository,
	departments departmentRepository,
	courses courseRepository,
	sections sectionRepository,
	meetingTimes meetingTimeRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		instructors:  instructors,
		rooms:        rooms,
		departments:  departments,
		courses:      courses,
		sections:     sections,
		meetingTimes: meetingTimes,
		validate:     validate,
		logger:       logger,
	}
}

func paginationFor(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

// ListInstructors returns instructors plus pagination data.
func (s *CatalogService) ListInstructors(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, *models.Pagination, error) {
	instructors, total, err := s.instructors.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	return instructors, paginationFor(filter.Page, filter.PageSize, total), nil
}

func (s *CatalogService) GetInstructor(ctx context.Context, id string) (*models.Instructor, error) {
	instructor, err := s.instructors.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	return instructor, nil
}

func (s *CatalogService) CreateInstructor(ctx context.Context, req dto.CreateInstructorRequest) (*models.Instructor, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	instructor := &models.Instructor{
		ID:        uuid.NewString(),
		Code:      strings.TrimSpace(req.Code),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Available: true,
	}
	if req.Available != nil {
		instructor.Available = *req.Available
	}
	if err := s.instructors.Create(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create instructor")
	}
	return instructor, nil
}

func (s *CatalogService) UpdateInstructor(ctx context.Context, id string, req dto.CreateInstructorRequest) (*models.Instructor, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	instructor, err := s.GetInstructor(ctx, id)
	if err != nil {
		return nil, err
	}
	instructor.Code = strings.TrimSpace(req.Code)
	instructor.Name = strings.TrimSpace(req.Name)
	instructor.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Available != nil {
		instructor.Available = *req.Available
	}
	if err := s.instructors.Update(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update instructor")
	}
	return instructor, nil
}

func (s *CatalogService) DeleteInstructor(ctx context.Context, id string) error {
	if err := s.instructors.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete instructor")
	}
	return nil
}

// ListRooms returns rooms plus pagination data.
func (s *CatalogService) ListRooms(ctx context.Context, filter models.RoomFilter) ([]models.Room, *models.Pagination, error) {
	rooms, total, err := s.rooms.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return rooms, paginationFor(filter.Page, filter.PageSize, total), nil
}

func (s *CatalogService) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

func (s *CatalogService) CreateRoom(ctx context.Context, req dto.CreateRoomRequest) (*models.Room, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}
	room := &models.Room{
		ID:        uuid.NewString(),
		Number:    strings.TrimSpace(req.Number),
		Capacity:  req.Capacity,
		Type:      models.RoomType(req.Type),
		Available: true,
	}
	if req.Available != nil {
		room.Available = *req.Available
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return room, nil
}

func (s *CatalogService) UpdateRoom(ctx context.Context, id string, req dto.CreateRoomRequest) (*models.Room, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}
	room, err := s.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	room.Number = strings.TrimSpace(req.Number)
	room.Capacity = req.Capacity
	room.Type = models.RoomType(req.Type)
	if req.Available != nil {
		room.Available = *req.Available
	}
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	return room, nil
}

func (s *CatalogService) DeleteRoom(ctx context.Context, id string) error {
	if err := s.rooms.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	return nil
}

// ListDepartments returns all departments. The set is small enough that
// pagination would be noise.
func (s *CatalogService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

func (s *CatalogService) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	department, err := s.departments.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	return department, nil
}

func (s *CatalogService) CreateDepartment(ctx context.Context, req dto.CreateDepartmentRequest) (*models.Department, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}
	department := &models.Department{
		ID:               uuid.NewString(),
		Name:             strings.TrimSpace(req.Name),
		Code:             strings.ToUpper(strings.TrimSpace(req.Code)),
		HeadInstructorID: req.HeadInstructorID,
	}
	if err := s.departments.Create(ctx, department); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create department")
	}
	return department, nil
}

func (s *CatalogService) UpdateDepartment(ctx context.Context, id string, req dto.CreateDepartmentRequest) (*models.Department, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}
	department, err := s.GetDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	department.Name = strings.TrimSpace(req.Name)
	department.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	department.HeadInstructorID = req.HeadInstructorID
	if err := s.departments.Update(ctx, department); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update department")
	}
	return department, nil
}

func (s *CatalogService) DeleteDepartment(ctx context.Context, id string) error {
	if err := s.departments.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete department")
	}
	return nil
}

// ListCourses returns courses plus pagination data.
func (s *CatalogService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, paginationFor(filter.Page, filter.PageSize, total), nil
}

func (s *CatalogService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

func (s *CatalogService) CreateCourse(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := &models.Course{
		ID:             uuid.NewString(),
		Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:           strings.TrimSpace(req.Name),
		Type:           models.CourseType(req.Type),
		Credits:        req.Credits,
		MaxStudents:    req.MaxStudents,
		Duration:       req.Duration,
		Year:           req.Year,
		Semester:       req.Semester,
		WeeklySessions: req.WeeklySessions,
		DepartmentID:   req.DepartmentID,
		InstructorIDs:  req.InstructorIDs,
	}
	if course.Duration < 1 {
		course.Duration = 1
	}
	if course.WeeklySessions < 1 {
		course.WeeklySessions = 1
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, id string, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	course.Name = strings.TrimSpace(req.Name)
	course.Type = models.CourseType(req.Type)
	course.Credits = req.Credits
	course.MaxStudents = req.MaxStudents
	course.Duration = req.Duration
	course.Year = req.Year
	course.Semester = req.Semester
	course.WeeklySessions = req.WeeklySessions
	course.DepartmentID = req.DepartmentID
	course.InstructorIDs = req.InstructorIDs
	if course.Duration < 1 {
		course.Duration = 1
	}
	if course.WeeklySessions < 1 {
		course.WeeklySessions = 1
	}
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, id string) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}

// ListSections returns sections plus pagination data.
func (s *CatalogService) ListSections(ctx context.Context, filter models.SectionFilter) ([]models.Section, *models.Pagination, error) {
	sections, total, err := s.sections.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, paginationFor(filter.Page, filter.PageSize, total), nil
}

func (s *CatalogService) GetSection(ctx context.Context, id string) (*models.Section, error) {
	section, err := s.sections.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	return section, nil
}

func (s *CatalogService) CreateSection(ctx context.Context, req dto.CreateSectionRequest) (*models.Section, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	section := &models.Section{
		ID:           uuid.NewString(),
		Code:         strings.ToUpper(strings.TrimSpace(req.Code)),
		DepartmentID: req.DepartmentID,
		Year:         req.Year,
		Semester:     req.Semester,
		Students:     req.Students,
		CourseIDs:    req.CourseIDs,
	}
	if err := s.sections.Create(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	return section, nil
}

func (s *CatalogService) UpdateSection(ctx context.Context, id string, req dto.CreateSectionRequest) (*models.Section, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	section, err := s.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}
	section.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	section.DepartmentID = req.DepartmentID
	section.Year = req.Year
	section.Semester = req.Semester
	section.Students = req.Students
	section.CourseIDs = req.CourseIDs
	if err := s.sections.Update(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update section")
	}
	return section, nil
}

func (s *CatalogService) DeleteSection(ctx context.Context, id string) error {
	if err := s.sections.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete section")
	}
	return nil
}

// ListMeetingTimes returns the slot grid plus pagination data.
func (s *CatalogService) ListMeetingTimes(ctx context.Context, filter models.MeetingTimeFilter) ([]models.MeetingTime, *models.Pagination, error) {
	slots, total, err := s.meetingTimes.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list meeting times")
	}
	return slots, paginationFor(filter.Page, filter.PageSize, total), nil
}

func (s *CatalogService) CreateMeetingTime(ctx context.Context, req dto.CreateMeetingTimeRequest) (*models.MeetingTime, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meeting time payload")
	}
	start, err := engine.ParseClock(req.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start time")
	}
	end, err := engine.ParseClock(req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end time")
	}
	if end <= start {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	slot := &models.MeetingTime{
		ID:           uuid.NewString(),
		PID:          strings.ToUpper(strings.TrimSpace(req.PID)),
		Day:          req.Day,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		IsLunchBreak: req.IsLunchBreak,
	}
	if err := s.meetingTimes.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create meeting time")
	}
	return slot, nil
}

func (s *CatalogService) DeleteMeetingTime(ctx context.Context, id string) error {
	if err := s.meetingTimes.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "meeting time not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete meeting time")
	}
	return nil
}

// SeedDefaultMeetingTimes populates the standard weekly grid. Existing slots
// are left untouched; the returned count covers newly inserted rows only.
func (s *CatalogService) SeedDefaultMeetingTimes(ctx context.Context) (int, error) {
	created, err := s.meetingTimes.SeedDefaults(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed meeting times")
	}
	s.logger.Info("seeded default meeting times", zap.Int("created", created))
	return created, nil
}

type instructorCSVRow struct {
	Code      string `csv:"code"`
	Name      string `csv:"name"`
	Email     string `csv:"email"`
	Available string `csv:"available"`
}

type roomCSVRow struct {
	Number   string `csv:"number"`
	Capacity int    `csv:"capacity"`
	Type     string `csv:"type"`
}

type courseCSVRow struct {
	Code           string `csv:"code"`
	Name           string `csv:"name"`
	Type           string `csv:"type"`
	Credits        int    `csv:"credits"`
	MaxStudents    int    `csv:"max_students"`
	Duration       int    `csv:"duration"`
	Year           int    `csv:"year"`
	Semester       int    `csv:"semester"`
	WeeklySessions int    `csv:"weekly_sessions"`
}

// ImportInstructorsCSV bulk-creates instructors from a CSV stream with
// columns code,name,email,available. Bad rows are reported, not fatal.
func (s *CatalogService) ImportInstructorsCSV(ctx context.Context, r io.Reader) (*dto.ImportSummaryResponse, error) {
	var rows []instructorCSVRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed csv")
	}
	summary := &dto.ImportSummaryResponse{}
	for i, row := range rows {
		req := dto.CreateInstructorRequest{Code: row.Code, Name: row.Name, Email: row.Email}
		if row.Available != "" {
			available, err := strconv.ParseBool(row.Available)
			if err != nil {
				summary.Skipped++
				summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: invalid available flag %q", i+1, row.Available))
				continue
			}
			req.Available = &available
		}
		if _, err := s.CreateInstructor(ctx, req); err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		summary.Created++
	}
	return summary, nil
}

// ImportRoomsCSV bulk-creates rooms from a CSV stream with columns
// number,capacity,type.
func (s *CatalogService) ImportRoomsCSV(ctx context.Context, r io.Reader) (*dto.ImportSummaryResponse, error) {
	var rows []roomCSVRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed csv")
	}
	summary := &dto.ImportSummaryResponse{}
	for i, row := range rows {
		req := dto.CreateRoomRequest{Number: row.Number, Capacity: row.Capacity, Type: row.Type}
		if _, err := s.CreateRoom(ctx, req); err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		summary.Created++
	}
	return summary, nil
}

// ImportCoursesCSV bulk-creates courses from a CSV stream. Instructor
// eligibility links are not importable here; attach them via the API.
func (s *CatalogService) ImportCoursesCSV(ctx context.Context, r io.Reader) (*dto.ImportSummaryResponse, error) {
	var rows []courseCSVRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed csv")
	}
	summary := &dto.ImportSummaryResponse{}
	for i, row := range rows {
		req := dto.CreateCourseRequest{
			Code:           row.Code,
			Name:           row.Name,
			Type:           row.Type,
			Credits:        row.Credits,
			MaxStudents:    row.MaxStudents,
			Duration:       row.Duration,
			Year:           row.Year,
			Semester:       row.Semester,
			WeeklySessions: row.WeeklySessions,
		}
		if _, err := s.CreateCourse(ctx, req); err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		summary.Created++
	}
	return summary, nil
}
