package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uni-scheduler/timetable-api/internal/dto"
	"github.com/uni-scheduler/timetable-api/internal/models"
	appErrors "github.com/uni-scheduler/timetable-api/pkg/errors"
)

type stubInstructorCRUD struct {
	created []models.Instructor
	found   *models.Instructor
	findErr error
}

func (s *stubInstructorCRUD) List(_ context.Context, _ models.InstructorFilter) ([]models.Instructor, int, error) {
	return nil, 0, nil
}

func (s *stubInstructorCRUD) FindByID(_ context.Context, _ string) (*models.Instructor, error) {
	return s.found, s.findErr
}

func (s *stubInstructorCRUD) Create(_ context.Context, instructor *models.Instructor) error {
	s.created = append(s.created, *instructor)
	return nil
}

func (s *stubInstructorCRUD) Update(_ context.Context, _ *models.Instructor) error { return nil }
func (s *stubInstructorCRUD) Delete(_ context.Context, _ string) error             { return nil }

type stubRoomCRUD struct {
	created []models.Room
}

func (s *stubRoomCRUD) List(_ context.Context, _ models.RoomFilter) ([]models.Room, int, error) {
	return nil, 0, nil
}
func (s *stubRoomCRUD) FindByID(_ context.Context, _ string) (*models.Room, error) {
	return nil, sql.ErrNoRows
}
func (s *stubRoomCRUD) Create(_ context.Context, room *models.Room) error {
	s.created = append(s.created, *room)
	return nil
}
func (s *stubRoomCRUD) Update(_ context.Context, _ *models.Room) error { return nil }
func (s *stubRoomCRUD) Delete(_ context.Context, _ string) error       { return nil }

type stubDepartmentCRUD struct{}

func (s *stubDepartmentCRUD) List(_ context.Context) ([]models.Department, error) { return nil, nil }
func (s *stubDepartmentCRUD) FindByID(_ context.Context, _ string) (*models.Department, error) {
	return nil, sql.ErrNoRows
}
func (s *stubDepartmentCRUD) Create(_ context.Context, _ *models.Department) error { return nil }
func (s *stubDepartmentCRUD) Update(_ context.Context, _ *models.Department) error { return nil }
func (s *stubDepartmentCRUD) Delete(_ context.Context, _ string) error             { return nil }

type stubCourseCRUD struct {
	created []models.Course
	findErr error
}

func (s *stubCourseCRUD) List(_ context.Context, _ models.CourseFilter) ([]models.Course, int, error) {
	return nil, 0, nil
}
func (s *stubCourseCRUD) FindByID(_ context.Context, _ string) (*models.Course, error) {
	return nil, s.findErr
}
func (s *stubCourseCRUD) Create(_ context.Context, course *models.Course) error {
	s.created = append(s.created, *course)
	return nil
}
func (s *stubCourseCRUD) Update(_ context.Context, _ *models.Course) error { return nil }
func (s *stubCourseCRUD) Delete(_ context.Context, _ string) error         { return nil }

type stubSectionCRUD struct{}

func (s *stubSectionCRUD) List(_ context.Context, _ models.SectionFilter) ([]models.Section, int, error) {
	return nil, 0, nil
}
func (s *stubSectionCRUD) FindByID(_ context.Context, _ string) (*models.Section, error) {
	return nil, sql.ErrNoRows
}
func (s *stubSectionCRUD) Create(_ context.Context, _ *models.Section) error { return nil }
func (s *stubSectionCRUD) Update(_ context.Context, _ *models.Section) error { return nil }
func (s *stubSectionCRUD) Delete(_ context.Context, _ string) error          { return nil }

type stubMeetingTimeCRUD struct {
	created     []models.MeetingTime
	seedCreated int
}

func (s *stubMeetingTimeCRUD) List(_ context.Context, _ models.MeetingTimeFilter) ([]models.MeetingTime, int, error) {
	return nil, 0, nil
}
func (s *stubMeetingTimeCRUD) Create(_ context.Context, slot *models.MeetingTime) error {
	s.created = append(s.created, *slot)
	return nil
}
func (s *stubMeetingTimeCRUD) Delete(_ context.Context, _ string) error { return nil }
func (s *stubMeetingTimeCRUD) SeedDefaults(_ context.Context) (int, error) {
	return s.seedCreated, nil
}

type catalogFixture struct {
	service      *CatalogService
	instructors  *stubInstructorCRUD
	rooms        *stubRoomCRUD
	courses      *stubCourseCRUD
	meetingTimes *stubMeetingTimeCRUD
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	instructors := &stubInstructorCRUD{}
	rooms := &stubRoomCRUD{}
	courses := &stubCourseCRUD{}
	meetingTimes := &stubMeetingTimeCRUD{}
	service := NewCatalogService(instructors, rooms, &stubDepartmentCRUD{}, courses, &stubSectionCRUD{}, meetingTimes, nil, zap.NewNop())
	return &catalogFixture{
		service:      service,
		instructors:  instructors,
		rooms:        rooms,
		courses:      courses,
		meetingTimes: meetingTimes,
	}
}

func TestCatalogServiceCreateInstructor(t *testing.T) {
	fixture := newCatalogFixture(t)

	instructor, err := fixture.service.CreateInstructor(context.Background(), dto.CreateInstructorRequest{
		Code:  "INS-01",
		Name:  "Ada Lovelace",
		Email: "Ada@Example.COM ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, instructor.ID)
	assert.Equal(t, "ada@example.com", instructor.Email)
	assert.True(t, instructor.Available)
	require.Len(t, fixture.instructors.created, 1)
}

func TestCatalogServiceCreateInstructorRejectsBadEmail(t *testing.T) {
	fixture := newCatalogFixture(t)

	_, err := fixture.service.CreateInstructor(context.Background(), dto.CreateInstructorRequest{
		Code:  "INS-01",
		Name:  "Ada Lovelace",
		Email: "not-an-email",
	})
	require.Error(t, err)
	typed := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, typed.Code)
	assert.Empty(t, fixture.instructors.created)
}

func TestCatalogServiceGetCourseNotFound(t *testing.T) {
	fixture := newCatalogFixture(t)
	fixture.courses.findErr = sql.ErrNoRows

	_, err := fixture.service.GetCourse(context.Background(), "missing")
	require.Error(t, err)
	typed := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, typed.Code)
}

func TestCatalogServiceCreateCourseAppliesMinimums(t *testing.T) {
	fixture := newCatalogFixture(t)

	course, err := fixture.service.CreateCourse(context.Background(), dto.CreateCourseRequest{
		Code:     "cs101",
		Name:     "Algorithms",
		Type:     "Theory",
		Year:     2,
		Semester: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "CS101", course.Code)
	assert.Equal(t, 1, course.Duration)
	assert.Equal(t, 1, course.WeeklySessions)
}

func TestCatalogServiceCreateMeetingTimeValidatesClock(t *testing.T) {
	fixture := newCatalogFixture(t)

	_, err := fixture.service.CreateMeetingTime(context.Background(), dto.CreateMeetingTimeRequest{
		PID:       "MT-MON-0900",
		Day:       "Monday",
		StartTime: "oops",
		EndTime:   "10:00",
	})
	require.Error(t, err)

	_, err = fixture.service.CreateMeetingTime(context.Background(), dto.CreateMeetingTimeRequest{
		PID:       "MT-MON-0900",
		Day:       "Monday",
		StartTime: "10:00",
		EndTime:   "09:00",
	})
	require.Error(t, err)

	slot, err := fixture.service.CreateMeetingTime(context.Background(), dto.CreateMeetingTimeRequest{
		PID:       "mt-mon-0900",
		Day:       "Monday",
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "MT-MON-0900", slot.PID)
	require.Len(t, fixture.meetingTimes.created, 1)
}

func TestCatalogServiceSeedDefaultMeetingTimes(t *testing.T) {
	fixture := newCatalogFixture(t)
	fixture.meetingTimes.seedCreated = 69

	created, err := fixture.service.SeedDefaultMeetingTimes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 69, created)
}

func TestCatalogServiceImportInstructorsCSV(t *testing.T) {
	fixture := newCatalogFixture(t)
	csv := strings.NewReader(strings.Join([]string{
		"code,name,email,available",
		"INS-01,Ada Lovelace,ada@example.com,true",
		"INS-02,Grace Hopper,grace@example.com,",
		"INS-03,Bad Row,not-an-email,true",
		"INS-04,Flag Row,flag@example.com,maybe",
	}, "\n"))

	summary, err := fixture.service.ImportInstructorsCSV(context.Background(), csv)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 2, summary.Skipped)
	assert.Len(t, summary.Errors, 2)
	require.Len(t, fixture.instructors.created, 2)
	assert.True(t, fixture.instructors.created[1].Available, "blank flag defaults to available")
}

func TestCatalogServiceImportRoomsCSV(t *testing.T) {
	fixture := newCatalogFixture(t)
	csv := strings.NewReader(strings.Join([]string{
		"number,capacity,type",
		"101,60,Classroom",
		"LAB-1,30,Lab",
		"BAD,0,Classroom",
	}, "\n"))

	summary, err := fixture.service.ImportRoomsCSV(context.Background(), csv)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, fixture.rooms.created, 2)
	assert.Equal(t, models.RoomTypeLab, fixture.rooms.created[1].Type)
}
