package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uni-scheduler/timetable-api/internal/dto"
	"github.com/uni-scheduler/timetable-api/internal/models"
	"github.com/uni-scheduler/timetable-api/pkg/config"
	appErrors "github.com/uni-scheduler/timetable-api/pkg/errors"
)

type stubSectionRepo struct {
	mu          sync.Mutex
	sections    []models.Section
	assignments []models.SectionRoomAssignment
	listErr     error
}

func (s *stubSectionRepo) ListForRun(_ context.Context, _ []string, _, _ []int) ([]models.Section, error) {
	return s.sections, s.listErr
}

func (s *stubSectionRepo) UpdateRoomAssignments(_ context.Context, assignments []models.SectionRoomAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = assignments
	return nil
}

func (s *stubSectionRepo) committedAssignments() []models.SectionRoomAssignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignments
}

type stubCourseRepo struct{ courses []models.Course }

func (s *stubCourseRepo) ListBySemesters(_ context.Context, _ []int) ([]models.Course, error) {
	return s.courses, nil
}

type stubInstructorRepo struct{ instructors []models.Instructor }

func (s *stubInstructorRepo) ListAvailable(_ context.Context) ([]models.Instructor, error) {
	return s.instructors, nil
}

type stubRoomRepo struct{ rooms []models.Room }

func (s *stubRoomRepo) ListAvailable(_ context.Context) ([]models.Room, error) {
	return s.rooms, nil
}

type stubSlotRepo struct{ slots []models.MeetingTime }

func (s *stubSlotRepo) ListAll(_ context.Context) ([]models.MeetingTime, error) {
	return s.slots, nil
}

type stubTimetableStore struct {
	mu           sync.Mutex
	created      *models.Timetable
	saved        *models.Timetable
	savedEntries []models.TimetableEntry
	failedID     string
	failedReason string
	found        *models.Timetable
	findErr      error
	details      []models.TimetableEntryDetail
	activatedID  string
	deletedID    string
	listItems    []models.Timetable
	listTotal    int
}

func (s *stubTimetableStore) Create(_ context.Context, timetable *models.Timetable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *timetable
	s.created = &copied
	return nil
}

func (s *stubTimetableStore) SaveResult(_ context.Context, timetable *models.Timetable, entries []models.TimetableEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *timetable
	s.saved = &copied
	s.savedEntries = entries
	return nil
}

func (s *stubTimetableStore) MarkFailed(_ context.Context, id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedID = id
	s.failedReason = reason
	return nil
}

func (s *stubTimetableStore) List(_ context.Context, _ models.TimetableFilter) ([]models.Timetable, int, error) {
	return s.listItems, s.listTotal, nil
}

func (s *stubTimetableStore) FindByID(_ context.Context, _ string) (*models.Timetable, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.found, nil
}

func (s *stubTimetableStore) ListEntryDetails(_ context.Context, _ string) ([]models.TimetableEntryDetail, error) {
	return s.details, nil
}

func (s *stubTimetableStore) SetActive(_ context.Context, id string) error {
	s.activatedID = id
	return nil
}

func (s *stubTimetableStore) Delete(_ context.Context, id string) error {
	s.deletedID = id
	return nil
}

func (s *stubTimetableStore) savedResult() *models.Timetable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

type stubCache struct {
	mu          sync.Mutex
	values      map[string][]byte
	invalidated []string
}

func newStubCache() *stubCache {
	return &stubCache{values: map[string][]byte{}}
}

func (c *stubCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *stubCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, pattern)
}

type timetableFixture struct {
	service  *TimetableService
	sections *stubSectionRepo
	store    *stubTimetableStore
	cache    *stubCache
}

func newTimetableFixture(t *testing.T) *timetableFixture {
	t.Helper()

	sections := &stubSectionRepo{
		sections: []models.Section{
			{ID: "s1", Code: "A", DepartmentID: "d1", Year: 2, Semester: 1, Students: 30, CourseIDs: []string{"c1"}},
		},
	}
	courses := &stubCourseRepo{
		courses: []models.Course{
			{ID: "c1", Code: "CS101", Name: "Algorithms", Type: models.CourseTypeTheory, Duration: 1, WeeklySessions: 1, MaxStudents: 60, InstructorIDs: []string{"i1"}},
		},
	}
	instructors := &stubInstructorRepo{
		instructors: []models.Instructor{{ID: "i1", Name: "Ada"}},
	}
	rooms := &stubRoomRepo{
		rooms: []models.Room{{ID: "r1", Number: "101", Capacity: 60, Type: models.RoomTypeClassroom}},
	}
	slots := &stubSlotRepo{
		slots: []models.MeetingTime{
			{ID: "mt1", PID: "MT-MON-0900", Day: "Monday", StartTime: "09:00", EndTime: "10:00"},
			{ID: "mt2", PID: "MT-TUE-0900", Day: "Tuesday", StartTime: "09:00", EndTime: "10:00"},
			{ID: "mt3", PID: "MT-WED-0900", Day: "Wednesday", StartTime: "09:00", EndTime: "10:00"},
		},
	}
	store := &stubTimetableStore{}
	cache := newStubCache()

	cfg := config.SchedulerConfig{
		PopulationSize:  20,
		Generations:     80,
		StagnationLimit: 20,
		AsyncWorkers:    1,
	}
	service := NewTimetableService(sections, courses, instructors, rooms, slots, store, cache, cfg, time.Minute, zap.NewNop())
	return &timetableFixture{service: service, sections: sections, store: store, cache: cache}
}

func generateRequest() dto.GenerateTimetableRequest {
	return dto.GenerateTimetableRequest{
		Name:          "Fall draft",
		DepartmentIDs: []string{"d1"},
		Years:         []int{2},
		Semesters:     []int{1},
	}
}

func TestTimetableServiceGenerateSync(t *testing.T) {
	fixture := newTimetableFixture(t)

	resp, err := fixture.service.Generate(context.Background(), "u1", generateRequest())
	require.NoError(t, err)

	assert.Equal(t, string(models.TimetableStatusComplete), resp.Status)
	assert.Equal(t, "converged", resp.StopReason)
	assert.InDelta(t, 100.0, resp.Fitness, 0.001)
	assert.Equal(t, 1, resp.Sessions)
	assert.Equal(t, 0, resp.Unassigned)

	require.NotNil(t, fixture.store.created)
	assert.Equal(t, "u1", fixture.store.created.CreatedBy)
	assert.Equal(t, models.TimetableStatusPending, fixture.store.created.Status)

	saved := fixture.store.savedResult()
	require.NotNil(t, saved)
	assert.Equal(t, models.TimetableStatusComplete, saved.Status)
	assert.NotEmpty(t, saved.FitnessProgression)

	require.Len(t, fixture.store.savedEntries, 1)
	entry := fixture.store.savedEntries[0]
	assert.Equal(t, "A_CS101_0", entry.SessionKey)
	require.NotNil(t, entry.InstructorID)
	assert.Equal(t, "i1", *entry.InstructorID)
	require.NotNil(t, entry.RoomID)
	require.NotNil(t, entry.MeetingTimeID)

	assignments := fixture.sections.committedAssignments()
	require.Len(t, assignments, 1)
	assert.Equal(t, "s1", assignments[0].SectionID)
	require.NotNil(t, assignments[0].RoomID)
	assert.Equal(t, "r1", *assignments[0].RoomID)
}

func TestTimetableServiceGenerateEmptyCatalog(t *testing.T) {
	fixture := newTimetableFixture(t)
	fixture.sections.sections = nil

	_, err := fixture.service.Generate(context.Background(), "u1", generateRequest())
	require.Error(t, err)
	typed := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrEmptyCatalog.Code, typed.Code)
	assert.Nil(t, fixture.store.created, "no record should be created for an empty catalog")
}

func TestTimetableServiceGenerateRejectsInvalidRequest(t *testing.T) {
	fixture := newTimetableFixture(t)

	req := generateRequest()
	req.Name = ""
	_, err := fixture.service.Generate(context.Background(), "u1", req)
	require.Error(t, err)
	typed := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, typed.Code)
}

func TestTimetableServiceGenerateAsync(t *testing.T) {
	fixture := newTimetableFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fixture.service.StartWorkers(ctx)
	defer fixture.service.StopWorkers()

	// The async handler reloads the header before running.
	fixture.store.found = &models.Timetable{ID: "t-async", Status: models.TimetableStatusPending}

	req := generateRequest()
	req.Async = true
	resp, err := fixture.service.Generate(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, string(models.TimetableStatusPending), resp.Status)
	assert.Equal(t, 1, resp.Sessions)
	assert.Zero(t, resp.Fitness)

	require.Eventually(t, func() bool {
		return fixture.store.savedResult() != nil
	}, 5*time.Second, 10*time.Millisecond, "async run should persist a result")
	saved := fixture.store.savedResult()
	assert.Equal(t, models.TimetableStatusComplete, saved.Status)
	assert.InDelta(t, 100.0, saved.Fitness, 0.001)
}

func TestTimetableServiceGetCachesResponse(t *testing.T) {
	fixture := newTimetableFixture(t)
	day := "Monday"
	start := "09:00"
	end := "10:00"
	fixture.store.found = &models.Timetable{
		ID:      "t1",
		Name:    "Fall draft",
		Fitness: 92.5,
		Status:  models.TimetableStatusComplete,
	}
	fixture.store.details = []models.TimetableEntryDetail{
		{
			TimetableEntry: models.TimetableEntry{ID: "e1", SessionKey: "A_CS101_0", Duration: 1},
			CourseCode:     "CS101",
			CourseName:     "Algorithms",
			CourseType:     models.CourseTypeTheory,
			SectionCode:    "A",
			Day:            &day,
			StartTime:      &start,
			EndTime:        &end,
		},
	}

	resp, err := fixture.service.Get(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "CS101", resp.Entries[0].CourseCode)

	// Second read must come from cache even if the store stops answering.
	fixture.store.findErr = sql.ErrNoRows
	cached, err := fixture.service.Get(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, resp.ID, cached.ID)
	require.Len(t, cached.Entries, 1)
}

func TestTimetableServiceGetNotFound(t *testing.T) {
	fixture := newTimetableFixture(t)
	fixture.store.findErr = sql.ErrNoRows

	_, err := fixture.service.Get(context.Background(), "missing")
	require.Error(t, err)
	typed := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, typed.Code)
}

func TestTimetableServiceProgression(t *testing.T) {
	fixture := newTimetableFixture(t)
	fixture.store.found = &models.Timetable{
		ID:                 "t1",
		Fitness:            97.5,
		FitnessProgression: types.JSONText("[88.4,95.1,97.5]"),
		Status:             models.TimetableStatusComplete,
	}

	resp, err := fixture.service.Progression(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, []float64{88.4, 95.1, 97.5}, resp.Progression)
	assert.InDelta(t, 97.5, resp.Fitness, 0.001)
}

func TestTimetableServiceActivateRequiresComplete(t *testing.T) {
	fixture := newTimetableFixture(t)
	fixture.store.found = &models.Timetable{ID: "t1", Status: models.TimetableStatusPending}

	err := fixture.service.Activate(context.Background(), "t1")
	require.Error(t, err)
	typed := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, typed.Code)
	assert.Empty(t, fixture.store.activatedID)

	fixture.store.found.Status = models.TimetableStatusComplete
	require.NoError(t, fixture.service.Activate(context.Background(), "t1"))
	assert.Equal(t, "t1", fixture.store.activatedID)
}

func TestTimetableServiceCheckMove(t *testing.T) {
	fixture := newTimetableFixture(t)
	day := "Monday"
	start := "09:00"
	end := "11:00"
	instructorID := "i1"
	instructorName := "Ada"
	roomID := "r1"
	roomNumber := "101"
	fixture.store.details = []models.TimetableEntryDetail{
		{
			TimetableEntry: models.TimetableEntry{
				ID:           "e1",
				SessionKey:   "A_CS101_0",
				SectionID:    "s1",
				Duration:     2,
				InstructorID: &instructorID,
				RoomID:       &roomID,
			},
			CourseName:     "Algorithms",
			SectionCode:    "A",
			InstructorName: &instructorName,
			RoomNumber:     &roomNumber,
			Day:            &day,
			StartTime:      &start,
			EndTime:        &end,
		},
	}

	// The second occupied hour of the two-hour session clashes on instructor.
	resp, err := fixture.service.CheckMove(context.Background(), "t1", dto.CheckMoveRequest{
		Day:          "Monday",
		StartTime:    "10:00",
		InstructorID: "i1",
		RoomID:       "r9",
		SectionID:    "s9",
	})
	require.NoError(t, err)
	assert.True(t, resp.HasConflicts)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, "instructor", resp.Conflicts[0].Type)
	assert.Equal(t, "09:00-11:00", resp.Conflicts[0].Time)

	// Excluding the moving session's own entry clears the clash.
	resp, err = fixture.service.CheckMove(context.Background(), "t1", dto.CheckMoveRequest{
		Day:            "Monday",
		StartTime:      "10:00",
		InstructorID:   "i1",
		RoomID:         "r9",
		SectionID:      "s9",
		ExcludeEntryID: "e1",
	})
	require.NoError(t, err)
	assert.False(t, resp.HasConflicts)
	assert.Empty(t, resp.Conflicts)
}

func TestTimetableServiceDelete(t *testing.T) {
	fixture := newTimetableFixture(t)
	require.NoError(t, fixture.service.Delete(context.Background(), "t1"))
	assert.Equal(t, "t1", fixture.store.deletedID)
	assert.Contains(t, fixture.cache.invalidated, "timetable:t1")
}
