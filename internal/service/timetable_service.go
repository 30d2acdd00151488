package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/uni-scheduler/timetable-api/internal/dto"
	"github.com/uni-scheduler/timetable-api/internal/engine"
	"github.com/uni-scheduler/timetable-api/internal/models"
	"github.com/uni-scheduler/timetable-api/internal/repository"
	"github.com/uni-scheduler/timetable-api/pkg/config"
	appErrors "github.com/uni-scheduler/timetable-api/pkg/errors"
	"github.com/uni-scheduler/timetable-api/pkg/jobs"
)

type sectionRunRepository interface {
	ListForRun(ctx context.Context, departmentIDs []string, years, semesters []int) ([]models.Section, error)
	UpdateRoomAssignments(ctx context.Context, assignments []models.SectionRoomAssignment) error
}

type courseCatalogReader interface {
	ListBySemesters(ctx context.Context, semesters []int) ([]models.Course, error)
}

type instructorReader interface {
	ListAvailable(ctx context.Context) ([]models.Instructor, error)
}

type roomReader interface {
	ListAvailable(ctx context.Context) ([]models.Room, error)
}

type meetingTimeReader interface {
	ListAll(ctx context.Context) ([]models.MeetingTime, error)
}

type timetableStore interface {
	Create(ctx context.Context, timetable *models.Timetable) error
	SaveResult(ctx context.Context, timetable *models.Timetable, entries []models.TimetableEntry) error
	MarkFailed(ctx context.Context, id string, reason string) error
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	ListEntryDetails(ctx context.Context, timetableID string) ([]models.TimetableEntryDetail, error)
	SetActive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string)
}

// runRecorder receives one observation per finished generation run.
type runRecorder interface {
	ObserveSchedulerRun(reason string, fitness float64, generations int, duration time.Duration)
}

// generationJob is the payload enqueued for asynchronous runs.
type generationJob struct {
	TimetableID string
	ActorID     string
	Request     dto.GenerateTimetableRequest
}

// TimetableService orchestrates generation runs: it assembles the catalog
// snapshot, drives the search engine, and persists results. Asynchronous runs
// go through an in-process job queue; callers poll the timetable status.
type TimetableService struct {
	sections    sectionRunRepository
	courses     courseCatalogReader
	instructors instructorReader
	rooms       roomReader
	slots       meetingTimeReader
	timetables  timetableStore
	cache       timetableCache
	cfg         config.SchedulerConfig
	cacheTTL    time.Duration
	logger      *zap.Logger
	validate    *validator.Validate
	queue       *jobs.Queue
	metrics     runRecorder
}

func NewTimetableService(
	sections sectionRunRepository,
	courses courseCatalogReader,
	instructors instructorReader,
	rooms roomReader,
	slots meetingTimeReader,
	timetables timetableStore,
	cache timetableCache,
	cfg config.SchedulerConfig,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &TimetableService{
		sections:    sections,
		courses:     courses,
		instructors: instructors,
		rooms:       rooms,
		slots:       slots,
		timetables:  timetables,
		cache:       cache,
		cfg:         cfg,
		cacheTTL:    cacheTTL,
		logger:      logger,
		validate:    validator.New(),
	}
	svc.queue = jobs.NewQueue("timetable-generation", svc.handleGenerationJob, jobs.QueueConfig{
		Workers:    cfg.AsyncWorkers,
		BufferSize: cfg.AsyncBuffer,
		Logger:     logger,
	})
	return svc
}

// SetRunRecorder attaches metrics instrumentation. Optional.
func (s *TimetableService) SetRunRecorder(rec runRecorder) {
	s.metrics = rec
}

// StartWorkers starts the async generation workers. The context bounds their
// lifetime.
func (s *TimetableService) StartWorkers(ctx context.Context) {
	s.queue.Start(ctx)
}

// StopWorkers drains the async generation workers.
func (s *TimetableService) StopWorkers() {
	s.queue.Stop()
}

// Generate creates a timetable record and runs the search, synchronously by
// default or via the job queue when the request asks for it. An empty catalog
// is rejected before any record is created.
func (s *TimetableService) Generate(ctx context.Context, actorID string, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation request")
	}

	snap, err := s.buildSnapshot(ctx, req)
	if err != nil {
		return nil, err
	}
	eng := engine.New(*snap, s.engineConfig(req), nil, s.logger)
	sessions := eng.Sessions()
	if len(sessions) == 0 {
		return nil, appErrors.ErrEmptyCatalog
	}

	timetable := &models.Timetable{
		ID:           uuid.NewString(),
		Name:         req.Name,
		DepartmentID: req.DepartmentIDs[0],
		Year:         req.Years[0],
		Semester:     req.Semesters[0],
		Status:       models.TimetableStatusPending,
		CreatedBy:    actorID,
	}
	if err := s.timetables.Create(ctx, timetable); err != nil {
		return nil, fmt.Errorf("create timetable: %w", err)
	}

	if req.Async {
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    "generate",
			Payload: generationJob{TimetableID: timetable.ID, ActorID: actorID, Request: req},
		}
		if err := s.queue.Enqueue(job); err != nil {
			if markErr := s.timetables.MarkFailed(ctx, timetable.ID, "enqueue failed"); markErr != nil {
				s.logger.Error("mark timetable failed", zap.String("timetable_id", timetable.ID), zap.Error(markErr))
			}
			return nil, appErrors.Wrap(err, "QUEUE_UNAVAILABLE", http.StatusServiceUnavailable, "generation queue unavailable")
		}
		return &dto.GenerateTimetableResponse{
			TimetableID: timetable.ID,
			Status:      string(models.TimetableStatusPending),
			Sessions:    len(sessions),
		}, nil
	}

	res, err := s.run(ctx, timetable, eng)
	if err != nil {
		if markErr := s.timetables.MarkFailed(ctx, timetable.ID, err.Error()); markErr != nil {
			s.logger.Error("mark timetable failed", zap.String("timetable_id", timetable.ID), zap.Error(markErr))
		}
		return nil, err
	}
	return &dto.GenerateTimetableResponse{
		TimetableID: timetable.ID,
		Status:      string(timetable.Status),
		Fitness:     res.Fitness,
		StopReason:  string(res.Reason),
		Generations: res.Generations,
		Sessions:    len(res.Best),
		Unassigned:  countUnassigned(res.Best),
	}, nil
}

func (s *TimetableService) handleGenerationJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(generationJob)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	timetable, err := s.timetables.FindByID(ctx, payload.TimetableID)
	if err != nil {
		return fmt.Errorf("load timetable %s: %w", payload.TimetableID, err)
	}
	snap, err := s.buildSnapshot(ctx, payload.Request)
	if err == nil {
		eng := engine.New(*snap, s.engineConfig(payload.Request), nil, s.logger)
		_, err = s.run(ctx, timetable, eng)
	}
	if err != nil {
		if markErr := s.timetables.MarkFailed(ctx, payload.TimetableID, err.Error()); markErr != nil {
			s.logger.Error("mark timetable failed", zap.String("timetable_id", payload.TimetableID), zap.Error(markErr))
		}
		return err
	}
	return nil
}

// run executes one search: room pre-assignment is committed first so the
// engine and later runs see the same section bindings, then the evolved best
// individual is persisted with its fitness trace.
func (s *TimetableService) run(ctx context.Context, timetable *models.Timetable, eng *engine.Engine) (engine.Result, error) {
	plan := eng.RoomPlan()
	if len(plan) > 0 {
		assignments := make([]models.SectionRoomAssignment, 0, len(plan))
		for _, p := range plan {
			assignment := models.SectionRoomAssignment{SectionID: p.SectionID}
			if p.RoomID != "" {
				roomID := p.RoomID
				assignment.RoomID = &roomID
			}
			assignments = append(assignments, assignment)
		}
		if err := s.sections.UpdateRoomAssignments(ctx, assignments); err != nil {
			return engine.Result{}, fmt.Errorf("persist room assignments: %w", err)
		}
	}

	runCtx := ctx
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	started := time.Now()
	res := eng.Evolve(runCtx)
	if s.metrics != nil {
		s.metrics.ObserveSchedulerRun(string(res.Reason), res.Fitness, res.Generations, time.Since(started))
	}

	progression, err := json.Marshal(res.Progression)
	if err != nil {
		return engine.Result{}, fmt.Errorf("encode fitness progression: %w", err)
	}
	timetable.Fitness = res.Fitness
	timetable.FitnessProgression = types.JSONText(progression)
	timetable.Status = models.TimetableStatusComplete
	timetable.StopReason = string(res.Reason)

	entries := entriesFromResult(timetable.ID, res.Best)
	if err := s.timetables.SaveResult(ctx, timetable, entries); err != nil {
		return engine.Result{}, fmt.Errorf("save timetable result: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, repository.TimetableKey(timetable.ID))
	}

	s.logger.Info("generation run finished",
		zap.String("timetable_id", timetable.ID),
		zap.Float64("fitness", res.Fitness),
		zap.String("stop_reason", string(res.Reason)),
		zap.Int("generations", res.Generations),
		zap.Int("sessions", len(res.Best)),
		zap.Int("unassigned", countUnassigned(res.Best)))
	return res, nil
}

func (s *TimetableService) buildSnapshot(ctx context.Context, req dto.GenerateTimetableRequest) (*engine.Snapshot, error) {
	sections, err := s.sections.ListForRun(ctx, req.DepartmentIDs, req.Years, req.Semesters)
	if err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}
	courses, err := s.courses.ListBySemesters(ctx, req.Semesters)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	instructors, err := s.instructors.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load instructors: %w", err)
	}
	rooms, err := s.rooms.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	slots, err := s.slots.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load meeting times: %w", err)
	}

	snap := &engine.Snapshot{}
	for _, in := range instructors {
		snap.Instructors = append(snap.Instructors, engine.Instructor{ID: in.ID, Name: in.Name})
	}
	for _, room := range rooms {
		snap.Rooms = append(snap.Rooms, engine.Room{
			ID:       room.ID,
			Number:   room.Number,
			Capacity: room.Capacity,
			IsLab:    room.Type == models.RoomTypeLab,
		})
	}
	for _, slot := range slots {
		start, err := engine.ParseClock(slot.StartTime)
		if err != nil {
			s.logger.Warn("skipping malformed meeting time", zap.String("meeting_time_id", slot.ID), zap.Error(err))
			continue
		}
		end, err := engine.ParseClock(slot.EndTime)
		if err != nil {
			s.logger.Warn("skipping malformed meeting time", zap.String("meeting_time_id", slot.ID), zap.Error(err))
			continue
		}
		snap.Slots = append(snap.Slots, engine.Slot{
			ID:    slot.ID,
			Day:   slot.Day,
			Start: start,
			End:   end,
			Lunch: slot.IsLunchBreak,
		})
	}
	for _, course := range courses {
		snap.Courses = append(snap.Courses, engine.Course{
			ID:             course.ID,
			Code:           course.Code,
			Name:           course.Name,
			IsLab:          course.Type == models.CourseTypeLab,
			Duration:       course.Duration,
			WeeklySessions: course.WeeklySessions,
			MaxStudents:    course.MaxStudents,
			Instructors:    course.InstructorIDs,
		})
	}
	for _, section := range sections {
		roomID := ""
		if section.RoomID != nil {
			roomID = *section.RoomID
		}
		snap.Sections = append(snap.Sections, engine.Section{
			ID:       section.ID,
			Code:     section.Code,
			Students: section.Students,
			RoomID:   roomID,
			Courses:  section.CourseIDs,
		})
	}
	return snap, nil
}

func (s *TimetableService) engineConfig(req dto.GenerateTimetableRequest) engine.Config {
	cfg := engine.Config{
		PopulationSize:      s.cfg.PopulationSize,
		MutationRate:        s.cfg.MutationRate,
		EliteRate:           s.cfg.EliteRate,
		Generations:         s.cfg.Generations,
		StagnationLimit:     s.cfg.StagnationLimit,
		ConflictAwareRepair: s.cfg.ConflictAwareRepair,
	}
	if req.PopulationSize > 0 {
		cfg.PopulationSize = req.PopulationSize
	}
	if req.MutationRate > 0 {
		cfg.MutationRate = req.MutationRate
	}
	if req.EliteRate > 0 {
		cfg.EliteRate = req.EliteRate
	}
	if req.Generations > 0 {
		cfg.Generations = req.Generations
	}
	return cfg
}

// Get returns a timetable with its entries, served from cache when possible.
func (s *TimetableService) Get(ctx context.Context, id string) (*dto.TimetableResponse, error) {
	key := repository.TimetableKey(id)
	if s.cache != nil {
		var cached dto.TimetableResponse
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	timetable, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("load timetable: %w", err)
	}
	details, err := s.timetables.ListEntryDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load timetable entries: %w", err)
	}

	resp := toTimetableResponse(timetable, details)
	if s.cache != nil {
		s.cache.Set(ctx, key, resp, s.cacheTTL)
	}
	return resp, nil
}

// List returns timetable headers matching the filter.
func (s *TimetableService) List(ctx context.Context, filter models.TimetableFilter) ([]dto.TimetableResponse, *models.Pagination, error) {
	timetables, total, err := s.timetables.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	out := make([]dto.TimetableResponse, 0, len(timetables))
	for i := range timetables {
		out = append(out, *toTimetableResponse(&timetables[i], nil))
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return out, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Progression returns the per-generation best-fitness trace of a run.
func (s *TimetableService) Progression(ctx context.Context, id string) (*dto.FitnessProgressionResponse, error) {
	timetable, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("load timetable: %w", err)
	}
	progression := []float64{}
	if len(timetable.FitnessProgression) > 0 {
		if err := json.Unmarshal(timetable.FitnessProgression, &progression); err != nil {
			return nil, fmt.Errorf("decode fitness progression: %w", err)
		}
	}
	return &dto.FitnessProgressionResponse{
		TimetableID: timetable.ID,
		Fitness:     timetable.Fitness,
		Progression: progression,
	}, nil
}

// Activate marks a completed timetable as the active one for its department,
// year, and semester.
func (s *TimetableService) Activate(ctx context.Context, id string) error {
	timetable, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return fmt.Errorf("load timetable: %w", err)
	}
	if timetable.Status != models.TimetableStatusComplete {
		return appErrors.Clone(appErrors.ErrConflict, "only completed timetables can be activated")
	}
	if err := s.timetables.SetActive(ctx, id); err != nil {
		return fmt.Errorf("activate timetable: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, "timetable:*")
	}
	return nil
}

// Delete removes a timetable and its entries.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	if err := s.timetables.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return fmt.Errorf("delete timetable: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, repository.TimetableKey(id))
	}
	return nil
}

// CheckMove validates relocating one session of a committed timetable against
// every other committed entry, outside the search loop.
func (s *TimetableService) CheckMove(ctx context.Context, timetableID string, req dto.CheckMoveRequest) (*dto.CheckMoveResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move request")
	}
	start, err := engine.ParseClock(req.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start time")
	}

	details, err := s.timetables.ListEntryDetails(ctx, timetableID)
	if err != nil {
		return nil, fmt.Errorf("load timetable entries: %w", err)
	}

	placed := make([]engine.PlacedSession, 0, len(details))
	for _, d := range details {
		if d.Day == nil || d.StartTime == nil {
			continue
		}
		entryStart, err := engine.ParseClock(*d.StartTime)
		if err != nil {
			continue
		}
		entryEnd := entryStart + 60
		if d.EndTime != nil {
			if parsed, err := engine.ParseClock(*d.EndTime); err == nil {
				entryEnd = parsed
			}
		}
		placed = append(placed, engine.PlacedSession{
			EntryID:        d.ID,
			Day:            *d.Day,
			Start:          entryStart,
			End:            entryEnd,
			Duration:       d.Duration,
			InstructorID:   strValue(d.InstructorID),
			InstructorName: strValue(d.InstructorName),
			RoomID:         strValue(d.RoomID),
			RoomNumber:     strValue(d.RoomNumber),
			SectionID:      d.SectionID,
			SectionCode:    d.SectionCode,
			CourseName:     d.CourseName,
		})
	}

	conflicts := engine.CheckSlotConflicts(placed, engine.MoveRequest{
		Day:            req.Day,
		Start:          start,
		InstructorID:   req.InstructorID,
		RoomID:         req.RoomID,
		SectionID:      req.SectionID,
		ExcludeEntryID: req.ExcludeEntryID,
	})

	resp := &dto.CheckMoveResponse{
		HasConflicts: len(conflicts) > 0,
		Conflicts:    make([]dto.MoveConflictResponse, 0, len(conflicts)),
	}
	for _, c := range conflicts {
		resp.Conflicts = append(resp.Conflicts, dto.MoveConflictResponse{
			Type:       string(c.Type),
			Day:        c.Day,
			Time:       c.Time,
			Section:    c.Section,
			Course:     c.Course,
			Room:       c.Room,
			Instructor: c.Instructor,
		})
	}
	return resp, nil
}

func entriesFromResult(timetableID string, best engine.Individual) []models.TimetableEntry {
	entries := make([]models.TimetableEntry, 0, len(best))
	for _, sess := range best {
		entry := models.TimetableEntry{
			TimetableID: timetableID,
			SessionKey:  sess.Key,
			CourseID:    sess.CourseID,
			SectionID:   sess.SectionID,
			Duration:    sess.Duration,
		}
		if sess.Instructor != "" {
			id := sess.Instructor
			entry.InstructorID = &id
		}
		if sess.RoomID != "" {
			id := sess.RoomID
			entry.RoomID = &id
		}
		if sess.SlotID != "" {
			id := sess.SlotID
			entry.MeetingTimeID = &id
		}
		entries = append(entries, entry)
	}
	return entries
}

func countUnassigned(best engine.Individual) int {
	count := 0
	for _, sess := range best {
		if !sess.Assigned() {
			count++
		}
	}
	return count
}

func toTimetableResponse(timetable *models.Timetable, details []models.TimetableEntryDetail) *dto.TimetableResponse {
	resp := &dto.TimetableResponse{
		ID:         timetable.ID,
		Name:       timetable.Name,
		Department: timetable.DepartmentID,
		Year:       timetable.Year,
		Semester:   timetable.Semester,
		Fitness:    timetable.Fitness,
		Status:     string(timetable.Status),
		StopReason: timetable.StopReason,
		IsActive:   timetable.IsActive,
		CreatedAt:  timetable.CreatedAt.Format(time.RFC3339),
	}
	for _, d := range details {
		resp.Entries = append(resp.Entries, dto.TimetableEntryResponse{
			ID:         d.ID,
			SessionKey: d.SessionKey,
			CourseCode: d.CourseCode,
			CourseName: d.CourseName,
			CourseType: string(d.CourseType),
			Section:    d.SectionCode,
			Instructor: d.InstructorName,
			Room:       d.RoomNumber,
			Day:        d.Day,
			StartTime:  d.StartTime,
			EndTime:    d.EndTime,
			Duration:   d.Duration,
		})
	}
	return resp
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
