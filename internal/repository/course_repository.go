package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uni-scheduler/timetable-api/internal/models"
)

// CourseRepository manages persistence for courses and their eligible
// instructor links.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = "id, code, name, type, credits, max_students, duration, year, semester, weekly_sessions, department_id, created_at, updated_at"

// List returns courses matching filters along with total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	base := "FROM courses WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY code LIMIT %d OFFSET %d", courseColumns, base, size, offset)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// FindByID fetches a course and its eligible instructor IDs.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &course.InstructorIDs,
		`SELECT instructor_id FROM course_instructors WHERE course_id = $1 ORDER BY instructor_id`, id); err != nil {
		return nil, fmt.Errorf("load course instructors: %w", err)
	}
	return &course, nil
}

// ListBySemesters returns all courses for the given semesters with their
// eligible instructor sets populated. Used to assemble run snapshots.
func (r *CourseRepository) ListBySemesters(ctx context.Context, semesters []int) ([]models.Course, error) {
	query, args, err := sqlx.In(
		fmt.Sprintf("SELECT %s FROM courses WHERE semester IN (?) ORDER BY code, id", courseColumns), semesters)
	if err != nil {
		return nil, fmt.Errorf("build course query: %w", err)
	}
	query = r.db.Rebind(query)

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses by semester: %w", err)
	}
	if len(courses) == 0 {
		return courses, nil
	}

	ids := make([]string, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	linkQuery, linkArgs, err := sqlx.In(
		`SELECT course_id, instructor_id FROM course_instructors WHERE course_id IN (?) ORDER BY course_id, instructor_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("build instructor link query: %w", err)
	}
	linkQuery = r.db.Rebind(linkQuery)

	var links []struct {
		CourseID     string `db:"course_id"`
		InstructorID string `db:"instructor_id"`
	}
	if err := r.db.SelectContext(ctx, &links, linkQuery, linkArgs...); err != nil {
		return nil, fmt.Errorf("load instructor links: %w", err)
	}
	byCourse := make(map[string][]string, len(courses))
	for _, l := range links {
		byCourse[l.CourseID] = append(byCourse[l.CourseID], l.InstructorID)
	}
	for i := range courses {
		courses[i].InstructorIDs = byCourse[courses[i].ID]
	}
	return courses, nil
}

// Create inserts a new course and its instructor links in one transaction.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create course: %w", err)
	}
	const query = `INSERT INTO courses (id, code, name, type, credits, max_students, duration, year, semester, weekly_sessions, department_id, created_at, updated_at)
		VALUES (:id, :code, :name, :type, :credits, :max_students, :duration, :year, :semester, :weekly_sessions, :department_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, course); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create course: %w", err)
	}
	if err := replaceCourseInstructors(ctx, tx, course.ID, course.InstructorIDs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create course: %w", err)
	}
	return nil
}

// Update modifies a course and replaces its instructor links.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update course: %w", err)
	}
	const query = `UPDATE courses SET code = :code, name = :name, type = :type, credits = :credits, max_students = :max_students, duration = :duration, year = :year, semester = :semester, weekly_sessions = :weekly_sessions, department_id = :department_id, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, course); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update course: %w", err)
	}
	if err := replaceCourseInstructors(ctx, tx, course.ID, course.InstructorIDs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update course: %w", err)
	}
	return nil
}

func replaceCourseInstructors(ctx context.Context, tx *sqlx.Tx, courseID string, instructorIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM course_instructors WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("clear course instructors: %w", err)
	}
	for _, instructorID := range instructorIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO course_instructors (course_id, instructor_id) VALUES ($1, $2)`, courseID, instructorID); err != nil {
			return fmt.Errorf("link instructor %s: %w", instructorID, err)
		}
	}
	return nil
}

// Delete removes a course record; links cascade.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
