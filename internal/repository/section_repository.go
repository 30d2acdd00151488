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

// SectionRepository manages persistence for sections and their course links.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs a SectionRepository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const sectionColumns = "id, code, department_id, year, semester, students, room_id, created_at, updated_at"

// List returns sections matching filters along with total count.
func (r *SectionRepository) List(ctx context.Context, filter models.SectionFilter) ([]models.Section, int, error) {
	base := "FROM sections WHERE 1=1"
	var conditions []string
	var args []interface{}

	if len(filter.DepartmentIDs) > 0 {
		placeholders := make([]string, len(filter.DepartmentIDs))
		for i, id := range filter.DepartmentIDs {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, id)
		}
		conditions = append(conditions, fmt.Sprintf("department_id IN (%s)", strings.Join(placeholders, ", ")))
	}
	if len(filter.Years) > 0 {
		placeholders := make([]string, len(filter.Years))
		for i, y := range filter.Years {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, y)
		}
		conditions = append(conditions, fmt.Sprintf("year IN (%s)", strings.Join(placeholders, ", ")))
	}
	if len(filter.Semesters) > 0 {
		placeholders := make([]string, len(filter.Semesters))
		for i, s := range filter.Semesters {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, s)
		}
		conditions = append(conditions, fmt.Sprintf("semester IN (%s)", strings.Join(placeholders, ", ")))
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY code LIMIT %d OFFSET %d", sectionColumns, base, size, offset)
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sections: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sections: %w", err)
	}
	return sections, total, nil
}

// FindByID fetches a section and its course IDs.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	query := fmt.Sprintf("SELECT %s FROM sections WHERE id = $1", sectionColumns)
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &section.CourseIDs,
		`SELECT course_id FROM section_courses WHERE section_id = $1 ORDER BY course_id`, id); err != nil {
		return nil, fmt.Errorf("load section courses: %w", err)
	}
	return &section, nil
}

// ListForRun returns the sections a run operates on, with course links
// populated, ordered by code for stable downstream processing.
func (r *SectionRepository) ListForRun(ctx context.Context, departmentIDs []string, years, semesters []int) ([]models.Section, error) {
	query, args, err := sqlx.In(
		fmt.Sprintf("SELECT %s FROM sections WHERE department_id IN (?) AND year IN (?) AND semester IN (?) ORDER BY code, id", sectionColumns),
		departmentIDs, years, semesters)
	if err != nil {
		return nil, fmt.Errorf("build section query: %w", err)
	}
	query = r.db.Rebind(query)

	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, fmt.Errorf("list run sections: %w", err)
	}
	if len(sections) == 0 {
		return sections, nil
	}

	ids := make([]string, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
	}
	linkQuery, linkArgs, err := sqlx.In(
		`SELECT section_id, course_id FROM section_courses WHERE section_id IN (?) ORDER BY section_id, course_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("build course link query: %w", err)
	}
	linkQuery = r.db.Rebind(linkQuery)

	var links []struct {
		SectionID string `db:"section_id"`
		CourseID  string `db:"course_id"`
	}
	if err := r.db.SelectContext(ctx, &links, linkQuery, linkArgs...); err != nil {
		return nil, fmt.Errorf("load course links: %w", err)
	}
	bySection := make(map[string][]string, len(sections))
	for _, l := range links {
		bySection[l.SectionID] = append(bySection[l.SectionID], l.CourseID)
	}
	for i := range sections {
		sections[i].CourseIDs = bySection[sections[i].ID]
	}
	return sections, nil
}

// UpdateRoomAssignments commits the room pre-assignment plan as one batch.
// A nil RoomID clears the section's binding.
func (r *SectionRepository) UpdateRoomAssignments(ctx context.Context, assignments []models.SectionRoomAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin room assignment tx: %w", err)
	}
	now := time.Now().UTC()
	for _, a := range assignments {
		if _, err := tx.ExecContext(ctx,
			`UPDATE sections SET room_id = $2, updated_at = $3 WHERE id = $1`,
			a.SectionID, a.RoomID, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("assign room for section %s: %w", a.SectionID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit room assignments: %w", err)
	}
	return nil
}

// Create inserts a new section and its course links in one transaction.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if section.CreatedAt.IsZero() {
		section.CreatedAt = now
	}
	section.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create section: %w", err)
	}
	const query = `INSERT INTO sections (id, code, department_id, year, semester, students, room_id, created_at, updated_at)
		VALUES (:id, :code, :department_id, :year, :semester, :students, :room_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, section); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create section: %w", err)
	}
	if err := replaceSectionCourses(ctx, tx, section.ID, section.CourseIDs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create section: %w", err)
	}
	return nil
}

// Update modifies a section and replaces its course links.
func (r *SectionRepository) Update(ctx context.Context, section *models.Section) error {
	section.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update section: %w", err)
	}
	const query = `UPDATE sections SET code = :code, department_id = :department_id, year = :year, semester = :semester, students = :students, room_id = :room_id, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, section); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update section: %w", err)
	}
	if err := replaceSectionCourses(ctx, tx, section.ID, section.CourseIDs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update section: %w", err)
	}
	return nil
}

func replaceSectionCourses(ctx context.Context, tx *sqlx.Tx, sectionID string, courseIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM section_courses WHERE section_id = $1`, sectionID); err != nil {
		return fmt.Errorf("clear section courses: %w", err)
	}
	for _, courseID := range courseIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO section_courses (section_id, course_id) VALUES ($1, $2)`, sectionID, courseID); err != nil {
			return fmt.Errorf("link course %s: %w", courseID, err)
		}
	}
	return nil
}

// Delete removes a section record; links cascade.
func (r *SectionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sections WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}
