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

// TimetableRepository manages persistence for generated timetables and their
// entries.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const timetableColumns = "id, name, department_id, year, semester, fitness, fitness_progression, status, stop_reason, is_active, created_by, created_at, updated_at"

// Create inserts a timetable header; entries are attached separately once the
// run completes.
func (r *TimetableRepository) Create(ctx context.Context, timetable *models.Timetable) error {
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = now
	}
	timetable.UpdatedAt = now
	if timetable.FitnessProgression == nil {
		timetable.FitnessProgression = []byte("[]")
	}

	const query = `INSERT INTO timetables (id, name, department_id, year, semester, fitness, fitness_progression, status, stop_reason, is_active, created_by, created_at, updated_at)
		VALUES (:id, :name, :department_id, :year, :semester, :fitness, :fitness_progression, :status, :stop_reason, :is_active, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, timetable); err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	return nil
}

// SaveResult stores a completed run: the header update and the full entry set
// commit in one transaction so readers never observe a half-written result.
func (r *TimetableRepository) SaveResult(ctx context.Context, timetable *models.Timetable, entries []models.TimetableEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save result: %w", err)
	}

	timetable.UpdatedAt = time.Now().UTC()
	const header = `UPDATE timetables SET fitness = :fitness, fitness_progression = :fitness_progression, status = :status, stop_reason = :stop_reason, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, header, timetable); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("save timetable result: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM timetable_entries WHERE timetable_id = $1`, timetable.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear timetable entries: %w", err)
	}
	const entry = `INSERT INTO timetable_entries (id, timetable_id, session_key, course_id, section_id, duration, instructor_id, room_id, meeting_time_id, created_at)
		VALUES (:id, :timetable_id, :session_key, :course_id, :section_id, :duration, :instructor_id, :room_id, :meeting_time_id, :created_at)`
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		entries[i].TimetableID = timetable.ID
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = timetable.UpdatedAt
		}
		if _, err := tx.NamedExecContext(ctx, entry, &entries[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert timetable entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save result: %w", err)
	}
	return nil
}

// MarkFailed records a failed generation run.
func (r *TimetableRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	const query = `UPDATE timetables SET status = $2, stop_reason = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.TimetableStatusFailed, reason, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark timetable failed: %w", err)
	}
	return nil
}

// List returns timetables matching filters along with total count.
func (r *TimetableRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error) {
	base := "FROM timetables WHERE 1=1"
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
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", timetableColumns, base, size, offset)
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list timetables: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count timetables: %w", err)
	}
	return timetables, total, nil
}

// FindByID fetches a timetable header by ID.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	query := fmt.Sprintf("SELECT %s FROM timetables WHERE id = $1", timetableColumns)
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// ListEntryDetails returns a timetable's entries joined with catalog display
// fields, ordered for grid rendering.
func (r *TimetableRepository) ListEntryDetails(ctx context.Context, timetableID string) ([]models.TimetableEntryDetail, error) {
	const query = `SELECT e.id, e.timetable_id, e.session_key, e.course_id, e.section_id, e.duration,
			e.instructor_id, e.room_id, e.meeting_time_id, e.created_at,
			c.code AS course_code, c.name AS course_name, c.type AS course_type,
			s.code AS section_code,
			i.name AS instructor_name,
			rm.number AS room_number,
			mt.day AS day, mt.start_time AS start_time, mt.end_time AS end_time
		FROM timetable_entries e
		JOIN courses c ON c.id = e.course_id
		JOIN sections s ON s.id = e.section_id
		LEFT JOIN instructors i ON i.id = e.instructor_id
		LEFT JOIN rooms rm ON rm.id = e.room_id
		LEFT JOIN meeting_times mt ON mt.id = e.meeting_time_id
		WHERE e.timetable_id = $1
		ORDER BY s.code, mt.day, mt.start_time, e.session_key`
	var entries []models.TimetableEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// SetActive marks one timetable active and clears the flag from every other
// timetable of the same department, year, and semester, in one transaction.
func (r *TimetableRepository) SetActive(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set active: %w", err)
	}
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE timetables SET is_active = FALSE, updated_at = $2
		 WHERE is_active = TRUE AND (department_id, year, semester) = (SELECT department_id, year, semester FROM timetables WHERE id = $1)`,
		id, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear active timetables: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE timetables SET is_active = TRUE, updated_at = $2 WHERE id = $1`, id, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("activate timetable: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set active: %w", err)
	}
	return nil
}

// Delete removes a timetable and its entries.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	return nil
}
