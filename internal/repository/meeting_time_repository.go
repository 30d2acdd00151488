package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uni-scheduler/timetable-api/internal/models"
)

// MeetingTimeRepository manages persistence for the weekly slot grid.
type MeetingTimeRepository struct {
	db *sqlx.DB
}

// NewMeetingTimeRepository constructs a MeetingTimeRepository.
func NewMeetingTimeRepository(db *sqlx.DB) *MeetingTimeRepository {
	return &MeetingTimeRepository{db: db}
}

// List returns meeting times matching filters along with total count.
func (r *MeetingTimeRepository) List(ctx context.Context, filter models.MeetingTimeFilter) ([]models.MeetingTime, int, error) {
	base := "FROM meeting_times WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Day != "" {
		conditions = append(conditions, fmt.Sprintf("day = $%d", len(args)+1))
		args = append(args, filter.Day)
	}
	if filter.IsLunchBreak != nil {
		conditions = append(conditions, fmt.Sprintf("is_lunch_break = $%d", len(args)+1))
		args = append(args, *filter.IsLunchBreak)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, pid, day, start_time, end_time, is_lunch_break, created_at, updated_at %s ORDER BY pid LIMIT %d OFFSET %d", base, size, offset)
	var slots []models.MeetingTime
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list meeting times: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count meeting times: %w", err)
	}
	return slots, total, nil
}

// ListAll returns the whole grid ordered by pid.
func (r *MeetingTimeRepository) ListAll(ctx context.Context) ([]models.MeetingTime, error) {
	const query = `SELECT id, pid, day, start_time, end_time, is_lunch_break, created_at, updated_at FROM meeting_times ORDER BY pid`
	var slots []models.MeetingTime
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list meeting times: %w", err)
	}
	return slots, nil
}

// Create inserts a single slot.
func (r *MeetingTimeRepository) Create(ctx context.Context, slot *models.MeetingTime) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	const query = `INSERT INTO meeting_times (id, pid, day, start_time, end_time, is_lunch_break, created_at, updated_at)
		VALUES (:id, :pid, :day, :start_time, :end_time, :is_lunch_break, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create meeting time: %w", err)
	}
	return nil
}

// Delete removes a slot.
func (r *MeetingTimeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM meeting_times WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete meeting time: %w", err)
	}
	return nil
}

// SeedDefaults inserts the standard weekly grid in one transaction, skipping
// slots that already exist: hourly 09:00-19:00 slots Monday through Saturday
// (minus the 13:00 hour), plus the weekday 13:00-13:45 lunch break and the
// offset post-lunch hours at 13:45, 14:45, and 15:45. Returns the number of
// slots created.
func (r *MeetingTimeRepository) SeedDefaults(ctx context.Context) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed tx: %w", err)
	}

	created := 0
	insert := func(slot models.MeetingTime) error {
		var exists int
		err := tx.GetContext(ctx, &exists,
			`SELECT 1 FROM meeting_times WHERE day = $1 AND start_time = $2 AND end_time = $3 LIMIT 1`,
			slot.Day, slot.StartTime, slot.EndTime)
		if err == nil {
			return nil
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check slot %s: %w", slot.PID, err)
		}
		slot.ID = uuid.NewString()
		now := time.Now().UTC()
		slot.CreatedAt = now
		slot.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO meeting_times (id, pid, day, start_time, end_time, is_lunch_break, created_at, updated_at)
			 VALUES (:id, :pid, :day, :start_time, :end_time, :is_lunch_break, :created_at, :updated_at)`, &slot); err != nil {
			return fmt.Errorf("seed slot %s: %w", slot.PID, err)
		}
		created++
		return nil
	}

	for _, slot := range DefaultMeetingTimes() {
		if err := insert(slot); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed tx: %w", err)
	}
	return created, nil
}

// DefaultMeetingTimes enumerates the standard grid without touching storage.
func DefaultMeetingTimes() []models.MeetingTime {
	days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	var out []models.MeetingTime

	pid := func(day string, hhmm string) string {
		return fmt.Sprintf("MT-%s-%s", strings.ToUpper(day[:3]), hhmm)
	}

	for _, day := range days {
		for h := 9; h < 19; h++ {
			if h == 13 {
				// the 13:00 hour is replaced by lunch and offset slots
				continue
			}
			out = append(out, models.MeetingTime{
				PID:       pid(day, fmt.Sprintf("%02d00", h)),
				Day:       day,
				StartTime: fmt.Sprintf("%02d:00", h),
				EndTime:   fmt.Sprintf("%02d:00", h+1),
			})
		}
		if day == "Saturday" {
			continue
		}
		out = append(out, models.MeetingTime{
			PID:          pid(day, "LUNCH"),
			Day:          day,
			StartTime:    "13:00",
			EndTime:      "13:45",
			IsLunchBreak: true,
		})
		for _, h := range []int{13, 14, 15} {
			out = append(out, models.MeetingTime{
				PID:       pid(day, fmt.Sprintf("%02d45", h)),
				Day:       day,
				StartTime: fmt.Sprintf("%02d:45", h),
				EndTime:   fmt.Sprintf("%02d:45", h+1),
			})
		}
	}
	return out
}
