package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-scheduler/timetable-api/internal/models"
)

func TestTimetableRepositorySaveResult(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE timetables SET fitness").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_entries WHERE timetable_id = $1")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO timetable_entries").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO timetable_entries").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	timetable := &models.Timetable{
		ID:                 "t1",
		Fitness:            97.5,
		FitnessProgression: []byte("[90.0,97.5]"),
		Status:             models.TimetableStatusComplete,
		StopReason:         "converged",
	}
	entries := []models.TimetableEntry{
		{SessionKey: "A_CS101_0", CourseID: "c1", SectionID: "s1", Duration: 1},
		{SessionKey: "A_CS101_1", CourseID: "c1", SectionID: "s1", Duration: 1},
	}
	require.NoError(t, repo.SaveResult(context.Background(), timetable, entries))
	assert.Equal(t, "t1", entries[0].TimetableID)
	assert.NotEmpty(t, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositorySaveResultRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE timetables SET fitness").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.SaveResult(context.Background(), &models.Timetable{ID: "t1"}, nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositorySetActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE timetables SET is_active = FALSE").
		WithArgs("t1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE timetables SET is_active = TRUE").
		WithArgs("t1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetActive(context.Background(), "t1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "department_id", "year", "semester", "fitness", "fitness_progression", "status", "stop_reason", "is_active", "created_by", "created_at", "updated_at"}).
		AddRow("t1", "Fall draft", "d1", 2, 1, 88.2, []byte("[88.2]"), "COMPLETE", "stagnated", false, "u1", time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, name, department_id, year, semester, fitness, fitness_progression, status, stop_reason, is_active, created_by, created_at, updated_at FROM timetables WHERE id").
		WithArgs("t1").
		WillReturnRows(rows)

	timetable, err := repo.FindByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 88.2, timetable.Fitness)
	assert.Equal(t, models.TimetableStatusComplete, timetable.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
