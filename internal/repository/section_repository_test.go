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

func TestSectionRepositoryListForRun(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	sectionRows := sqlmock.NewRows([]string{"id", "code", "department_id", "year", "semester", "students", "room_id", "created_at", "updated_at"}).
		AddRow("s1", "A", "d1", 2, 1, 30, nil, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, code, department_id, year, semester, students, room_id, created_at, updated_at FROM sections WHERE department_id IN").
		WithArgs("d1", 2, 1).
		WillReturnRows(sectionRows)
	linkRows := sqlmock.NewRows([]string{"section_id", "course_id"}).
		AddRow("s1", "c1").
		AddRow("s1", "c2")
	mock.ExpectQuery("SELECT section_id, course_id FROM section_courses WHERE section_id IN").
		WithArgs("s1").
		WillReturnRows(linkRows)

	sections, err := repo.ListForRun(context.Background(), []string{"d1"}, []int{2}, []int{1})
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, []string{"c1", "c2"}, sections[0].CourseIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryUpdateRoomAssignments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	roomID := "r1"
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sections SET room_id = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("s1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sections SET room_id = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("s2", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateRoomAssignments(context.Background(), []models.SectionRoomAssignment{
		{SectionID: "s1", RoomID: &roomID},
		{SectionID: "s2", RoomID: nil},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryUpdateRoomAssignmentsRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sections SET room_id").
		WithArgs("s1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.UpdateRoomAssignments(context.Background(), []models.SectionRoomAssignment{{SectionID: "s1"}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
