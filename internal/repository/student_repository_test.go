package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
)

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "pacing_structure", "extension_days", "created_at", "updated_at"}).
		AddRow("stu-1", "Ada", "Lovelace", "B", 3, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).
		WithArgs("stu-1").
		WillReturnRows(rows)

	student, err := repo.FindByID(context.Background(), "stu-1")
	require.NoError(t, err)
	require.NotNil(t, student.ExtensionDays)
	assert.Equal(t, 3, *student.ExtensionDays)
	require.NotNil(t, student.PacingStructure)
	assert.Equal(t, "B", *student.PacingStructure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdatePacingStructureMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET pacing_structure = $2")).
		WithArgs("stu-9", "A", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePacingStructure(context.Background(), "stu-9", "A")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentSuiteStudentTermRepositoryLifecycle(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentTermRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("FROM student_terms WHERE term_id = $1 AND student_id = $2")).
		WithArgs("FA24", "stu-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO student_terms").
		WithArgs("FA24", "stu-1", 2, "A", "M 117", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE student_terms SET pace").
		WithArgs(3, "B", "M 117", sqlmock.AnyArg(), "FA24", "stu-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_terms WHERE term_id = $1 AND student_id = $2")).
		WithArgs("FA24", "stu-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := repo.Find(ctx, "FA24", "stu-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	rec := &models.StudentTerm{TermID: "FA24", StudentID: "stu-1", Pace: 2, PaceTrack: "A", FirstCourse: "M 117"}
	require.NoError(t, repo.Create(ctx, rec))
	assert.False(t, rec.UpdatedAt.IsZero())

	rec.Pace = 3
	rec.PaceTrack = "B"
	require.NoError(t, repo.UpdatePaceTrackFirstCourse(ctx, rec))
	require.NoError(t, repo.Delete(ctx, "FA24", "stu-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
