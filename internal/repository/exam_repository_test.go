package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExamRepositoryListStudentExams(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	taken := time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM student_exams WHERE student_id = $1 AND course = $2 AND exam_type = ANY($3)")).
		WithArgs("812345678", "M 117", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "course", "unit", "exam_type", "exam_score", "passed", "exam_dt"}).
			AddRow("812345678", "M 117", 1, "R", 9, true, taken).
			AddRow("812345678", "M 117", 5, "F", nil, false, taken))

	exams, err := repo.ListStudentExams(context.Background(), "812345678", "M 117", "R", "F")
	require.NoError(t, err)
	require.Len(t, exams, 2)
	require.NotNil(t, exams[0].Score)
	assert.Equal(t, 9, *exams[0].Score)
	assert.Nil(t, exams[1].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryEmptyInputsSkipQueries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	attempts, err := repo.ListMasteryAttempts(context.Background(), "812345678", nil)
	require.NoError(t, err)
	assert.Empty(t, attempts)

	answers, err := repo.ListAttemptAnswers(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, answers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListMasteryAttempts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM mastery_attempts")).
		WithArgs("812345678", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"serial_nbr", "exam_id", "student_id", "passed"}).
			AddRow(int64(77), "MT4UE", "812345678", true))

	attempts, err := repo.ListMasteryAttempts(context.Background(), "812345678", []string{"MT4UE"})
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, int64(77), attempts[0].SerialNumber)
}
