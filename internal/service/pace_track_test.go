package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

func reg(course, section string, opts ...func(*models.Registration)) models.Registration {
	r := models.Registration{StudentID: testStudent, TermID: testTerm, CourseID: course, Section: section}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func withStatus(status string) func(*models.Registration) {
	return func(r *models.Registration) { r.OpenStatus = status }
}

func withOrder(order int) func(*models.Registration) {
	return func(r *models.Registration) { r.PaceOrder = intPtr(order) }
}

func incomplete(counted bool) func(*models.Registration) {
	return func(r *models.Registration) { r.InProgress, r.Counted = true, counted }
}

func TestDeterminePace(t *testing.T) {
	regs := []models.Registration{
		reg("M 117", "001"),
		reg("M 118", "001"),
		reg("M 124", "001", withStatus(models.OpenStatusDropped)),
		reg("M 125", "001", func(r *models.Registration) { r.Synthetic = true }),
		reg("M 126", "001", func(r *models.Registration) { r.InstructionType = models.InstructionTypeChallenge }),
		reg("MATH 160", "001"),
		reg("MATH 124", "001", incomplete(false)),
		reg("MATH 125", "001", incomplete(true)),
	}
	assert.Equal(t, 3, DeterminePace(regs))
	assert.Equal(t, 0, DeterminePace(nil))
}

func TestDeterminePaceTrack(t *testing.T) {
	cases := []struct {
		name string
		regs []models.Registration
		want string
	}{
		{"two courses including 117", []models.Registration{reg("M 117", "001"), reg("M 118", "001")}, PaceTrackA},
		{"two courses without 117", []models.Registration{reg("M 118", "001"), reg("M 124", "001")}, PaceTrackB},
		{"single 118", []models.Registration{reg("M 118", "801")}, PaceTrackB},
		{"single 117", []models.Registration{reg("M 117", "001")}, PaceTrackA},
		{"section 002", []models.Registration{reg("M 117", "002"), reg("M 118", "003")}, PaceTrackC},
		{"lowest section wins", []models.Registration{reg("M 118", "002"), reg("M 124", "001")}, PaceTrackB},
		{"no registrations", nil, PaceTrackA},
		{
			"incompletes only used when nothing else",
			[]models.Registration{reg("M 118", "002", incomplete(true)), reg("M 124", "001", incomplete(false))},
			PaceTrackC,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pace := DeterminePace(tc.regs)
			got := DeterminePaceTrack(tc.regs, pace)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, DeterminePaceTrack(tc.regs, pace))
		})
	}
}

func TestDetermineFirstCourse(t *testing.T) {
	open := []models.Registration{
		reg("M 118", "001", withStatus(models.OpenStatusOpen), withOrder(2)),
		reg("M 124", "001", withStatus(models.OpenStatusOpen), withOrder(1)),
	}
	assert.Equal(t, "M 124", DetermineFirstCourse(open))

	notOpen := []models.Registration{
		reg("M 125", "001", func(r *models.Registration) { r.PrereqSatisfied = models.PrereqSatisfied }),
		reg("M 118", "001", func(r *models.Registration) { r.PrereqSatisfied = models.PrereqNotSatisfied }),
	}
	assert.Equal(t, "M 125", DetermineFirstCourse(notOpen))

	noPrereqs := []models.Registration{reg("M 125", "001"), reg("MATH 118", "001")}
	assert.Equal(t, "MATH 118", DetermineFirstCourse(noPrereqs))

	onlyIncomplete := []models.Registration{reg("M 117", "001", incomplete(false))}
	assert.Equal(t, "M 117", DetermineFirstCourse(onlyIncomplete))

	assert.Equal(t, "", DetermineFirstCourse(nil))
}

func TestPacedRegistrations(t *testing.T) {
	regs := []models.Registration{
		reg("M 126", "001"),
		reg("M 124", "001", withOrder(2)),
		reg("M 118", "001"),
		reg("M 117", "001", withOrder(1)),
		reg("MATH 160", "001", withOrder(1)),
	}
	paced := PacedRegistrations(regs)
	var courses []string
	for _, r := range paced {
		courses = append(courses, r.CourseID)
	}
	assert.Equal(t, []string{"M 117", "M 124", "M 118", "M 126"}, courses)
}

func newPaceEnv() (*PaceTrackService, *fakeSections, *fakeStudents, *fakeStudentTerms) {
	sections := &fakeSections{sections: map[string]models.CourseSection{
		"M 117/001": {CourseID: "M 117", Section: "001", PacingStructure: strPtr("M")},
		"M 118/001": {CourseID: "M 118", Section: "001", PacingStructure: strPtr("M")},
		"M 124/401": {CourseID: "M 124", Section: "401", PacingStructure: strPtr("O")},
		"M 125/801": {CourseID: "M 125", Section: "801", PacingStructure: strPtr("S")},
	}}
	students := &fakeStudents{rows: map[string]models.Student{testStudent: {ID: testStudent}}}
	terms := &fakeStudentTerms{}
	return NewPaceTrackService(sections, students, terms, nil), sections, students, terms
}

func TestDeterminePacingStructureRepairsStudent(t *testing.T) {
	svc, _, students, _ := newPaceEnv()
	regs := []models.Registration{reg("M 117", "001"), reg("M 118", "001")}

	ps, warnings, err := svc.DeterminePacingStructure(context.Background(), testStudent, testTerm, regs)
	require.NoError(t, err)
	assert.Equal(t, "M", ps)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Student 812345678 registration had pacing structure M but student record has null (fixed)", warnings[0])
	assert.Equal(t, "M", students.updated[testStudent])

	_, warnings, err = svc.DeterminePacingStructure(context.Background(), testStudent, testTerm, regs)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestDeterminePacingStructureConflicts(t *testing.T) {
	svc, _, students, _ := newPaceEnv()
	regs := []models.Registration{reg("M 125", "801"), reg("M 124", "401"), reg("M 126", "999")}

	ps, warnings, err := svc.DeterminePacingStructure(context.Background(), testStudent, testTerm, regs)
	require.NoError(t, err)
	assert.Equal(t, "O", ps)
	assert.Contains(t, warnings, "No CSECTION record found for M 126 section 999")
	assert.Contains(t, warnings, "Student 812345678 has registrations with different pacing structures.")
	assert.Empty(t, students.updated)
}

func TestDeterminePacingStructureNone(t *testing.T) {
	svc, _, _, _ := newPaceEnv()

	ps, warnings, err := svc.DeterminePacingStructure(context.Background(), testStudent, testTerm, nil)
	require.NoError(t, err)
	assert.Empty(t, ps)
	assert.Equal(t, []string{"Unable to determine any pacing structure for student 812345678"}, warnings)
}

func TestDeterminePacingStructureUnknownStudent(t *testing.T) {
	svc, _, _, _ := newPaceEnv()
	_, _, err := svc.DeterminePacingStructure(context.Background(), "nobody", testTerm, []models.Registration{reg("M 117", "001")})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestUpdateStudentTermLifecycle(t *testing.T) {
	svc, _, _, terms := newPaceEnv()
	ctx := context.Background()

	regs := []models.Registration{reg("M 117", "001", withStatus(models.OpenStatusOpen), withOrder(1)), reg("M 118", "001", withOrder(2))}
	require.NoError(t, svc.UpdateStudentTerm(ctx, testStudent, testTerm, regs))
	assert.Equal(t, 1, terms.created)
	rec := terms.rows[terms.key(testTerm, testStudent)]
	assert.Equal(t, 2, rec.Pace)
	assert.Equal(t, PaceTrackA, rec.PaceTrack)
	assert.Equal(t, "M 117", rec.FirstCourse)

	require.NoError(t, svc.UpdateStudentTerm(ctx, testStudent, testTerm, regs))
	assert.Zero(t, terms.updated)

	regs[0].OpenStatus = models.OpenStatusDropped
	require.NoError(t, svc.UpdateStudentTerm(ctx, testStudent, testTerm, regs))
	assert.Equal(t, 1, terms.updated)
	assert.Equal(t, 1, terms.rows[terms.key(testTerm, testStudent)].Pace)

	regs[1].OpenStatus = models.OpenStatusForfeit
	require.NoError(t, svc.UpdateStudentTerm(ctx, testStudent, testTerm, regs))
	assert.Equal(t, 1, terms.deleted)
	assert.Empty(t, terms.rows)

	require.NoError(t, svc.UpdateStudentTerm(ctx, testStudent, testTerm, regs))
	assert.Equal(t, 1, terms.deleted)
}

func TestSummarize(t *testing.T) {
	svc, _, _, _ := newPaceEnv()
	summary, err := svc.Summarize(context.Background(), testStudent, testTerm,
		[]models.Registration{reg("M 118", "001"), reg("M 124", "401")})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Pace)
	assert.Equal(t, PaceTrackB, summary.PaceTrack)
	assert.Equal(t, "M", summary.PacingStructure)
	assert.NotEmpty(t, summary.Warnings)
}
