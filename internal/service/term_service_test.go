package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

type fakeTermRepo struct {
	terms  []models.Term
	err    error
	filter models.TermFilter
}

func (f *fakeTermRepo) List(_ context.Context, filter models.TermFilter) ([]models.Term, error) {
	f.filter = filter
	return f.terms, f.err
}

func (f *fakeTermRepo) FindByID(_ context.Context, id string) (*models.Term, error) {
	for i := range f.terms {
		if f.terms[i].ID == id {
			return &f.terms[i], nil
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTermRepo) FindByIndex(_ context.Context, index int) (*models.Term, error) {
	for i := range f.terms {
		if f.terms[i].ActiveIndex == index {
			return &f.terms[i], nil
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return nil, sql.ErrNoRows
}

func newTermFixture() *fakeTermRepo {
	return &fakeTermRepo{terms: []models.Term{
		{ID: "FA23", ActiveIndex: -1},
		{ID: "SP24", ActiveIndex: 0},
		{ID: "SM24", ActiveIndex: 1},
	}}
}

func TestTermServiceActiveAndRelative(t *testing.T) {
	svc := NewTermService(newTermFixture(), nil)
	ctx := context.Background()

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SP24", active.ID)
	assert.True(t, active.IsActive())

	prior, err := svc.Relative(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, "FA23", prior.ID)

	_, err = svc.Relative(ctx, 2)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTermServiceGet(t *testing.T) {
	svc := NewTermService(newTermFixture(), nil)

	term, err := svc.Get(context.Background(), "SM24")
	require.NoError(t, err)
	assert.Equal(t, 1, term.ActiveIndex)

	_, err = svc.Get(context.Background(), "FA99")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTermServiceActiveFailure(t *testing.T) {
	svc := NewTermService(&fakeTermRepo{err: errors.New("connection reset")}, nil)

	_, err := svc.Active(context.Background())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}

func TestTermServiceListValidatesScope(t *testing.T) {
	repo := newTermFixture()
	svc := NewTermService(repo, nil)

	_, err := svc.List(context.Background(), models.TermFilter{Scope: "someday"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	terms, err := svc.List(context.Background(), models.TermFilter{Scope: models.TermScopePast, AcademicYear: "2324"})
	require.NoError(t, err)
	assert.Len(t, terms, 3)
	assert.Equal(t, "2324", repo.filter.AcademicYear)
}
