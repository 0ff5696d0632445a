package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AnaLR27/cs11-backend/internal/domain"
	apperrors "github.com/AnaLR27/cs11-backend/pkg/errors"
)

type watchlistFixture struct {
	svc       *WatchlistService
	watchRepo *mockWatchlistRepository
	profiles  *mockProfileRepository
}

func newWatchlistFixture(t *testing.T) *watchlistFixture {
	t.Helper()
	watchRepo := new(mockWatchlistRepository)
	profiles := new(mockProfileRepository)
	svc := NewWatchlistService(watchRepo, profiles, testLogger())
	return &watchlistFixture{svc: svc, watchRepo: watchRepo, profiles: profiles}
}

func TestWatchlistService_Add_Success(t *testing.T) {
	f := newWatchlistFixture(t)

	f.profiles.On("GetCandidate", mock.Anything, "cand-1").
		Return(&domain.CandidateProfile{CredentialID: "cand-1"}, nil)
	f.watchRepo.On("Add", mock.Anything, "emp-1", "cand-1").Return(nil)

	err := f.svc.Add(context.Background(), "emp-1", "cand-1")
	assert.NoError(t, err)
	f.watchRepo.AssertExpectations(t)
}

func TestWatchlistService_Add_UnknownCandidate(t *testing.T) {
	f := newWatchlistFixture(t)

	f.profiles.On("GetCandidate", mock.Anything, "cand-missing").Return(nil, apperrors.ErrNotFound)

	err := f.svc.Add(context.Background(), "emp-1", "cand-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.watchRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestWatchlistService_Add_MissingCandidateID(t *testing.T) {
	f := newWatchlistFixture(t)

	err := f.svc.Add(context.Background(), "emp-1", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestWatchlistService_Remove_Success(t *testing.T) {
	f := newWatchlistFixture(t)

	f.watchRepo.On("Remove", mock.Anything, "emp-1", "cand-1").Return(nil)

	err := f.svc.Remove(context.Background(), "emp-1", "cand-1")
	assert.NoError(t, err)
	f.watchRepo.AssertExpectations(t)
}

func TestWatchlistService_List_NormalizesPagination(t *testing.T) {
	f := newWatchlistFixture(t)
	now := time.Now().UTC()

	items := []domain.WatchlistItem{{EmployerID: "emp-1", CandidateID: "cand-1", CreatedAt: now}}
	f.watchRepo.On("List", mock.Anything, "emp-1", 20, 0).Return(items, 1, nil)

	got, total, err := f.svc.List(context.Background(), "emp-1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, got, 1)
	f.watchRepo.AssertExpectations(t)
}

func TestWatchlistService_List_CapsPageSize(t *testing.T) {
	f := newWatchlistFixture(t)

	f.watchRepo.On("List", mock.Anything, "emp-1", 100, 100).Return([]domain.WatchlistItem{}, 0, nil)

	_, _, err := f.svc.List(context.Background(), "emp-1", 2, 500)
	require.NoError(t, err)
	f.watchRepo.AssertExpectations(t)
}
