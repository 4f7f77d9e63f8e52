package matching

import (
	"context"
	"sync"
	"time"

	"github.com/heartmarshall/hearme-backend/internal/domain"
)

var _ waitingRepo = &waitingRepoMock{}

type waitingRepoMock struct {
	ClaimFunc          func(ctx context.Context, f domain.WaitingFilter, excludeProfileID int64) (*domain.WaitingEntry, error)
	DeactivateFunc     func(ctx context.Context, profileID int64, role domain.Role) (*domain.WaitingEntry, error)
	EnqueueFunc        func(ctx context.Context, profileID int64, role domain.Role, topics []string, style *domain.CounselingStyle) (*domain.WaitingEntry, error)
	FindCandidatesFunc func(ctx context.Context, f domain.WaitingFilter, excludeProfileID int64) ([]domain.WaitingEntry, error)
	IsActiveFunc       func(ctx context.Context, profileID int64, role domain.Role) (bool, error)
	RestoreFunc        func(ctx context.Context, profileID int64, role domain.Role, since time.Time) (*domain.WaitingEntry, error)

	calls struct {
		Claim []struct {
			Ctx              context.Context
			F                domain.WaitingFilter
			ExcludeProfileID int64
		}
		Deactivate []struct {
			Ctx       context.Context
			ProfileID int64
			Role      domain.Role
		}
		Enqueue []struct {
			Ctx       context.Context
			ProfileID int64
			Role      domain.Role
			Topics    []string
			Style     *domain.CounselingStyle
		}
		FindCandidates []struct {
			Ctx              context.Context
			F                domain.WaitingFilter
			ExcludeProfileID int64
		}
		IsActive []struct {
			Ctx       context.Context
			ProfileID int64
			Role      domain.Role
		}
		Restore []struct {
			Ctx       context.Context
			ProfileID int64
			Role      domain.Role
			Since     time.Time
		}
	}
	lockClaim          sync.RWMutex
	lockDeactivate     sync.RWMutex
	lockEnqueue        sync.RWMutex
	lockFindCandidates sync.RWMutex
	lockIsActive       sync.RWMutex
	lockRestore        sync.RWMutex
}

func (mock *waitingRepoMock) Claim(ctx context.Context, f domain.WaitingFilter, excludeProfileID int64) (*domain.WaitingEntry, error) {
	if mock.ClaimFunc == nil {
		panic("waitingRepoMock.ClaimFunc: method is nil but waitingRepo.Claim was just called")
	}
	callInfo := struct {
		Ctx              context.Context
		F                domain.WaitingFilter
		ExcludeProfileID int64
	}{Ctx: ctx, F: f, ExcludeProfileID: excludeProfileID}
	mock.lockClaim.Lock()
	mock.calls.Claim = append(mock.calls.Claim, callInfo)
	mock.lockClaim.Unlock()
	return mock.ClaimFunc(ctx, f, excludeProfileID)
}

func (mock *waitingRepoMock) ClaimCalls() []struct {
	Ctx              context.Context
	F                domain.WaitingFilter
	ExcludeProfileID int64
} {
	mock.lockClaim.RLock()
	calls := mock.calls.Claim
	mock.lockClaim.RUnlock()
	return calls
}

func (mock *waitingRepoMock) Deactivate(ctx context.Context, profileID int64, role domain.Role) (*domain.WaitingEntry, error) {
	if mock.DeactivateFunc == nil {
		panic("waitingRepoMock.DeactivateFunc: method is nil but waitingRepo.Deactivate was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		ProfileID int64
		Role      domain.Role
	}{Ctx: ctx, ProfileID: profileID, Role: role}
	mock.lockDeactivate.Lock()
	mock.calls.Deactivate = append(mock.calls.Deactivate, callInfo)
	mock.lockDeactivate.Unlock()
	return mock.DeactivateFunc(ctx, profileID, role)
}

func (mock *waitingRepoMock) DeactivateCalls() []struct {
	Ctx       context.Context
	ProfileID int64
	Role      domain.Role
} {
	mock.lockDeactivate.RLock()
	calls := mock.calls.Deactivate
	mock.lockDeactivate.RUnlock()
	return calls
}

func (mock *waitingRepoMock) Enqueue(ctx context.Context, profileID int64, role domain.Role, topics []string, style *domain.CounselingStyle) (*domain.WaitingEntry, error) {
	if mock.EnqueueFunc == nil {
		panic("waitingRepoMock.EnqueueFunc: method is nil but waitingRepo.Enqueue was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		ProfileID int64
		Role      domain.Role
		Topics    []string
		Style     *domain.CounselingStyle
	}{Ctx: ctx, ProfileID: profileID, Role: role, Topics: topics, Style: style}
	mock.lockEnqueue.Lock()
	mock.calls.Enqueue = append(mock.calls.Enqueue, callInfo)
	mock.lockEnqueue.Unlock()
	return mock.EnqueueFunc(ctx, profileID, role, topics, style)
}

func (mock *waitingRepoMock) EnqueueCalls() []struct {
	Ctx       context.Context
	ProfileID int64
	Role      domain.Role
	Topics    []string
	Style     *domain.CounselingStyle
} {
	mock.lockEnqueue.RLock()
	calls := mock.calls.Enqueue
	mock.lockEnqueue.RUnlock()
	return calls
}

func (mock *waitingRepoMock) FindCandidates(ctx context.Context, f domain.WaitingFilter, excludeProfileID int64) ([]domain.WaitingEntry, error) {
	if mock.FindCandidatesFunc == nil {
		panic("waitingRepoMock.FindCandidatesFunc: method is nil but waitingRepo.FindCandidates was just called")
	}
	callInfo := struct {
		Ctx              context.Context
		F                domain.WaitingFilter
		ExcludeProfileID int64
	}{Ctx: ctx, F: f, ExcludeProfileID: excludeProfileID}
	mock.lockFindCandidates.Lock()
	mock.calls.FindCandidates = append(mock.calls.FindCandidates, callInfo)
	mock.lockFindCandidates.Unlock()
	return mock.FindCandidatesFunc(ctx, f, excludeProfileID)
}

func (mock *waitingRepoMock) FindCandidatesCalls() []struct {
	Ctx              context.Context
	F                domain.WaitingFilter
	ExcludeProfileID int64
} {
	mock.lockFindCandidates.RLock()
	calls := mock.calls.FindCandidates
	mock.lockFindCandidates.RUnlock()
	return calls
}

func (mock *waitingRepoMock) IsActive(ctx context.Context, profileID int64, role domain.Role) (bool, error) {
	if mock.IsActiveFunc == nil {
		panic("waitingRepoMock.IsActiveFunc: method is nil but waitingRepo.IsActive was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		ProfileID int64
		Role      domain.Role
	}{Ctx: ctx, ProfileID: profileID, Role: role}
	mock.lockIsActive.Lock()
	mock.calls.IsActive = append(mock.calls.IsActive, callInfo)
	mock.lockIsActive.Unlock()
	return mock.IsActiveFunc(ctx, profileID, role)
}

func (mock *waitingRepoMock) IsActiveCalls() []struct {
	Ctx       context.Context
	ProfileID int64
	Role      domain.Role
} {
	mock.lockIsActive.RLock()
	calls := mock.calls.IsActive
	mock.lockIsActive.RUnlock()
	return calls
}

func (mock *waitingRepoMock) Restore(ctx context.Context, profileID int64, role domain.Role, since time.Time) (*domain.WaitingEntry, error) {
	if mock.RestoreFunc == nil {
		panic("waitingRepoMock.RestoreFunc: method is nil but waitingRepo.Restore was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		ProfileID int64
		Role      domain.Role
		Since     time.Time
	}{Ctx: ctx, ProfileID: profileID, Role: role, Since: since}
	mock.lockRestore.Lock()
	mock.calls.Restore = append(mock.calls.Restore, callInfo)
	mock.lockRestore.Unlock()
	return mock.RestoreFunc(ctx, profileID, role, since)
}

func (mock *waitingRepoMock) RestoreCalls() []struct {
	Ctx       context.Context
	ProfileID int64
	Role      domain.Role
	Since     time.Time
} {
	mock.lockRestore.RLock()
	calls := mock.calls.Restore
	mock.lockRestore.RUnlock()
	return calls
}
