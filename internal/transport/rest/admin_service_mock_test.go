package rest

import (
	"context"
	"sync"

	"github.com/heartmarshall/hearme-backend/internal/domain"
	"github.com/heartmarshall/hearme-backend/internal/service/matching"
)

var _ adminService = &adminServiceMock{}

type adminServiceMock struct {
	ForceRejectPendingFunc func(ctx context.Context, matchingID int64) ([]domain.Matching, error)
	RebuildPresenceFunc    func(ctx context.Context) (*matching.RebuildResult, error)

	calls struct {
		ForceRejectPending []struct {
			Ctx        context.Context
			MatchingID int64
		}
		RebuildPresence []struct {
			Ctx context.Context
		}
	}
	lockForceRejectPending sync.RWMutex
	lockRebuildPresence    sync.RWMutex
}

func (mock *adminServiceMock) ForceRejectPending(ctx context.Context, matchingID int64) ([]domain.Matching, error) {
	if mock.ForceRejectPendingFunc == nil {
		panic("adminServiceMock.ForceRejectPendingFunc: method is nil but adminService.ForceRejectPending was just called")
	}
	callInfo := struct {
		Ctx        context.Context
		MatchingID int64
	}{Ctx: ctx, MatchingID: matchingID}
	mock.lockForceRejectPending.Lock()
	mock.calls.ForceRejectPending = append(mock.calls.ForceRejectPending, callInfo)
	mock.lockForceRejectPending.Unlock()
	return mock.ForceRejectPendingFunc(ctx, matchingID)
}

func (mock *adminServiceMock) ForceRejectPendingCalls() []struct {
	Ctx        context.Context
	MatchingID int64
} {
	mock.lockForceRejectPending.RLock()
	calls := mock.calls.ForceRejectPending
	mock.lockForceRejectPending.RUnlock()
	return calls
}

func (mock *adminServiceMock) RebuildPresence(ctx context.Context) (*matching.RebuildResult, error) {
	if mock.RebuildPresenceFunc == nil {
		panic("adminServiceMock.RebuildPresenceFunc: method is nil but adminService.RebuildPresence was just called")
	}
	callInfo := struct{ Ctx context.Context }{Ctx: ctx}
	mock.lockRebuildPresence.Lock()
	mock.calls.RebuildPresence = append(mock.calls.RebuildPresence, callInfo)
	mock.lockRebuildPresence.Unlock()
	return mock.RebuildPresenceFunc(ctx)
}

func (mock *adminServiceMock) RebuildPresenceCalls() []struct{ Ctx context.Context } {
	mock.lockRebuildPresence.RLock()
	calls := mock.calls.RebuildPresence
	mock.lockRebuildPresence.RUnlock()
	return calls
}
