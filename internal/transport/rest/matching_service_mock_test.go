package rest

import (
	"context"
	"sync"

	"github.com/heartmarshall/hearme-backend/internal/domain"
	"github.com/heartmarshall/hearme-backend/internal/service/matching"
)

var _ matchingService = &matchingServiceMock{}

type matchingServiceMock struct {
	AcceptFunc          func(ctx context.Context, matchingID int64) (*domain.Matching, error)
	CancelFunc          func(ctx context.Context, matchingID int64) (*domain.Matching, error)
	CompleteFunc        func(ctx context.Context, matchingID int64) (*domain.Matching, error)
	GetMatchingFunc     func(ctx context.Context, id int64) (*domain.Matching, error)
	ListMyMatchingsFunc func(ctx context.Context, input matching.ListMyMatchingsInput) ([]domain.Matching, error)
	RejectFunc          func(ctx context.Context, input matching.RejectInput) (*domain.Matching, error)
	RequestMatchFunc    func(ctx context.Context, req matching.MatchRequest) (*matching.RequestResult, error)

	calls struct {
		Accept []struct {
			Ctx        context.Context
			MatchingID int64
		}
		Cancel []struct {
			Ctx        context.Context
			MatchingID int64
		}
		Complete []struct {
			Ctx        context.Context
			MatchingID int64
		}
		GetMatching []struct {
			Ctx context.Context
			ID  int64
		}
		ListMyMatchings []struct {
			Ctx   context.Context
			Input matching.ListMyMatchingsInput
		}
		Reject []struct {
			Ctx   context.Context
			Input matching.RejectInput
		}
		RequestMatch []struct {
			Ctx context.Context
			Req matching.MatchRequest
		}
	}
	lockAccept          sync.RWMutex
	lockCancel          sync.RWMutex
	lockComplete        sync.RWMutex
	lockGetMatching     sync.RWMutex
	lockListMyMatchings sync.RWMutex
	lockReject          sync.RWMutex
	lockRequestMatch    sync.RWMutex
}

func (mock *matchingServiceMock) Accept(ctx context.Context, matchingID int64) (*domain.Matching, error) {
	if mock.AcceptFunc == nil {
		panic("matchingServiceMock.AcceptFunc: method is nil but matchingService.Accept was just called")
	}
	callInfo := struct {
		Ctx        context.Context
		MatchingID int64
	}{Ctx: ctx, MatchingID: matchingID}
	mock.lockAccept.Lock()
	mock.calls.Accept = append(mock.calls.Accept, callInfo)
	mock.lockAccept.Unlock()
	return mock.AcceptFunc(ctx, matchingID)
}

func (mock *matchingServiceMock) AcceptCalls() []struct {
	Ctx        context.Context
	MatchingID int64
} {
	mock.lockAccept.RLock()
	calls := mock.calls.Accept
	mock.lockAccept.RUnlock()
	return calls
}

func (mock *matchingServiceMock) Cancel(ctx context.Context, matchingID int64) (*domain.Matching, error) {
	if mock.CancelFunc == nil {
		panic("matchingServiceMock.CancelFunc: method is nil but matchingService.Cancel was just called")
	}
	callInfo := struct {
		Ctx        context.Context
		MatchingID int64
	}{Ctx: ctx, MatchingID: matchingID}
	mock.lockCancel.Lock()
	mock.calls.Cancel = append(mock.calls.Cancel, callInfo)
	mock.lockCancel.Unlock()
	return mock.CancelFunc(ctx, matchingID)
}

func (mock *matchingServiceMock) CancelCalls() []struct {
	Ctx        context.Context
	MatchingID int64
} {
	mock.lockCancel.RLock()
	calls := mock.calls.Cancel
	mock.lockCancel.RUnlock()
	return calls
}

func (mock *matchingServiceMock) Complete(ctx context.Context, matchingID int64) (*domain.Matching, error) {
	if mock.CompleteFunc == nil {
		panic("matchingServiceMock.CompleteFunc: method is nil but matchingService.Complete was just called")
	}
	callInfo := struct {
		Ctx        context.Context
		MatchingID int64
	}{Ctx: ctx, MatchingID: matchingID}
	mock.lockComplete.Lock()
	mock.calls.Complete = append(mock.calls.Complete, callInfo)
	mock.lockComplete.Unlock()
	return mock.CompleteFunc(ctx, matchingID)
}

func (mock *matchingServiceMock) CompleteCalls() []struct {
	Ctx        context.Context
	MatchingID int64
} {
	mock.lockComplete.RLock()
	calls := mock.calls.Complete
	mock.lockComplete.RUnlock()
	return calls
}

func (mock *matchingServiceMock) GetMatching(ctx context.Context, id int64) (*domain.Matching, error) {
	if mock.GetMatchingFunc == nil {
		panic("matchingServiceMock.GetMatchingFunc: method is nil but matchingService.GetMatching was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  int64
	}{Ctx: ctx, ID: id}
	mock.lockGetMatching.Lock()
	mock.calls.GetMatching = append(mock.calls.GetMatching, callInfo)
	mock.lockGetMatching.Unlock()
	return mock.GetMatchingFunc(ctx, id)
}

func (mock *matchingServiceMock) GetMatchingCalls() []struct {
	Ctx context.Context
	ID  int64
} {
	mock.lockGetMatching.RLock()
	calls := mock.calls.GetMatching
	mock.lockGetMatching.RUnlock()
	return calls
}

func (mock *matchingServiceMock) ListMyMatchings(ctx context.Context, input matching.ListMyMatchingsInput) ([]domain.Matching, error) {
	if mock.ListMyMatchingsFunc == nil {
		panic("matchingServiceMock.ListMyMatchingsFunc: method is nil but matchingService.ListMyMatchings was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input matching.ListMyMatchingsInput
	}{Ctx: ctx, Input: input}
	mock.lockListMyMatchings.Lock()
	mock.calls.ListMyMatchings = append(mock.calls.ListMyMatchings, callInfo)
	mock.lockListMyMatchings.Unlock()
	return mock.ListMyMatchingsFunc(ctx, input)
}

func (mock *matchingServiceMock) ListMyMatchingsCalls() []struct {
	Ctx   context.Context
	Input matching.ListMyMatchingsInput
} {
	mock.lockListMyMatchings.RLock()
	calls := mock.calls.ListMyMatchings
	mock.lockListMyMatchings.RUnlock()
	return calls
}

func (mock *matchingServiceMock) Reject(ctx context.Context, input matching.RejectInput) (*domain.Matching, error) {
	if mock.RejectFunc == nil {
		panic("matchingServiceMock.RejectFunc: method is nil but matchingService.Reject was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input matching.RejectInput
	}{Ctx: ctx, Input: input}
	mock.lockReject.Lock()
	mock.calls.Reject = append(mock.calls.Reject, callInfo)
	mock.lockReject.Unlock()
	return mock.RejectFunc(ctx, input)
}

func (mock *matchingServiceMock) RejectCalls() []struct {
	Ctx   context.Context
	Input matching.RejectInput
} {
	mock.lockReject.RLock()
	calls := mock.calls.Reject
	mock.lockReject.RUnlock()
	return calls
}

func (mock *matchingServiceMock) RequestMatch(ctx context.Context, req matching.MatchRequest) (*matching.RequestResult, error) {
	if mock.RequestMatchFunc == nil {
		panic("matchingServiceMock.RequestMatchFunc: method is nil but matchingService.RequestMatch was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Req matching.MatchRequest
	}{Ctx: ctx, Req: req}
	mock.lockRequestMatch.Lock()
	mock.calls.RequestMatch = append(mock.calls.RequestMatch, callInfo)
	mock.lockRequestMatch.Unlock()
	return mock.RequestMatchFunc(ctx, req)
}

func (mock *matchingServiceMock) RequestMatchCalls() []struct {
	Ctx context.Context
	Req matching.MatchRequest
} {
	mock.lockRequestMatch.RLock()
	calls := mock.calls.RequestMatch
	mock.lockRequestMatch.RUnlock()
	return calls
}
