package rest

import (
	"context"
	"sync"

	"github.com/heartmarshall/hearme-backend/internal/domain"
	"github.com/heartmarshall/hearme-backend/internal/service/matching"
)

var _ waitingService = &waitingServiceMock{}

type waitingServiceMock struct {
	CancelWaitingFunc func(ctx context.Context, role domain.Role) error
	EnqueueFunc       func(ctx context.Context, input matching.EnqueueInput) (*domain.WaitingEntry, error)
	ListWaitingFunc   func(ctx context.Context, input matching.ListWaitingInput) ([]domain.WaitingEntry, error)

	calls struct {
		CancelWaiting []struct {
			Ctx  context.Context
			Role domain.Role
		}
		Enqueue []struct {
			Ctx   context.Context
			Input matching.EnqueueInput
		}
		ListWaiting []struct {
			Ctx   context.Context
			Input matching.ListWaitingInput
		}
	}
	lockCancelWaiting sync.RWMutex
	lockEnqueue       sync.RWMutex
	lockListWaiting   sync.RWMutex
}

func (mock *waitingServiceMock) CancelWaiting(ctx context.Context, role domain.Role) error {
	if mock.CancelWaitingFunc == nil {
		panic("waitingServiceMock.CancelWaitingFunc: method is nil but waitingService.CancelWaiting was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Role domain.Role
	}{Ctx: ctx, Role: role}
	mock.lockCancelWaiting.Lock()
	mock.calls.CancelWaiting = append(mock.calls.CancelWaiting, callInfo)
	mock.lockCancelWaiting.Unlock()
	return mock.CancelWaitingFunc(ctx, role)
}

func (mock *waitingServiceMock) CancelWaitingCalls() []struct {
	Ctx  context.Context
	Role domain.Role
} {
	mock.lockCancelWaiting.RLock()
	calls := mock.calls.CancelWaiting
	mock.lockCancelWaiting.RUnlock()
	return calls
}

func (mock *waitingServiceMock) Enqueue(ctx context.Context, input matching.EnqueueInput) (*domain.WaitingEntry, error) {
	if mock.EnqueueFunc == nil {
		panic("waitingServiceMock.EnqueueFunc: method is nil but waitingService.Enqueue was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input matching.EnqueueInput
	}{Ctx: ctx, Input: input}
	mock.lockEnqueue.Lock()
	mock.calls.Enqueue = append(mock.calls.Enqueue, callInfo)
	mock.lockEnqueue.Unlock()
	return mock.EnqueueFunc(ctx, input)
}

func (mock *waitingServiceMock) EnqueueCalls() []struct {
	Ctx   context.Context
	Input matching.EnqueueInput
} {
	mock.lockEnqueue.RLock()
	calls := mock.calls.Enqueue
	mock.lockEnqueue.RUnlock()
	return calls
}

func (mock *waitingServiceMock) ListWaiting(ctx context.Context, input matching.ListWaitingInput) ([]domain.WaitingEntry, error) {
	if mock.ListWaitingFunc == nil {
		panic("waitingServiceMock.ListWaitingFunc: method is nil but waitingService.ListWaiting was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input matching.ListWaitingInput
	}{Ctx: ctx, Input: input}
	mock.lockListWaiting.Lock()
	mock.calls.ListWaiting = append(mock.calls.ListWaiting, callInfo)
	mock.lockListWaiting.Unlock()
	return mock.ListWaitingFunc(ctx, input)
}

func (mock *waitingServiceMock) ListWaitingCalls() []struct {
	Ctx   context.Context
	Input matching.ListWaitingInput
} {
	mock.lockListWaiting.RLock()
	calls := mock.calls.ListWaiting
	mock.lockListWaiting.RUnlock()
	return calls
}
