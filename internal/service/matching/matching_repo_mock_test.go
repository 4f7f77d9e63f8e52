package matching

import (
	"context"
	"sync"
	"time"

	"github.com/heartmarshall/hearme-backend/internal/domain"
)

var _ matchingRepo = &matchingRepoMock{}

type matchingRepoMock struct {
	CountOpenByProfileFunc       func(ctx context.Context) (map[int64]int64, error)
	CreateFunc                   func(ctx context.Context, m *domain.Matching) (*domain.Matching, error)
	GetByIDFunc                  func(ctx context.Context, id int64) (*domain.Matching, error)
	ListByProfileFunc            func(ctx context.Context, f domain.MatchingFilter) ([]domain.Matching, error)
	RejectPendingForListenerFunc func(ctx context.Context, listenerID int64, exceptID int64, reason string, createdBefore *time.Time) ([]domain.Matching, error)
	SetChatRoomFunc              func(ctx context.Context, id int64, roomID string) error
	TransitionFunc               func(ctx context.Context, id int64, from []domain.MatchingStatus, to domain.MatchingStatus, reason *string) (*domain.Matching, error)

	calls struct {
		CountOpenByProfile []struct {
			Ctx context.Context
		}
		Create []struct {
			Ctx context.Context
			M   *domain.Matching
		}
		GetByID []struct {
			Ctx context.Context
			ID  int64
		}
		ListByProfile []struct {
			Ctx context.Context
			F   domain.MatchingFilter
		}
		RejectPendingForListener []struct {
			Ctx           context.Context
			ListenerID    int64
			ExceptID      int64
			Reason        string
			CreatedBefore *time.Time
		}
		SetChatRoom []struct {
			Ctx    context.Context
			ID     int64
			RoomID string
		}
		Transition []struct {
			Ctx    context.Context
			ID     int64
			From   []domain.MatchingStatus
			To     domain.MatchingStatus
			Reason *string
		}
	}
	lockCountOpenByProfile       sync.RWMutex
	lockCreate                   sync.RWMutex
	lockGetByID                  sync.RWMutex
	lockListByProfile            sync.RWMutex
	lockRejectPendingForListener sync.RWMutex
	lockSetChatRoom              sync.RWMutex
	lockTransition               sync.RWMutex
}

func (mock *matchingRepoMock) CountOpenByProfile(ctx context.Context) (map[int64]int64, error) {
	if mock.CountOpenByProfileFunc == nil {
		panic("matchingRepoMock.CountOpenByProfileFunc: method is nil but matchingRepo.CountOpenByProfile was just called")
	}
	callInfo := struct{ Ctx context.Context }{Ctx: ctx}
	mock.lockCountOpenByProfile.Lock()
	mock.calls.CountOpenByProfile = append(mock.calls.CountOpenByProfile, callInfo)
	mock.lockCountOpenByProfile.Unlock()
	return mock.CountOpenByProfileFunc(ctx)
}

func (mock *matchingRepoMock) CountOpenByProfileCalls() []struct{ Ctx context.Context } {
	mock.lockCountOpenByProfile.RLock()
	calls := mock.calls.CountOpenByProfile
	mock.lockCountOpenByProfile.RUnlock()
	return calls
}

func (mock *matchingRepoMock) Create(ctx context.Context, m *domain.Matching) (*domain.Matching, error) {
	if mock.CreateFunc == nil {
		panic("matchingRepoMock.CreateFunc: method is nil but matchingRepo.Create was just called")
	}
	callInfo := struct {
		Ctx context.Context
		M   *domain.Matching
	}{Ctx: ctx, M: m}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, m)
}

func (mock *matchingRepoMock) CreateCalls() []struct {
	Ctx context.Context
	M   *domain.Matching
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *matchingRepoMock) GetByID(ctx context.Context, id int64) (*domain.Matching, error) {
	if mock.GetByIDFunc == nil {
		panic("matchingRepoMock.GetByIDFunc: method is nil but matchingRepo.GetByID was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  int64
	}{Ctx: ctx, ID: id}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, callInfo)
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *matchingRepoMock) GetByIDCalls() []struct {
	Ctx context.Context
	ID  int64
} {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}

func (mock *matchingRepoMock) ListByProfile(ctx context.Context, f domain.MatchingFilter) ([]domain.Matching, error) {
	if mock.ListByProfileFunc == nil {
		panic("matchingRepoMock.ListByProfileFunc: method is nil but matchingRepo.ListByProfile was just called")
	}
	callInfo := struct {
		Ctx context.Context
		F   domain.MatchingFilter
	}{Ctx: ctx, F: f}
	mock.lockListByProfile.Lock()
	mock.calls.ListByProfile = append(mock.calls.ListByProfile, callInfo)
	mock.lockListByProfile.Unlock()
	return mock.ListByProfileFunc(ctx, f)
}

func (mock *matchingRepoMock) ListByProfileCalls() []struct {
	Ctx context.Context
	F   domain.MatchingFilter
} {
	mock.lockListByProfile.RLock()
	calls := mock.calls.ListByProfile
	mock.lockListByProfile.RUnlock()
	return calls
}

func (mock *matchingRepoMock) RejectPendingForListener(ctx context.Context, listenerID int64, exceptID int64, reason string, createdBefore *time.Time) ([]domain.Matching, error) {
	if mock.RejectPendingForListenerFunc == nil {
		panic("matchingRepoMock.RejectPendingForListenerFunc: method is nil but matchingRepo.RejectPendingForListener was just called")
	}
	callInfo := struct {
		Ctx           context.Context
		ListenerID    int64
		ExceptID      int64
		Reason        string
		CreatedBefore *time.Time
	}{Ctx: ctx, ListenerID: listenerID, ExceptID: exceptID, Reason: reason, CreatedBefore: createdBefore}
	mock.lockRejectPendingForListener.Lock()
	mock.calls.RejectPendingForListener = append(mock.calls.RejectPendingForListener, callInfo)
	mock.lockRejectPendingForListener.Unlock()
	return mock.RejectPendingForListenerFunc(ctx, listenerID, exceptID, reason, createdBefore)
}

func (mock *matchingRepoMock) RejectPendingForListenerCalls() []struct {
	Ctx           context.Context
	ListenerID    int64
	ExceptID      int64
	Reason        string
	CreatedBefore *time.Time
} {
	mock.lockRejectPendingForListener.RLock()
	calls := mock.calls.RejectPendingForListener
	mock.lockRejectPendingForListener.RUnlock()
	return calls
}

func (mock *matchingRepoMock) SetChatRoom(ctx context.Context, id int64, roomID string) error {
	if mock.SetChatRoomFunc == nil {
		panic("matchingRepoMock.SetChatRoomFunc: method is nil but matchingRepo.SetChatRoom was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		ID     int64
		RoomID string
	}{Ctx: ctx, ID: id, RoomID: roomID}
	mock.lockSetChatRoom.Lock()
	mock.calls.SetChatRoom = append(mock.calls.SetChatRoom, callInfo)
	mock.lockSetChatRoom.Unlock()
	return mock.SetChatRoomFunc(ctx, id, roomID)
}

func (mock *matchingRepoMock) SetChatRoomCalls() []struct {
	Ctx    context.Context
	ID     int64
	RoomID string
} {
	mock.lockSetChatRoom.RLock()
	calls := mock.calls.SetChatRoom
	mock.lockSetChatRoom.RUnlock()
	return calls
}

func (mock *matchingRepoMock) Transition(ctx context.Context, id int64, from []domain.MatchingStatus, to domain.MatchingStatus, reason *string) (*domain.Matching, error) {
	if mock.TransitionFunc == nil {
		panic("matchingRepoMock.TransitionFunc: method is nil but matchingRepo.Transition was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		ID     int64
		From   []domain.MatchingStatus
		To     domain.MatchingStatus
		Reason *string
	}{Ctx: ctx, ID: id, From: from, To: to, Reason: reason}
	mock.lockTransition.Lock()
	mock.calls.Transition = append(mock.calls.Transition, callInfo)
	mock.lockTransition.Unlock()
	return mock.TransitionFunc(ctx, id, from, to, reason)
}

func (mock *matchingRepoMock) TransitionCalls() []struct {
	Ctx    context.Context
	ID     int64
	From   []domain.MatchingStatus
	To     domain.MatchingStatus
	Reason *string
} {
	mock.lockTransition.RLock()
	calls := mock.calls.Transition
	mock.lockTransition.RUnlock()
	return calls
}
