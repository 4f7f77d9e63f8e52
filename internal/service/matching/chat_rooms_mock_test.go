package matching

import (
	"context"
	"sync"

	"github.com/heartmarshall/hearme-backend/internal/domain"
)

var _ chatRooms = &chatRoomsMock{}

type chatRoomsMock struct {
	CreateRoomFunc func(ctx context.Context, m *domain.Matching) (string, error)

	calls struct {
		CreateRoom []struct {
			Ctx context.Context
			M   *domain.Matching
		}
	}
	lockCreateRoom sync.RWMutex
}

func (mock *chatRoomsMock) CreateRoom(ctx context.Context, m *domain.Matching) (string, error) {
	if mock.CreateRoomFunc == nil {
		panic("chatRoomsMock.CreateRoomFunc: method is nil but chatRooms.CreateRoom was just called")
	}
	callInfo := struct {
		Ctx context.Context
		M   *domain.Matching
	}{Ctx: ctx, M: m}
	mock.lockCreateRoom.Lock()
	mock.calls.CreateRoom = append(mock.calls.CreateRoom, callInfo)
	mock.lockCreateRoom.Unlock()
	return mock.CreateRoomFunc(ctx, m)
}

func (mock *chatRoomsMock) CreateRoomCalls() []struct {
	Ctx context.Context
	M   *domain.Matching
} {
	mock.lockCreateRoom.RLock()
	calls := mock.calls.CreateRoom
	mock.lockCreateRoom.RUnlock()
	return calls
}
