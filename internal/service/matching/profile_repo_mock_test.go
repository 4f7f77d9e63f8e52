package matching

import (
	"context"
	"sync"
	"time"

	"github.com/heartmarshall/hearme-backend/internal/domain"
)

var _ profileRepo = &profileRepoMock{}

type profileRepoMock struct {
	ConsumeQuotaFunc             func(ctx context.Context, profileID int64, action domain.QuotaAction, day time.Time, limit int) (int, error)
	IncrementCounselingCountFunc func(ctx context.Context, ids ...int64) error

	calls struct {
		ConsumeQuota []struct {
			Ctx       context.Context
			ProfileID int64
			Action    domain.QuotaAction
			Day       time.Time
			Limit     int
		}
		IncrementCounselingCount []struct {
			Ctx context.Context
			Ids []int64
		}
	}
	lockConsumeQuota             sync.RWMutex
	lockIncrementCounselingCount sync.RWMutex
}

func (mock *profileRepoMock) ConsumeQuota(ctx context.Context, profileID int64, action domain.QuotaAction, day time.Time, limit int) (int, error) {
	if mock.ConsumeQuotaFunc == nil {
		panic("profileRepoMock.ConsumeQuotaFunc: method is nil but profileRepo.ConsumeQuota was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		ProfileID int64
		Action    domain.QuotaAction
		Day       time.Time
		Limit     int
	}{Ctx: ctx, ProfileID: profileID, Action: action, Day: day, Limit: limit}
	mock.lockConsumeQuota.Lock()
	mock.calls.ConsumeQuota = append(mock.calls.ConsumeQuota, callInfo)
	mock.lockConsumeQuota.Unlock()
	return mock.ConsumeQuotaFunc(ctx, profileID, action, day, limit)
}

func (mock *profileRepoMock) ConsumeQuotaCalls() []struct {
	Ctx       context.Context
	ProfileID int64
	Action    domain.QuotaAction
	Day       time.Time
	Limit     int
} {
	mock.lockConsumeQuota.RLock()
	calls := mock.calls.ConsumeQuota
	mock.lockConsumeQuota.RUnlock()
	return calls
}

func (mock *profileRepoMock) IncrementCounselingCount(ctx context.Context, ids ...int64) error {
	if mock.IncrementCounselingCountFunc == nil {
		panic("profileRepoMock.IncrementCounselingCountFunc: method is nil but profileRepo.IncrementCounselingCount was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Ids []int64
	}{Ctx: ctx, Ids: ids}
	mock.lockIncrementCounselingCount.Lock()
	mock.calls.IncrementCounselingCount = append(mock.calls.IncrementCounselingCount, callInfo)
	mock.lockIncrementCounselingCount.Unlock()
	return mock.IncrementCounselingCountFunc(ctx, ids...)
}

func (mock *profileRepoMock) IncrementCounselingCountCalls() []struct {
	Ctx context.Context
	Ids []int64
} {
	mock.lockIncrementCounselingCount.RLock()
	calls := mock.calls.IncrementCounselingCount
	mock.lockIncrementCounselingCount.RUnlock()
	return calls
}
