package feed

import (
	"context"
	"sync"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

var _ remoteSource = &remoteSourceMock{}

type remoteSourceMock struct {
	AdjustLikesFunc func(ctx context.Context, id string, expected int, delta int) (bool, error)
	DeleteFunc      func(ctx context.Context, feed domain.Feed, id string) error
	InsertFunc      func(ctx context.Context, feed domain.Feed, rec domain.Raw) (domain.Raw, error)
	ListFunc        func(ctx context.Context, feed domain.Feed) ([]domain.Raw, error)
	PingFunc        func(ctx context.Context) error

	calls struct {
		AdjustLikes []struct {
			Ctx      context.Context
			ID       string
			Expected int
			Delta    int
		}
		Delete []struct {
			Ctx  context.Context
			Feed domain.Feed
			ID   string
		}
		Insert []struct {
			Ctx  context.Context
			Feed domain.Feed
			Rec  domain.Raw
		}
		List []struct {
			Ctx  context.Context
			Feed domain.Feed
		}
		Ping []struct{ Ctx context.Context }
	}
	lockAdjustLikes sync.RWMutex
	lockDelete      sync.RWMutex
	lockInsert      sync.RWMutex
	lockList        sync.RWMutex
	lockPing        sync.RWMutex
}

func (mock *remoteSourceMock) AdjustLikes(ctx context.Context, id string, expected int, delta int) (bool, error) {
	if mock.AdjustLikesFunc == nil {
		panic("remoteSourceMock.AdjustLikesFunc: method is nil but remoteSource.AdjustLikes was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		ID       string
		Expected int
		Delta    int
	}{Ctx: ctx, ID: id, Expected: expected, Delta: delta}
	mock.lockAdjustLikes.Lock()
	mock.calls.AdjustLikes = append(mock.calls.AdjustLikes, callInfo)
	mock.lockAdjustLikes.Unlock()
	return mock.AdjustLikesFunc(ctx, id, expected, delta)
}

func (mock *remoteSourceMock) AdjustLikesCalls() []struct {
	Ctx      context.Context
	ID       string
	Expected int
	Delta    int
} {
	mock.lockAdjustLikes.RLock()
	calls := mock.calls.AdjustLikes
	mock.lockAdjustLikes.RUnlock()
	return calls
}

func (mock *remoteSourceMock) Delete(ctx context.Context, feed domain.Feed, id string) error {
	if mock.DeleteFunc == nil {
		panic("remoteSourceMock.DeleteFunc: method is nil but remoteSource.Delete was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Feed domain.Feed
		ID   string
	}{Ctx: ctx, Feed: feed, ID: id}
	mock.lockDelete.Lock()
	mock.calls.Delete = append(mock.calls.Delete, callInfo)
	mock.lockDelete.Unlock()
	return mock.DeleteFunc(ctx, feed, id)
}

func (mock *remoteSourceMock) DeleteCalls() []struct {
	Ctx  context.Context
	Feed domain.Feed
	ID   string
} {
	mock.lockDelete.RLock()
	calls := mock.calls.Delete
	mock.lockDelete.RUnlock()
	return calls
}

func (mock *remoteSourceMock) Insert(ctx context.Context, feed domain.Feed, rec domain.Raw) (domain.Raw, error) {
	if mock.InsertFunc == nil {
		panic("remoteSourceMock.InsertFunc: method is nil but remoteSource.Insert was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Feed domain.Feed
		Rec  domain.Raw
	}{Ctx: ctx, Feed: feed, Rec: rec}
	mock.lockInsert.Lock()
	mock.calls.Insert = append(mock.calls.Insert, callInfo)
	mock.lockInsert.Unlock()
	return mock.InsertFunc(ctx, feed, rec)
}

func (mock *remoteSourceMock) InsertCalls() []struct {
	Ctx  context.Context
	Feed domain.Feed
	Rec  domain.Raw
} {
	mock.lockInsert.RLock()
	calls := mock.calls.Insert
	mock.lockInsert.RUnlock()
	return calls
}

func (mock *remoteSourceMock) List(ctx context.Context, feed domain.Feed) ([]domain.Raw, error) {
	if mock.ListFunc == nil {
		panic("remoteSourceMock.ListFunc: method is nil but remoteSource.List was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Feed domain.Feed
	}{Ctx: ctx, Feed: feed}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, feed)
}

func (mock *remoteSourceMock) ListCalls() []struct {
	Ctx  context.Context
	Feed domain.Feed
} {
	mock.lockList.RLock()
	calls := mock.calls.List
	mock.lockList.RUnlock()
	return calls
}

func (mock *remoteSourceMock) Ping(ctx context.Context) error {
	if mock.PingFunc == nil {
		panic("remoteSourceMock.PingFunc: method is nil but remoteSource.Ping was just called")
	}
	callInfo := struct{ Ctx context.Context }{Ctx: ctx}
	mock.lockPing.Lock()
	mock.calls.Ping = append(mock.calls.Ping, callInfo)
	mock.lockPing.Unlock()
	return mock.PingFunc(ctx)
}

func (mock *remoteSourceMock) PingCalls() []struct{ Ctx context.Context } {
	mock.lockPing.RLock()
	calls := mock.calls.Ping
	mock.lockPing.RUnlock()
	return calls
}
