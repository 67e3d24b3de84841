package feed

import (
	"context"
	"sync"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

var _ localStore = &localStoreMock{}

type localStoreMock struct {
	BumpMarkerFunc func(ctx context.Context, feed domain.Feed) (int64, error)
	DraftFunc      func(ctx context.Context, feed domain.Feed) ([]domain.Raw, error)
	HasMarkFunc    func(ctx context.Context, visitor string, set domain.MarkSet, id string) (bool, error)
	ListFunc       func(ctx context.Context, feed domain.Feed) ([]domain.Raw, error)
	MarkerFunc     func(ctx context.Context, feed domain.Feed) (int64, error)
	MarksFunc      func(ctx context.Context, visitor string, set domain.MarkSet) (map[string]bool, error)
	PingFunc       func(ctx context.Context) error
	SaveFunc       func(ctx context.Context, feed domain.Feed, recs []domain.Raw) error
	SetMarkFunc    func(ctx context.Context, visitor string, set domain.MarkSet, id string, on bool) error

	calls struct {
		BumpMarker []struct {
			Ctx  context.Context
			Feed domain.Feed
		}
		Draft []struct {
			Ctx  context.Context
			Feed domain.Feed
		}
		HasMark []struct {
			Ctx     context.Context
			Visitor string
			Set     domain.MarkSet
			ID      string
		}
		List []struct {
			Ctx  context.Context
			Feed domain.Feed
		}
		Marker []struct {
			Ctx  context.Context
			Feed domain.Feed
		}
		Marks []struct {
			Ctx     context.Context
			Visitor string
			Set     domain.MarkSet
		}
		Ping []struct{ Ctx context.Context }
		Save []struct {
			Ctx  context.Context
			Feed domain.Feed
			Recs []domain.Raw
		}
		SetMark []struct {
			Ctx     context.Context
			Visitor string
			Set     domain.MarkSet
			ID      string
			On      bool
		}
	}
	lockBumpMarker sync.RWMutex
	lockDraft      sync.RWMutex
	lockHasMark    sync.RWMutex
	lockList       sync.RWMutex
	lockMarker     sync.RWMutex
	lockMarks      sync.RWMutex
	lockPing       sync.RWMutex
	lockSave       sync.RWMutex
	lockSetMark    sync.RWMutex
}

func (mock *localStoreMock) BumpMarker(ctx context.Context, feed domain.Feed) (int64, error) {
	if mock.BumpMarkerFunc == nil {
		panic("localStoreMock.BumpMarkerFunc: method is nil but localStore.BumpMarker was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Feed domain.Feed
	}{Ctx: ctx, Feed: feed}
	mock.lockBumpMarker.Lock()
	mock.calls.BumpMarker = append(mock.calls.BumpMarker, callInfo)
	mock.lockBumpMarker.Unlock()
	return mock.BumpMarkerFunc(ctx, feed)
}

func (mock *localStoreMock) BumpMarkerCalls() []struct {
	Ctx  context.Context
	Feed domain.Feed
} {
	mock.lockBumpMarker.RLock()
	calls := mock.calls.BumpMarker
	mock.lockBumpMarker.RUnlock()
	return calls
}

func (mock *localStoreMock) Draft(ctx context.Context, feed domain.Feed) ([]domain.Raw, error) {
	if mock.DraftFunc == nil {
		panic("localStoreMock.DraftFunc: method is nil but localStore.Draft was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Feed domain.Feed
	}{Ctx: ctx, Feed: feed}
	mock.lockDraft.Lock()
	mock.calls.Draft = append(mock.calls.Draft, callInfo)
	mock.lockDraft.Unlock()
	return mock.DraftFunc(ctx, feed)
}

func (mock *localStoreMock) DraftCalls() []struct {
	Ctx  context.Context
	Feed domain.Feed
} {
	mock.lockDraft.RLock()
	calls := mock.calls.Draft
	mock.lockDraft.RUnlock()
	return calls
}

func (mock *localStoreMock) HasMark(ctx context.Context, visitor string, set domain.MarkSet, id string) (bool, error) {
	if mock.HasMarkFunc == nil {
		panic("localStoreMock.HasMarkFunc: method is nil but localStore.HasMark was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Visitor string
		Set     domain.MarkSet
		ID      string
	}{Ctx: ctx, Visitor: visitor, Set: set, ID: id}
	mock.lockHasMark.Lock()
	mock.calls.HasMark = append(mock.calls.HasMark, callInfo)
	mock.lockHasMark.Unlock()
	return mock.HasMarkFunc(ctx, visitor, set, id)
}

func (mock *localStoreMock) HasMarkCalls() []struct {
	Ctx     context.Context
	Visitor string
	Set     domain.MarkSet
	ID      string
} {
	mock.lockHasMark.RLock()
	calls := mock.calls.HasMark
	mock.lockHasMark.RUnlock()
	return calls
}

func (mock *localStoreMock) List(ctx context.Context, feed domain.Feed) ([]domain.Raw, error) {
	if mock.ListFunc == nil {
		panic("localStoreMock.ListFunc: method is nil but localStore.List was just called")
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

func (mock *localStoreMock) ListCalls() []struct {
	Ctx  context.Context
	Feed domain.Feed
} {
	mock.lockList.RLock()
	calls := mock.calls.List
	mock.lockList.RUnlock()
	return calls
}

func (mock *localStoreMock) Marker(ctx context.Context, feed domain.Feed) (int64, error) {
	if mock.MarkerFunc == nil {
		panic("localStoreMock.MarkerFunc: method is nil but localStore.Marker was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Feed domain.Feed
	}{Ctx: ctx, Feed: feed}
	mock.lockMarker.Lock()
	mock.calls.Marker = append(mock.calls.Marker, callInfo)
	mock.lockMarker.Unlock()
	return mock.MarkerFunc(ctx, feed)
}

func (mock *localStoreMock) MarkerCalls() []struct {
	Ctx  context.Context
	Feed domain.Feed
} {
	mock.lockMarker.RLock()
	calls := mock.calls.Marker
	mock.lockMarker.RUnlock()
	return calls
}

func (mock *localStoreMock) Marks(ctx context.Context, visitor string, set domain.MarkSet) (map[string]bool, error) {
	if mock.MarksFunc == nil {
		panic("localStoreMock.MarksFunc: method is nil but localStore.Marks was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Visitor string
		Set     domain.MarkSet
	}{Ctx: ctx, Visitor: visitor, Set: set}
	mock.lockMarks.Lock()
	mock.calls.Marks = append(mock.calls.Marks, callInfo)
	mock.lockMarks.Unlock()
	return mock.MarksFunc(ctx, visitor, set)
}

func (mock *localStoreMock) MarksCalls() []struct {
	Ctx     context.Context
	Visitor string
	Set     domain.MarkSet
} {
	mock.lockMarks.RLock()
	calls := mock.calls.Marks
	mock.lockMarks.RUnlock()
	return calls
}

func (mock *localStoreMock) Ping(ctx context.Context) error {
	if mock.PingFunc == nil {
		panic("localStoreMock.PingFunc: method is nil but localStore.Ping was just called")
	}
	callInfo := struct{ Ctx context.Context }{Ctx: ctx}
	mock.lockPing.Lock()
	mock.calls.Ping = append(mock.calls.Ping, callInfo)
	mock.lockPing.Unlock()
	return mock.PingFunc(ctx)
}

func (mock *localStoreMock) PingCalls() []struct{ Ctx context.Context } {
	mock.lockPing.RLock()
	calls := mock.calls.Ping
	mock.lockPing.RUnlock()
	return calls
}

func (mock *localStoreMock) Save(ctx context.Context, feed domain.Feed, recs []domain.Raw) error {
	if mock.SaveFunc == nil {
		panic("localStoreMock.SaveFunc: method is nil but localStore.Save was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Feed domain.Feed
		Recs []domain.Raw
	}{Ctx: ctx, Feed: feed, Recs: recs}
	mock.lockSave.Lock()
	mock.calls.Save = append(mock.calls.Save, callInfo)
	mock.lockSave.Unlock()
	return mock.SaveFunc(ctx, feed, recs)
}

func (mock *localStoreMock) SaveCalls() []struct {
	Ctx  context.Context
	Feed domain.Feed
	Recs []domain.Raw
} {
	mock.lockSave.RLock()
	calls := mock.calls.Save
	mock.lockSave.RUnlock()
	return calls
}

func (mock *localStoreMock) SetMark(ctx context.Context, visitor string, set domain.MarkSet, id string, on bool) error {
	if mock.SetMarkFunc == nil {
		panic("localStoreMock.SetMarkFunc: method is nil but localStore.SetMark was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Visitor string
		Set     domain.MarkSet
		ID      string
		On      bool
	}{Ctx: ctx, Visitor: visitor, Set: set, ID: id, On: on}
	mock.lockSetMark.Lock()
	mock.calls.SetMark = append(mock.calls.SetMark, callInfo)
	mock.lockSetMark.Unlock()
	return mock.SetMarkFunc(ctx, visitor, set, id, on)
}

func (mock *localStoreMock) SetMarkCalls() []struct {
	Ctx     context.Context
	Visitor string
	Set     domain.MarkSet
	ID      string
	On      bool
} {
	mock.lockSetMark.RLock()
	calls := mock.calls.SetMark
	mock.lockSetMark.RUnlock()
	return calls
}
