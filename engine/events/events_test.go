package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", timeout)
}

func TestEmitter_OnReceivesEmittedEvent(t *testing.T) {
	e := New(nil)
	var mu sync.Mutex
	var got Event
	e.On(EntityCreated, func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		got = ev
	})

	e.Emit(EntityCreated, "scope-1", map[string]any{"id": "e1"})

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got.Type == EntityCreated
	})
	assert.Equal(t, "scope-1", got.ScopeID)
}

func TestEmitter_OrderingPreservedPerType(t *testing.T) {
	e := New(nil)
	var mu sync.Mutex
	var order []int

	for i := 0; i < 5; i++ {
		i := i
		e.On(DocumentCreated, func(ev Event) {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, i)
		})
	}

	e.Emit(DocumentCreated, "scope", nil)

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 5
	})
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestEmitter_OnceFiresOnlyOnce(t *testing.T) {
	e := New(nil)
	var calls int
	var mu sync.Mutex
	e.Once(QueryStarted, func(Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	e.Emit(QueryStarted, "s", nil)
	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	})

	e.Emit(QueryStarted, "s", nil)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestEmitter_OffRemovesHandler(t *testing.T) {
	e := New(nil)
	sub := e.On(BatchProgress, func(Event) {})
	assert.Equal(t, 1, e.HandlerCount(BatchProgress))

	e.Off(sub)
	assert.Equal(t, 0, e.HandlerCount(BatchProgress))
}

func TestEmitter_PanicInHandlerIsContained(t *testing.T) {
	var panicType Type
	var mu sync.Mutex
	e := New(func(t Type, r any) {
		mu.Lock()
		defer mu.Unlock()
		panicType = t
	})

	var secondCalled bool
	e.On(LearnFailed, func(Event) { panic("boom") })
	e.On(LearnFailed, func(Event) { secondCalled = true })

	e.Emit(LearnFailed, "s", nil)

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return panicType == LearnFailed
	})
	waitFor(t, time.Second, func() bool { return secondCalled })
}

func TestEmitter_EmitWithNoHandlersIsNoop(t *testing.T) {
	e := New(nil)
	assert.NotPanics(t, func() {
		e.Emit(EntityDeleted, "scope", nil)
	})
}

func TestEmitter_DistinctTypesDoNotBlockEachOther(t *testing.T) {
	e := New(nil)
	blocked := make(chan struct{})
	e.On(RelationshipCreated, func(Event) { <-blocked })

	var fastCalled bool
	var mu sync.Mutex
	e.On(RelationshipDeleted, func(Event) {
		mu.Lock()
		fastCalled = true
		mu.Unlock()
	})

	e.Emit(RelationshipCreated, "s", nil)
	e.Emit(RelationshipDeleted, "s", nil)

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fastCalled
	})
	close(blocked)
}
