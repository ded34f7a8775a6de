// Package storagetest holds the behavior every storage backend must show.
package storagetest

import (
	"context"
	"sync"
	"testing"

	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/nsyszr/flowpilot/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewEvent returns a valid event of case caseID.
func NewEvent(caseID, activity string, ts int64) *model.Event {
	return &model.Event{
		CaseID:    caseID,
		Activity:  activity,
		Timestamp: ts,
		Attributes: model.Attributes{
			model.AttrURL: model.StringValue("https://x.test"),
			model.AttrTag: model.StringValue("button"),
		},
	}
}

// RunEventStoreTests runs the conformance suite against fresh stores
// returned by open. Each subtest gets its own empty store.
func RunEventStoreTests(t *testing.T, open func(t *testing.T) storage.Interface) {
	t.Run("CreateAndFetch", func(t *testing.T) {
		testCreateAndFetch(t, open(t))
	})
	t.Run("InsertionOrder", func(t *testing.T) {
		testInsertionOrder(t, open(t))
	})
	t.Run("RejectInvalid", func(t *testing.T) {
		testRejectInvalid(t, open(t))
	})
	t.Run("DefaultTimestamp", func(t *testing.T) {
		testDefaultTimestamp(t, open(t))
	})
	t.Run("FindByCaseID", func(t *testing.T) {
		testFindByCaseID(t, open(t))
	})
	t.Run("Clear", func(t *testing.T) {
		testClear(t, open(t))
	})
	t.Run("Duplicates", func(t *testing.T) {
		testDuplicates(t, open(t))
	})
	t.Run("ConcurrentCreate", func(t *testing.T) {
		testConcurrentCreate(t, open(t))
	})
}

func testCreateAndFetch(t *testing.T, s storage.Interface) {
	ctx := context.Background()

	m := NewEvent("c1", "click #btn", 1700000000000)
	m.Attributes[model.AttrVisibleText] = model.StringValue("Hello, world")
	require.NoError(t, s.Events().Create(ctx, m))
	assert.NotZero(t, m.ID)

	// Mutating the caller's copy must not reach the store.
	m.Attributes[model.AttrTag] = model.StringValue("a")

	events, err := s.Events().FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, "c1", got.CaseID)
	assert.Equal(t, "click #btn", got.Activity)
	assert.Equal(t, int64(1700000000000), got.Timestamp)
	assert.Equal(t, "https://x.test", got.Attributes.Text(model.AttrURL))
	assert.Equal(t, "Hello, world", got.Attributes.Text(model.AttrVisibleText))
	assert.Equal(t, "button", got.Attributes.Text(model.AttrTag))
	_, ok := got.Attributes.Get(model.AttrTitle)
	assert.False(t, ok)
}

func testInsertionOrder(t *testing.T, s storage.Interface) {
	ctx := context.Background()

	// Timestamps deliberately out of order.
	for _, ts := range []int64{30, 10, 20} {
		require.NoError(t, s.Events().Create(ctx, NewEvent("c1", "click #a", ts)))
	}

	events, err := s.Events().FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, int64(30), events[0].Timestamp)
	assert.Equal(t, int64(10), events[1].Timestamp)
	assert.Equal(t, int64(20), events[2].Timestamp)
	assert.Less(t, events[0].ID, events[1].ID)
	assert.Less(t, events[1].ID, events[2].ID)
}

func testRejectInvalid(t *testing.T, s storage.Interface) {
	ctx := context.Background()

	err := s.Events().Create(ctx, &model.Event{Activity: "click #a", Timestamp: 1})
	assert.True(t, storage.IsInvalidEvent(err))
	err = s.Events().Create(ctx, &model.Event{CaseID: "c1", Timestamp: 1})
	assert.True(t, storage.IsInvalidEvent(err))

	events, err := s.Events().FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func testDefaultTimestamp(t *testing.T, s storage.Interface) {
	ctx := context.Background()

	before := model.NowMillis()
	require.NoError(t, s.Events().Create(ctx, NewEvent("c1", "click #a", 0)))

	events, err := s.Events().FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.GreaterOrEqual(t, events[0].Timestamp, before)
}

func testFindByCaseID(t *testing.T, s storage.Interface) {
	ctx := context.Background()

	require.NoError(t, s.Events().Create(ctx, NewEvent("c1", "click #a", 1)))
	require.NoError(t, s.Events().Create(ctx, NewEvent("c2", "click #b", 2)))
	require.NoError(t, s.Events().Create(ctx, NewEvent("c1", "click #c", 3)))

	events, err := s.Events().FindByCaseID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "click #a", events[0].Activity)
	assert.Equal(t, "click #c", events[1].Activity)

	events, err = s.Events().FindByCaseID(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func testClear(t *testing.T, s storage.Interface) {
	ctx := context.Background()

	first := NewEvent("c1", "click #a", 1)
	require.NoError(t, s.Events().Create(ctx, first))
	require.NoError(t, s.Events().Create(ctx, NewEvent("c1", "click #b", 2)))

	require.NoError(t, s.Events().Clear(ctx))

	events, err := s.Events().FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	// Clearing an empty store is fine and the store stays usable.
	require.NoError(t, s.Events().Clear(ctx))
	next := NewEvent("c1", "click #c", 3)
	require.NoError(t, s.Events().Create(ctx, next))
	assert.Greater(t, next.ID, first.ID)

	events, err = s.Events().FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func testDuplicates(t *testing.T, s storage.Interface) {
	ctx := context.Background()

	require.NoError(t, s.Events().Create(ctx, NewEvent("c1", "click #a", 1)))
	require.NoError(t, s.Events().Create(ctx, NewEvent("c1", "click #a", 1)))

	events, err := s.Events().FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func testConcurrentCreate(t *testing.T, s storage.Interface) {
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Events().Create(ctx, NewEvent("c1", "click #a", int64(i+1))))
		}(i)
	}
	wg.Wait()

	events, err := s.Events().FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, n)

	seen := make(map[int64]bool)
	for _, m := range events {
		assert.False(t, seen[m.ID], "duplicate id %d", m.ID)
		seen[m.ID] = true
	}
}
