package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForCount(t *testing.T, n *int32, want int32) {
	t.Helper()
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(n) == want
	}, time.Second, 5*time.Millisecond)
}

func TestCreateFiresOnceAndDetaches(t *testing.T) {
	mock := clock.NewMock()
	reg := NewWithClock(mock)

	var fired int32
	reg.Create("ban:1:2", 5*time.Second, func() {
		atomic.AddInt32(&fired, 1)
	})

	mock.Add(4 * time.Second)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
	assert.Equal(t, 1, reg.Len())

	mock.Add(2 * time.Second)
	waitForCount(t, &fired, 1)
	assert.Equal(t, 0, reg.Len())
	assert.Nil(t, reg.Get("ban:1:2"))

	// No second execution later.
	mock.Add(time.Minute)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestCreateReplacesPendingEntry(t *testing.T) {
	mock := clock.NewMock()
	reg := NewWithClock(mock)

	var firstFired, secondFired int32
	reg.Create("k", 2*time.Second, func() {
		atomic.AddInt32(&firstFired, 1)
	})

	mock.Add(time.Second)
	reg.Create("k", 2*time.Second, func() {
		atomic.AddInt32(&secondFired, 1)
	})
	assert.Equal(t, 1, reg.Len())

	// The first action's original deadline passes without it running.
	mock.Add(time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&firstFired))
	assert.Equal(t, int32(0), atomic.LoadInt32(&secondFired))

	mock.Add(time.Second)
	waitForCount(t, &secondFired, 1)
	assert.Equal(t, int32(0), atomic.LoadInt32(&firstFired))
}

func TestCloseCancelsDurably(t *testing.T) {
	mock := clock.NewMock()
	reg := NewWithClock(mock)

	var fired int32
	reg.Create("role:1:2:3", 10*time.Second, func() {
		atomic.AddInt32(&fired, 1)
	})

	mock.Add(3 * time.Second)
	removed := reg.Close("role:1:2:3")
	require.NotNil(t, removed)
	assert.Equal(t, "role:1:2:3", removed.Key)

	mock.Add(time.Minute)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))

	assert.Nil(t, reg.Close("role:1:2:3"))
}

func TestCallRunsSynchronouslyAndClears(t *testing.T) {
	mock := clock.NewMock()
	reg := NewWithClock(mock)

	var fired int32
	reg.Create("giveaway:abc", time.Hour, func() {
		atomic.AddInt32(&fired, 1)
	})

	reg.Call("giveaway:abc")
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	assert.Equal(t, 0, reg.Len())

	// Absent key is a no-op, and the timer never double-fires.
	reg.Call("giveaway:abc")
	mock.Add(2 * time.Hour)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestGetReportsRemainingDelay(t *testing.T) {
	mock := clock.NewMock()
	reg := NewWithClock(mock)

	reg.Create("ban:1:2", 10*time.Second, func() {})

	mock.Add(3 * time.Second)
	e := reg.Get("ban:1:2")
	require.NotNil(t, e)
	assert.Equal(t, 7*time.Second, e.Remaining(reg.Now()))

	mock.Add(20 * time.Second)
	assert.Equal(t, time.Duration(0), e.Remaining(reg.Now()))
}

func TestPanicInOneActionDoesNotAffectOthers(t *testing.T) {
	mock := clock.NewMock()
	reg := NewWithClock(mock)

	var fired int32
	reg.Create("k1", time.Second, func() {
		panic("boom")
	})
	reg.Create("k2", 2*time.Second, func() {
		atomic.AddInt32(&fired, 1)
	})

	mock.Add(3 * time.Second)
	waitForCount(t, &fired, 1)
	assert.Equal(t, 0, reg.Len())
}

func TestActionCanRearmItsOwnKey(t *testing.T) {
	mock := clock.NewMock()
	reg := NewWithClock(mock)

	var fired int32
	reg.Create("k", time.Second, func() {
		atomic.AddInt32(&fired, 1)
		reg.Create("k", time.Second, func() {
			atomic.AddInt32(&fired, 1)
		})
	})

	mock.Add(time.Second)
	waitForCount(t, &fired, 1)
	// The re-armed entry survived the executor's cleanup.
	require.NotNil(t, reg.Get("k"))

	mock.Add(time.Second)
	waitForCount(t, &fired, 2)
}

func TestZeroAndNegativeDelays(t *testing.T) {
	mock := clock.NewMock()
	reg := NewWithClock(mock)

	var fired int32
	reg.Create("a", 0, func() { atomic.AddInt32(&fired, 1) })
	reg.Create("b", -5*time.Second, func() { atomic.AddInt32(&fired, 1) })

	mock.Add(time.Millisecond)
	waitForCount(t, &fired, 2)
	assert.Equal(t, 0, reg.Len())
}

func TestCloseAll(t *testing.T) {
	mock := clock.NewMock()
	reg := NewWithClock(mock)

	var fired int32
	reg.Create("a", time.Second, func() { atomic.AddInt32(&fired, 1) })
	reg.Create("b", time.Second, func() { atomic.AddInt32(&fired, 1) })
	reg.CloseAll()
	assert.Equal(t, 0, reg.Len())

	mock.Add(time.Minute)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}
