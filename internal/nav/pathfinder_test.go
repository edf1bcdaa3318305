package nav

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pekkahe/the-lone-cabin-samples/logging"
	navlog "github.com/pekkahe/the-lone-cabin-samples/logging/navigation"
	"github.com/pekkahe/the-lone-cabin-samples/logging/sinks"
)

type recordingListener struct {
	found     []*Path
	traversed int
}

func (l *recordingListener) OnPathFound(path *Path) { l.found = append(l.found, path) }
func (l *recordingListener) OnPathTraversed()       { l.traversed++ }

type finderFixture struct {
	finder   *PathFinder
	listener *recordingListener
	pool     *Pool
	memory   *sinks.MemorySink
}

func newFinderFixture(t *testing.T, sight SightTester) *finderFixture {
	t.Helper()
	if sight == nil {
		sight = newStubSight()
	}
	shared := BuildShared(colinearWaypoints(), sight, nil)
	pool := NewPool(1, 2)
	t.Cleanup(pool.Close)

	memory := sinks.NewMemorySink()
	pub := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		_ = memory.Write(event)
	})

	listener := &recordingListener{}
	finder := NewPathFinder("agent-test", shared, pool, nil, listener, pub, DefaultPathFinderConfig())
	return &finderFixture{finder: finder, listener: listener, pool: pool, memory: memory}
}

// waitForPath pumps Update until the in-flight search resolves.
func (fx *finderFixture) waitForPath(t *testing.T, pos Vec3) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for fx.finder.IsSearching() {
		if time.Now().After(deadline) {
			t.Fatal("search never resolved")
		}
		fx.finder.Update(pos)
		time.Sleep(time.Millisecond)
	}
}

func TestFindPathToDropsZeroTarget(t *testing.T) {
	fx := newFinderFixture(t, nil)
	fx.finder.FindPathTo(Vec3{X: 1}, Vec3{})

	assert.False(t, fx.finder.IsSearching())
	assert.Len(t, fx.memory.EventsOfType(navlog.EventDegenerateTarget), 1)
}

func TestFindPathToProducesOffsetAdjustedPath(t *testing.T) {
	fx := newFinderFixture(t, nil)
	fx.finder.FindPathTo(Vec3{X: 0}, Vec3{X: 10})
	fx.waitForPath(t, Vec3{X: 0})

	path := fx.finder.CurrentPath()
	require.NotNil(t, path)
	require.True(t, path.IsValid())
	require.Len(t, fx.listener.found, 1)
	assert.Same(t, path, fx.listener.found[0])

	// Endpoints are lifted by the vertical offset before searching.
	assert.Equal(t, Vec3{X: 10, Y: 1}, path.Target())
	assert.Zero(t, fx.finder.InvalidStreak())
}

func TestNewSearchAbortsInFlightOne(t *testing.T) {
	fx := newFinderFixture(t, nil)
	fx.finder.FindPathTo(Vec3{X: 0}, Vec3{X: 10})
	first := fx.finder.search
	require.NotNil(t, first)

	fx.finder.FindPathTo(Vec3{X: 0}, Vec3{X: 5})
	assert.NotSame(t, first, fx.finder.search)
	_, ok := first.Result()
	assert.False(t, ok, "superseded search result must be discarded")
}

func TestTraversalClearsPathAndSignals(t *testing.T) {
	fx := newFinderFixture(t, nil)
	fx.finder.FindPathTo(Vec3{X: 0}, Vec3{X: 10})
	fx.waitForPath(t, Vec3{X: 0})

	// Single-hop route: standing on the last waypoint completes it.
	fx.finder.Update(Vec3{X: 10, Y: 1})
	assert.Nil(t, fx.finder.CurrentPath())
	assert.Equal(t, 1, fx.listener.traversed)
	assert.Len(t, fx.memory.EventsOfType(navlog.EventPathTraversed), 1)
}

func TestUpdateAdvancesCursorWithinReach(t *testing.T) {
	sight := blockedDirectRoute()
	fx := newFinderFixture(t, sight)

	fx.finder.FindPathTo(Vec3{X: 0}, Vec3{X: 10})
	fx.waitForPath(t, Vec3{X: 0})

	path := fx.finder.CurrentPath()
	require.NotNil(t, path)
	require.Equal(t, 2, path.Length())

	fx.finder.Update(Vec3{X: 2}) // too far from the midpoint
	assert.Equal(t, 0, path.Cursor())

	fx.finder.Update(Vec3{X: 5, Y: 0.5})
	assert.Equal(t, 1, path.Cursor())
	assert.Same(t, path, fx.finder.CurrentPath(), "not traversed yet")
}

func TestInvalidStreakGrowsAndResets(t *testing.T) {
	sight := newStubSight()
	unreachable := Vec3{X: 100, Z: 100}
	for _, wp := range colinearWaypoints() {
		sight.blockBoth(unreachable, wp.Pos)
	}
	lifted := unreachable.Add(Vec3{Y: 1})
	sight.blockBoth(lifted, Vec3{X: 0, Y: 1})
	for _, wp := range colinearWaypoints() {
		sight.blockBoth(lifted, wp.Pos)
	}
	fx := newFinderFixture(t, sight)

	for i := 1; i <= 3; i++ {
		fx.finder.FindPathTo(Vec3{X: 0}, unreachable)
		fx.waitForPath(t, Vec3{X: 0})
		assert.Equal(t, i, fx.finder.InvalidStreak())
		assert.False(t, fx.finder.CurrentPath().IsValid())
	}

	fx.finder.FindPathTo(Vec3{X: 0}, Vec3{X: 10})
	fx.waitForPath(t, Vec3{X: 0})
	assert.Zero(t, fx.finder.InvalidStreak())
	assert.Len(t, fx.memory.EventsOfType(navlog.EventSearchFailed), 3)
}

func TestHistoryKeepsThreeMostRecentFirst(t *testing.T) {
	fx := newFinderFixture(t, nil)
	targets := []Vec3{{X: 5}, {X: 10}, {X: 5}, {X: 10}}
	for _, target := range targets {
		fx.finder.FindPathTo(Vec3{X: 0}, target)
		fx.waitForPath(t, Vec3{X: 0})
	}

	history := fx.finder.History()
	require.Len(t, history, 3)
	assert.Equal(t, Vec3{X: 10, Y: 1}, history[0].Target())
	assert.Equal(t, Vec3{X: 5, Y: 1}, history[1].Target())
	assert.Equal(t, Vec3{X: 10, Y: 1}, history[2].Target())
}

func TestHasSearchedTargetRequiresTraversal(t *testing.T) {
	fx := newFinderFixture(t, blockedDirectRoute())
	fx.finder.FindPathTo(Vec3{X: 0}, Vec3{X: 10})
	fx.waitForPath(t, Vec3{X: 0})

	// Found but not walked yet.
	assert.False(t, fx.finder.HasSearchedTarget(Vec3{X: 10}))

	fx.finder.Update(Vec3{X: 5, Y: 0.5})
	fx.finder.Update(Vec3{X: 10, Y: 1})
	require.Nil(t, fx.finder.CurrentPath())

	assert.True(t, fx.finder.HasSearchedTarget(Vec3{X: 10}))
	assert.True(t, fx.finder.HasSearchedTarget(Vec3{X: 10.04}), "within tolerance")
	assert.False(t, fx.finder.HasSearchedTarget(Vec3{X: 10.2}))
}

// blockedDirectRoute occludes the straight line between the outer
// waypoints at both ground level and search height, forcing routes
// through the midpoint.
func blockedDirectRoute() *stubSight {
	sight := newStubSight()
	sight.blockBoth(Vec3{X: 0}, Vec3{X: 10})
	sight.blockBoth(Vec3{X: 0, Y: 1}, Vec3{X: 10, Y: 1})
	return sight
}

func TestClearPathAbortsSearch(t *testing.T) {
	fx := newFinderFixture(t, nil)
	fx.finder.FindPathTo(Vec3{X: 0}, Vec3{X: 10})
	search := fx.finder.search
	require.NotNil(t, search)

	fx.finder.ClearPath()
	assert.False(t, fx.finder.IsSearching())
	assert.Nil(t, fx.finder.CurrentPath())
	_, ok := search.Result()
	assert.False(t, ok)
	assert.Empty(t, fx.listener.found)
}
