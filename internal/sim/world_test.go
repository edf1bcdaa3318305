package sim

import (
	"math/rand"
	"testing"
	"time"

	"github.com/pekkahe/the-lone-cabin-samples/internal/nav"
	"github.com/pekkahe/the-lone-cabin-samples/internal/world"
)

func testLevel(boxes []world.Box, waypoints []nav.Waypoint) *world.Level {
	ground := world.Box{
		ID:   "ground",
		Kind: world.BoxFloor,
		Min:  nav.Vec3{X: -50, Y: -1, Z: -50},
		Max:  nav.Vec3{X: 50, Y: 0, Z: 50},
	}
	return world.NewLevel(append([]world.Box{ground}, boxes...), waypoints)
}

func newTestWorld(t *testing.T, boxes []world.Box, waypoints []nav.Waypoint) *World {
	t.Helper()
	w := NewWorld(DefaultConfig(), testLevel(boxes, waypoints), nil, rand.New(rand.NewSource(1)))
	t.Cleanup(w.Close)
	return w
}

func TestSpawnAgentIsRetrievable(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	agent := w.SpawnAgent(nav.Vec3{X: 1}, nil)

	if agent.ID == "" {
		t.Fatal("agent must get an ID")
	}
	if got := w.Agent(agent.ID); got != agent {
		t.Fatalf("lookup returned %v, want the spawned agent", got)
	}
	if w.Agent("missing") != nil {
		t.Fatal("unknown ID must return nil")
	}
}

func TestPlayerVisibleWithinConeAndRange(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	agent := w.SpawnAgent(nav.Vec3{}, nil) // spawns facing +Z

	if _, visible := agent.PlayerVisible(); visible {
		t.Fatal("no player in the world, nothing to see")
	}

	w.SetPlayerPosition(nav.Vec3{Z: 5})
	if _, visible := agent.PlayerVisible(); !visible {
		t.Fatal("player ahead in range must be visible")
	}

	w.SetPlayerPosition(nav.Vec3{Z: -5})
	if _, visible := agent.PlayerVisible(); visible {
		t.Fatal("player behind the agent must not be visible")
	}

	w.SetPlayerPosition(nav.Vec3{Z: 40})
	if _, visible := agent.PlayerVisible(); visible {
		t.Fatal("player out of range must not be visible")
	}

	w.SetPlayerPosition(nav.Vec3{Z: 5})
	w.ClearPlayer()
	if _, visible := agent.PlayerVisible(); visible {
		t.Fatal("cleared player must not be visible")
	}
}

func TestPlayerHiddenBehindWall(t *testing.T) {
	wall := world.Box{
		ID:   "wall",
		Kind: world.BoxWall,
		Min:  nav.Vec3{X: -5, Y: 0, Z: 2},
		Max:  nav.Vec3{X: 5, Y: 3, Z: 3},
	}
	w := newTestWorld(t, []world.Box{wall}, nil)
	agent := w.SpawnAgent(nav.Vec3{}, nil)

	w.SetPlayerPosition(nav.Vec3{Z: 5})
	if _, visible := agent.PlayerVisible(); visible {
		t.Fatal("wall at eye height must hide the player")
	}
}

func TestEmitNoiseRespectsRadius(t *testing.T) {
	w := newTestWorld(t, nil, rowOfWaypoints())
	agent := w.SpawnAgent(nav.Vec3{}, nil)
	agent.Controller().Explore(nav.Vec3{X: 3})

	w.EmitNoise(nav.Vec3{X: 30}, 5)
	if agent.Finder().IsSearching() {
		t.Fatal("noise outside the radius must be ignored")
	}

	w.EmitNoise(nav.Vec3{X: 4}, 5)
	if !agent.Finder().IsSearching() {
		t.Fatal("noise inside the radius must reach the agent")
	}
}

func TestStepBroadcastsSnapshots(t *testing.T) {
	w := newTestWorld(t, nil, nil)
	w.SpawnAgent(nav.Vec3{X: 2}, nil)

	var got []AgentSnapshot
	w.SetBroadcast(func(snapshots []AgentSnapshot) { got = snapshots })

	w.Step(0.05)
	if w.Tick() != 1 {
		t.Fatalf("tick = %d, want 1", w.Tick())
	}
	if len(got) != 1 {
		t.Fatalf("broadcast %d snapshots, want 1", len(got))
	}
	if got[0].Behaviour != "none" || got[0].Position != (nav.Vec3{X: 2}) {
		t.Fatalf("snapshot = %+v, want idle agent at x=2", got[0])
	}
}

func rowOfWaypoints() []nav.Waypoint {
	return []nav.Waypoint{
		{ID: "a", Pos: nav.Vec3{X: 0}},
		{ID: "b", Pos: nav.Vec3{X: 5}},
		{ID: "c", Pos: nav.Vec3{X: 10}},
	}
}

func TestAgentWalksItsPatrolRoute(t *testing.T) {
	w := newTestWorld(t, nil, rowOfWaypoints())
	point := nav.Vec3{X: 5}
	agent := w.SpawnAgent(nav.Vec3{}, []nav.Vec3{point})
	agent.Controller().Patrol()

	deadline := time.Now().Add(5 * time.Second)
	for !agent.Finder().HasSearchedTarget(point) {
		if time.Now().After(deadline) {
			t.Fatalf("agent never completed the route; at %v", agent.Motor().Position())
		}
		w.Step(0.1)
		time.Sleep(time.Millisecond)
	}

	reach := w.cfg.PathFinder.ReachThreshold
	if got := agent.Motor().Position().Distance(point); got > reach+w.cfg.WalkSpeed*0.1 {
		t.Fatalf("agent stopped %v short of the patrol point", got)
	}
}
