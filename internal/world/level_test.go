package world

import (
	"testing"
	"time"

	"github.com/pekkahe/the-lone-cabin-samples/internal/nav"
)

func wallBetween() Box {
	return Box{
		ID:   "wall-1",
		Kind: BoxWall,
		Min:  nav.Vec3{X: 4, Y: -1, Z: -1},
		Max:  nav.Vec3{X: 6, Y: 1, Z: 1},
	}
}

func TestIntersectSegment(t *testing.T) {
	box := wallBetween()

	tHit, hit := box.IntersectSegment(nav.Vec3{X: 0}, nav.Vec3{X: 10})
	if !hit {
		t.Fatal("segment through the box must hit")
	}
	if tHit < 0.39 || tHit > 0.41 {
		t.Fatalf("entry t = %v, want 0.4", tHit)
	}

	if _, hit := box.IntersectSegment(nav.Vec3{X: 0, Z: 5}, nav.Vec3{X: 10, Z: 5}); hit {
		t.Fatal("segment beside the box must miss")
	}
	if _, hit := box.IntersectSegment(nav.Vec3{X: 0}, nav.Vec3{X: 3}); hit {
		t.Fatal("segment ending short of the box must miss")
	}
}

func TestOccludedByWall(t *testing.T) {
	level := NewLevel([]Box{wallBetween()}, nil)

	a, b := nav.Vec3{X: 0}, nav.Vec3{X: 10}
	if !level.Occluded(a, b) || !level.Occluded(b, a) {
		t.Fatal("wall must occlude the sight line in both directions")
	}
	if level.Occluded(nav.Vec3{X: 0, Z: 5}, nav.Vec3{X: 10, Z: 5}) {
		t.Fatal("clear line reported occluded")
	}
}

func TestOccludedTreatsEmbeddedOriginAsClear(t *testing.T) {
	level := NewLevel([]Box{wallBetween()}, nil)

	inside := nav.Vec3{X: 5}
	outside := nav.Vec3{X: 10}
	// A ray starting inside a collider exits without registering a hit;
	// the reverse direction still hits the wall face.
	if level.Occluded(inside, outside) {
		t.Fatal("ray from inside the wall must not hit it")
	}
	if !level.Occluded(outside, inside) {
		t.Fatal("ray into the wall must hit it")
	}
}

func TestFirstHitReturnsNearest(t *testing.T) {
	near := Box{ID: "near", Kind: BoxWall, Min: nav.Vec3{X: 2, Y: -1, Z: -1}, Max: nav.Vec3{X: 3, Y: 1, Z: 1}}
	far := Box{ID: "far", Kind: BoxWall, Min: nav.Vec3{X: 7, Y: -1, Z: -1}, Max: nav.Vec3{X: 8, Y: 1, Z: 1}}
	level := NewLevel([]Box{far, near}, nil)

	id, ok := level.FirstHit(nav.Vec3{X: 0}, nav.Vec3{X: 10})
	if !ok || id != "near" {
		t.Fatalf("first hit = %q (%v), want near", id, ok)
	}

	if _, ok := level.FirstHit(nav.Vec3{X: 0, Z: 5}, nav.Vec3{X: 10, Z: 5}); ok {
		t.Fatal("clear line reported a hit")
	}
}

func TestFirstHitIncludesShutDoors(t *testing.T) {
	level := NewLevel(nil, nil)
	panel := Box{Min: nav.Vec3{X: 4, Y: -1, Z: -1}, Max: nav.Vec3{X: 6, Y: 1, Z: 1}}
	door := NewDoor("door-1", panel, nil, DoorClosed)
	level.AddDoor(door)

	id, ok := level.FirstHit(nav.Vec3{X: 0}, nav.Vec3{X: 10})
	if !ok || id != "door-1" {
		t.Fatalf("first hit = %q (%v), want door-1", id, ok)
	}

	door.Open()
	if _, ok := level.FirstHit(nav.Vec3{X: 0}, nav.Vec3{X: 10}); ok {
		t.Fatal("open door must not block the ray")
	}
}

func TestProjectSnapsToHighestFloorBelow(t *testing.T) {
	ground := Box{ID: "ground", Kind: BoxFloor, Min: nav.Vec3{X: -10, Y: -1, Z: -10}, Max: nav.Vec3{X: 10, Y: 0, Z: 10}}
	porch := Box{ID: "porch", Kind: BoxFloor, Min: nav.Vec3{X: 0, Y: 0, Z: 0}, Max: nav.Vec3{X: 4, Y: 0.3, Z: 4}}
	level := NewLevel([]Box{ground, porch}, nil)

	got := level.Project(nav.Vec3{X: 2, Y: 5, Z: 2})
	if got != (nav.Vec3{X: 2, Y: 0.3, Z: 2}) {
		t.Fatalf("projected = %v, want porch surface", got)
	}

	got = level.Project(nav.Vec3{X: -5, Y: 5, Z: -5})
	if got != (nav.Vec3{X: -5, Y: 0, Z: -5}) {
		t.Fatalf("projected = %v, want ground surface", got)
	}

	// No floor beneath: position passes through unchanged.
	off := nav.Vec3{X: 50, Y: 5, Z: 50}
	if got := level.Project(off); got != off {
		t.Fatalf("projected = %v, want unchanged", got)
	}

	// Floors above the position are ignored.
	below := nav.Vec3{X: 2, Y: 0.1, Z: 2}
	if got := level.Project(below); got != (nav.Vec3{X: 2, Y: 0, Z: 2}) {
		t.Fatalf("projected = %v, want ground beneath the porch", got)
	}
}

func TestIndoorsUsesInteriorVolumes(t *testing.T) {
	room := Box{ID: "room", Kind: BoxVolume, Min: nav.Vec3{X: 0, Y: 0, Z: 0}, Max: nav.Vec3{X: 5, Y: 3, Z: 5}}
	level := NewLevel([]Box{room}, nil)

	if !level.Indoors(nav.Vec3{X: 2, Y: 1, Z: 2}) {
		t.Fatal("point inside the volume must be indoors")
	}
	if level.Indoors(nav.Vec3{X: 8, Y: 1, Z: 2}) {
		t.Fatal("point outside the volume must be outdoors")
	}
	if level.Occluded(nav.Vec3{X: -2, Y: 1, Z: 2}, nav.Vec3{X: 8, Y: 1, Z: 2}) {
		t.Fatal("interior volumes must not occlude sight")
	}
}

func TestDoorRewiresGraphOnOpenAndClose(t *testing.T) {
	waypoints := []nav.Waypoint{
		{ID: "west", Pos: nav.Vec3{X: 0}},
		{ID: "east", Pos: nav.Vec3{X: 10}},
	}
	level := NewLevel([]Box{wallBetween()}, waypoints)
	panel := Box{Min: nav.Vec3{X: 4.5, Y: -1, Z: -0.5}, Max: nav.Vec3{X: 5.5, Y: 1, Z: 0.5}}
	door := NewDoor("door-1", panel, []nav.WaypointPair{{A: "west", B: "east"}}, DoorClosed)
	level.AddDoor(door)

	shared := nav.BuildShared(level.Waypoints(), level, nil)
	door.BindGraph(shared)

	west, _ := shared.Resolve("west")
	east, _ := shared.Resolve("east")
	if edgeBetween(shared, west, east) {
		t.Fatal("wall-separated waypoints must start disconnected")
	}

	if !door.Open() {
		t.Fatal("closed door must open")
	}
	if !edgeBetween(shared, west, east) {
		t.Fatal("opening the door must connect the linked waypoints")
	}

	door.Close()
	if edgeBetween(shared, west, east) {
		t.Fatal("closing the door must sever the linked waypoints")
	}
}

func edgeBetween(shared *nav.SharedGraph, a, b nav.NodeID) bool {
	for _, n := range shared.Graph().Neighbors(a) {
		if n == b {
			return true
		}
	}
	return false
}

func TestDoorLockLifecycle(t *testing.T) {
	door := NewDoor("door-1", Box{}, nil, DoorClosed)

	door.BeginLock()
	if !door.IsBeingLocked() {
		t.Fatal("door must report the locking transition")
	}
	if door.Open() {
		t.Fatal("a door being locked must refuse to open")
	}

	door.Lock()
	if !door.IsLocked() || door.Open() {
		t.Fatal("a locked door must refuse to open")
	}

	door.Unlock()
	if !door.IsClosed() {
		t.Fatal("unlocking must return the door to closed")
	}
	if !door.Open() {
		t.Fatal("an unlocked door must open")
	}
}

func TestDoorLockFromOpenClosesFirst(t *testing.T) {
	door := NewDoor("door-1", Box{}, nil, DoorOpen)
	door.Lock()
	if !door.IsLocked() {
		t.Fatal("locking an open door must end locked")
	}
}

func TestTriggerContains(t *testing.T) {
	panel := Box{Min: nav.Vec3{X: 4, Y: 0, Z: 0}, Max: nav.Vec3{X: 5, Y: 2, Z: 0.2}}
	door := NewDoor("door-1", panel, nil, DoorClosed)

	if !door.TriggerContains(nav.Vec3{X: 4.5, Y: 1, Z: 1}, 1.2) {
		t.Fatal("position near the panel must trigger")
	}
	if door.TriggerContains(nav.Vec3{X: 4.5, Y: 1, Z: 3}, 1.2) {
		t.Fatal("position far from the panel must not trigger")
	}
}

func TestSightSnapshotIgnoresLaterDoorChanges(t *testing.T) {
	level := NewLevel(nil, nil)
	panel := Box{Min: nav.Vec3{X: 4.5, Y: -1, Z: -0.5}, Max: nav.Vec3{X: 5.5, Y: 1, Z: 0.5}}
	door := NewDoor("door-1", panel, nil, DoorClosed)
	level.AddDoor(door)

	from := nav.Vec3{X: 0}
	to := nav.Vec3{X: 10}

	shut := level.SightSnapshot()
	if !shut.Occluded(from, to) {
		t.Fatal("snapshot of a shut door must occlude the segment")
	}

	door.Open()
	if level.Occluded(from, to) {
		t.Fatal("live level must stop occluding once the door opens")
	}
	if !shut.Occluded(from, to) {
		t.Fatal("snapshot must keep the door state from capture time")
	}

	open := level.SightSnapshot()
	door.Close()
	if open.Occluded(from, to) {
		t.Fatal("snapshot taken while open must stay clear after the door shuts")
	}
}

func TestSearchesRunWhileDoorsToggle(t *testing.T) {
	waypoints := []nav.Waypoint{
		{ID: "west", Pos: nav.Vec3{X: 0}},
		{ID: "east", Pos: nav.Vec3{X: 10}},
	}
	level := NewLevel([]Box{wallBetween()}, waypoints)
	panel := Box{Min: nav.Vec3{X: 4.5, Y: -1, Z: -0.5}, Max: nav.Vec3{X: 5.5, Y: 1, Z: 0.5}}
	door := NewDoor("door-1", panel, []nav.WaypointPair{{A: "west", B: "east"}}, DoorClosed)
	level.AddDoor(door)

	shared := nav.BuildShared(level.Waypoints(), level, nil)
	door.BindGraph(shared)

	pool := nav.NewPool(2, 8)
	defer pool.Close()

	// Each clone is taken while the door holds a known state; the
	// toggle afterwards races only against workers reading their
	// snapshots, never against shared state.
	searches := make([]*nav.Search, 64)
	for i := range searches {
		searches[i] = nav.NewSearch(shared.GetCopy(), nav.Vec3{X: -2}, nav.Vec3{X: 12}, nil)
		pool.Submit(searches[i])
		if i%2 == 0 {
			door.Open()
		} else {
			door.Close()
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for i, search := range searches {
		for !search.IsDone() {
			if time.Now().After(deadline) {
				t.Fatalf("search %d did not finish in time", i)
			}
			time.Sleep(time.Millisecond)
		}
		path, ok := search.Result()
		if !ok {
			t.Fatalf("search %d lost its result", i)
		}
		doorWasOpen := i%2 == 1
		if path.IsValid() != doorWasOpen {
			t.Fatalf("search %d: valid=%v, want %v for door open=%v",
				i, path.IsValid(), doorWasOpen, doorWasOpen)
		}
	}
}
