package world

import (
	"github.com/pekkahe/the-lone-cabin-samples/internal/nav"
)

// DoorState tracks the door's physical and lock state.
type DoorState uint8

const (
	DoorOpen DoorState = iota
	DoorClosed
	DoorLocked
	// DoorLocking is a door mid-way through being locked; it refuses
	// to open like a locked one.
	DoorLocking
)

// Door is a passage whose panel occludes sight while shut and whose
// state changes rewire the canonical visibility graph through the
// linked waypoint pairs. State changes must happen on the simulation
// goroutine, same as any canonical-graph mutation.
type Door struct {
	id     string
	state  DoorState
	panel  Box
	links  []nav.WaypointPair
	shared *nav.SharedGraph
}

// NewDoor creates a door over the given panel geometry. The links name
// the waypoints on either side of the passage in the canonical graph.
func NewDoor(id string, panel Box, links []nav.WaypointPair, state DoorState) *Door {
	panel.ID = id
	return &Door{id: id, state: state, panel: panel, links: links}
}

// BindGraph attaches the canonical graph service the door rewires on
// state changes. Called once at level load, after the graph is built.
func (d *Door) BindGraph(shared *nav.SharedGraph) {
	d.shared = shared
}

func (d *Door) ID() string { return d.id }

func (d *Door) IsOpen() bool { return d.state == DoorOpen }

func (d *Door) IsClosed() bool { return d.state == DoorClosed }

func (d *Door) IsLocked() bool { return d.state == DoorLocked }

func (d *Door) IsBeingLocked() bool { return d.state == DoorLocking }

// State returns the raw door state.
func (d *Door) State() DoorState { return d.state }

// blocking reports whether the panel occludes sight lines.
func (d *Door) blocking() bool { return d.state != DoorOpen }

// TriggerContains reports whether the position lies within radius of
// the door panel; used for door-stay sensing.
func (d *Door) TriggerContains(pos nav.Vec3, radius float64) bool {
	margin := nav.Vec3{X: radius, Y: radius, Z: radius}
	expanded := Box{Min: d.panel.Min.Sub(margin), Max: d.panel.Max.Add(margin)}
	return expanded.Contains(pos)
}

// Open swings the door open and reconnects the linked waypoints.
// Locked and locking doors refuse.
func (d *Door) Open() bool {
	switch d.state {
	case DoorLocked, DoorLocking:
		return false
	case DoorOpen:
		return true
	}
	d.state = DoorOpen
	if d.shared != nil {
		d.shared.ConnectWaypoints(d.links)
	}
	return true
}

// Close shuts the door and severs the linked waypoint edges.
func (d *Door) Close() {
	if d.state != DoorOpen {
		return
	}
	d.state = DoorClosed
	if d.shared != nil {
		d.shared.DisconnectWaypoints(d.links)
	}
}

// BeginLock marks the door as being locked; it keeps occluding and
// refuses Open until Lock or Unlock completes the transition.
func (d *Door) BeginLock() {
	if d.state == DoorOpen {
		d.Close()
	}
	d.state = DoorLocking
}

// Lock finishes locking the door.
func (d *Door) Lock() {
	if d.state == DoorOpen {
		d.Close()
	}
	d.state = DoorLocked
}

// Unlock returns a locked or locking door to the closed state.
func (d *Door) Unlock() {
	if d.state == DoorLocked || d.state == DoorLocking {
		d.state = DoorClosed
	}
}
