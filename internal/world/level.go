package world

import (
	"math"

	"github.com/pekkahe/the-lone-cabin-samples/internal/nav"
)

// Level holds the static geometry and the door set for one loaded
// scene. It implements the sight, raycast, and ground-projection
// capabilities the navigation core consumes.
type Level struct {
	boxes     []Box
	interiors []Box
	waypoints []nav.Waypoint
	doors     []*Door
	doorsByID map[string]*Door
}

func NewLevel(boxes []Box, waypoints []nav.Waypoint) *Level {
	level := &Level{
		waypoints: append([]nav.Waypoint(nil), waypoints...),
		doorsByID: make(map[string]*Door),
	}
	for _, box := range boxes {
		if box.Kind == BoxVolume {
			level.interiors = append(level.interiors, box)
			continue
		}
		level.boxes = append(level.boxes, box)
	}
	return level
}

// Waypoints returns the static scene waypoint set consumed at graph
// build time.
func (l *Level) Waypoints() []nav.Waypoint {
	if l == nil {
		return nil
	}
	return l.waypoints
}

func (l *Level) AddDoor(door *Door) {
	if l == nil || door == nil {
		return
	}
	l.doors = append(l.doors, door)
	l.doorsByID[door.id] = door
}

func (l *Level) Door(id string) *Door {
	if l == nil {
		return nil
	}
	return l.doorsByID[id]
}

func (l *Level) Doors() []*Door {
	if l == nil {
		return nil
	}
	return l.doors
}

// occluderSet is a frozen copy of the level's blocking geometry.
// Search workers read it freely; the live door states it was taken
// from keep changing on the simulation goroutine.
type occluderSet struct {
	boxes []Box
}

func (o occluderSet) Occluded(from, to nav.Vec3) bool {
	for _, box := range o.boxes {
		if t, hit := box.IntersectSegment(from, to); hit && t > 0 {
			return true
		}
	}
	return false
}

// SightSnapshot implements nav.SightSnapshotter: an immutable copy of
// the current occluders (blocking boxes plus shut door panels), taken
// on the simulation goroutine and handed to search clones.
func (l *Level) SightSnapshot() nav.SightTester {
	if l == nil {
		return nil
	}
	set := occluderSet{boxes: make([]Box, 0, len(l.boxes)+len(l.doors))}
	for _, box := range l.boxes {
		if box.Blocks() {
			set.boxes = append(set.boxes, box)
		}
	}
	for _, door := range l.doors {
		if door.blocking() {
			set.boxes = append(set.boxes, door.panel)
		}
	}
	return set
}

// Occluded implements nav.SightTester: true when blocking geometry or
// a shut door panel lies between the points.
func (l *Level) Occluded(from, to nav.Vec3) bool {
	if l == nil {
		return false
	}
	for _, box := range l.boxes {
		if !box.Blocks() {
			continue
		}
		if t, hit := box.IntersectSegment(from, to); hit && t > 0 {
			return true
		}
	}
	for _, door := range l.doors {
		if !door.blocking() {
			continue
		}
		if t, hit := door.panel.IntersectSegment(from, to); hit && t > 0 {
			return true
		}
	}
	return false
}

// FirstHit implements nav.Raycaster: the ID of the nearest blocking
// box or shut door panel along the segment.
func (l *Level) FirstHit(from, to nav.Vec3) (string, bool) {
	if l == nil {
		return "", false
	}
	bestT := math.MaxFloat64
	bestID := ""
	found := false
	consider := func(id string, box Box) {
		t, hit := box.IntersectSegment(from, to)
		if !hit || t <= 0 {
			return
		}
		if t < bestT {
			bestT = t
			bestID = id
			found = true
		}
	}
	for _, box := range l.boxes {
		if box.Blocks() {
			consider(box.ID, box)
		}
	}
	for _, door := range l.doors {
		if door.blocking() {
			consider(door.id, door.panel)
		}
	}
	return bestID, found
}

// Project implements nav.GroundProjector: the nearest floor surface
// directly beneath the position. Positions with no floor below are
// returned unchanged.
func (l *Level) Project(pos nav.Vec3) nav.Vec3 {
	if l == nil {
		return pos
	}
	bestY := math.Inf(-1)
	found := false
	for _, box := range l.boxes {
		if box.Kind != BoxFloor {
			continue
		}
		if pos.X < box.Min.X || pos.X > box.Max.X || pos.Z < box.Min.Z || pos.Z > box.Max.Z {
			continue
		}
		if box.Max.Y > pos.Y {
			continue
		}
		if box.Max.Y > bestY {
			bestY = box.Max.Y
			found = true
		}
	}
	if !found {
		return pos
	}
	return nav.Vec3{X: pos.X, Y: bestY, Z: pos.Z}
}

// Indoors reports whether the position lies inside any interior
// volume. Backs the indoor-pursuit restriction.
func (l *Level) Indoors(pos nav.Vec3) bool {
	if l == nil {
		return false
	}
	for _, volume := range l.interiors {
		if volume.Contains(pos) {
			return true
		}
	}
	return false
}
