package nav

// GroundProjector maps a raw waypoint position to the nearest walkable
// surface point beneath it.
type GroundProjector interface {
	Project(pos Vec3) Vec3
}

// GroundProjectorFunc adapts a bare function to GroundProjector.
type GroundProjectorFunc func(pos Vec3) Vec3

func (f GroundProjectorFunc) Project(pos Vec3) Vec3 {
	return f(pos)
}

// Raycaster reports the first entity hit by a line test, used to check
// whether an obstacle actually lies on the remaining route.
type Raycaster interface {
	FirstHit(from, to Vec3) (string, bool)
}

type pathPoint struct {
	raw    Vec3
	ground *Vec3 // lazily projected, cached
}

// Path is the cursor-tracked result of one search. The waypoint
// sequence is fixed at construction; only the cursor moves, and only
// forward. An invalid Path records a target no route was found to.
type Path struct {
	points []pathPoint
	target Vec3
	valid  bool
	cost   float64
	cursor int
	ground GroundProjector
}

// NewPath builds a path over raw waypoint positions toward the target
// the search was asked for. The target may differ from the final
// waypoint when the search failed.
func NewPath(waypoints []Vec3, target Vec3, valid bool, cost float64, ground GroundProjector) *Path {
	points := make([]pathPoint, len(waypoints))
	for i, wp := range waypoints {
		points[i] = pathPoint{raw: wp}
	}
	return &Path{points: points, target: target, valid: valid, cost: cost, ground: ground}
}

func (p *Path) IsValid() bool {
	return p != nil && p.valid
}

// Target is the originally requested destination.
func (p *Path) Target() Vec3 {
	if p == nil {
		return Vec3{}
	}
	return p.target
}

// Cost is the summed edge cost from the search start to the final
// waypoint. Zero for failed searches.
func (p *Path) Cost() float64 {
	if p == nil {
		return 0
	}
	return p.cost
}

func (p *Path) Length() int {
	if p == nil {
		return 0
	}
	return len(p.points)
}

func (p *Path) Cursor() int {
	if p == nil {
		return 0
	}
	return p.cursor
}

// MoveToNextWaypoint advances the cursor by one, capped at the last
// index. Calls past the end are no-ops.
func (p *Path) MoveToNextWaypoint() {
	if p == nil || len(p.points) == 0 {
		return
	}
	if p.cursor < len(p.points)-1 {
		p.cursor++
	}
}

// IsTraversed reports whether the cursor sits on the last waypoint.
// An empty path counts as traversed.
func (p *Path) IsTraversed() bool {
	if p == nil || len(p.points) == 0 {
		return true
	}
	return p.cursor == len(p.points)-1
}

// CurrentWaypoint returns the ground-projected position of the
// waypoint under the cursor. Projection happens on first access and is
// cached per waypoint.
func (p *Path) CurrentWaypoint() Vec3 {
	if p == nil {
		return Vec3{}
	}
	if len(p.points) == 0 {
		return p.projected(&pathPoint{raw: p.target})
	}
	return p.projected(&p.points[p.cursor])
}

// Waypoint returns the raw position at the given index.
func (p *Path) Waypoint(i int) (Vec3, bool) {
	if p == nil || i < 0 || i >= len(p.points) {
		return Vec3{}, false
	}
	return p.points[i].raw, true
}

func (p *Path) projected(point *pathPoint) Vec3 {
	if point.ground != nil {
		return *point.ground
	}
	pos := point.raw
	if p.ground != nil {
		pos = p.ground.Project(pos)
	}
	point.ground = &pos
	return pos
}

// IsOnPath reports whether the given entity is the first thing hit on
// any segment of the untraveled remainder of the route. The scan
// starts one waypoint behind the cursor so the segment currently being
// walked is included.
func (p *Path) IsOnPath(ray Raycaster, entityID string) bool {
	if p == nil || ray == nil || len(p.points) < 2 {
		return false
	}
	start := p.cursor - 1
	if start < 0 {
		start = 0
	}
	for i := start; i < len(p.points)-1; i++ {
		hit, ok := ray.FirstHit(p.points[i].raw, p.points[i+1].raw)
		if ok && hit == entityID {
			return true
		}
	}
	return false
}
