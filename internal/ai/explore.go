package ai

import (
	"github.com/pekkahe/the-lone-cabin-samples/internal/nav"
)

type failedSpot struct {
	pos   nav.Vec3
	until float64
}

// explore investigates a single externally supplied position,
// remembering unreachable spots for a cooldown window so it doesn't
// keep hammering the same dead target.
type explore struct {
	ctrl *Controller
	freq float64

	target        nav.Vec3
	started       bool
	lastRequested nav.Vec3

	elapsed    float64
	heardReady float64
	failed     []failedSpot
}

func newExplore(ctrl *Controller, target nav.Vec3) *explore {
	return &explore{
		ctrl:   ctrl,
		freq:   ctrl.deps.Config.ExploreFrequency,
		target: target,
	}
}

func (e *explore) Kind() Kind { return Exploring }

func (e *explore) Frequency() float64 { return e.freq }

func (e *explore) Begin() {
	e.ctrl.deps.Motor.SetSpeedMode(SpeedWalk)
	e.ctrl.deps.Motor.Resume()
}

func (e *explore) End() {
	e.freq = e.ctrl.deps.Config.ExploreFrequency
}

func (e *explore) Tick(dt float64) {
	e.elapsed += dt
	e.pruneFailed()

	deps := e.ctrl.deps
	if !e.started {
		e.started = true
		if e.suppressed(e.target) {
			e.ctrl.Patrol()
			return
		}
		e.lastRequested = e.target
		deps.Finder.FindPathTo(deps.Motor.Position(), e.target)
		return
	}
	followCurrentPath(deps)
}

func (e *explore) pruneFailed() {
	kept := e.failed[:0]
	for _, spot := range e.failed {
		if e.elapsed < spot.until {
			kept = append(kept, spot)
		}
	}
	e.failed = kept
}

// suppressed reports whether the position sits inside the cooldown
// radius of a recently failed target.
func (e *explore) suppressed(pos nav.Vec3) bool {
	for _, spot := range e.failed {
		if spot.pos.Distance(pos) <= e.ctrl.deps.Config.ExploreFailureRadius {
			return true
		}
	}
	return false
}

func (e *explore) OnPlayerSeen(pos nav.Vec3) {}

// OnPlayerHeard re-searches toward a fresh noise, bounded by a
// cooldown so a noisy player doesn't spam searches.
func (e *explore) OnPlayerHeard(pos nav.Vec3) {
	if e.elapsed < e.heardReady || e.suppressed(pos) {
		return
	}
	deps := e.ctrl.deps
	if deps.Finder.IsSearching() {
		return
	}
	e.heardReady = e.elapsed + deps.Config.HeardSearchCooldown
	e.lastRequested = pos
	deps.Finder.FindPathTo(deps.Motor.Position(), pos)
}

// OnPathFound remembers an unreachable target and falls back to
// patrol.
func (e *explore) OnPathFound(path *nav.Path) {
	if path.IsValid() {
		return
	}
	e.failed = append(e.failed, failedSpot{
		pos:   e.lastRequested,
		until: e.elapsed + e.ctrl.deps.Config.ExploreFailureCooldown,
	})
	e.ctrl.Patrol()
}

func (e *explore) OnPathTraversed() {
	e.ctrl.Patrol()
}

func (e *explore) OnDoorStay(door Door) {
	tryOpenDoor(e.ctrl.deps, door)
}

func (e *explore) DoWhileWaiting(dt float64) {
	e.elapsed += dt
}
