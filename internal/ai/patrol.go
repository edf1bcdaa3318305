package ai

import (
	"github.com/pekkahe/the-lone-cabin-samples/internal/nav"
)

// patrol walks a fixed point set in random order, pausing briefly at
// each point before picking the next.
type patrol struct {
	ctrl   *Controller
	points []nav.Vec3
	last   int
	freq   float64
}

func newPatrol(ctrl *Controller, points []nav.Vec3) *patrol {
	return &patrol{
		ctrl:   ctrl,
		points: points,
		last:   -1,
		freq:   ctrl.deps.Config.PatrolFrequency,
	}
}

func (p *patrol) Kind() Kind { return Patrolling }

func (p *patrol) Frequency() float64 { return p.freq }

func (p *patrol) Begin() {
	p.ctrl.deps.Motor.SetSpeedMode(SpeedWalk)
	p.ctrl.deps.Motor.Resume()
}

func (p *patrol) End() {
	p.freq = p.ctrl.deps.Config.PatrolFrequency
}

func (p *patrol) Tick(dt float64) {
	deps := p.ctrl.deps
	if followCurrentPath(deps) {
		return
	}
	if deps.Finder.IsSearching() || len(p.points) == 0 {
		return
	}
	deps.Finder.FindPathTo(deps.Motor.Position(), p.nextPoint())
}

// nextPoint picks a random patrol point different from the previous
// selection, unless only one point exists.
func (p *patrol) nextPoint() nav.Vec3 {
	if len(p.points) == 1 {
		p.last = 0
		return p.points[0]
	}
	index := p.ctrl.deps.RNG.Intn(len(p.points))
	if index == p.last {
		index = (index + 1) % len(p.points)
	}
	p.last = index
	return p.points[index]
}

func (p *patrol) OnPlayerSeen(pos nav.Vec3) {}

func (p *patrol) OnPlayerHeard(pos nav.Vec3) {}

func (p *patrol) OnPathFound(path *nav.Path) {
	if path.IsValid() {
		p.ctrl.deps.Motor.Resume()
	}
}

func (p *patrol) OnPathTraversed() {
	p.ctrl.deps.Motor.Stop()
	p.ctrl.Wait(p.ctrl.deps.Config.PatrolCooldown)
}

func (p *patrol) OnDoorStay(door Door) {
	tryOpenDoor(p.ctrl.deps, door)
}

func (p *patrol) DoWhileWaiting(dt float64) {}
