package ai

import (
	"github.com/pekkahe/the-lone-cabin-samples/internal/nav"
)

// pursue hunts the player from remembered sighting and noise
// positions, attacking when the target is visible and in range.
type pursue struct {
	ctrl *Controller
	freq float64

	lastSeen  nav.Vec3
	hasSeen   bool
	lastHeard nav.Vec3
	hasHeard  bool
	sinceSeen float64
}

func newPursue(ctrl *Controller) *pursue {
	return &pursue{ctrl: ctrl, freq: ctrl.deps.Config.PursueFrequency}
}

func (p *pursue) Kind() Kind { return Pursuing }

func (p *pursue) Frequency() float64 { return p.freq }

func (p *pursue) Begin() {
	p.ctrl.deps.Motor.SetSpeedMode(SpeedRun)
	p.ctrl.deps.Motor.Resume()
}

func (p *pursue) End() {
	p.ctrl.deps.Motor.SetSpeedMode(SpeedWalk)
	p.freq = p.ctrl.deps.Config.PursueFrequency
}

func (p *pursue) Tick(dt float64) {
	deps := p.ctrl.deps
	p.sinceSeen += dt

	if pos, visible := deps.Sensor.PlayerVisible(); visible {
		p.lastSeen = pos
		p.hasSeen = true
		p.sinceSeen = 0
		deps.Motor.LookAt(pos)
		if deps.Motor.Position().Distance(pos) <= deps.Config.AttackRange {
			deps.Motor.Stop()
			deps.Attacker.Attack(pos)
			return
		}
	}

	if p.sinceSeen > deps.Config.PursuitTimeout {
		p.ctrl.Patrol()
		return
	}
	if followCurrentPath(deps) {
		return
	}
	if deps.Finder.IsSearching() {
		return
	}

	// Sightings outrank noises. Once both remembered positions have
	// been searched without result, give up and go back to patrol.
	if p.hasSeen && !deps.Finder.HasSearchedTarget(p.lastSeen) {
		deps.Finder.FindPathTo(deps.Motor.Position(), p.lastSeen)
		return
	}
	if p.hasHeard && !deps.Finder.HasSearchedTarget(p.lastHeard) {
		deps.Finder.FindPathTo(deps.Motor.Position(), p.lastHeard)
		return
	}
	p.ctrl.Patrol()
}

func (p *pursue) OnPlayerSeen(pos nav.Vec3) {
	p.lastSeen = pos
	p.hasSeen = true
	p.sinceSeen = 0
}

func (p *pursue) OnPlayerHeard(pos nav.Vec3) {
	p.lastHeard = pos
	p.hasHeard = true
}

// OnPathFound skips the leading waypoints that sit behind the agent's
// facing so a fresh route doesn't start with a backtrack.
func (p *pursue) OnPathFound(path *nav.Path) {
	if !path.IsValid() {
		return
	}
	deps := p.ctrl.deps
	pos := deps.Motor.Position()
	forward := deps.Motor.Forward()
	for i := 0; i < deps.Config.BackcullMaxWaypoints && !path.IsTraversed(); i++ {
		direction := path.CurrentWaypoint().Sub(pos).Normalized()
		if forward.Dot(direction) >= deps.Config.BackcullThreshold {
			break
		}
		path.MoveToNextWaypoint()
	}
}

func (p *pursue) OnPathTraversed() {}

// OnDoorStay treats a locked door as a dead end and detours toward the
// last-heard position; anything shut but unlockable gets opened.
func (p *pursue) OnDoorStay(door Door) {
	deps := p.ctrl.deps
	if door.IsLocked() {
		if p.hasHeard {
			deps.Finder.FindPathTo(deps.Motor.Position(), p.lastHeard)
		}
		return
	}
	tryOpenDoor(deps, door)
}

func (p *pursue) DoWhileWaiting(dt float64) {
	if p.hasSeen {
		p.ctrl.deps.Motor.LookAt(p.lastSeen)
	}
}
