package sim

import (
	"context"

	"github.com/google/uuid"

	"github.com/pekkahe/the-lone-cabin-samples/internal/ai"
	"github.com/pekkahe/the-lone-cabin-samples/internal/nav"
	behlog "github.com/pekkahe/the-lone-cabin-samples/logging/behaviour"
)

// Agent binds one NPC's motor, pathfinder and decision layer together
// and feeds them sensor events every frame. It is the glue between the
// world and the navigation core: path lifecycle signals and perception
// both flow through it into the controller.
type Agent struct {
	ID string

	world  *World
	motor  *Motor
	finder *nav.PathFinder
	ctrl   *ai.Controller
}

func newAgent(w *World, spawn nav.Vec3, patrolPoints []nav.Vec3) *Agent {
	agent := &Agent{
		ID:    "agent-" + uuid.NewString(),
		world: w,
		motor: NewMotor(spawn, w.cfg.WalkSpeed, w.cfg.RunSpeed),
	}
	agent.finder = nav.NewPathFinder(agent.ID, w.shared, w.pool, w.level, agent, w.pub, w.cfg.PathFinder)
	agent.ctrl = ai.NewController(ai.Deps{
		AgentID:   agent.ID,
		Finder:    agent.finder,
		Motor:     agent.motor,
		Sensor:    agent,
		Attacker:  agent,
		Ray:       w.level,
		Publisher: w.pub,
		RNG:       w.rng,
		Config:    w.cfg.Behaviour,
	}, patrolPoints, w.level.Indoors)
	return agent
}

func (a *Agent) Motor() *Motor { return a.motor }

func (a *Agent) Finder() *nav.PathFinder { return a.finder }

func (a *Agent) Controller() *ai.Controller { return a.ctrl }

// OnPathFound implements nav.PathListener.
func (a *Agent) OnPathFound(path *nav.Path) {
	a.ctrl.OnPathFound(path)
}

// OnPathTraversed implements nav.PathListener.
func (a *Agent) OnPathTraversed() {
	a.ctrl.OnPathTraversed()
}

// PlayerVisible implements the decision layer's sensor capability:
// in range, inside the sight cone, and unoccluded at eye height.
func (a *Agent) PlayerVisible() (nav.Vec3, bool) {
	w := a.world
	if !w.playerPresent {
		return nav.Vec3{}, false
	}
	player := w.playerPos
	eye := a.motor.Position().Add(nav.Vec3{Y: w.cfg.EyeHeight})
	playerEye := player.Add(nav.Vec3{Y: w.cfg.EyeHeight})

	delta := player.Sub(a.motor.Position())
	if delta.Length() > w.cfg.VisionRange {
		return nav.Vec3{}, false
	}
	flat := delta
	flat.Y = 0
	if a.motor.Forward().Dot(flat.Normalized()) < w.cfg.VisionDot {
		return nav.Vec3{}, false
	}
	if w.level.Occluded(eye, playerEye) {
		return nav.Vec3{}, false
	}
	return player, true
}

// Attack implements the decision layer's attacker capability. Combat
// resolution lives outside this module; the strike is published for
// external consumers.
func (a *Agent) Attack(target nav.Vec3) {
	a.motor.LookAt(target)
	behlog.Attack(context.Background(), a.world.pub, a.ID, behlog.AttackPayload{
		TargetX: target.X, TargetY: target.Y, TargetZ: target.Z,
	})
}

// update runs one frame: perception, motor integration, path
// following, then the throttled decision tick.
func (a *Agent) update(dt float64) {
	if pos, visible := a.PlayerVisible(); visible {
		a.ctrl.OnPlayerSeen(pos)
	}
	a.senseDoors()

	a.motor.Step(dt)
	a.finder.Update(a.motor.Position())
	a.ctrl.Tick(dt)
}

// senseDoors fires door-stay events while the agent stands inside a
// door's trigger radius.
func (a *Agent) senseDoors() {
	pos := a.motor.Position()
	for _, door := range a.world.level.Doors() {
		if a.world.doorTriggerContains(door, pos) {
			a.ctrl.OnDoorStay(door)
		}
	}
}
