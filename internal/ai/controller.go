package ai

import (
	"context"

	"github.com/pekkahe/the-lone-cabin-samples/internal/nav"
	behlog "github.com/pekkahe/the-lone-cabin-samples/logging/behaviour"
)

// Controller is the per-agent finite-state decision layer. It selects
// among behaviour strategies, throttles their ticks, models reaction
// delay with a transition wait, and suspends the agent entirely when
// searches keep failing.
//
// All methods run on the simulation goroutine, once per frame.
type Controller struct {
	deps         Deps
	indoors      func(pos nav.Vec3) bool
	patrolPoints []nav.Vec3

	active  Behaviour
	kind    Kind
	dormant bool
	wait    float64
	accum   float64
}

// NewController builds a controller in the initial state: no
// behaviour, active, ticking. The indoors query backs the
// indoor-pursuit restriction and may be nil.
func NewController(deps Deps, patrolPoints []nav.Vec3, indoors func(pos nav.Vec3) bool) *Controller {
	deps.Config = deps.Config.withDefaults()
	return &Controller{
		deps:         deps,
		indoors:      indoors,
		patrolPoints: append([]nav.Vec3(nil), patrolPoints...),
	}
}

func (c *Controller) Kind() Kind {
	if c == nil {
		return None
	}
	return c.kind
}

func (c *Controller) IsDormant() bool {
	return c != nil && c.dormant
}

// IsWaiting reports whether the controller sits in a transition wait.
func (c *Controller) IsWaiting() bool {
	return c != nil && c.wait > 0
}

// Patrol switches the agent to patrolling its fixed point set.
func (c *Controller) Patrol() {
	if c == nil || c.kind == Patrolling {
		return
	}
	c.change(newPatrol(c, c.patrolPoints))
}

// Pursue switches the agent to hunting the player.
func (c *Controller) Pursue() {
	if c == nil || c.kind == Pursuing {
		return
	}
	c.change(newPursue(c))
}

// Explore sends the agent to investigate a single position.
func (c *Controller) Explore(target nav.Vec3) {
	if c == nil || c.kind == Exploring {
		return
	}
	c.change(newExplore(c, target))
}

// change ends the current behaviour, stops motion, activates the next
// behaviour and enters the fixed transition wait. Requesting the
// already-active behaviour never reaches here; that is a no-op that
// keeps the wait untouched.
func (c *Controller) change(next Behaviour) {
	previous := c.kind
	if c.active != nil {
		c.active.End()
	}
	c.deps.Motor.Stop()
	c.active = next
	c.kind = next.Kind()
	next.Begin()
	c.wait = c.deps.Config.TransitionWait
	c.accum = 0
	behlog.Changed(context.Background(), c.deps.Publisher, c.deps.AgentID, behlog.ChangedPayload{
		From: previous.String(),
		To:   c.kind.String(),
	})
}

// Wait suspends ticking for the given duration; the active behaviour's
// DoWhileWaiting hook still runs every frame.
func (c *Controller) Wait(seconds float64) {
	if c == nil || seconds <= 0 {
		return
	}
	if seconds > c.wait {
		c.wait = seconds
	}
}

// Tick advances the decision layer by one frame.
func (c *Controller) Tick(dt float64) {
	if c == nil || c.dormant {
		return
	}
	if c.deps.Finder.InvalidStreak() >= c.deps.Config.DormancyThreshold {
		c.enterDormancy()
		return
	}
	if c.wait > 0 {
		c.wait -= dt
		if c.active != nil {
			c.active.DoWhileWaiting(dt)
		}
		return
	}
	if c.active == nil {
		return
	}
	c.accum += dt
	if c.accum < c.active.Frequency() {
		return
	}
	elapsed := c.accum
	c.accum = 0
	c.active.Tick(elapsed)
}

func (c *Controller) enterDormancy() {
	c.dormant = true
	c.deps.Motor.Stop()
	c.deps.Finder.ClearPath()
	behlog.Dormant(context.Background(), c.deps.Publisher, c.deps.AgentID, c.deps.Finder.InvalidStreak())
}

// Wake clears dormancy on an external signal.
func (c *Controller) Wake(reason string) {
	if c == nil || !c.dormant {
		return
	}
	c.dormant = false
	c.deps.Finder.ResetStreak()
	c.deps.Motor.Resume()
	behlog.Woken(context.Background(), c.deps.Publisher, c.deps.AgentID, reason)
}

// OnPathFound forwards a completed search to the active behaviour.
func (c *Controller) OnPathFound(path *nav.Path) {
	if c == nil || c.dormant || c.active == nil {
		return
	}
	c.active.OnPathFound(path)
}

// OnPathTraversed forwards route completion to the active behaviour.
func (c *Controller) OnPathTraversed() {
	if c == nil || c.dormant || c.active == nil {
		return
	}
	c.active.OnPathTraversed()
}

// OnPlayerSeen wakes a dormant agent and applies the direct pursuit
// policy before forwarding: any sighting switches to pursuit unless
// the agent stands outside and the target is indoors.
func (c *Controller) OnPlayerSeen(pos nav.Vec3) {
	if c == nil {
		return
	}
	c.Wake("player_seen")
	if c.kind != Pursuing && c.pursuitAllowed(pos) {
		c.Pursue()
	}
	if c.active != nil {
		c.active.OnPlayerSeen(pos)
	}
}

func (c *Controller) pursuitAllowed(target nav.Vec3) bool {
	if c.indoors == nil {
		return true
	}
	if !c.indoors(c.deps.Motor.Position()) && c.indoors(target) {
		return false
	}
	return true
}

// OnPlayerHeard forwards a noise position to the active behaviour.
func (c *Controller) OnPlayerHeard(pos nav.Vec3) {
	if c == nil || c.dormant || c.active == nil {
		return
	}
	c.active.OnPlayerHeard(pos)
}

// OnDoorStay forwards a door contact to the active behaviour.
func (c *Controller) OnDoorStay(door Door) {
	if c == nil || c.dormant || c.active == nil {
		return
	}
	c.active.OnDoorStay(door)
}

// OnHit wakes a dormant agent; damage bookkeeping happens elsewhere.
func (c *Controller) OnHit(damage float64) {
	if c == nil {
		return
	}
	c.Wake("hit")
}
