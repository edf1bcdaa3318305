package ai

import (
	"context"
	"math/rand"

	"github.com/pekkahe/the-lone-cabin-samples/internal/nav"
	"github.com/pekkahe/the-lone-cabin-samples/logging"
	behlog "github.com/pekkahe/the-lone-cabin-samples/logging/behaviour"
)

// Kind tags the active behaviour of an agent.
type Kind uint8

const (
	None Kind = iota
	Patrolling
	Pursuing
	Exploring
)

func (k Kind) String() string {
	switch k {
	case Patrolling:
		return "patrolling"
	case Pursuing:
		return "pursuing"
	case Exploring:
		return "exploring"
	default:
		return "none"
	}
}

// SpeedMode selects the agent's locomotion speed.
type SpeedMode uint8

const (
	SpeedWalk SpeedMode = iota
	SpeedRun
)

// Motor is the movement capability the simulation exposes to the
// decision layer.
type Motor interface {
	MoveTo(pos nav.Vec3)
	Stop()
	Resume()
	LookAt(pos nav.Vec3)
	SetSpeedMode(mode SpeedMode)
	Position() nav.Vec3
	Forward() nav.Vec3
}

// Door is the door capability consumed on door-stay events.
type Door interface {
	ID() string
	IsOpen() bool
	IsClosed() bool
	IsLocked() bool
	IsBeingLocked() bool
	Open() bool
}

// Sensor answers the pursue behaviour's per-tick visibility question.
type Sensor interface {
	PlayerVisible() (nav.Vec3, bool)
}

// Attacker triggers an attack against a visible in-range target.
// Damage bookkeeping lives outside this package.
type Attacker interface {
	Attack(target nav.Vec3)
}

// Behaviour is the strategy contract every concrete behaviour
// implements. Tick runs at the behaviour's declared frequency;
// DoWhileWaiting runs every frame during a transition wait.
type Behaviour interface {
	Kind() Kind
	Frequency() float64
	Begin()
	End()
	Tick(dt float64)
	OnPlayerSeen(pos nav.Vec3)
	OnPlayerHeard(pos nav.Vec3)
	OnPathFound(path *nav.Path)
	OnPathTraversed()
	OnDoorStay(door Door)
	DoWhileWaiting(dt float64)
}

// Config tunes behaviour timing and thresholds. Durations are seconds.
type Config struct {
	TransitionWait    float64
	DormancyThreshold int

	PatrolFrequency  float64
	PursueFrequency  float64
	ExploreFrequency float64

	PatrolCooldown float64

	AttackRange    float64
	PursuitTimeout float64
	// BackcullThreshold is the forward-dot below which a leading
	// waypoint counts as behind the agent and is skipped.
	BackcullThreshold    float64
	BackcullMaxWaypoints int

	ExploreFailureCooldown float64
	ExploreFailureRadius   float64
	HeardSearchCooldown    float64
}

func DefaultConfig() Config {
	return Config{
		TransitionWait:         0.5,
		DormancyThreshold:      5,
		PatrolFrequency:        0.5,
		PursueFrequency:        0.1,
		ExploreFrequency:       0.25,
		PatrolCooldown:         2.0,
		AttackRange:            1.5,
		PursuitTimeout:         12.0,
		BackcullThreshold:      0.1,
		BackcullMaxWaypoints:   3,
		ExploreFailureCooldown: 20.0,
		ExploreFailureRadius:   4.0,
		HeardSearchCooldown:    3.0,
	}
}

// withDefaults fills unset fields from DefaultConfig, so a zero-value
// Config behaves sanely instead of ticking at every frame and going
// dormant on the first failed search.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TransitionWait <= 0 {
		c.TransitionWait = def.TransitionWait
	}
	if c.DormancyThreshold <= 0 {
		c.DormancyThreshold = def.DormancyThreshold
	}
	if c.PatrolFrequency <= 0 {
		c.PatrolFrequency = def.PatrolFrequency
	}
	if c.PursueFrequency <= 0 {
		c.PursueFrequency = def.PursueFrequency
	}
	if c.ExploreFrequency <= 0 {
		c.ExploreFrequency = def.ExploreFrequency
	}
	if c.PatrolCooldown <= 0 {
		c.PatrolCooldown = def.PatrolCooldown
	}
	if c.AttackRange <= 0 {
		c.AttackRange = def.AttackRange
	}
	if c.PursuitTimeout <= 0 {
		c.PursuitTimeout = def.PursuitTimeout
	}
	if c.BackcullThreshold <= 0 {
		c.BackcullThreshold = def.BackcullThreshold
	}
	if c.BackcullMaxWaypoints <= 0 {
		c.BackcullMaxWaypoints = def.BackcullMaxWaypoints
	}
	if c.ExploreFailureCooldown <= 0 {
		c.ExploreFailureCooldown = def.ExploreFailureCooldown
	}
	if c.ExploreFailureRadius <= 0 {
		c.ExploreFailureRadius = def.ExploreFailureRadius
	}
	if c.HeardSearchCooldown <= 0 {
		c.HeardSearchCooldown = def.HeardSearchCooldown
	}
	return c
}

// Deps bundles the explicit collaborators behaviours are built with.
type Deps struct {
	AgentID   string
	Finder    *nav.PathFinder
	Motor     Motor
	Sensor    Sensor
	Attacker  Attacker
	Ray       nav.Raycaster
	Publisher logging.Publisher
	RNG       *rand.Rand
	Config    Config
}

// followCurrentPath steers the motor toward the current waypoint.
// Reports whether there was a path to follow.
func followCurrentPath(deps Deps) bool {
	path := deps.Finder.CurrentPath()
	if !path.IsValid() || path.Length() == 0 {
		return false
	}
	deps.Motor.MoveTo(path.CurrentWaypoint())
	return true
}

// tryOpenDoor opens a door that lies on the untraveled remainder of
// the current route. A refused door is logged.
func tryOpenDoor(deps Deps, door Door) {
	if door == nil || door.IsOpen() {
		return
	}
	path := deps.Finder.CurrentPath()
	if path == nil || !path.IsOnPath(deps.Ray, door.ID()) {
		return
	}
	if !door.Open() {
		behlog.DoorBlocked(context.Background(), deps.Publisher, deps.AgentID, door.ID())
	}
}
