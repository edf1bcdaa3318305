package sim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pekkahe/the-lone-cabin-samples/internal/nav"
	"github.com/pekkahe/the-lone-cabin-samples/internal/world"
	"github.com/pekkahe/the-lone-cabin-samples/logging"
)

// World owns the level, the canonical visibility graph, the search
// pool and every agent, and drives them on a fixed-rate tick loop.
//
// State mutation happens on the loop goroutine only; external callers
// touching agents or doors must do so through the mutex-guarded entry
// points below.
type World struct {
	mu sync.Mutex

	cfg    Config
	level  *world.Level
	shared *nav.SharedGraph
	pool   *nav.Pool
	pub    logging.Publisher
	rng    *rand.Rand

	agents     []*Agent
	agentsByID map[string]*Agent

	playerPos     nav.Vec3
	playerPresent bool

	tick      uint64
	broadcast func([]AgentSnapshot)
}

// NewWorld builds the canonical graph from the level's static waypoint
// set and prepares the search pool. The graph lives until Close.
func NewWorld(cfg Config, level *world.Level, pub logging.Publisher, rng *rand.Rand) *World {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	w := &World{
		cfg:        cfg,
		level:      level,
		shared:     nav.BuildShared(level.Waypoints(), level, pub),
		pool:       nav.NewPool(cfg.SearchWorkers, cfg.SearchBacklog),
		pub:        pub,
		rng:        rng,
		agentsByID: make(map[string]*Agent),
	}
	for _, door := range level.Doors() {
		door.BindGraph(w.shared)
	}
	return w
}

// Level exposes the loaded level, e.g. for door scripting.
func (w *World) Level() *world.Level { return w.level }

// SharedGraph exposes the canonical graph service.
func (w *World) SharedGraph() *nav.SharedGraph { return w.shared }

// SpawnAgent creates an agent at the spawn position with the given
// patrol point set.
func (w *World) SpawnAgent(spawn nav.Vec3, patrolPoints []nav.Vec3) *Agent {
	w.mu.Lock()
	defer w.mu.Unlock()
	agent := newAgent(w, spawn, patrolPoints)
	w.agents = append(w.agents, agent)
	w.agentsByID[agent.ID] = agent
	return agent
}

func (w *World) Agent(id string) *Agent {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.agentsByID[id]
}

// SetPlayerPosition updates the tracked player position.
func (w *World) SetPlayerPosition(pos nav.Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.playerPos = pos
	w.playerPresent = true
}

// ClearPlayer removes the player from the world.
func (w *World) ClearPlayer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.playerPresent = false
}

// EmitNoise notifies every agent within the radius that the player was
// heard at the position.
func (w *World) EmitNoise(pos nav.Vec3, radius float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, agent := range w.agents {
		if agent.Motor().Position().Distance(pos) <= radius {
			agent.Controller().OnPlayerHeard(pos)
		}
	}
}

// HitAgent delivers damage to an agent; a dormant agent wakes.
func (w *World) HitAgent(id string, damage float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if agent, ok := w.agentsByID[id]; ok {
		agent.Controller().OnHit(damage)
	}
}

func (w *World) doorTriggerContains(door *world.Door, pos nav.Vec3) bool {
	return door.TriggerContains(pos, w.cfg.DoorStayRadius)
}

// Step advances the simulation by one frame.
func (w *World) Step(dt float64) {
	w.mu.Lock()
	w.tick++
	for _, agent := range w.agents {
		agent.update(dt)
	}
	snapshot := w.snapshotLocked()
	broadcast := w.broadcast
	w.mu.Unlock()

	if broadcast != nil {
		broadcast(snapshot)
	}
}

// Tick returns the current simulation tick.
func (w *World) Tick() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tick
}

// SetBroadcast installs a per-tick snapshot consumer.
func (w *World) SetBroadcast(fn func([]AgentSnapshot)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.broadcast = fn
}

// Run drives the fixed-rate tick loop until the stop channel closes.
func (w *World) Run(stop <-chan struct{}) {
	tickRate := w.cfg.TickRate
	if tickRate <= 0 {
		tickRate = DefaultConfig().TickRate
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = 1.0 / float64(tickRate)
			}
			last = now
			w.Step(dt)
		}
	}
}

// Close tears down the search pool. The canonical graph is dropped
// with the world.
func (w *World) Close() {
	w.pool.Close()
}

// AgentSnapshot is the per-tick state published to subscribers.
type AgentSnapshot struct {
	ID        string     `json:"id"`
	Position  nav.Vec3   `json:"position"`
	Behaviour string     `json:"behaviour"`
	Dormant   bool       `json:"dormant"`
	Waiting   bool       `json:"waiting"`
	Path      []nav.Vec3 `json:"path,omitempty"`
	Target    *nav.Vec3  `json:"target,omitempty"`
}

// SnapshotAgents copies the current agent state.
func (w *World) SnapshotAgents() []AgentSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *World) snapshotLocked() []AgentSnapshot {
	snapshots := make([]AgentSnapshot, 0, len(w.agents))
	for _, agent := range w.agents {
		snap := AgentSnapshot{
			ID:        agent.ID,
			Position:  agent.Motor().Position(),
			Behaviour: agent.Controller().Kind().String(),
			Dormant:   agent.Controller().IsDormant(),
			Waiting:   agent.Controller().IsWaiting(),
		}
		if path := agent.Finder().CurrentPath(); path.IsValid() {
			target := path.Target()
			snap.Target = &target
			for i := path.Cursor(); i < path.Length(); i++ {
				if wp, ok := path.Waypoint(i); ok {
					snap.Path = append(snap.Path, wp)
				}
			}
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots
}
