package nav

import (
	"context"

	"github.com/pekkahe/the-lone-cabin-samples/logging"
	navlog "github.com/pekkahe/the-lone-cabin-samples/logging/navigation"
)

// PathListener receives path lifecycle signals on the simulation
// goroutine, once per tick at most.
type PathListener interface {
	OnPathFound(path *Path)
	OnPathTraversed()
}

// PathFinderConfig tunes per-agent path handling.
type PathFinderConfig struct {
	// ReachThreshold is the distance at which a waypoint counts as reached.
	ReachThreshold float64
	// VerticalOffset lifts search endpoints above ground so visibility
	// tests don't graze the floor.
	VerticalOffset float64
	// HistoryCapacity bounds the ring of remembered completed paths.
	HistoryCapacity int
	// TargetTolerance is the per-axis tolerance for matching a history
	// entry's target.
	TargetTolerance float64
}

func DefaultPathFinderConfig() PathFinderConfig {
	return PathFinderConfig{
		ReachThreshold:  0.75,
		VerticalOffset:  1.0,
		HistoryCapacity: 3,
		TargetTolerance: 0.05,
	}
}

// PathFinder owns one agent's routing: at most one in-flight search,
// the current path, and a most-recent-first ring of completed paths.
// All methods run on the simulation goroutine.
type PathFinder struct {
	agentID  string
	shared   *SharedGraph
	pool     *Pool
	ground   GroundProjector
	listener PathListener
	pub      logging.Publisher
	cfg      PathFinderConfig

	current       *Path
	search        *Search
	history       []*Path
	invalidStreak int
}

func NewPathFinder(agentID string, shared *SharedGraph, pool *Pool, ground GroundProjector, listener PathListener, pub logging.Publisher, cfg PathFinderConfig) *PathFinder {
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = DefaultPathFinderConfig().HistoryCapacity
	}
	if cfg.ReachThreshold <= 0 {
		cfg.ReachThreshold = DefaultPathFinderConfig().ReachThreshold
	}
	if cfg.TargetTolerance <= 0 {
		cfg.TargetTolerance = DefaultPathFinderConfig().TargetTolerance
	}
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &PathFinder{
		agentID:  agentID,
		shared:   shared,
		pool:     pool,
		ground:   ground,
		listener: listener,
		pub:      pub,
		cfg:      cfg,
		history:  make([]*Path, 0, cfg.HistoryCapacity),
	}
}

// FindPathTo starts a background search from the agent's position to
// the target. Any in-flight search for this agent is aborted first. A
// zero target is a caller bug: logged and dropped, nothing changes.
func (f *PathFinder) FindPathTo(from, target Vec3) {
	if f == nil {
		return
	}
	if target.IsZero() {
		navlog.DegenerateTarget(context.Background(), f.pub, f.agentID)
		return
	}
	f.abortSearch()

	offset := Vec3{Y: f.cfg.VerticalOffset}
	start := from.Add(offset)
	goal := target.Add(offset)

	f.search = NewSearch(f.shared.GetCopy(), start, goal, f.ground)
	f.pool.Submit(f.search)
	navlog.SearchStarted(context.Background(), f.pub, f.agentID, navlog.SearchPayload{
		TargetX: goal.X, TargetY: goal.Y, TargetZ: goal.Z,
	})
}

// ClearPath aborts any in-flight search and drops the current path.
func (f *PathFinder) ClearPath() {
	if f == nil {
		return
	}
	f.abortSearch()
	f.current = nil
}

func (f *PathFinder) abortSearch() {
	if f.search != nil {
		f.search.Abort()
		f.search = nil
	}
}

// Update is called once per tick with the agent's position. It
// consumes a completed search and advances the waypoint cursor when
// the agent is within reach.
func (f *PathFinder) Update(pos Vec3) {
	if f == nil {
		return
	}
	f.consumeSearch()

	path := f.current
	if path == nil || !path.IsValid() || path.Length() == 0 {
		return
	}
	if pos.Distance(path.CurrentWaypoint()) > f.cfg.ReachThreshold {
		return
	}
	if path.IsTraversed() {
		f.current = nil
		navlog.PathTraversed(context.Background(), f.pub, f.agentID)
		if f.listener != nil {
			f.listener.OnPathTraversed()
		}
		return
	}
	path.MoveToNextWaypoint()
}

func (f *PathFinder) consumeSearch() {
	if f.search == nil || !f.search.IsDone() {
		return
	}
	path, ok := f.search.Result()
	f.search = nil
	if !ok {
		return
	}
	f.record(path)
	f.current = path
	if f.listener != nil {
		f.listener.OnPathFound(path)
	}
}

func (f *PathFinder) record(path *Path) {
	f.history = append([]*Path{path}, f.history...)
	if len(f.history) > f.cfg.HistoryCapacity {
		f.history = f.history[:f.cfg.HistoryCapacity]
	}
	target := path.Target()
	payload := navlog.SearchPayload{
		TargetX: target.X, TargetY: target.Y, TargetZ: target.Z,
		Length: path.Length(),
	}
	if path.IsValid() {
		f.invalidStreak = 0
		navlog.SearchCompleted(context.Background(), f.pub, f.agentID, payload)
	} else {
		f.invalidStreak++
		navlog.SearchFailed(context.Background(), f.pub, f.agentID, payload, f.invalidStreak)
	}
}

// HasSearchedTarget reports whether a remembered path was valid, fully
// traversed, and aimed at the given position. The position gets the
// same vertical offset a search request would apply, so callers pass
// raw world targets.
func (f *PathFinder) HasSearchedTarget(target Vec3) bool {
	if f == nil {
		return false
	}
	goal := target.Add(Vec3{Y: f.cfg.VerticalOffset})
	for _, path := range f.history {
		if path.IsValid() && path.IsTraversed() && path.Target().ApproxEqual(goal, f.cfg.TargetTolerance) {
			return true
		}
	}
	return false
}

// CurrentPath returns the path being followed, or nil.
func (f *PathFinder) CurrentPath() *Path {
	if f == nil {
		return nil
	}
	return f.current
}

// IsSearching reports whether a search is in flight or completed but
// not yet consumed.
func (f *PathFinder) IsSearching() bool {
	return f != nil && f.search != nil
}

// InvalidStreak is the count of consecutive failed searches.
func (f *PathFinder) InvalidStreak() int {
	if f == nil {
		return 0
	}
	return f.invalidStreak
}

// ResetStreak zeroes the failure streak so a woken agent gets a fresh
// run of search attempts.
func (f *PathFinder) ResetStreak() {
	if f == nil {
		return
	}
	f.invalidStreak = 0
}

// History returns the remembered paths, most recent first.
func (f *PathFinder) History() []*Path {
	if f == nil {
		return nil
	}
	return append([]*Path(nil), f.history...)
}
