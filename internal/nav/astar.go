package nav

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
)

const coincidentEpsilon = 1e-6

// Search runs A* over a private graph clone on a background worker.
// The caller polls IsDone once per tick and consumes the result with
// Result; nothing calls back into shared state from the worker.
//
// Abort is safe at any time. Aborting after completion but before the
// result is consumed discards the result.
type Search struct {
	graph  *Graph
	start  Vec3
	goal   Vec3
	ground GroundProjector

	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	done    atomic.Bool
	aborted atomic.Bool

	mu     sync.Mutex
	result *Path
}

// NewSearch prepares a search over the given clone. The clone must be
// private to this search; Run mutates its node scores and appends
// transient start/goal nodes.
func NewSearch(graph *Graph, start, goal Vec3, ground GroundProjector) *Search {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Search{
		graph:  graph,
		start:  start,
		goal:   goal,
		ground: ground,
		ctx:    ctx,
		cancel: cancel,
	}
	s.running.Store(true)
	return s
}

// Run executes the search to completion. Called once, from a pool
// worker.
func (s *Search) Run() {
	path := s.compute()
	s.mu.Lock()
	s.result = path
	s.mu.Unlock()
	s.done.Store(true)
	s.running.Store(false)
}

func (s *Search) IsRunning() bool {
	return s != nil && s.running.Load()
}

func (s *Search) IsDone() bool {
	return s != nil && s.done.Load()
}

// Abort cancels the search. A search already finished keeps running to
// nowhere: its unconsumed result is discarded instead.
func (s *Search) Abort() {
	if s == nil {
		return
	}
	s.aborted.Store(true)
	s.cancel()
}

// Result returns the completed path. It reports false while the search
// is still running and after an abort.
func (s *Search) Result() (*Path, bool) {
	if s == nil || !s.done.Load() || s.aborted.Load() {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, false
	}
	return s.result, true
}

// openEntry orders the frontier by ascending F, breaking ties on lower
// H and then earlier insertion so results are reproducible.
type openEntry struct {
	id    NodeID
	f     float64
	h     float64
	seq   int
	index int
}

type openQueue []*openEntry

func (q openQueue) Len() int { return len(q) }

func (q openQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].h != q[j].h {
		return q[i].h < q[j].h
	}
	return q[i].seq < q[j].seq
}

func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *openQueue) Push(x any) {
	entry := x.(*openEntry)
	entry.index = len(*q)
	*q = append(*q, entry)
}

func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*q = old[:n-1]
	return entry
}

// compute attaches transient start/goal nodes and runs A*. An
// unreachable goal exhausts the open set and yields an invalid path;
// a cancelled context yields nil.
func (s *Search) compute() *Path {
	if s.graph == nil || s.ctx.Err() != nil {
		return nil
	}

	goalID, goalVisible := s.graph.attachTransient(s.goal)
	startID, startVisible := s.graph.attachTransient(s.start)
	if !goalVisible || !startVisible {
		return s.failedPath()
	}

	open := &openQueue{}
	heap.Init(open)
	seq := 0

	count := s.graph.NodeCount()
	scored := make([]bool, count)
	closed := make([]bool, count)

	startNode := s.graph.Node(startID)
	startNode.hScore = s.start.Distance(s.goal)
	scored[startID] = true
	heap.Push(open, &openEntry{id: startID, f: startNode.hScore, h: startNode.hScore, seq: seq})
	seq++

	for open.Len() > 0 {
		if s.ctx.Err() != nil {
			return nil
		}
		current := heap.Pop(open).(*openEntry)
		if closed[current.id] {
			continue
		}
		closed[current.id] = true
		if current.id == goalID {
			return s.reconstruct(startID, goalID)
		}

		node := s.graph.Node(current.id)
		for _, neighborID := range s.graph.Neighbors(current.id) {
			if closed[neighborID] {
				continue
			}
			neighbor := s.graph.Node(neighborID)
			tentative := node.gScore + node.Pos.Distance(neighbor.Pos)
			if scored[neighborID] && tentative >= neighbor.gScore {
				continue
			}
			neighbor.gScore = tentative
			neighbor.hScore = neighbor.Pos.Distance(s.goal)
			neighbor.parent = current.id
			scored[neighborID] = true
			heap.Push(open, &openEntry{
				id:  neighborID,
				f:   neighbor.FScore(),
				h:   neighbor.hScore,
				seq: seq,
			})
			seq++
		}
	}
	return s.failedPath()
}

func (s *Search) failedPath() *Path {
	return NewPath(nil, s.goal, false, 0, s.ground)
}

func (s *Search) reconstruct(startID, goalID NodeID) *Path {
	chain := make([]NodeID, 0)
	for id := goalID; id != InvalidNode; id = s.graph.Node(id).parent {
		chain = append(chain, id)
		if id == startID {
			break
		}
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	// Skip the start node and fold waypoints that coincide, e.g. a
	// transient goal sitting exactly on a graph node.
	waypoints := make([]Vec3, 0, len(chain))
	for _, id := range chain[1:] {
		pos := s.graph.Node(id).Pos
		if n := len(waypoints); n > 0 && waypoints[n-1].ApproxEqual(pos, coincidentEpsilon) {
			continue
		}
		waypoints = append(waypoints, pos)
	}
	cost := s.graph.Node(goalID).gScore
	return NewPath(waypoints, s.goal, true, cost, s.ground)
}
