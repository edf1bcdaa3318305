package nav

import (
	"context"

	"github.com/pekkahe/the-lone-cabin-samples/logging"
	navlog "github.com/pekkahe/the-lone-cabin-samples/logging/navigation"
)

// SightTester is the line-of-sight capability consumed during graph
// construction and start/goal attachment. Occluded reports whether
// blocking geometry lies between the two points.
type SightTester interface {
	Occluded(from, to Vec3) bool
}

// SightTesterFunc adapts a bare function to SightTester.
type SightTesterFunc func(from, to Vec3) bool

func (f SightTesterFunc) Occluded(from, to Vec3) bool {
	return f(from, to)
}

// SightSnapshotter is an optional SightTester capability. A tester
// whose occluder set mutates on the simulation goroutine (doors
// opening and closing) returns an immutable copy here, so a search
// clone can run sight tests off-thread without reading live state.
type SightSnapshotter interface {
	SightSnapshot() SightTester
}

// Graph is an undirected visibility graph over waypoint nodes. Nodes
// live in an arena indexed by NodeID; adjacency lists preserve
// insertion order so traversal stays deterministic.
//
// The canonical graph must only be mutated from the simulation
// goroutine. Searches never touch it: they run against private copies
// produced by Clone, so no locking is needed for search correctness.
type Graph struct {
	nodes []Node
	edges [][]NodeID
	sight SightTester
	pub   logging.Publisher
}

func NewGraph(sight SightTester, pub logging.Publisher) *Graph {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Graph{
		nodes: make([]Node, 0),
		edges: make([][]NodeID, 0),
		sight: sight,
		pub:   pub,
	}
}

// CanSee applies the two-way visibility policy: the points connect if
// either direction is unobstructed. A waypoint embedded inside a
// boundary collider can still join the graph through the clear
// direction; this is deliberate, keep the OR.
func (g *Graph) CanSee(p1, p2 Vec3) bool {
	if g.sight == nil {
		return true
	}
	return !g.sight.Occluded(p1, p2) || !g.sight.Occluded(p2, p1)
}

// Build assembles the graph from scene waypoints, connecting every
// mutually visible pair with a symmetric edge.
func (g *Graph) Build(waypoints []Waypoint) {
	for _, wp := range waypoints {
		g.Add(wp)
	}
}

// Add appends a waypoint node, re-testing visibility against every
// existing node. Canonical-graph growth only; never call on a search
// copy.
func (g *Graph) Add(wp Waypoint) NodeID {
	id := g.append(wp.ID, wp.Pos)
	for other := NodeID(0); other < id; other++ {
		if g.CanSee(g.nodes[id].Pos, g.nodes[other].Pos) {
			g.addEdge(id, other)
		}
	}
	return id
}

func (g *Graph) append(ext string, pos Vec3) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{ID: id, Ext: ext, Pos: pos, parent: InvalidNode})
	g.edges = append(g.edges, nil)
	return id
}

// Node returns the arena record for a handle, or nil when out of range.
func (g *Graph) Node(id NodeID) *Node {
	if g == nil || id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return &g.nodes[id]
}

// Neighbors returns the nodes visible from the given handle, in edge
// insertion order.
func (g *Graph) Neighbors(id NodeID) []NodeID {
	if g == nil || id < 0 || int(id) >= len(g.edges) {
		return nil
	}
	return g.edges[id]
}

func (g *Graph) NodeCount() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	total := 0
	for _, adj := range g.edges {
		total += len(adj)
	}
	return total / 2
}

// Connect adds a symmetric edge between two nodes. Connecting an edge
// that already exists logs a warning and leaves the graph unchanged.
func (g *Graph) Connect(a, b NodeID) {
	if g.Node(a) == nil || g.Node(b) == nil || a == b {
		return
	}
	if g.hasEdge(a, b) {
		navlog.EdgeExists(context.Background(), g.pub, navlog.EdgePayload{From: int32(a), To: int32(b)})
		return
	}
	g.addEdge(a, b)
}

// Disconnect removes a symmetric edge. Disconnecting an absent edge
// logs a warning and leaves the graph unchanged.
func (g *Graph) Disconnect(a, b NodeID) {
	if g.Node(a) == nil || g.Node(b) == nil || a == b {
		return
	}
	if !g.hasEdge(a, b) {
		navlog.EdgeMissing(context.Background(), g.pub, navlog.EdgePayload{From: int32(a), To: int32(b)})
		return
	}
	g.removeEdge(a, b)
}

func (g *Graph) hasEdge(a, b NodeID) bool {
	for _, n := range g.edges[a] {
		if n == b {
			return true
		}
	}
	return false
}

func (g *Graph) addEdge(a, b NodeID) {
	g.edges[a] = append(g.edges[a], b)
	g.edges[b] = append(g.edges[b], a)
}

func (g *Graph) removeEdge(a, b NodeID) {
	g.edges[a] = removeID(g.edges[a], b)
	g.edges[b] = removeID(g.edges[b], a)
}

func removeID(list []NodeID, id NodeID) []NodeID {
	for i, n := range list {
		if n == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Clone deep-copies the graph for a single search: fresh node records
// with zeroed score state and a verbatim copy of the adjacency lists.
// Handles are preserved, so edges need no remapping. The sight tester
// is snapshotted when it supports that, so later occluder changes on
// the simulation goroutine never reach the clone. Call Clone on the
// simulation goroutine only.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	sight := g.sight
	if snapshotter, ok := sight.(SightSnapshotter); ok {
		sight = snapshotter.SightSnapshot()
	}
	clone := &Graph{
		nodes: make([]Node, len(g.nodes)),
		edges: make([][]NodeID, len(g.edges)),
		sight: sight,
		pub:   logging.NopPublisher(),
	}
	copy(clone.nodes, g.nodes)
	for i := range clone.nodes {
		clone.nodes[i].resetScores()
	}
	for i, adj := range g.edges {
		clone.edges[i] = append([]NodeID(nil), adj...)
	}
	return clone
}

// attachTransient inserts a search-local node (start or goal) and
// connects it to every graph node it is mutually visible with. It
// returns the new handle and whether any connection was made.
func (g *Graph) attachTransient(pos Vec3) (NodeID, bool) {
	id := g.append("", pos)
	connected := false
	for other := NodeID(0); other < id; other++ {
		if g.CanSee(pos, g.nodes[other].Pos) {
			g.addEdge(id, other)
			connected = true
		}
	}
	return id, connected
}
