package nav

import (
	"context"

	"github.com/pekkahe/the-lone-cabin-samples/logging"
	navlog "github.com/pekkahe/the-lone-cabin-samples/logging/navigation"
)

// SharedGraph owns the canonical visibility graph for a loaded level.
// It is built once from the scene's static waypoint set and torn down
// with the level. Searches never see it directly: GetCopy hands out an
// independent clone per request.
//
// All mutation (ConnectWaypoints, DisconnectWaypoints, AddWaypoint)
// must happen on the simulation goroutine. This is a usage contract,
// not a runtime check.
type SharedGraph struct {
	graph *Graph
	byExt map[string]NodeID
	pub   logging.Publisher
}

// BuildShared constructs the canonical graph from scene waypoints.
func BuildShared(waypoints []Waypoint, sight SightTester, pub logging.Publisher) *SharedGraph {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	graph := NewGraph(sight, pub)
	graph.Build(waypoints)
	byExt := make(map[string]NodeID, len(waypoints))
	for id := NodeID(0); int(id) < graph.NodeCount(); id++ {
		if ext := graph.Node(id).Ext; ext != "" {
			byExt[ext] = id
		}
	}
	navlog.GraphBuilt(context.Background(), pub, navlog.GraphBuiltPayload{
		Nodes: graph.NodeCount(),
		Edges: graph.EdgeCount(),
	})
	return &SharedGraph{graph: graph, byExt: byExt, pub: pub}
}

// GetCopy returns an independent clone safe for one search.
func (s *SharedGraph) GetCopy() *Graph {
	if s == nil {
		return nil
	}
	return s.graph.Clone()
}

// Graph exposes the canonical graph for inspection. Callers must not
// hand it to a search.
func (s *SharedGraph) Graph() *Graph {
	if s == nil {
		return nil
	}
	return s.graph
}

// AddWaypoint grows the canonical graph with a new scene waypoint.
func (s *SharedGraph) AddWaypoint(wp Waypoint) {
	if s == nil {
		return
	}
	id := s.graph.Add(wp)
	if wp.ID != "" {
		s.byExt[wp.ID] = id
	}
}

// Resolve maps an external waypoint ID to its graph handle.
func (s *SharedGraph) Resolve(ext string) (NodeID, bool) {
	if s == nil {
		return InvalidNode, false
	}
	id, ok := s.byExt[ext]
	return id, ok
}

// WaypointPair names two external waypoints whose edge should change,
// e.g. the passage nodes on either side of a door.
type WaypointPair struct {
	A string
	B string
}

// ConnectWaypoints adds edges for every resolvable pair. Unknown IDs
// are logged and skipped, never fatal.
func (s *SharedGraph) ConnectWaypoints(pairs []WaypointPair) {
	s.mutatePairs(pairs, s.graph.Connect)
}

// DisconnectWaypoints removes edges for every resolvable pair.
func (s *SharedGraph) DisconnectWaypoints(pairs []WaypointPair) {
	s.mutatePairs(pairs, s.graph.Disconnect)
}

func (s *SharedGraph) mutatePairs(pairs []WaypointPair, apply func(a, b NodeID)) {
	if s == nil {
		return
	}
	for _, pair := range pairs {
		a, okA := s.byExt[pair.A]
		if !okA {
			navlog.UnknownWaypoint(context.Background(), s.pub, pair.A)
			continue
		}
		b, okB := s.byExt[pair.B]
		if !okB {
			navlog.UnknownWaypoint(context.Background(), s.pub, pair.B)
			continue
		}
		apply(a, b)
	}
}
