package nav

// NodeID is an opaque handle into a graph's node arena. Handles are
// stable across Clone, so adjacency copied from the canonical graph
// stays valid in every search copy without remapping.
type NodeID int32

// InvalidNode marks an unset handle, e.g. a root node's predecessor.
const InvalidNode NodeID = -1

// Waypoint is a scene-supplied navigation point consumed at graph
// build time.
type Waypoint struct {
	ID  string `json:"id"`
	Pos Vec3   `json:"pos"`
}

// Node is a navigable point in a visibility graph. Identity and
// position are fixed at creation; the score fields are scratch state
// owned by a single search and are zeroed on Clone.
type Node struct {
	ID  NodeID
	Ext string // external scene waypoint ID, empty for transient nodes
	Pos Vec3

	gScore float64
	hScore float64
	parent NodeID
}

// FScore is the estimated total cost through this node.
func (n *Node) FScore() float64 {
	return n.gScore + n.hScore
}

func (n *Node) resetScores() {
	n.gScore = 0
	n.hScore = 0
	n.parent = InvalidNode
}
