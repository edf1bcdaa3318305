package navigation

import (
	"context"

	"github.com/pekkahe/the-lone-cabin-samples/logging"
)

const (
	// EventGraphBuilt is emitted once the canonical visibility graph is assembled.
	EventGraphBuilt logging.EventType = "navigation.graph_built"
	// EventEdgeExists is emitted when a connect request targets an edge already present.
	EventEdgeExists logging.EventType = "navigation.edge_exists"
	// EventEdgeMissing is emitted when a disconnect request targets an absent edge.
	EventEdgeMissing logging.EventType = "navigation.edge_missing"
	// EventUnknownWaypoint is emitted when a batch graph mutation names an unknown waypoint.
	EventUnknownWaypoint logging.EventType = "navigation.unknown_waypoint"
	// EventSearchStarted is emitted when a background path search is dispatched.
	EventSearchStarted logging.EventType = "navigation.search_started"
	// EventSearchCompleted is emitted when a search produces a route.
	EventSearchCompleted logging.EventType = "navigation.search_completed"
	// EventSearchFailed is emitted when a search exhausts the open set without a route.
	EventSearchFailed logging.EventType = "navigation.search_failed"
	// EventDegenerateTarget is emitted when a path request names a zero target.
	EventDegenerateTarget logging.EventType = "navigation.degenerate_target"
	// EventPathTraversed is emitted when an agent finishes walking its route.
	EventPathTraversed logging.EventType = "navigation.path_traversed"
)

// GraphBuiltPayload summarises the canonical graph after a level build.
type GraphBuiltPayload struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// GraphBuilt publishes the canonical graph summary.
func GraphBuilt(ctx context.Context, pub logging.Publisher, payload GraphBuiltPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGraphBuilt,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	})
}

// EdgePayload identifies a node pair in a connect/disconnect request.
type EdgePayload struct {
	From int32 `json:"from"`
	To   int32 `json:"to"`
}

// EdgeExists publishes a warning for a duplicate connect request.
func EdgeExists(ctx context.Context, pub logging.Publisher, payload EdgePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEdgeExists,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	})
}

// EdgeMissing publishes a warning for a disconnect aimed at an absent edge.
func EdgeMissing(ctx context.Context, pub logging.Publisher, payload EdgePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEdgeMissing,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	})
}

// UnknownWaypoint publishes a warning for an unresolvable external waypoint ID.
func UnknownWaypoint(ctx context.Context, pub logging.Publisher, waypointID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventUnknownWaypoint,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNavigation,
		Extra:    map[string]any{"waypointId": waypointID},
	})
}

// SearchPayload carries the requested destination of a path search.
type SearchPayload struct {
	TargetX float64 `json:"targetX"`
	TargetY float64 `json:"targetY"`
	TargetZ float64 `json:"targetZ"`
	Length  int     `json:"length,omitempty"`
}

// SearchStarted publishes the dispatch of a background search.
func SearchStarted(ctx context.Context, pub logging.Publisher, agentID string, payload SearchPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSearchStarted,
		Actor:    logging.EntityRef{ID: agentID, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	})
}

// SearchCompleted publishes a successful search result.
func SearchCompleted(ctx context.Context, pub logging.Publisher, agentID string, payload SearchPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSearchCompleted,
		Actor:    logging.EntityRef{ID: agentID, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	})
}

// SearchFailed publishes an unreachable-target result together with the
// agent's running invalid streak.
func SearchFailed(ctx context.Context, pub logging.Publisher, agentID string, payload SearchPayload, streak int) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventSearchFailed,
		Actor:    logging.EntityRef{ID: agentID, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	}
	pub.Publish(ctx, event.WithExtra("invalidStreak", streak))
}

// DegenerateTarget publishes a dropped request for a zero destination.
func DegenerateTarget(ctx context.Context, pub logging.Publisher, agentID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDegenerateTarget,
		Actor:    logging.EntityRef{ID: agentID, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNavigation,
	})
}

// PathTraversed publishes route completion for an agent.
func PathTraversed(ctx context.Context, pub logging.Publisher, agentID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPathTraversed,
		Actor:    logging.EntityRef{ID: agentID, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNavigation,
	})
}
