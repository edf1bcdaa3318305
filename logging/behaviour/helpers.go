package behaviour

import (
	"context"

	"github.com/pekkahe/the-lone-cabin-samples/logging"
)

const (
	// EventChanged is emitted when an agent transitions between behaviours.
	EventChanged logging.EventType = "behaviour.changed"
	// EventDormant is emitted when repeated failed searches suspend an agent.
	EventDormant logging.EventType = "behaviour.dormant"
	// EventWoken is emitted when an external signal clears dormancy.
	EventWoken logging.EventType = "behaviour.woken"
	// EventDoorBlocked is emitted when an agent fails to open a door on its route.
	EventDoorBlocked logging.EventType = "behaviour.door_blocked"
	// EventAttack is emitted when an agent strikes at a visible in-range target.
	EventAttack logging.EventType = "behaviour.attack"
)

// ChangedPayload records a behaviour transition.
type ChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Changed publishes a behaviour transition for an agent.
func Changed(ctx context.Context, pub logging.Publisher, agentID string, payload ChangedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventChanged,
		Actor:    logging.EntityRef{ID: agentID, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryBehaviour,
		Payload:  payload,
	})
}

// Dormant publishes the suspension of an agent after an invalid-search streak.
func Dormant(ctx context.Context, pub logging.Publisher, agentID string, streak int) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventDormant,
		Actor:    logging.EntityRef{ID: agentID, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryBehaviour,
	}
	pub.Publish(ctx, event.WithExtra("invalidStreak", streak))
}

// Woken publishes the end of dormancy for an agent.
func Woken(ctx context.Context, pub logging.Publisher, agentID string, reason string) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventWoken,
		Actor:    logging.EntityRef{ID: agentID, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryBehaviour,
	}
	pub.Publish(ctx, event.WithExtra("reason", reason))
}

// AttackPayload records where an agent struck.
type AttackPayload struct {
	TargetX float64 `json:"targetX"`
	TargetY float64 `json:"targetY"`
	TargetZ float64 `json:"targetZ"`
}

// Attack publishes a strike at a visible in-range target.
func Attack(ctx context.Context, pub logging.Publisher, agentID string, payload AttackPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAttack,
		Actor:    logging.EntityRef{ID: agentID, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryBehaviour,
		Payload:  payload,
	})
}

// DoorBlocked publishes a failed attempt to open a door on the agent's route.
func DoorBlocked(ctx context.Context, pub logging.Publisher, agentID, doorID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDoorBlocked,
		Actor:    logging.EntityRef{ID: agentID, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryBehaviour,
		Targets:  []logging.EntityRef{{ID: doorID, Kind: logging.EntityKindDoor}},
	})
}
