package sim

import (
	"github.com/pekkahe/the-lone-cabin-samples/internal/ai"
	"github.com/pekkahe/the-lone-cabin-samples/internal/nav"
)

// Config tunes the simulation loop and the per-agent subsystems.
type Config struct {
	TickRate      int
	SearchWorkers int
	SearchBacklog int

	PathFinder nav.PathFinderConfig
	Behaviour  ai.Config

	// VisionRange and VisionDot bound the agents' sight cone; a player
	// is visible when within range, inside the cone, and unoccluded.
	VisionRange float64
	VisionDot   float64
	// EyeHeight lifts sight tests off the floor.
	EyeHeight float64
	// DoorStayRadius is the trigger distance around a door panel that
	// produces door-stay events.
	DoorStayRadius float64

	WalkSpeed float64
	RunSpeed  float64
}

func DefaultConfig() Config {
	return Config{
		TickRate:       30,
		SearchWorkers:  2,
		SearchBacklog:  8,
		PathFinder:     nav.DefaultPathFinderConfig(),
		Behaviour:      ai.DefaultConfig(),
		VisionRange:    15.0,
		VisionDot:      0.25,
		EyeHeight:      1.6,
		DoorStayRadius: 1.2,
		WalkSpeed:      1.8,
		RunSpeed:       4.2,
	}
}
