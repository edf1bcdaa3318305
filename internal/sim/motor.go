package sim

import (
	"github.com/pekkahe/the-lone-cabin-samples/internal/ai"
	"github.com/pekkahe/the-lone-cabin-samples/internal/nav"
)

// Motor integrates an agent's movement toward the latest MoveTo
// target. It satisfies the decision layer's motor capability; Step is
// called once per frame by the simulation loop.
type Motor struct {
	pos       nav.Vec3
	forward   nav.Vec3
	target    nav.Vec3
	hasTarget bool
	stopped   bool
	mode      ai.SpeedMode
	walkSpeed float64
	runSpeed  float64
}

func NewMotor(pos nav.Vec3, walkSpeed, runSpeed float64) *Motor {
	return &Motor{
		pos:       pos,
		forward:   nav.Vec3{Z: 1},
		walkSpeed: walkSpeed,
		runSpeed:  runSpeed,
	}
}

func (m *Motor) MoveTo(pos nav.Vec3) {
	m.target = pos
	m.hasTarget = true
}

func (m *Motor) Stop() {
	m.stopped = true
}

func (m *Motor) Resume() {
	m.stopped = false
}

// LookAt turns the horizontal facing toward the position without
// moving.
func (m *Motor) LookAt(pos nav.Vec3) {
	direction := pos.Sub(m.pos)
	direction.Y = 0
	if unit := direction.Normalized(); !unit.IsZero() {
		m.forward = unit
	}
}

func (m *Motor) SetSpeedMode(mode ai.SpeedMode) {
	m.mode = mode
}

func (m *Motor) Position() nav.Vec3 {
	return m.pos
}

func (m *Motor) Forward() nav.Vec3 {
	return m.forward
}

func (m *Motor) speed() float64 {
	if m.mode == ai.SpeedRun {
		return m.runSpeed
	}
	return m.walkSpeed
}

// Step advances the position toward the target by one frame.
func (m *Motor) Step(dt float64) {
	if m.stopped || !m.hasTarget || dt <= 0 {
		return
	}
	delta := m.target.Sub(m.pos)
	distance := delta.Length()
	step := m.speed() * dt
	if step >= distance {
		m.pos = m.target
		m.hasTarget = false
	} else {
		m.pos = m.pos.Add(delta.Normalized().Scale(step))
	}
	horizontal := delta
	horizontal.Y = 0
	if unit := horizontal.Normalized(); !unit.IsZero() {
		m.forward = unit
	}
}
