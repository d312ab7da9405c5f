package sph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// HandState is the action of the interaction source.
type HandState uint8

const (
	HandIdle HandState = iota
	HandPushing
	HandPulling
)

func (s HandState) String() string {
	switch s {
	case HandIdle:
		return "idle"
	case HandPushing:
		return "pushing"
	case HandPulling:
		return "pulling"
	default:
		return fmt.Sprintf("HandState(%d)", uint8(s))
	}
}

// EventKind identifies an input event.
type EventKind uint8

const (
	EventPress EventKind = iota
	EventRelease
	EventMove
	EventTogglePause
	EventStep
)

// Button identifies the pointer button of a press or release.
type Button uint8

const (
	ButtonPrimary   Button = iota // pulls fluid toward the hand
	ButtonSecondary               // pushes fluid away
)

// InputEvent is a discrete event from the input source.
// Position is used by EventMove.
type InputEvent struct {
	Kind     EventKind
	Button   Button
	Position r2.Vec
}

// Hand is a localized attractive or repulsive force field driven by input.
type Hand struct {
	Position r2.Vec
	Radius   float64
	Strength float64
	State    HandState
}

// NewHand returns an idle hand at the origin.
func NewHand(radius, strength float64) Hand {
	return Hand{Radius: radius, Strength: strength}
}

// Validate checks the hand configuration.
func (h Hand) Validate() error {
	if !(h.Radius > 0) {
		return fmt.Errorf("hand radius %g: %w", h.Radius, ErrInvalidHand)
	}
	return nil
}

// Active reports whether the hand contributes any force.
func (h Hand) Active() bool { return h.State != HandIdle }

// HandleEvent applies a pointer event and reports whether the action state changed.
// Pause and step events are ignored here; the Simulation handles them.
func (h *Hand) HandleEvent(ev InputEvent) bool {
	prev := h.State
	switch ev.Kind {
	case EventMove:
		h.Position = ev.Position
	case EventPress:
		switch ev.Button {
		case ButtonPrimary:
			h.State = HandPulling
		case ButtonSecondary:
			h.State = HandPushing
		}
	case EventRelease:
		if (ev.Button == ButtonPrimary && h.State == HandPulling) ||
			(ev.Button == ButtonSecondary && h.State == HandPushing) {
			h.State = HandIdle
		}
	}
	return h.State != prev
}

// Acceleration returns the interaction term for a particle at pos moving with vel.
func (h Hand) Acceleration(pos, vel r2.Vec) r2.Vec {
	if h.State == HandIdle {
		return r2.Vec{}
	}
	offset := r2.Sub(h.Position, pos)
	distSq := r2.Dot(offset, offset)
	if distSq >= h.Radius*h.Radius {
		return r2.Vec{}
	}

	strength := h.Strength
	if h.State == HandPushing {
		strength = -strength
	}

	dist := math.Sqrt(distSq)
	var dir r2.Vec
	if dist > 0 {
		dir = r2.Scale(1/dist, offset)
	}
	centre := 1 - dist/h.Radius
	return r2.Scale(centre, r2.Sub(r2.Scale(strength, dir), vel))
}
