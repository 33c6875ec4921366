package route

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/envroute/envroute/internal/geo"
)

// straightThreshold is the turn angle below which two consecutive
// edges count as going straight.
const straightThreshold = 30.0

// Step is one route edge as fed to the direction builder.
type Step struct {
	Name     string
	Length   float64
	Geometry orb.LineString
}

// BuildDirections derives human-readable turn instructions from the
// ordered edge sequence. For each edge the compass bearing of its
// first segment (entry) and last segment (exit) are compared: the exit
// bearing of the previous edge against the entry bearing of the
// current one classifies the move as straight, right, or left.
// Consecutive straight edges on the same street merge into a single
// instruction with summed distance. Edges with degenerate geometry are
// skipped without breaking the sequence.
func BuildDirections(steps []Step) []string {
	var out []string

	currentRoad := ""
	currentDistance := 0.0
	prevExitBearing := 0.0
	first := true

	for _, step := range steps {
		if len(step.Geometry) < 2 {
			continue
		}

		entry := geo.Bearing(step.Geometry[0], step.Geometry[1])
		exit := geo.Bearing(step.Geometry[len(step.Geometry)-2], step.Geometry[len(step.Geometry)-1])

		name := step.Name
		if name == "" {
			name = geo.UnnamedRoad
		}

		if first {
			currentRoad = name
			currentDistance = step.Length
			out = append(out, fmt.Sprintf("Depart on %s", name))
			first = false
		} else {
			turn := classifyTurn(prevExitBearing, entry)

			if name == currentRoad && turn == turnStraight {
				currentDistance += step.Length
			} else {
				out = closeDistance(out, currentDistance)

				if name == currentRoad {
					// a sharp move that stays on the same street
					out = append(out, fmt.Sprintf("%s to continue on %s", turn.phrase(), name))
				} else {
					out = append(out, fmt.Sprintf("%s onto %s", turn.phrase(), name))
				}

				currentRoad = name
				currentDistance = step.Length
			}
		}

		prevExitBearing = exit
	}

	if first {
		// no usable geometry at all
		return nil
	}

	out = closeDistance(out, currentDistance)
	out = append(out, "Arrive at destination.")
	return out
}

// closeDistance appends the accumulated distance to the last open
// instruction.
func closeDistance(out []string, distance float64) []string {
	if distance <= 0 || len(out) == 0 {
		return out
	}
	last := out[len(out)-1]
	out[len(out)-1] = fmt.Sprintf("%s (about %d m).", last, int(distance))
	return out
}

type turnDirection int

const (
	turnStraight turnDirection = iota
	turnRight
	turnLeft
)

func (t turnDirection) phrase() string {
	switch t {
	case turnRight:
		return "Turn right"
	case turnLeft:
		return "Turn left"
	default:
		return "Go straight"
	}
}

// classifyTurn compares the previous edge's exit bearing with the
// current edge's entry bearing.
func classifyTurn(b1, b2 float64) turnDirection {
	delta := geo.TurnAngle(b1, b2)
	switch {
	case math.Abs(delta) < straightThreshold:
		return turnStraight
	case delta > 0:
		return turnRight
	default:
		return turnLeft
	}
}
