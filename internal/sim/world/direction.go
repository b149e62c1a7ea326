package world

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is a unit step on the grid. North increases x (latitude), east
// increases y (longitude).
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

var ErrUnknownDirection = errors.New("unknown direction")

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case South:
		return "S"
	case East:
		return "E"
	case West:
		return "W"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Delta returns the step in grid units.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 1, 0
	case South:
		return -1, 0
	case East:
		return 0, 1
	case West:
		return 0, -1
	}
	return 0, 0
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "N", "NORTH", "UP":
		return North, nil
	case "S", "SOUTH", "DOWN":
		return South, nil
	case "E", "EAST", "RIGHT":
		return East, nil
	case "W", "WEST", "LEFT":
		return West, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}
