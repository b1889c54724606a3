package layout

import (
	"errors"
	"strings"
)

var (
	// ErrTooLarge is returned when the input has more nodes than
	// Options.MaxNodes.
	ErrTooLarge = errors.New("graph too large for layout")

	// ErrUnknownEndpoint is returned when an edge references a node that
	// is not part of the input.
	ErrUnknownEndpoint = errors.New("edge references unknown node")

	// ErrDuplicateNode is returned when two input nodes share an ID.
	ErrDuplicateNode = errors.New("duplicate node ID")
)

// Direction is the flow direction of ranks.
type Direction string

const (
	TopBottom Direction = "TB"
	BottomTop Direction = "BT"
	LeftRight Direction = "LR"
	RightLeft Direction = "RL"
)

// ParseDirection maps a flowchart direction token to a Direction. "TD" is
// an alias of "TB"; anything unrecognized yields TopBottom.
func ParseDirection(s string) Direction {
	switch strings.ToUpper(s) {
	case "BT":
		return BottomTop
	case "LR":
		return LeftRight
	case "RL":
		return RightLeft
	default:
		return TopBottom
	}
}

// horizontal reports whether ranks advance along the x axis.
func (d Direction) horizontal() bool { return d == LeftRight || d == RightLeft }

// Point is a position in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeBox is a node to place. Zero dimensions take the option defaults.
type NodeBox struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// EdgeRef is a directed edge between two NodeBox IDs.
type EdgeRef struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Input is the graph handed to the engine.
type Input struct {
	Nodes []NodeBox `json:"nodes"`
	Edges []EdgeRef `json:"edges"`
}

// Placement is the computed position of one node.
type Placement struct {
	ID     string  `json:"id"`
	Center Point   `json:"center"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Rank   int     `json:"rank"`
	Order  int     `json:"order"`
}

// TopLeft returns the corner of the node box closest to the origin.
func (p Placement) TopLeft() Point {
	return Point{X: p.Center.X - p.Width/2, Y: p.Center.Y - p.Height/2}
}

// Route is the polyline of one input edge, from source centre through the
// dummy nodes to target centre.
type Route struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Points []Point `json:"points"`
}

// Result is the outcome of a layout. Nodes and Edges follow input order.
type Result struct {
	Nodes     []Placement `json:"nodes"`
	Edges     []Route     `json:"edges"`
	Width     float64     `json:"width"`
	Height    float64     `json:"height"`
	Ranks     int         `json:"ranks"`
	Crossings int         `json:"crossings"`

	// Reversed counts edges turned around (or dropped, for self-loops)
	// to make the graph acyclic.
	Reversed int `json:"reversed,omitempty"`

	// Degraded is set when the result comes from [Fallback].
	Degraded bool `json:"degraded,omitempty"`
}

// Position returns the centre of the node with the given ID.
func (r Result) Position(id string) (Point, bool) {
	for _, p := range r.Nodes {
		if p.ID == id {
			return p.Center, true
		}
	}
	return Point{}, false
}
