package graphsync

import "github.com/matzehuels/mermedit/pkg/notation"

// Position is the top-left corner of a canvas node in pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeStyle is the presentation of a canvas node.
type NodeStyle struct {
	Background   string `json:"background"`
	Border       string `json:"border"`
	BorderRadius int    `json:"borderRadius"`
	Padding      int    `json:"padding"`
	FontSize     int    `json:"fontSize"`
}

// EdgeStyle is the presentation of a canvas edge.
type EdgeStyle struct {
	Stroke      string `json:"stroke"`
	StrokeWidth int    `json:"strokeWidth"`
}

// PositionedNode is a graph node placed on the canvas.
type PositionedNode struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Kind       notation.NodeKind `json:"kind,omitempty"`
	Attributes []string          `json:"attributes,omitempty"`
	Position   Position          `json:"position"`
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	Style      NodeStyle         `json:"style"`
	Selected   bool              `json:"selected,omitempty"`

	// Pinned is set once the user moved the node.
	Pinned bool `json:"pinned,omitempty"`
}

// CanvasEdge is a graph edge on the canvas.
type CanvasEdge struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Target   string    `json:"target"`
	Label    string    `json:"label,omitempty"`
	Type     string    `json:"type"`
	Style    EdgeStyle `json:"style"`
	Selected bool      `json:"selected,omitempty"`
}

// EdgeType is the connector style requested from the canvas widget.
const EdgeType = "smoothstep"

// DefaultNodeStyle returns the card style for nodes of the given kind.
func DefaultNodeStyle(kind notation.NodeKind) NodeStyle {
	s := NodeStyle{
		Background:   "#ffffff",
		Border:       "2px solid #1a192b",
		BorderRadius: 8,
		Padding:      10,
		FontSize:     14,
	}
	if kind == notation.NodeKindEntity {
		s.Background = "#fffbe6"
		s.Border = "2px solid #b58900"
		s.BorderRadius = 4
	}
	return s
}

// DefaultEdgeStyle returns the stroke used for canvas edges.
func DefaultEdgeStyle() EdgeStyle {
	return EdgeStyle{Stroke: "#555555", StrokeWidth: 2}
}

// Snapshot is a copy of the controller state at one revision.
type Snapshot struct {
	Text     string               `json:"text"`
	Revision uint64               `json:"revision"`
	Kind     notation.DiagramKind `json:"kind"`
	Nodes    []PositionedNode     `json:"nodes"`
	Edges    []CanvasEdge         `json:"edges"`

	// LayoutRevision is the revision at which the canvas was last laid
	// out automatically.
	LayoutRevision uint64 `json:"layoutRevision"`

	// Degraded is set when the last layout used fallback placement.
	Degraded bool `json:"degraded,omitempty"`
}

// ChangeType names the kind of a canvas change.
type ChangeType string

const (
	ChangePosition ChangeType = "position"
	ChangeRemove   ChangeType = "remove"
	ChangeSelect   ChangeType = "select"
)

// NodeChange is one node edit reported by the canvas widget.
type NodeChange struct {
	Type     ChangeType `json:"type" validate:"required,oneof=position remove select"`
	ID       string     `json:"id" validate:"required"`
	Position *Position  `json:"position,omitempty"`
	Selected bool       `json:"selected,omitempty"`
}

// EdgeChange is one edge edit reported by the canvas widget.
type EdgeChange struct {
	Type     ChangeType `json:"type" validate:"required,oneof=remove select"`
	ID       string     `json:"id" validate:"required"`
	Selected bool       `json:"selected,omitempty"`
}
