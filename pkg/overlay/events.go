package overlay

import "fmt"

// PointerType names a pointer event.
type PointerType string

const (
	PointerDownEvent  PointerType = "down"
	PointerMoveEvent  PointerType = "move"
	PointerUpEvent    PointerType = "up"
	PointerLeaveEvent PointerType = "leave"
)

// PointerEvent is a serialized pointer event from a client.
type PointerEvent struct {
	Type PointerType `json:"type" validate:"required,oneof=down move up leave"`
	ID   string      `json:"id,omitempty"`
	X    float64     `json:"x"`
	Y    float64     `json:"y"`
}

// Handle dispatches a sequence of events. It stops at the first error.
func (c *Controller) Handle(events ...PointerEvent) error {
	for _, ev := range events {
		p := Point{X: ev.X, Y: ev.Y}
		switch ev.Type {
		case PointerDownEvent:
			if _, err := c.PointerDown(ev.ID, p); err != nil {
				return err
			}
		case PointerMoveEvent:
			c.PointerMove(p)
		case PointerUpEvent:
			c.PointerUp()
		case PointerLeaveEvent:
			c.PointerLeave()
		default:
			return fmt.Errorf("unknown pointer event %q", ev.Type)
		}
	}
	return nil
}
