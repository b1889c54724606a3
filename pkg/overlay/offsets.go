package overlay

import (
	"encoding/json"
	"slices"
)

// Point is a translation in SVG user units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// NodeOffset is the translation applied to one node container.
type NodeOffset struct {
	ID     string `json:"id"`
	Offset Point  `json:"offset"`
}

// OffsetMap holds at most one offset per node ID, in commit order.
type OffsetMap struct {
	entries []NodeOffset
}

// Set records the offset for id, replacing and moving any previous entry
// to the end.
func (m *OffsetMap) Set(id string, p Point) {
	m.Delete(id)
	m.entries = append(m.entries, NodeOffset{ID: id, Offset: p})
}

// Get returns the offset for id.
func (m *OffsetMap) Get(id string) (Point, bool) {
	for _, e := range m.entries {
		if e.ID == id {
			return e.Offset, true
		}
	}
	return Point{}, false
}

// Delete removes the entry for id.
func (m *OffsetMap) Delete(id string) {
	m.entries = slices.DeleteFunc(m.entries, func(e NodeOffset) bool { return e.ID == id })
}

// Retain drops every entry whose ID is not in ids. It returns the number of
// dropped entries.
func (m *OffsetMap) Retain(ids map[string]bool) int {
	before := len(m.entries)
	m.entries = slices.DeleteFunc(m.entries, func(e NodeOffset) bool { return !ids[e.ID] })
	return before - len(m.entries)
}

// Len returns the number of entries.
func (m *OffsetMap) Len() int { return len(m.entries) }

// Entries returns a copy of all entries in commit order.
func (m *OffsetMap) Entries() []NodeOffset {
	return append([]NodeOffset{}, m.entries...)
}

// Replace discards all entries and sets each of offsets in order. Later
// duplicates win.
func (m *OffsetMap) Replace(offsets []NodeOffset) {
	m.entries = nil
	for _, o := range offsets {
		m.Set(o.ID, o.Offset)
	}
}

// MarshalJSON encodes the map as a list of entries.
func (m OffsetMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Entries())
}

// UnmarshalJSON decodes a list of entries, keeping the last one per ID.
func (m *OffsetMap) UnmarshalJSON(data []byte) error {
	var offsets []NodeOffset
	if err := json.Unmarshal(data, &offsets); err != nil {
		return err
	}
	m.Replace(offsets)
	return nil
}
