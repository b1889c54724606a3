// Package overlay lets users drag nodes of a rendered diagram.
//
// The renderer's SVG output is parsed into a tree; groups that look like
// diagram nodes become draggable containers. Each container is identified
// by a node ID derived from its attributes or text, and the translation a
// user drags it to is kept in an [OffsetMap]. When the diagram is rendered
// again the stored translations are re-applied by ID, so manual
// adjustments survive re-renders as long as the IDs are stable.
//
// Container discovery tries a fixed list of CSS selectors, most specific
// first, and climbs from each match to the nearest <g> element. Edge
// groups are never draggable.
//
// A [Controller] is not safe for concurrent use.
package overlay
