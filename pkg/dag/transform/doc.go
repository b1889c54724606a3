// Package transform prepares a [dag.DAG] for layered drawing.
//
// The steps are applied in this order, or all at once with [Prepare]:
//
//   - [BreakCycles] reverses DFS back edges (and drops self-loops) so the
//     graph becomes acyclic without losing connections.
//   - [AssignLayers] places each node at the length of its longest path
//     from a source.
//   - [Subdivide] splits edges spanning several rows into chains of dummy
//     nodes, one per intermediate row.
//
// After Prepare, [dag.DAG.Validate] succeeds.
package transform
