// Package cad implements the deterministic, in-process CAD engine core: a
// typed entity store driven by a binary command stream, spatial queries,
// GPU-ready vertex buffer construction, and a canonical binary snapshot
// format.
//
// The engine is designed to sit behind an opaque memory-sharing boundary.
// A thin presentation layer — UI, input capture, a WebGL driver, file I/O —
// drives the engine through [Engine]'s operation surface and reads its
// outputs by address and length via [BufferMeta]; it never mutates
// engine-owned memory directly.
//
// # Quick start
//
//	eng := cad.NewEngine()
//	eng.ApplyCommandBuffer(cmdBytes)
//	triMeta, tris := eng.GetPositionBufferMeta(), eng.GetPositionFloats()
//	lineMeta, lines := eng.GetLineBufferMeta(), eng.GetLineFloats()
//	_ = triMeta.Generation // freshness token for tris
//	_ = lineMeta.Generation // freshness token for lines
//
// # Core concepts
//
// Every entity lives in one of the typed tables reachable through
// [Engine] (rects, lines, polylines, circles, polygons, arrows, symbols,
// nodes, conduits, text). Identity is a monotonic [EntityID]; kind
// dispatch is a switch, not interface polymorphism, matching the fixed set
// of drawable kinds in the wire format.
//
// Mutations happen through [Engine.ApplyCommandBuffer] (decoding a
// [Command] stream), through an [InteractionSession] (drag/resize/draft
// previews that commit into a single reversible [History] entry), and
// through undo/redo, snapshot loading and [Engine.Clear]. Queries
// — picking, area queries, buffer reads — never mutate the model; they may
// lazily rebuild derived caches (render buffers, the spatial index), which
// is why every derived buffer carries a generation counter callers must
// check.
//
// See SPEC_FULL.md in the module root for the full requirements this
// package implements.
package cad
