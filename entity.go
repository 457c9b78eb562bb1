package cad

// EntityID is the engine's identifier type: a monotonically allocated,
// 32-bit, never-reused-while-live handle. 0 is reserved and never
// assigned to a live entity.
type EntityID uint32

// EntityKind tags which typed table an id lives in. Values are stable and
// appear on the wire (command op codes and snapshot section order derive
// from them), so the numeric values must never be renumbered.
type EntityKind uint8

const (
	KindRect EntityKind = iota
	KindLine
	KindPolyline
	KindCircle
	KindPolygon
	KindArrow
	KindSymbol
	KindNode
	KindConduit
	KindText
)

func (k EntityKind) String() string {
	switch k {
	case KindRect:
		return "Rect"
	case KindLine:
		return "Line"
	case KindPolyline:
		return "Polyline"
	case KindCircle:
		return "Circle"
	case KindPolygon:
		return "Polygon"
	case KindArrow:
		return "Arrow"
	case KindSymbol:
		return "Symbol"
	case KindNode:
		return "Node"
	case KindConduit:
		return "Conduit"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// isDrawable reports whether entities of this kind participate in the
// explicit draw order. Symbols and nodes are
// resolved-position references, not members of the draw order.
func (k EntityKind) isDrawable() bool {
	return k != KindSymbol && k != KindNode
}

// Rect is an axis-aligned (pre-rotation) rectangle entity.
type Rect struct {
	ID            EntityID
	X, Y          float32
	W, H          float32
	Rotation      float32 // radians, about the top-left corner
	Fill          Color
	Stroke        Color
	StrokeEnabled bool
	StrokeWidthPx float32 // screen pixels; converted to world units at render time
}

// Line is a single segment between two endpoints.
type Line struct {
	ID            EntityID
	X1, Y1        float32
	X2, Y2        float32
	Stroke        Color
	Enabled       bool
	StrokeWidthPx float32
}

// Polyline references a contiguous run in the engine's shared point pool.
// Offset/Count index into Store.points; see Store.CompactPoints.
type Polyline struct {
	ID            EntityID
	Offset, Count int
	Fill          Color
	Stroke        Color
	StrokeEnabled bool
	StrokeWidthPx float32
}

// Circle is an ellipse (independent X/Y radii) about a center point.
type Circle struct {
	ID            EntityID
	CenterX       float32
	CenterY       float32
	RadiusX       float32
	RadiusY       float32
	Rotation      float32
	Scale         float32
	Fill          Color
	Stroke        Color
	StrokeEnabled bool
	StrokeWidthPx float32
}

// Polygon is a regular N-gon (N = Sides) about a center point.
type Polygon struct {
	ID            EntityID
	CenterX       float32
	CenterY       float32
	RadiusX       float32
	RadiusY       float32
	Rotation      float32
	Scale         float32
	Sides         int
	Fill          Color
	Stroke        Color
	StrokeEnabled bool
	StrokeWidthPx float32
}

// Arrow is a directed segment with an arrowhead at the second endpoint.
type Arrow struct {
	ID            EntityID
	X1, Y1        float32
	X2, Y2        float32
	HeadSize      float32
	Stroke        Color
	StrokeWidthPx float32
}

// Symbol is an instance of an immutable library record: the library itself
// is owned and looked up by the hosting collaborator, not the engine.
type Symbol struct {
	ID           EntityID
	LibraryKey   string
	X, Y         float32
	W, H         float32
	Rotation     float32
	Scale        float32
	AnchorU      float32 // connection anchor, local UV space [0,1]
	AnchorV      float32
}

// NodeKind distinguishes a free-standing electrical node from one anchored
// to a symbol's connection point.
type NodeKind uint8

const (
	NodeFree NodeKind = iota
	NodeAnchored
)

// Node is an electrical connection point: either a free-standing position
// or one resolved through an anchor symbol's transform (see
// Store.ResolveNodePosition).
type Node struct {
	ID       EntityID
	Kind     NodeKind
	X, Y     float32  // meaningful when Kind == NodeFree
	SymbolID EntityID // meaningful when Kind == NodeAnchored
}

// Conduit connects two nodes; its endpoints are resolved by position
// lookup on each referenced node, never stored directly.
type Conduit struct {
	ID            EntityID
	FromNode      EntityID
	ToNode        EntityID
	Stroke        Color
	StrokeWidthPx float32
}

// TextBoxMode controls how a Text entity's width is determined.
type TextBoxMode uint8

const (
	// BoxAutoWidth sizes the box to the laid-out content.
	BoxAutoWidth TextBoxMode = iota
	// BoxFixedWidth soft-wraps content at ConstraintWidth.
	BoxFixedWidth
)

// StyleFlags is a bitmask of text decoration flags.
type StyleFlags uint8

const (
	StyleBold StyleFlags = 1 << iota
	StyleItalic
	StyleUnderline
	StyleStrike
)

// StyleRun is a contiguous UTF-8 byte range sharing font, size, color and
// decoration.
type StyleRun struct {
	ByteStart int
	ByteEnd   int
	FontID    uint32
	PointSize float32
	Color     Color
	Flags     StyleFlags
}

// Text is a positioned, styled run of UTF-8 content. Layout (line breaks,
// glyph quads) is derived by the text subsystem, not persisted.
type Text struct {
	ID              EntityID
	X, Y            float32
	Rotation        float32
	Box             TextBoxMode
	ConstraintWidth float32
	Align           TextAlign
	Content         []byte
	Runs            []StyleRun
}

// EntityTransform is the local-to-world transform of a single entity, as
// reported by Engine.GetEntityTransform: a position, a rotation in
// radians, and an independent X/Y scale factor (1 for kinds with no
// scale field of their own).
type EntityTransform struct {
	X, Y           float32
	Rotation       float32
	ScaleX, ScaleY float32
}

// TextAlign controls horizontal alignment within a Text entity's box.
type TextAlign uint8

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)
