package sketch

// GeometryKind identifies the kind of a Geometry.
type GeometryKind string

const (
	Line   GeometryKind = "line"
	Arc    GeometryKind = "arc"
	Circle GeometryKind = "circle"
)

// ConstraintKind identifies the kind of a Constraint. The canonical wire
// identifiers are single non-ASCII glyphs chosen for visual mnemonic; Go
// code uses these named constants instead of the glyphs directly, and
// ParseConstraintKind/Glyph round-trip through the glyph form.
type ConstraintKind string

const (
	Ground        ConstraintKind = "ground"
	Coincident    ConstraintKind = "coincident"
	Horizontal    ConstraintKind = "horizontal"
	Vertical      ConstraintKind = "vertical"
	Distance      ConstraintKind = "distance"
	EqualLength   ConstraintKind = "equal-length"
	Parallel      ConstraintKind = "parallel"
	Perpendicular ConstraintKind = "perpendicular"
	Angle         ConstraintKind = "angle"
	PointOnLine   ConstraintKind = "point-on-line"
	Midpoint      ConstraintKind = "midpoint"
	Tangent       ConstraintKind = "tangent"
)

// glyph is the canonical wire identifier for each constraint kind.
var glyph = map[ConstraintKind]string{
	Ground:        "⏚",
	Horizontal:    "━",
	Vertical:      "│",
	Coincident:    "≡",
	Distance:      "⟺",
	EqualLength:   "⇌",
	PointOnLine:   "⏛",
	Midpoint:      "⋯",
	Angle:         "∠",
	Perpendicular: "⟂",
	Parallel:      "∥",
	Tangent:       "⟠",
}

var glyphToKind map[string]ConstraintKind

// legacyAlias maps a deprecated glyph to its canonical replacement. Older
// documents wrote midpoint as "⋱"; it is rewritten to "⋯" on ingest.
var legacyAlias = map[string]ConstraintKind{
	"⋱": Midpoint,
}

func init() {
	glyphToKind = make(map[string]ConstraintKind, len(glyph))
	for k, g := range glyph {
		glyphToKind[g] = k
	}
}

// Glyph returns the canonical wire identifier for a constraint kind.
func (k ConstraintKind) Glyph() string {
	return glyph[k]
}

// ParseConstraintKind resolves a wire token (either a canonical glyph or a
// recognized legacy alias) to a ConstraintKind. The legacy alias is silently
// rewritten to canonical form.
func ParseConstraintKind(token string) (ConstraintKind, bool) {
	if k, ok := glyphToKind[token]; ok {
		return k, true
	}
	if k, ok := legacyAlias[token]; ok {
		return k, true
	}
	// Also accept the Go-side names directly, for callers that build
	// documents programmatically rather than off the wire.
	switch ConstraintKind(token) {
	case Ground, Coincident, Horizontal, Vertical, Distance, EqualLength,
		Parallel, Perpendicular, Angle, PointOnLine, Midpoint, Tangent:
		return ConstraintKind(token), true
	}
	return "", false
}

// Arity returns the number of point ids a constraint kind consumes.
func (k ConstraintKind) Arity() int {
	switch k {
	case Ground:
		return 1
	case Coincident, Horizontal, Vertical, Distance:
		return 2
	case PointOnLine, Midpoint:
		return 3
	case EqualLength, Parallel, Perpendicular, Angle, Tangent:
		return 4
	}
	return 0
}
