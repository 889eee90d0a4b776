package entities

// SpanType classifies an edentulous span by its boundaries.
type SpanType string

const (
	// SpanBounded has present teeth on both boundaries.
	SpanBounded SpanType = "BOUNDED"
	// SpanDistalExtension is open on at least one boundary.
	SpanDistalExtension SpanType = "DISTAL_EXTENSION"
)

// Span is one maximal run of contiguous missing tooth positions in an arch,
// together with its boundary abutments. An empty abutment code means the run
// reaches the end of the arch on that side.
type Span struct {
	ID             string      `json:"span_id"`
	Arch           Arch        `json:"arch"`
	Missing        []ToothCode `json:"missing_teeth"`
	MesialAbutment ToothCode   `json:"mesial_abutment,omitempty"`
	DistalAbutment ToothCode   `json:"distal_abutment,omitempty"`
	Type           SpanType    `json:"span_type"`
	CrossMidline   bool        `json:"cross_midline"`
	PierAbutments  []ToothCode `json:"pier_abutments,omitempty"`
	Length         int         `json:"length"`
	// Site is the single missing tooth when Length == 1.
	Site ToothCode `json:"site,omitempty"`
}

// Bounded reports whether both boundaries are present teeth.
func (s *Span) Bounded() bool {
	return s.Type == SpanBounded
}

// BoundaryTeeth returns the present boundary abutments, mesial first.
func (s *Span) BoundaryTeeth() []ToothCode {
	teeth := make([]ToothCode, 0, 2)
	if s.MesialAbutment != "" {
		teeth = append(teeth, s.MesialAbutment)
	}
	if s.DistalAbutment != "" {
		teeth = append(teeth, s.DistalAbutment)
	}
	return teeth
}

// HasPier reports whether a boundary tooth of this span is shared with an
// adjacent span.
func (s *Span) HasPier() bool {
	return len(s.PierAbutments) > 0
}
