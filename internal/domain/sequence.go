package domain

type SequenceCategory string

const (
	CategoryInterior SequenceCategory = "Interior"
	CategoryExterior SequenceCategory = "Exterior"
)

// Sequence is a camera animation clip the engine can play or render, scoped
// to the currently loaded level. The discovery payload arrives under several
// competing field-name schemas; the engine decoder normalizes them to this
// single shape.
type Sequence struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Category  SequenceCategory `json:"category"`
	Duration  float64          `json:"duration"`
	Thumbnail string           `json:"thumbnail,omitempty"`
}
