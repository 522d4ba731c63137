package model

import "slices"

// Style is the musical style tier requested for a lesson song
type Style string

const (
	StyleTraditional  Style = "traditional"
	StyleContemporary Style = "contemporary"
	StyleFusion       Style = "fusion"
)

var ValidStyles = []Style{
	StyleTraditional, StyleContemporary, StyleFusion,
}

func (s Style) Valid() bool {
	return slices.Contains(ValidStyles, s)
}

// Complexity is the reading-complexity tier of the generated lyrics
type Complexity string

const (
	ComplexitySimple       Complexity = "simple"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

var ValidComplexities = []Complexity{
	ComplexitySimple, ComplexityIntermediate, ComplexityAdvanced,
}

func (c Complexity) Valid() bool {
	return slices.Contains(ValidComplexities, c)
}

// AudioState is the rendering state of a song's audio
type AudioState string

const (
	AudioStateSubmitted AudioState = "submitted"
	AudioStateResolved  AudioState = "resolved"
)

// Poll statuses reported to clients
const (
	AudioStatusRunning = "running"
	AudioStatusSuccess = "success"
)
