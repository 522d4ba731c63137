package model

// Defaults applied to fields missing from the model output
const (
	DefaultSongTitle = "Untitled Song"
	DefaultSongTopic = "General"
)

// LyricsResult holds the structured song fields produced by the lyrics generator
type LyricsResult struct {
	Title         string `json:"title"`
	Topic         string `json:"topic"`
	Lyrics        string `json:"lyrics"`
	RhythmPattern string `json:"rhythmPattern"`
	CulturalNotes string `json:"culturalNotes"`
}
