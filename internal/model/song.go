package model

import "time"

// Song is a generated lesson song and its audio rendering job
type Song struct {
	ID               string     `json:"id" gorm:"primaryKey"`
	Title            string     `json:"title" gorm:"not null;default:''"`
	Topic            string     `json:"topic" gorm:"not null;default:''"`
	Lyrics           string     `json:"lyrics" gorm:"type:text;not null"`
	RhythmPattern    string     `json:"rhythmPattern" gorm:"type:text;not null"`
	CulturalNotes    string     `json:"culturalNotes" gorm:"type:text;not null"`
	MusicalStyle     string     `json:"musicalStyle" gorm:"not null;default:''"`
	Style            Style      `json:"style" gorm:"not null;default:''"`
	Complexity       Complexity `json:"complexity" gorm:"not null;default:''"`
	SourceDocumentID *string    `json:"sourceDocumentId"`
	JobID            string     `json:"jobId" gorm:"index;not null"`
	AudioURL         *string    `json:"audioUrl"`
	CreatedAt        time.Time  `json:"createdAt" gorm:"index"`
}

// AudioState derives the rendering state from the stored audio URL
func (s *Song) AudioState() AudioState {
	if s.AudioURL != nil && *s.AudioURL != "" {
		return AudioStateResolved
	}
	return AudioStateSubmitted
}

// GenerateSongRequest represents the request body for song generation
type GenerateSongRequest struct {
	Content    string     `json:"content" validate:"required,min=10,max=20000"`
	Style      Style      `json:"style" validate:"required,songstyle"`
	Complexity Complexity `json:"complexity" validate:"required,complexity"`
	DocumentID string     `json:"documentId" validate:"omitempty,uuid"`
}

// SongListResponse represents the response for song listing
type SongListResponse struct {
	Songs []*Song `json:"songs"`
}
