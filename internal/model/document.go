package model

import "time"

// Document is an uploaded lesson source
type Document struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null;default:''"`
	Filename    string    `json:"filename" gorm:"not null;default:''"`
	ContentType string    `json:"contentType" gorm:"not null;default:''"`
	Size        int64     `json:"size" gorm:"not null;default:0"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	FileURL     string    `json:"fileUrl" gorm:"not null;default:''"`
	UploadedAt  time.Time `json:"uploadedAt" gorm:"index"`
}

// CreateDocumentRequest represents the request body for pasted lesson text
type CreateDocumentRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"required,min=10"`
}

// DocumentListResponse represents the response for document listing
type DocumentListResponse struct {
	Documents []*Document `json:"documents"`
}
