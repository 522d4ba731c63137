package service

import "errors"

var (
	ErrSongNotFound     = errors.New("song not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrEmptyDocument    = errors.New("document contains no text")
)

// GenerationError reports a failed call to the text-generation service
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "lyrics generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// SubmissionError reports a failed audio job submission
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "music job submission failed: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
