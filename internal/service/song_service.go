package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/songlesson/api/internal/logging"
	"github.com/songlesson/api/internal/model"
	"github.com/songlesson/api/internal/store"
)

// SongService creates lesson songs and serves the song library
type SongService struct {
	store  store.Store
	lyrics LyricsGenerator
	audio  *AudioService
	log    logging.Logger
}

// NewSongService creates a new song service
func NewSongService(st store.Store, lyrics LyricsGenerator, audio *AudioService) *SongService {
	return &SongService{
		store:  st,
		lyrics: lyrics,
		audio:  audio,
		log:    logging.New("songs"),
	}
}

// Generate writes lyrics for the lesson, submits the rendering job and stores
// the song. Nothing is stored when either external call fails.
func (s *SongService) Generate(ctx context.Context, req *model.GenerateSongRequest) (*model.Song, error) {
	var sourceDocumentID *string
	if req.DocumentID != "" {
		doc, err := s.store.GetDocument(ctx, req.DocumentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrDocumentNotFound
			}
			return nil, fmt.Errorf("load document: %w", err)
		}
		sourceDocumentID = &doc.ID
	}

	result, err := s.lyrics.Generate(ctx, req.Content, req.Style, req.Complexity)
	if err != nil {
		return nil, err
	}

	musicalStyle := s.lyrics.StyleDescriptor(req.Style)

	jobID, err := s.audio.Submit(ctx, result.Title, result.Lyrics, musicalStyle)
	if err != nil {
		return nil, err
	}

	song := &model.Song{
		ID:               uuid.New().String(),
		Title:            result.Title,
		Topic:            result.Topic,
		Lyrics:           result.Lyrics,
		RhythmPattern:    result.RhythmPattern,
		CulturalNotes:    result.CulturalNotes,
		MusicalStyle:     musicalStyle,
		Style:            req.Style,
		Complexity:       req.Complexity,
		SourceDocumentID: sourceDocumentID,
		JobID:            jobID,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.store.CreateSong(ctx, song); err != nil {
		return nil, fmt.Errorf("save song: %w", err)
	}

	s.log.WithField("song", song.ID).Infof("created song %q with job %s", song.Title, jobID)
	return song, nil
}

// Get returns a song by id
func (s *SongService) Get(ctx context.Context, id string) (*model.Song, error) {
	song, err := s.store.GetSong(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSongNotFound
		}
		return nil, fmt.Errorf("load song: %w", err)
	}
	return song, nil
}

// List returns all songs, newest first
func (s *SongService) List(ctx context.Context) ([]*model.Song, error) {
	songs, err := s.store.ListSongs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	return songs, nil
}

// Delete removes a song
func (s *SongService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteSong(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSongNotFound
		}
		return fmt.Errorf("delete song: %w", err)
	}
	return nil
}
