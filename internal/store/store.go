package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/songlesson/api/internal/config"
	"github.com/songlesson/api/internal/model"
)

var ErrNotFound = errors.New("not found")

// Store persists lesson documents and generated songs. Listings are ordered
// newest first.
type Store interface {
	CreateDocument(ctx context.Context, doc *model.Document) error
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	ListDocuments(ctx context.Context) ([]*model.Document, error)
	DeleteDocument(ctx context.Context, id string) error

	CreateSong(ctx context.Context, song *model.Song) error
	GetSong(ctx context.Context, id string) (*model.Song, error)
	ListSongs(ctx context.Context) ([]*model.Song, error)
	FindSongByJobID(ctx context.Context, jobID string) (*model.Song, error)
	DeleteSong(ctx context.Context, id string) error

	// SetSongAudioURL assigns the audio URL only if none is stored yet. It
	// returns the stored song and whether this call performed the assignment.
	SetSongAudioURL(ctx context.Context, id, audioURL string) (*model.Song, bool, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open selects the backend once at startup from the database config
func Open(ctx context.Context, cfg *config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite", "postgres", "mysql":
		s, err := NewGorm(cfg.Driver, cfg.DSN, cfg.Debug)
		if err != nil {
			return nil, err
		}
		if err := s.Start(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("store: unknown driver: %s", cfg.Driver)
	}
}
