package store

import (
	"context"
	"sort"
	"sync"

	"github.com/songlesson/api/internal/model"
)

// Memory is a process-local Store. Records are copied on the way in and out
// so callers never share state with the map.
type Memory struct {
	mu        sync.RWMutex
	documents map[string]model.Document
	songs     map[string]model.Song
}

func NewMemory() *Memory {
	return &Memory{
		documents: make(map[string]model.Document),
		songs:     make(map[string]model.Song),
	}
}

func (m *Memory) CreateDocument(ctx context.Context, doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.documents[doc.ID] = *doc
	return nil
}

func (m *Memory) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (m *Memory) ListDocuments(ctx context.Context) ([]*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vs := make([]*model.Document, 0, len(m.documents))
	for _, v := range m.documents {
		vs = append(vs, &v)
	}
	sort.SliceStable(vs, func(i, j int) bool {
		return vs[i].UploadedAt.After(vs[j].UploadedAt)
	})
	return vs, nil
}

func (m *Memory) DeleteDocument(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.documents[id]; !ok {
		return ErrNotFound
	}
	delete(m.documents, id)
	return nil
}

func (m *Memory) CreateSong(ctx context.Context, song *model.Song) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.songs[song.ID] = copySong(song)
	return nil
}

func (m *Memory) GetSong(ctx context.Context, id string) (*model.Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.songs[id]
	if !ok {
		return nil, ErrNotFound
	}
	v = copySong(&v)
	return &v, nil
}

func (m *Memory) ListSongs(ctx context.Context) ([]*model.Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vs := make([]*model.Song, 0, len(m.songs))
	for _, v := range m.songs {
		v = copySong(&v)
		vs = append(vs, &v)
	}
	sort.SliceStable(vs, func(i, j int) bool {
		return vs[i].CreatedAt.After(vs[j].CreatedAt)
	})
	return vs, nil
}

// FindSongByJobID scans every song; callbacks are rare enough for this.
func (m *Memory) FindSongByJobID(ctx context.Context, jobID string) (*model.Song, error) {
	if jobID == "" {
		return nil, ErrNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, v := range m.songs {
		if v.JobID == jobID {
			v = copySong(&v)
			return &v, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) DeleteSong(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.songs[id]; !ok {
		return ErrNotFound
	}
	delete(m.songs, id)
	return nil
}

func (m *Memory) SetSongAudioURL(ctx context.Context, id, audioURL string) (*model.Song, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.songs[id]
	if !ok {
		return nil, false, ErrNotFound
	}

	applied := false
	if v.AudioURL == nil || *v.AudioURL == "" {
		url := audioURL
		v.AudioURL = &url
		m.songs[id] = v
		applied = true
	}

	v = copySong(&v)
	return &v, applied, nil
}

func (m *Memory) Migrate(ctx context.Context) error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}

func copySong(s *model.Song) model.Song {
	v := *s
	if s.AudioURL != nil {
		url := *s.AudioURL
		v.AudioURL = &url
	}
	if s.SourceDocumentID != nil {
		id := *s.SourceDocumentID
		v.SourceDocumentID = &id
	}
	return v
}
