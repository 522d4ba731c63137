package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/songlesson/api/internal/model"
)

// Gorm is a relational Store backed by Postgres, MySQL or SQLite
type Gorm struct {
	driver string
	open   gorm.Dialector
	db     *gorm.DB
	logger logger.Interface
}

func NewGorm(driver, dsn string, debug bool) (*Gorm, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store: %s driver requires a dsn", driver)
	}
	var open gorm.Dialector
	switch driver {
	case "postgres":
		open = postgres.Open(dsn)
	case "mysql":
		open = mysql.Open(dsn)
	case "sqlite":
		open = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("store: unknown db type: %s", driver)
	}
	l := logger.Default.LogMode(logger.Silent)
	if debug {
		l = logger.Default.LogMode(logger.Info)
	}
	return &Gorm{
		driver: driver,
		open:   open,
		logger: l,
	}, nil
}

// Start opens the connection, giving up after 30 seconds
func (s *Gorm) Start(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	type result struct {
		db  *gorm.DB
		err error
	}
	resC := make(chan result, 1)
	go func() {
		db, err := gorm.Open(s.open, &gorm.Config{
			Logger: s.logger,
		})
		resC <- result{db: db, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("store: timed out opening database: %w", ctx.Err())
		}
		return ctx.Err()
	case res := <-resC:
		if res.err != nil {
			return fmt.Errorf("store: failed to open database: %w", res.err)
		}
		s.db = res.db
	}

	// SQLite allows a single writer
	if s.driver == "sqlite" {
		sqlDB, err := s.db.DB()
		if err != nil {
			return fmt.Errorf("store: failed to get sql db: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return nil
}

func (s *Gorm) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(
		&model.Document{},
		&model.Song{},
	); err != nil {
		return fmt.Errorf("store: failed to migrate database: %w", err)
	}
	return nil
}

func (s *Gorm) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Gorm) CreateDocument(ctx context.Context, doc *model.Document) error {
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("store: failed to create Document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *Gorm) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var v model.Document
	if err := s.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: failed to get Document %s: %w", id, err)
	}
	return &v, nil
}

func (s *Gorm) ListDocuments(ctx context.Context) ([]*model.Document, error) {
	vs := []*model.Document{}
	if err := s.db.WithContext(ctx).Order("uploaded_at desc").Find(&vs).Error; err != nil {
		return nil, fmt.Errorf("store: failed to list Documents: %w", err)
	}
	return vs, nil
}

func (s *Gorm) DeleteDocument(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Document{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("store: failed to delete Document %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) CreateSong(ctx context.Context, song *model.Song) error {
	if err := s.db.WithContext(ctx).Create(song).Error; err != nil {
		return fmt.Errorf("store: failed to create Song %s: %w", song.ID, err)
	}
	return nil
}

func (s *Gorm) GetSong(ctx context.Context, id string) (*model.Song, error) {
	var v model.Song
	if err := s.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: failed to get Song %s: %w", id, err)
	}
	return &v, nil
}

func (s *Gorm) ListSongs(ctx context.Context) ([]*model.Song, error) {
	vs := []*model.Song{}
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&vs).Error; err != nil {
		return nil, fmt.Errorf("store: failed to list Songs: %w", err)
	}
	return vs, nil
}

func (s *Gorm) FindSongByJobID(ctx context.Context, jobID string) (*model.Song, error) {
	if jobID == "" {
		return nil, ErrNotFound
	}
	var v model.Song
	if err := s.db.WithContext(ctx).First(&v, "job_id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: failed to find Song by job %s: %w", jobID, err)
	}
	return &v, nil
}

func (s *Gorm) DeleteSong(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Song{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("store: failed to delete Song %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSongAudioURL is a conditional update, so concurrent resolvers cannot
// overwrite each other.
func (s *Gorm) SetSongAudioURL(ctx context.Context, id, audioURL string) (*model.Song, bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Song{}).
		Where("id = ? AND (audio_url IS NULL OR audio_url = '')", id).
		Update("audio_url", audioURL)
	if res.Error != nil {
		return nil, false, fmt.Errorf("store: failed to set audio url for Song %s: %w", id, res.Error)
	}

	song, err := s.GetSong(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return song, res.RowsAffected > 0, nil
}
