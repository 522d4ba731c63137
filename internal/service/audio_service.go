package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/songlesson/api/internal/client"
	"github.com/songlesson/api/internal/logging"
	"github.com/songlesson/api/internal/model"
	"github.com/songlesson/api/internal/store"
)

// AudioNotifier is told when a song's audio becomes available
type AudioNotifier interface {
	BroadcastAudioReady(songID, audioURL string)
}

// AudioService tracks each song's rendering job from submission until an
// audio URL is stored. Completion arrives through the provider's webhook or a
// client poll; both resolve through the same conditional write.
type AudioService struct {
	music    client.MusicGenerator
	store    store.Store
	notifier AudioNotifier
	log      logging.Logger
}

// NewAudioService creates a new audio job service. notifier may be nil.
func NewAudioService(music client.MusicGenerator, st store.Store, notifier AudioNotifier) *AudioService {
	return &AudioService{
		music:    music,
		store:    st,
		notifier: notifier,
		log:      logging.New("audio"),
	}
}

// Submit starts a rendering job and returns the provider's job id
func (s *AudioService) Submit(ctx context.Context, title, lyrics, style string) (string, error) {
	jobID, err := s.music.SubmitJob(ctx, &client.SubmitJobRequest{
		Title:  title,
		Lyrics: lyrics,
		Style:  style,
	})
	if err != nil {
		return "", &SubmissionError{Err: err}
	}

	s.log.Infof("submitted music job %s for %q", jobID, title)
	return jobID, nil
}

// Poll reports whether a song's audio is ready. Provider failures, including
// jobs the provider does not know yet, are reported as running.
func (s *AudioService) Poll(ctx context.Context, songID string) (*model.AudioStatus, error) {
	song, err := s.store.GetSong(ctx, songID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSongNotFound
		}
		return nil, fmt.Errorf("load song: %w", err)
	}

	if song.AudioState() == model.AudioStateResolved {
		return successStatus(*song.AudioURL), nil
	}
	if song.JobID == "" {
		return runningStatus(), nil
	}

	log := s.log.WithField("song", song.ID).WithField("job", song.JobID)

	body, err := s.music.JobStatus(ctx, song.JobID)
	if err != nil {
		log.Debugf("job status unavailable, reporting running: %v", err)
		return runningStatus(), nil
	}

	result, err := NormalizeJobStatus(body)
	if err != nil {
		log.Warnf("unreadable job status, reporting running: %v", err)
		return runningStatus(), nil
	}
	if !result.Ready() {
		return runningStatus(), nil
	}

	resolved, _, err := s.resolve(ctx, song.ID, result.AudioURL)
	if err != nil {
		return nil, err
	}
	return successStatus(*resolved.AudioURL), nil
}

// HandleCallback processes a provider webhook delivery. Unknown jobs and
// unreadable payloads are acknowledged without writing anything; only store
// failures are returned as errors.
func (s *AudioService) HandleCallback(ctx context.Context, body []byte) (*model.CallbackAck, error) {
	ack := &model.CallbackAck{Received: true}

	jobID, err := ExtractJobID(body)
	if err != nil {
		s.log.Warnf("ignoring unreadable callback: %v", err)
		return ack, nil
	}
	if jobID == "" {
		s.log.Warnf("ignoring callback without job id")
		return ack, nil
	}

	log := s.log.WithField("job", jobID)

	song, err := s.store.FindSongByJobID(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warnf("callback for unknown job")
			return ack, nil
		}
		return nil, fmt.Errorf("find song by job: %w", err)
	}
	ack.Found = true
	ack.SongID = song.ID

	result, err := NormalizeJobStatus(body)
	if err != nil {
		log.Warnf("ignoring unreadable callback: %v", err)
		return ack, nil
	}
	if !result.Ready() {
		log.Debugf("callback without completed audio")
		return ack, nil
	}

	_, applied, err := s.resolve(ctx, song.ID, result.AudioURL)
	if err != nil {
		if errors.Is(err, ErrSongNotFound) {
			log.Warnf("song %s deleted before callback was applied", song.ID)
			ack.Found = false
			return ack, nil
		}
		return nil, err
	}
	ack.Updated = applied
	return ack, nil
}

// resolve moves a song to the resolved state. It is a no-op when an audio URL
// is already stored; the returned song always carries the stored URL.
func (s *AudioService) resolve(ctx context.Context, songID, audioURL string) (*model.Song, bool, error) {
	song, applied, err := s.store.SetSongAudioURL(ctx, songID, audioURL)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, ErrSongNotFound
		}
		return nil, false, fmt.Errorf("store audio url: %w", err)
	}

	if applied {
		s.log.WithField("song", songID).Infof("audio ready: %s", audioURL)
		if s.notifier != nil {
			s.notifier.BroadcastAudioReady(songID, audioURL)
		}
	}
	return song, applied, nil
}

func runningStatus() *model.AudioStatus {
	return &model.AudioStatus{Status: model.AudioStatusRunning}
}

func successStatus(audioURL string) *model.AudioStatus {
	return &model.AudioStatus{Status: model.AudioStatusSuccess, AudioURL: audioURL}
}
