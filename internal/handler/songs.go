package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/songlesson/api/internal/logging"
	"github.com/songlesson/api/internal/model"
	"github.com/songlesson/api/internal/service"
	"github.com/songlesson/api/pkg/response"
)

type SongHandler struct {
	songs     *service.SongService
	audio     *service.AudioService
	validator *validator.Validate
	log       logging.Logger
}

func NewSongHandler(songs *service.SongService, audio *service.AudioService, v *validator.Validate) *SongHandler {
	return &SongHandler{
		songs:     songs,
		audio:     audio,
		validator: v,
		log:       logging.New("songs-handler"),
	}
}

// Generate handles POST /api/songs/generate
// @Summary      Generate a lesson song
// @Description  Write lyrics for lesson content and submit the audio rendering job
// @Tags         Songs
// @Accept       json
// @Produce      json
// @Param        request body model.GenerateSongRequest true "Generate request"
// @Success      201 {object} model.Song
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      502 {object} response.ErrorResponse
// @Router       /api/songs/generate [post]
func (h *SongHandler) Generate(c *fiber.Ctx) error {
	var req model.GenerateSongRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	song, err := h.songs.Generate(c.UserContext(), &req)
	if err != nil {
		var genErr *service.GenerationError
		var subErr *service.SubmissionError
		switch {
		case errors.Is(err, service.ErrDocumentNotFound):
			return response.NotFound(c, "Document not found")
		case errors.As(err, &genErr):
			h.log.Errorf("lyrics generation failed: %v", err)
			return response.AIError(c, "Failed to generate lyrics")
		case errors.As(err, &subErr):
			h.log.Errorf("music job submission failed: %v", err)
			return response.MusicError(c, "Failed to submit music generation job")
		}
		h.log.Errorf("song generation failed: %v", err)
		return response.ServiceError(c, "Failed to create song")
	}

	return response.Created(c, song)
}

// List handles GET /api/songs
// @Summary      List songs
// @Tags         Songs
// @Produce      json
// @Success      200 {object} model.SongListResponse
// @Router       /api/songs [get]
func (h *SongHandler) List(c *fiber.Ctx) error {
	songs, err := h.songs.List(c.UserContext())
	if err != nil {
		h.log.Errorf("list songs: %v", err)
		return response.ServiceError(c, "Failed to list songs")
	}
	if songs == nil {
		songs = []*model.Song{}
	}
	return response.OK(c, model.SongListResponse{Songs: songs})
}

// Get handles GET /api/songs/:id
// @Summary      Get song
// @Tags         Songs
// @Produce      json
// @Param        id path string true "Song ID"
// @Success      200 {object} model.Song
// @Failure      404 {object} response.ErrorResponse
// @Router       /api/songs/{id} [get]
func (h *SongHandler) Get(c *fiber.Ctx) error {
	song, err := h.songs.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrSongNotFound) {
			return response.NotFound(c, "Song not found")
		}
		h.log.Errorf("get song: %v", err)
		return response.ServiceError(c, "Failed to load song")
	}
	return response.OK(c, song)
}

// Delete handles DELETE /api/songs/:id
// @Summary      Delete song
// @Tags         Songs
// @Param        id path string true "Song ID"
// @Success      204 "No Content"
// @Failure      404 {object} response.ErrorResponse
// @Router       /api/songs/{id} [delete]
func (h *SongHandler) Delete(c *fiber.Ctx) error {
	if err := h.songs.Delete(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrSongNotFound) {
			return response.NotFound(c, "Song not found")
		}
		h.log.Errorf("delete song: %v", err)
		return response.ServiceError(c, "Failed to delete song")
	}
	return response.NoContent(c)
}

// Status handles GET /api/songs/:id/status
// @Summary      Get audio status
// @Description  Reports "running" until the song's audio is available, then "success" with its URL
// @Tags         Songs
// @Produce      json
// @Param        id path string true "Song ID"
// @Success      200 {object} model.AudioStatus
// @Failure      404 {object} response.ErrorResponse
// @Router       /api/songs/{id}/status [get]
func (h *SongHandler) Status(c *fiber.Ctx) error {
	status, err := h.audio.Poll(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrSongNotFound) {
			return response.NotFound(c, "Song not found")
		}
		h.log.Errorf("poll audio status: %v", err)
		return response.ServiceError(c, "Failed to check audio status")
	}
	return response.OK(c, status)
}

// Callback handles POST /api/songs/callback
// @Summary      Music provider webhook
// @Description  Receives job completion callbacks. Always acknowledged unless storage fails.
// @Tags         Songs
// @Accept       json
// @Produce      json
// @Success      200 {object} model.CallbackAck
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/songs/callback [post]
func (h *SongHandler) Callback(c *fiber.Ctx) error {
	ack, err := h.audio.HandleCallback(c.UserContext(), c.Body())
	if err != nil {
		h.log.Errorf("process callback: %v", err)
		return response.ServiceError(c, "Failed to process callback")
	}
	return response.OK(c, ack)
}
