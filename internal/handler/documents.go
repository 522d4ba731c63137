package handler

import (
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/songlesson/api/internal/extract"
	"github.com/songlesson/api/internal/logging"
	"github.com/songlesson/api/internal/model"
	"github.com/songlesson/api/internal/service"
	"github.com/songlesson/api/pkg/response"
)

type DocumentHandler struct {
	service   *service.DocumentService
	validator *validator.Validate
	maxSize   int64
	log       logging.Logger
}

func NewDocumentHandler(svc *service.DocumentService, v *validator.Validate, maxSize int64) *DocumentHandler {
	return &DocumentHandler{
		service:   svc,
		validator: v,
		maxSize:   maxSize,
		log:       logging.New("documents-handler"),
	}
}

// Upload handles POST /api/documents/upload
// @Summary      Upload lesson document
// @Description  Upload a PDF, DOCX, TXT or Markdown file; its text becomes the lesson content
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        title formData string false "Document title"
// @Param        file  formData file   true  "Lesson file"
// @Success      201 {object} model.Document
// @Failure      400 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/documents/upload [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, "File is required", nil)
	}

	if h.maxSize > 0 && file.Size > h.maxSize {
		return response.ValidationError(c, "File size exceeds upload limit", map[string]interface{}{
			"maxSize":  h.maxSize,
			"fileSize": file.Size,
		})
	}

	f, err := file.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return response.ServiceError(c, "Failed to read file")
	}

	doc, err := h.service.Upload(c.UserContext(), c.FormValue("title"), file.Filename, file.Header.Get("Content-Type"), data)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrUnsupportedType):
			return response.ValidationError(c, "Unsupported file type. Supported: PDF, DOCX, TXT, MD", map[string]interface{}{
				"filename":    file.Filename,
				"contentType": file.Header.Get("Content-Type"),
			})
		case errors.Is(err, extract.ErrUnreadableDocument):
			return response.ValidationError(c, "The file could not be read", map[string]interface{}{
				"filename": file.Filename,
			})
		case errors.Is(err, service.ErrEmptyDocument):
			return response.ValidationError(c, "No text could be extracted from the file", nil)
		}
		h.log.Errorf("upload document: %v", err)
		return response.ServiceError(c, "Failed to process document")
	}

	return response.Created(c, doc)
}

// Create handles POST /api/documents
// @Summary      Create document from text
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        request body model.CreateDocumentRequest true "Document"
// @Success      201 {object} model.Document
// @Failure      400 {object} response.ErrorResponse
// @Router       /api/documents [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var req model.CreateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	doc, err := h.service.CreateFromText(c.UserContext(), req.Title, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrEmptyDocument) {
			return response.ValidationError(c, "Content is empty", nil)
		}
		h.log.Errorf("create document: %v", err)
		return response.ServiceError(c, "Failed to save document")
	}

	return response.Created(c, doc)
}

// List handles GET /api/documents
// @Summary      List documents
// @Tags         Documents
// @Produce      json
// @Success      200 {object} model.DocumentListResponse
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	docs, err := h.service.List(c.UserContext())
	if err != nil {
		h.log.Errorf("list documents: %v", err)
		return response.ServiceError(c, "Failed to list documents")
	}
	if docs == nil {
		docs = []*model.Document{}
	}
	return response.OK(c, model.DocumentListResponse{Documents: docs})
}

// Get handles GET /api/documents/:id
// @Summary      Get document
// @Tags         Documents
// @Produce      json
// @Param        id path string true "Document ID"
// @Success      200 {object} model.Document
// @Failure      404 {object} response.ErrorResponse
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	doc, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			return response.NotFound(c, "Document not found")
		}
		h.log.Errorf("get document: %v", err)
		return response.ServiceError(c, "Failed to load document")
	}
	return response.OK(c, doc)
}

// Delete handles DELETE /api/documents/:id
// @Summary      Delete document
// @Tags         Documents
// @Param        id path string true "Document ID"
// @Success      204 "No Content"
// @Failure      404 {object} response.ErrorResponse
// @Router       /api/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			return response.NotFound(c, "Document not found")
		}
		h.log.Errorf("delete document: %v", err)
		return response.ServiceError(c, "Failed to delete document")
	}
	return response.NoContent(c)
}
