package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/songlesson/api/internal/client"
	"github.com/songlesson/api/internal/extract"
	"github.com/songlesson/api/internal/logging"
	"github.com/songlesson/api/internal/model"
	"github.com/songlesson/api/internal/store"
)

// DocumentService stores lesson documents. Original files go to object
// storage when it is configured; the extracted text always goes to the store.
type DocumentService struct {
	store   store.Store
	storage client.StorageClient
	log     logging.Logger
}

// NewDocumentService creates a new document service. storage may be nil.
func NewDocumentService(st store.Store, storage client.StorageClient) *DocumentService {
	return &DocumentService{
		store:   st,
		storage: storage,
		log:     logging.New("documents"),
	}
}

// DocumentKey is the object storage key of an uploaded file
func DocumentKey(id, filename string) string {
	return path.Join("documents", id, filepath.Base(filename))
}

// Upload extracts the text of an uploaded file and stores the document
func (s *DocumentService) Upload(ctx context.Context, title, filename, contentType string, data []byte) (*model.Document, error) {
	text, err := extract.Text(filename, contentType, data)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrEmptyDocument
	}

	if title = strings.TrimSpace(title); title == "" {
		title = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc := &model.Document{
		ID:          uuid.New().String(),
		Title:       title,
		Filename:    filepath.Base(filename),
		ContentType: contentType,
		Size:        int64(len(data)),
		Content:     text,
		UploadedAt:  time.Now().UTC(),
	}

	if s.storage != nil {
		fileURL, err := s.storage.Upload(ctx, DocumentKey(doc.ID, doc.Filename), bytes.NewReader(data), contentType)
		if err != nil {
			return nil, fmt.Errorf("store original file: %w", err)
		}
		doc.FileURL = fileURL
	}

	if err := s.store.CreateDocument(ctx, doc); err != nil {
		if s.storage != nil {
			if delErr := s.storage.Delete(ctx, DocumentKey(doc.ID, doc.Filename)); delErr != nil {
				s.log.Warnf("failed to remove orphaned object for document %s: %v", doc.ID, delErr)
			}
		}
		return nil, fmt.Errorf("save document: %w", err)
	}

	s.log.WithField("document", doc.ID).Infof("uploaded %s (%d bytes, %d chars)", doc.Filename, doc.Size, len(text))
	return doc, nil
}

// CreateFromText stores pasted lesson text
func (s *DocumentService) CreateFromText(ctx context.Context, title, content string) (*model.Document, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyDocument
	}

	doc := &model.Document{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(title),
		ContentType: "text/plain",
		Size:        int64(len(content)),
		Content:     content,
		UploadedAt:  time.Now().UTC(),
	}

	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return doc, nil
}

// Get returns a document by id
func (s *DocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("load document: %w", err)
	}
	return doc, nil
}

// List returns all documents, newest first
func (s *DocumentService) List(ctx context.Context) ([]*model.Document, error) {
	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document and its stored file. Songs made from it keep
// their reference.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteDocument(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("delete document: %w", err)
	}

	if s.storage != nil && doc.FileURL != "" {
		if err := s.storage.Delete(ctx, DocumentKey(doc.ID, doc.Filename)); err != nil {
			s.log.WithField("document", id).Warnf("failed to remove stored file: %v", err)
		}
	}
	return nil
}
