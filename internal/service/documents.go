package service

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/documents_api/internal/logging"
	"github.com/Skotchmaster/documents_api/internal/models"
	"github.com/Skotchmaster/documents_api/internal/mykafka"
	"github.com/Skotchmaster/documents_api/internal/repo"
	"github.com/Skotchmaster/documents_api/internal/transport"
	"github.com/Skotchmaster/documents_api/internal/util"
)

var ErrSearchDisabled = errors.New("search is not configured")

type SearchIndex interface {
	IndexDocument(ctx context.Context, doc models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) ([]models.Document, int64, error)
}

type DocumentService struct {
	Repo   repo.DocumentRepo
	Events EventPublisher
	Index  SearchIndex
	Now    func() time.Time
}

func (s *DocumentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *DocumentService) Create(ctx context.Context, req transport.CreateDocumentRequest, userID string) (*models.Document, error) {
	doc, err := s.Repo.Create(ctx, &models.Document{
		Title:   req.Title,
		Author:  req.Author,
		Summary: req.Summary,
	})
	if err != nil {
		return nil, err
	}

	s.index(ctx, *doc)
	publish(ctx, s.Events, mykafka.DocumentEventsTopic, doc.ID, DocumentEvent{
		Type:       EventDocumentCreated,
		DocumentID: doc.ID,
		Title:      doc.Title,
		Author:     doc.Author,
		UserID:     userID,
		At:         s.now(),
	})
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, filter repo.DocumentFilter, page, size int) ([]models.Document, int64, error) {
	return s.Repo.Find(ctx, filter, page, size)
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *DocumentService) Update(ctx context.Context, id string, req transport.UpdateDocumentRequest, userID string) (*models.Document, error) {
	doc, err := s.Repo.Update(ctx, id, repo.DocumentPatch{
		Title:   req.Title,
		Author:  req.Author,
		Summary: req.Summary,
	})
	if err != nil {
		return nil, err
	}

	s.index(ctx, *doc)
	publish(ctx, s.Events, mykafka.DocumentEventsTopic, doc.ID, DocumentEvent{
		Type:       EventDocumentUpdated,
		DocumentID: doc.ID,
		Title:      doc.Title,
		Author:     doc.Author,
		UserID:     userID,
		At:         s.now(),
	})
	return doc, nil
}

func (s *DocumentService) Delete(ctx context.Context, id, userID string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.Index != nil {
		ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
		defer cancel()
		if err := s.Index.DeleteDocument(ictx, id); err != nil {
			logging.FromContext(ctx).Warn("search_unindex_error", "document_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.DocumentEventsTopic, id, DocumentEvent{
		Type:       EventDocumentDeleted,
		DocumentID: id,
		UserID:     userID,
		At:         s.now(),
	})
	return nil
}

// Search pages through the full-text index with the same page/size rules as
// List.
func (s *DocumentService) Search(ctx context.Context, query string, page, size int) ([]models.Document, int64, error) {
	if s.Index == nil {
		return nil, 0, ErrSearchDisabled
	}
	from, limit := util.Calculate(page, size)
	return s.Index.Search(ctx, query, from, limit)
}

func (s *DocumentService) index(ctx context.Context, doc models.Document) {
	if s.Index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.Index.IndexDocument(ctx, doc); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "document_id", doc.ID, "error", err)
	}
}
