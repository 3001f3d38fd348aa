package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/documents_api/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid id")
)

const (
	DocumentsCollection = "documents"
	UsersCollection     = "users"
)

// DocumentFilter narrows Find. Empty fields match everything.
type DocumentFilter struct {
	Title  string
	Author string
}

// DocumentPatch carries the fields of a partial update; nil means unchanged.
type DocumentPatch struct {
	Title   *string
	Author  *string
	Summary *string
}

func (p DocumentPatch) Fields() map[string]any {
	out := map[string]any{}
	if p.Title != nil {
		out["title"] = *p.Title
	}
	if p.Author != nil {
		out["author"] = *p.Author
	}
	if p.Summary != nil {
		out["summary"] = *p.Summary
	}
	return out
}

type DocumentRepo interface {
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	Find(ctx context.Context, filter DocumentFilter, page, pageSize int) ([]models.Document, int64, error)
	FindByID(ctx context.Context, id string) (*models.Document, error)
	Update(ctx context.Context, id string, patch DocumentPatch) (*models.Document, error)
	Delete(ctx context.Context, id string) error
}

type UserRepo interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// FindByEmail returns (nil, nil) when no user has the email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
