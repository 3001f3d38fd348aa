// Package gormrepo implements the repositories on a SQL database through gorm.
// Identifiers are generated as 24-hex-character ObjectIDs so both storage
// backends hand out the same kind of id.
package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"

	"github.com/Skotchmaster/documents_api/internal/models"
	"github.com/Skotchmaster/documents_api/internal/repo"
	"github.com/Skotchmaster/documents_api/internal/util"
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

// Documents and Users expose the repo as the two repository interfaces.
func (r *GormRepo) Documents() repo.DocumentRepo { return documents{r} }
func (r *GormRepo) Users() repo.UserRepo         { return users{r} }

type documents struct{ r *GormRepo }

func byFilter(f repo.DocumentFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Title != "" {
			db = db.Where("title = ?", f.Title)
		}
		if f.Author != "" {
			db = db.Where("author = ?", f.Author)
		}
		return db
	}
}

// normalizeID returns the lowercase hex form ids are stored in, so an id
// written in uppercase finds the same row it does on MongoDB.
func normalizeID(id string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", repo.ErrInvalidID
	}
	return oid.Hex(), nil
}

func (d documents) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	out := *doc
	if out.ID == "" {
		out.ID = primitive.NewObjectID().Hex()
	} else {
		id, err := normalizeID(out.ID)
		if err != nil {
			return nil, err
		}
		out.ID = id
	}
	if err := d.r.DB.WithContext(ctx).Create(&out).Error; err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return &out, nil
}

func (d documents) Find(ctx context.Context, filter repo.DocumentFilter, page, pageSize int) ([]models.Document, int64, error) {
	var total int64
	if err := d.r.DB.WithContext(ctx).Model(&models.Document{}).Scopes(byFilter(filter)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	offset, limit := util.Calculate(page, pageSize)
	items := make([]models.Document, 0, limit)
	if err := d.r.DB.WithContext(ctx).
		Model(&models.Document{}).
		Scopes(byFilter(filter)).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("find documents: %w", err)
	}
	return items, total, nil
}

func (d documents) FindByID(ctx context.Context, id string) (*models.Document, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	var doc models.Document
	if err := d.r.DB.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}
	return &doc, nil
}

func (d documents) Update(ctx context.Context, id string, patch repo.DocumentPatch) (*models.Document, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	if fields := patch.Fields(); len(fields) > 0 {
		res := d.r.DB.WithContext(ctx).Model(&models.Document{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, fmt.Errorf("update document %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, repo.ErrNotFound
		}
	}
	return d.FindByID(ctx, id)
}

func (d documents) Delete(ctx context.Context, id string) error {
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	res := d.r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Document{})
	if res.Error != nil {
		return fmt.Errorf("delete document %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type users struct{ r *GormRepo }

func (u users) Create(ctx context.Context, user *models.User) (*models.User, error) {
	rec := *user
	rec.ID = primitive.NewObjectID().Hex()
	if err := u.r.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	rec.Password = ""
	return &rec, nil
}

func (u users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := u.r.DB.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}
