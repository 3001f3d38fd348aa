package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/documents_api/internal/models"
	"github.com/Skotchmaster/documents_api/internal/repo"
	"github.com/Skotchmaster/documents_api/internal/util"
)

type DocumentRepo struct {
	Col *mongo.Collection
}

func NewDocumentRepo(col *mongo.Collection) *DocumentRepo {
	return &DocumentRepo{Col: col}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	rec := documentRecord{Title: doc.Title, Author: doc.Author, Summary: doc.Summary}
	if doc.ID != "" {
		oid, err := objectID(doc.ID)
		if err != nil {
			return nil, err
		}
		rec.ID = oid
	}

	res, err := r.Col.InsertOne(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert document: unexpected id type %T", res.InsertedID)
	}
	rec.ID = oid
	out := rec.model()
	return &out, nil
}

func (r *DocumentRepo) Find(ctx context.Context, filter repo.DocumentFilter, page, pageSize int) ([]models.Document, int64, error) {
	query := bson.M{}
	if filter.Title != "" {
		query["title"] = filter.Title
	}
	if filter.Author != "" {
		query["author"] = filter.Author
	}

	total, err := r.Col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	skip, limit := util.Calculate(page, pageSize)
	cur, err := r.Col.Find(ctx, query, options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, fmt.Errorf("find documents: %w", err)
	}

	var recs []documentRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, 0, fmt.Errorf("decode documents: %w", err)
	}

	items := make([]models.Document, 0, len(recs))
	for _, rec := range recs {
		items = append(items, rec.model())
	}
	return items, total, nil
}

func (r *DocumentRepo) FindByID(ctx context.Context, id string) (*models.Document, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var rec documentRecord
	if err := r.Col.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}
	doc := rec.model()
	return &doc, nil
}

// Update applies patch with $set and returns the document after the update.
// An empty patch degrades to a plain lookup; $set with no fields is rejected
// by the server.
func (r *DocumentRepo) Update(ctx context.Context, id string, patch repo.DocumentPatch) (*models.Document, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return r.FindByID(ctx, id)
	}

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(false).
		SetReturnDocument(options.After)

	var rec documentRecord
	err = r.Col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M(fields)}, opts).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("update document %s: %w", id, err)
	}
	doc := rec.model()
	return &doc, nil
}

func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
