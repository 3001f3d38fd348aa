// Package mongo implements the repositories on top of MongoDB collections.
package mongo

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Skotchmaster/documents_api/internal/models"
	"github.com/Skotchmaster/documents_api/internal/repo"
)

type documentRecord struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Title   string             `bson:"title"`
	Author  string             `bson:"author"`
	Summary string             `bson:"summary,omitempty"`
}

func (r documentRecord) model() models.Document {
	return models.Document{
		ID:      r.ID.Hex(),
		Title:   r.Title,
		Author:  r.Author,
		Summary: r.Summary,
	}
}

type userRecord struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
}

func (r userRecord) model() models.User {
	return models.User{
		ID:       r.ID.Hex(),
		Email:    r.Email,
		Password: r.Password,
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repo.ErrInvalidID
	}
	return oid, nil
}
