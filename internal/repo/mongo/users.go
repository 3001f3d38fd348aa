package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Skotchmaster/documents_api/internal/models"
)

type UserRepo struct {
	Col *mongo.Collection
}

func NewUserRepo(col *mongo.Collection) *UserRepo {
	return &UserRepo{Col: col}
}

// Create inserts the user and returns it without the password.
func (r *UserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	rec := userRecord{Email: user.Email, Password: user.Password}

	res, err := r.Col.InsertOne(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert user: unexpected id type %T", res.InsertedID)
	}
	return &models.User{ID: oid.Hex(), Email: rec.Email}, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var rec userRecord
	if err := r.Col.FindOne(ctx, bson.M{"email": email}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	user := rec.model()
	return &user, nil
}
