package gormrepo

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/documents_api/internal/db"
	"github.com/Skotchmaster/documents_api/internal/models"
	"github.com/Skotchmaster/documents_api/internal/repo"
)

func newSQLite(t *testing.T) *GormRepo {
	t.Helper()
	gdb, err := db.Open(context.Background(), "sqlite", "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return New(gdb)
}

func strPtr(s string) *string { return &s }

func TestDocuments_CreateAndFindByID(t *testing.T) {
	docs := newSQLite(t).Documents()
	ctx := context.Background()

	created, err := docs.Create(ctx, &models.Document{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)
	assert.True(t, primitive.IsValidObjectID(created.ID))

	got, err := docs.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestDocuments_FindFiltersAndPages(t *testing.T) {
	docs := newSQLite(t).Documents()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := docs.Create(ctx, &models.Document{Title: fmt.Sprintf("Book %d", i), Author: "Ann"})
		require.NoError(t, err)
	}
	_, err := docs.Create(ctx, &models.Document{Title: "Other", Author: "Bob"})
	require.NoError(t, err)

	items, total, err := docs.Find(ctx, repo.DocumentFilter{}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
	assert.Len(t, items, 6)

	items, total, err = docs.Find(ctx, repo.DocumentFilter{Author: "Ann"}, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, items, 2)

	items, total, err = docs.Find(ctx, repo.DocumentFilter{Title: "Other"}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Bob", items[0].Author)
}

func TestDocuments_UpdateMergesFields(t *testing.T) {
	docs := newSQLite(t).Documents()
	ctx := context.Background()

	created, err := docs.Create(ctx, &models.Document{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	updated, err := docs.Update(ctx, created.ID, repo.DocumentPatch{Summary: strPtr("spice")})
	require.NoError(t, err)
	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, "Frank Herbert", updated.Author)
	assert.Equal(t, "spice", updated.Summary)

	same, err := docs.Update(ctx, created.ID, repo.DocumentPatch{})
	require.NoError(t, err)
	assert.Equal(t, updated, same)

	_, err = docs.Update(ctx, primitive.NewObjectID().Hex(), repo.DocumentPatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestDocuments_Delete(t *testing.T) {
	docs := newSQLite(t).Documents()
	ctx := context.Background()

	created, err := docs.Create(ctx, &models.Document{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	require.NoError(t, docs.Delete(ctx, created.ID))
	_, err = docs.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.ErrorIs(t, docs.Delete(ctx, created.ID), repo.ErrNotFound)
}

func TestDocuments_InvalidID(t *testing.T) {
	docs := newSQLite(t).Documents()
	ctx := context.Background()

	_, err := docs.FindByID(ctx, "123")
	assert.ErrorIs(t, err, repo.ErrInvalidID)
	_, err = docs.Update(ctx, "zz", repo.DocumentPatch{})
	assert.ErrorIs(t, err, repo.ErrInvalidID)
	assert.ErrorIs(t, docs.Delete(ctx, "not-an-id"), repo.ErrInvalidID)
}

func TestUsers_CreateAndFindByEmail(t *testing.T) {
	users := newSQLite(t).Users()
	ctx := context.Background()

	missing, err := users.FindByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := users.Create(ctx, &models.User{Email: "reader@example.com", Password: "abc123"})
	require.NoError(t, err)
	assert.Empty(t, created.Password)
	assert.True(t, primitive.IsValidObjectID(created.ID))

	found, err := users.FindByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "abc123", found.Password)
}

func TestDocuments_FindPropagatesDBErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "documents"`)).
		WillReturnError(fmt.Errorf("connection reset"))

	_, _, err = New(gdb).Documents().Find(context.Background(), repo.DocumentFilter{}, 0, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count documents")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocuments_UppercaseIDFindsSameRow(t *testing.T) {
	docs := newSQLite(t).Documents()
	ctx := context.Background()

	created, err := docs.Create(ctx, &models.Document{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)
	upper := strings.ToUpper(created.ID)

	got, err := docs.FindByID(ctx, upper)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	updated, err := docs.Update(ctx, upper, repo.DocumentPatch{Summary: strPtr("spice")})
	require.NoError(t, err)
	assert.Equal(t, "spice", updated.Summary)

	require.NoError(t, docs.Delete(ctx, upper))
	_, err = docs.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
