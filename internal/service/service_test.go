package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/documents_api/internal/hash"
	"github.com/Skotchmaster/documents_api/internal/models"
	"github.com/Skotchmaster/documents_api/internal/mykafka"
	"github.com/Skotchmaster/documents_api/internal/repo"
	"github.com/Skotchmaster/documents_api/internal/tokens"
	"github.com/Skotchmaster/documents_api/internal/transport"
)

type published struct {
	topic string
	key   string
	event interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{topic, key, event})
	return f.err
}

type memDocs struct {
	docs map[string]models.Document
	next int
}

func newMemDocs() *memDocs { return &memDocs{docs: map[string]models.Document{}} }

func (m *memDocs) Create(_ context.Context, doc *models.Document) (*models.Document, error) {
	m.next++
	out := *doc
	out.ID = "65a1f0c2e4b0a1b2c3d4e5f" + string(rune('0'+m.next))
	m.docs[out.ID] = out
	return &out, nil
}

func (m *memDocs) Find(context.Context, repo.DocumentFilter, int, int) ([]models.Document, int64, error) {
	var out []models.Document
	for _, d := range m.docs {
		out = append(out, d)
	}
	return out, int64(len(out)), nil
}

func (m *memDocs) FindByID(_ context.Context, id string) (*models.Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &d, nil
}

func (m *memDocs) Update(_ context.Context, id string, patch repo.DocumentPatch) (*models.Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if patch.Title != nil {
		d.Title = *patch.Title
	}
	if patch.Author != nil {
		d.Author = *patch.Author
	}
	if patch.Summary != nil {
		d.Summary = *patch.Summary
	}
	m.docs[id] = d
	return &d, nil
}

func (m *memDocs) Delete(_ context.Context, id string) error {
	if _, ok := m.docs[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

type fakeIndex struct {
	indexed map[string]models.Document
	deleted []string
	err     error
}

func (f *fakeIndex) IndexDocument(_ context.Context, doc models.Document) error {
	if f.indexed == nil {
		f.indexed = map[string]models.Document{}
	}
	f.indexed[doc.ID] = doc
	return f.err
}

func (f *fakeIndex) DeleteDocument(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeIndex) Search(_ context.Context, _ string, from, size int) ([]models.Document, int64, error) {
	if from != 20 || size != 10 {
		return nil, 0, errors.New("unexpected paging")
	}
	return []models.Document{{ID: "x"}}, 1, nil
}

func TestDocumentService_CreateUpdateDelete(t *testing.T) {
	pub := &fakePublisher{}
	idx := &fakeIndex{}
	svc := &DocumentService{Repo: newMemDocs(), Events: pub, Index: idx}
	ctx := context.Background()

	doc, err := svc.Create(ctx, transport.CreateDocumentRequest{Title: "Dune", Author: "Frank Herbert", Summary: "spice"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", idx.indexed[doc.ID].Title)

	title := "Dune Messiah"
	updated, err := svc.Update(ctx, doc.ID, transport.UpdateDocumentRequest{Title: &title}, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", updated.Author)
	assert.Equal(t, "Dune Messiah", idx.indexed[doc.ID].Title)

	require.NoError(t, svc.Delete(ctx, doc.ID, "u1"))
	assert.Equal(t, []string{doc.ID}, idx.deleted)

	require.Len(t, pub.events, 3)
	types := []string{}
	for _, e := range pub.events {
		assert.Equal(t, mykafka.DocumentEventsTopic, e.topic)
		assert.Equal(t, doc.ID, e.key)
		types = append(types, e.event.(DocumentEvent).Type)
	}
	assert.Equal(t, []string{EventDocumentCreated, EventDocumentUpdated, EventDocumentDeleted}, types)
}

func TestDocumentService_SideEffectFailuresDoNotFail(t *testing.T) {
	svc := &DocumentService{
		Repo:   newMemDocs(),
		Events: &fakePublisher{err: errors.New("broker down")},
		Index:  &fakeIndex{err: errors.New("cluster red")},
	}

	doc, err := svc.Create(context.Background(), transport.CreateDocumentRequest{Title: "Dune", Author: "Frank Herbert"}, "")
	require.NoError(t, err)
	assert.NoError(t, svc.Delete(context.Background(), doc.ID, ""))
}

func TestDocumentService_NotFoundPassesThrough(t *testing.T) {
	pub := &fakePublisher{}
	svc := &DocumentService{Repo: newMemDocs(), Events: pub}

	err := svc.Delete(context.Background(), "65a1f0c2e4b0a1b2c3d4e5f6", "")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.Empty(t, pub.events)
}

func TestDocumentService_Search(t *testing.T) {
	svc := &DocumentService{Repo: newMemDocs()}
	_, _, err := svc.Search(context.Background(), "dune", 0, 10)
	assert.ErrorIs(t, err, ErrSearchDisabled)

	svc.Index = &fakeIndex{}
	docs, total, err := svc.Search(context.Background(), "dune", 2, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, docs, 1)
}

type memUsers struct {
	byEmail map[string]models.User
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if m.byEmail == nil {
		m.byEmail = map[string]models.User{}
	}
	stored := *u
	stored.ID = "65a1f0c2e4b0a1b2c3d4e5f6"
	m.byEmail[u.Email] = stored
	out := stored
	out.Password = ""
	return &out, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	users := &memUsers{}
	pub := &fakePublisher{}
	svc := &AuthService{
		Users:     users,
		Passwords: hash.Plain{},
		Secret:    []byte("secret"),
		TTL:       time.Hour,
		Events:    pub,
		Now:       func() time.Time { return now },
	}
	ctx := context.Background()

	user, err := svc.Register(ctx, transport.RegisterRequest{Email: "a@b.com", Password: "secret123", ConfirmPassword: "secret123"})
	require.NoError(t, err)
	assert.Empty(t, user.Password)
	assert.Equal(t, "secret123", users.byEmail["a@b.com"].Password)

	_, _, err = svc.Login(ctx, transport.LoginRequest{Email: "a@b.com", Password: "wrong1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	raw, claims, err := svc.Login(ctx, transport.LoginRequest{Email: "a@b.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.ID)
	assert.Equal(t, now.Add(time.Hour).UnixMilli(), claims.Expires)

	parsed, err := tokens.ParseAuthClaims(raw, []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", parsed.Email)

	require.Len(t, pub.events, 2)
	assert.Equal(t, EventUserRegistered, pub.events[0].event.(UserEvent).Type)
	assert.Equal(t, EventUserLoggedIn, pub.events[1].event.(UserEvent).Type)
}

func TestAuthService_BcryptPolicy(t *testing.T) {
	users := &memUsers{}
	svc := &AuthService{Users: users, Passwords: hash.Bcrypt{Cost: 4}, Secret: []byte("s"), TTL: time.Minute}
	ctx := context.Background()

	_, err := svc.Register(ctx, transport.RegisterRequest{Email: "a@b.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", users.byEmail["a@b.com"].Password)

	_, _, err = svc.Login(ctx, transport.LoginRequest{Email: "a@b.com", Password: "secret123"})
	assert.NoError(t, err)
}

func TestAuthService_UnknownEmail(t *testing.T) {
	svc := &AuthService{Users: &memUsers{}, Passwords: hash.Plain{}, Secret: []byte("s"), TTL: time.Minute}
	_, _, err := svc.Login(context.Background(), transport.LoginRequest{Email: "x@b.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
