package transport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/documents_api/internal/models"
)

func fixedClock(t *testing.T) {
	t.Helper()
	orig := Clock
	Clock = func() time.Time { return time.UnixMilli(1700000000123) }
	t.Cleanup(func() { Clock = orig })
}

func TestBuildDocument(t *testing.T) {
	fixedClock(t)

	raw, err := json.Marshal(BuildDocument(models.Document{ID: "65a1f0c2e4b0a1b2c3d4e5f6", Title: "Dune", Author: "Frank Herbert"}))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"responseHeader": {"responseTimestamp": {"epochMillis": 1700000000123}},
		"results": {"document": {"_id": "65a1f0c2e4b0a1b2c3d4e5f6", "title": "Dune", "author": "Frank Herbert"}}
	}`, string(raw))
}

func TestBuildDocumentList_EmptyIsArray(t *testing.T) {
	fixedClock(t)

	raw, err := json.Marshal(BuildDocumentList(nil, 0, 0, 20))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"responseHeader": {"responseTimestamp": {"epochMillis": 1700000000123}},
		"results": {"documents": [], "total": 0, "page": 0, "size": 20}
	}`, string(raw))
}

func TestBuildUser_OmitsPassword(t *testing.T) {
	fixedClock(t)

	raw, err := json.Marshal(BuildUser(models.User{ID: "65a1f0c2e4b0a1b2c3d4e5f6", Email: "a@b.com", Password: "secret123"}))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.Contains(t, string(raw), `"email":"a@b.com"`)
}
