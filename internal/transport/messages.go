package transport

import (
	"time"

	"github.com/Skotchmaster/documents_api/internal/models"
)

type ResponseTimestamp struct {
	EpochMillis int64 `json:"epochMillis"`
}

type ResponseHeader struct {
	ResponseTimestamp ResponseTimestamp `json:"responseTimestamp"`
}

// Envelope wraps every successful document and user response.
type Envelope struct {
	ResponseHeader ResponseHeader `json:"responseHeader"`
	Results        any            `json:"results"`
}

type DocumentResult struct {
	Document models.Document `json:"document"`
}

type DocumentListResult struct {
	Documents []models.Document `json:"documents"`
	Total     int64             `json:"total"`
	Page      int               `json:"page"`
	Size      int               `json:"size"`
}

type UserResult struct {
	User UserView `json:"user"`
}

// UserView is the public shape of a user; it has no password field.
type UserView struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

// Clock is swapped in tests.
var Clock = time.Now

func header() ResponseHeader {
	return ResponseHeader{ResponseTimestamp: ResponseTimestamp{EpochMillis: Clock().UnixMilli()}}
}

func BuildDocument(doc models.Document) Envelope {
	return Envelope{ResponseHeader: header(), Results: DocumentResult{Document: doc}}
}

func BuildDocumentList(docs []models.Document, total int64, page, size int) Envelope {
	if docs == nil {
		docs = []models.Document{}
	}
	return Envelope{
		ResponseHeader: header(),
		Results: DocumentListResult{
			Documents: docs,
			Total:     total,
			Page:      page,
			Size:      size,
		},
	}
}

func BuildUser(user models.User) Envelope {
	return Envelope{
		ResponseHeader: header(),
		Results:        UserResult{User: UserView{ID: user.ID, Email: user.Email}},
	}
}
