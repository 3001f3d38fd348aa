package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/documents_api/internal/models"
)

// source is the indexed body; the document id travels as the ES _id.
type source struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Summary string `json:"summary,omitempty"`
}

type Index struct {
	Client *elasticsearch.Client
	Name   string
	// Refresh makes writes visible to search immediately. Tests set it.
	Refresh bool
}

func NewIndex(client *elasticsearch.Client, name string) *Index {
	return &Index{Client: client, Name: name}
}

func (i *Index) IndexDocument(ctx context.Context, doc models.Document) error {
	body, err := json.Marshal(source{Title: doc.Title, Author: doc.Author, Summary: doc.Summary})
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	opts := []func(*esapi.IndexRequest){
		i.Client.Index.WithContext(ctx),
		i.Client.Index.WithDocumentID(doc.ID),
	}
	if i.Refresh {
		opts = append(opts, i.Client.Index.WithRefresh("true"))
	}

	res, err := i.Client.Index(i.Name, bytes.NewReader(body), opts...)
	if err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}
	defer res.Body.Close()
	return responseError(res, "index document "+doc.ID)
}

// DeleteDocument removes the document; a document that was never indexed is
// not an error.
func (i *Index) DeleteDocument(ctx context.Context, id string) error {
	opts := []func(*esapi.DeleteRequest){i.Client.Delete.WithContext(ctx)}
	if i.Refresh {
		opts = append(opts, i.Client.Delete.WithRefresh("true"))
	}

	res, err := i.Client.Delete(i.Name, id, opts...)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError(res, "delete document "+id)
}

func (i *Index) Search(ctx context.Context, query string, from, size int) ([]models.Document, int64, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"title^2", "author", "summary"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, 0, fmt.Errorf("encode search: %w", err)
	}

	res, err := i.Client.Search(
		i.Client.Search.WithContext(ctx),
		i.Client.Search.WithIndex(i.Name),
		i.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if err := responseError(res, "search"); err != nil {
		return nil, 0, err
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string `json:"_id"`
				Source source `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, 0, fmt.Errorf("decode search: %w", err)
	}

	docs := make([]models.Document, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		docs[n] = models.Document{
			ID:      hit.ID,
			Title:   hit.Source.Title,
			Author:  hit.Source.Author,
			Summary: hit.Source.Summary,
		}
	}
	return docs, r.Hits.Total.Value, nil
}

func responseError(res *esapi.Response, op string) error {
	if !res.IsError() {
		return nil
	}
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("%s: %s: %s", op, res.Status(), body)
}
