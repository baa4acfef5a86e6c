package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"admissions-back/internal/model"
)

const identityIndexName = "identity-projections"

// SearchRepository mirrors the identity read model into Elasticsearch. It is
// fed best-effort after projection commits; the relational read model stays
// the source of truth.
type SearchRepository struct {
	es *elasticsearch.Client
}

func NewSearchRepository(es *elasticsearch.Client) *SearchRepository {
	return &SearchRepository{es: es}
}

func (r *SearchRepository) EnsureIndex(ctx context.Context) (err error) {
	exists, err := r.es.Indices.Exists([]string{identityIndexName}, r.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index existence: %w", err)
	}

	defer func() {
		if cErr := exists.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if exists.StatusCode == http.StatusOK {
		return nil
	}

	if exists.StatusCode != http.StatusNotFound {
		return fmt.Errorf("unexpected status on exists: %s", exists.Status())
	}

	mapping := `{
		"mappings": {
			"properties": {
				"kind":         { "type": "keyword" },
				"displayName":  { "type": "text" },
				"email":        { "type": "keyword" },
				"phone":        { "type": "keyword" },
				"status":       { "type": "keyword" },
				"version":      { "type": "long" },
				"createdAt":    { "type": "date" },
				"updatedAt":    { "type": "date" }
			}
		}
	}`

	res, err := r.es.Indices.Create(
		identityIndexName,
		r.es.Indices.Create.WithBody(strings.NewReader(mapping)),
		r.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	defer func() {
		if cErr := res.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if res.IsError() {
		return fmt.Errorf("index creation failed: %s", res.String())
	}

	return nil
}

func (r *SearchRepository) Index(ctx context.Context, projection *model.IdentityProjection) (err error) {
	data, err := json.Marshal(projection)
	if err != nil {
		return fmt.Errorf("failed to marshal projection: %w", err)
	}

	res, err := r.es.Index(
		identityIndexName,
		bytes.NewReader(data),
		r.es.Index.WithDocumentID(projection.ID.String()),
		r.es.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}

	defer func() {
		if cErr := res.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if res.IsError() {
		return fmt.Errorf("failed to index projection: %s", res.String())
	}

	return nil
}

func (r *SearchRepository) Remove(ctx context.Context, id string) (err error) {
	res, err := r.es.Delete(identityIndexName, id, r.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete projection document: %w", err)
	}

	defer func() {
		if cErr := res.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("failed to delete projection document: %s", res.String())
	}

	return nil
}

func (r *SearchRepository) Search(ctx context.Context, query string, size int) (results []model.IdentityProjection, err error) {
	body := map[string]any{
		"size": size,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"displayName^2", "email", "phone"},
			},
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := r.es.Search(
		r.es.Search.WithContext(ctx),
		r.es.Search.WithIndex(identityIndexName),
		r.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	defer func() {
		if cErr := res.Body.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close response body: %w", err, cErr)
		}
	}()

	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source model.IdentityProjection `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	for _, hit := range parsed.Hits.Hits {
		results = append(results, hit.Source)
	}

	return results, nil
}
