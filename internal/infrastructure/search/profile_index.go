// Package search keeps profiles searchable in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/devconnector-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// ProfileIndex stores one document per profile, keyed by the owning user id.
type ProfileIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewProfileIndex(es *elasticsearch.Client, index string) *ProfileIndex {
	return &ProfileIndex{ES: es, IndexName: index}
}

type profileDoc struct {
	UserID         string    `json:"user_id"`
	Name           string    `json:"name,omitempty"`
	Status         string    `json:"status"`
	Company        string    `json:"company,omitempty"`
	Location       string    `json:"location,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	GitHubUsername string    `json:"githubusername,omitempty"`
	Skills         []string  `json:"skills"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toDoc(p *entity.Profile) profileDoc {
	d := profileDoc{
		UserID:         p.UserID,
		Status:         p.Status,
		Company:        p.Company,
		Location:       p.Location,
		Bio:            p.Bio,
		GitHubUsername: p.GitHubUsername,
		Skills:         p.Skills,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Owner != nil {
		d.Name = p.Owner.Name
	}
	return d
}

func (x *ProfileIndex) Index(ctx context.Context, p *entity.Profile) error {
	b, err := json.Marshal(toDoc(p))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: p.UserID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

// Delete removes the document of userID. A missing document is not an error.
func (x *ProfileIndex) Delete(ctx context.Context, userID string) error {
	req := esapi.DeleteRequest{Index: x.IndexName, DocumentID: userID}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search runs a multi_match query and returns matching user ids, best first.
func (x *ProfileIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"skills^3", "status^2", "name^2", "company", "location", "bio", "githubusername"},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.IndexName), x.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusNotFound {
		// index not created yet
		return []string{}, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.ID)
	}
	return out, nil
}
