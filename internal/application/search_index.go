package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
)

// Notifier is the downstream notification collaborator as seen from the
// workflow: enqueue and forget. helpers.RabbitPublisher satisfies it.
type Notifier interface {
	PublishJSON(ctx context.Context, body any) error
}

// indexApplication mirrors an application into Elasticsearch for the
// manual-review surface. Best-effort: indexing failures are logged, never
// returned to callers.
func indexApplication(ctx context.Context, es *elasticsearch.Client, index string, a *entity.Application, logger *logrus.Logger) {
	if es == nil || index == "" {
		return
	}
	doc := map[string]any{
		"id":           a.ID,
		"email":        a.Email,
		"full_name":    a.FullName,
		"institution":  a.Institution,
		"status":       string(a.Status),
		"submitted_at": a.SubmittedAt.Format(time.RFC3339Nano),
	}
	if a.ReviewedAt != nil {
		doc["reviewed_at"] = a.ReviewedAt.Format(time.RFC3339Nano)
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: index, DocumentID: a.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, es)
	if err != nil {
		if logger != nil {
			logger.WithError(err).WithField("application_id", a.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && logger != nil {
		logger.WithField("status", res.Status()).WithField("application_id", a.ID).Warn("es index response error")
	}
}

// searchApplications runs a multi_match query over the review-surface index.
func searchApplications(ctx context.Context, es *elasticsearch.Client, index, q string, size int) ([]map[string]any, error) {
	if es == nil || index == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "full_name", "institution", "status"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := es.Search(es.Search.WithContext(c), es.Search.WithIndex(index), es.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
