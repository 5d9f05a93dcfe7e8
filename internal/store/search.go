package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	stderrors "match-workers/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// JobSearch prefilters the active job set with an Elasticsearch keyword query
// before coarse scoring. Optional: when disabled the scorer works off the
// PostgreSQL page instead.
type JobSearch struct {
	es    *elasticsearch.Client
	index string
}

func NewJobSearch(es *elasticsearch.Client, index string) *JobSearch {
	return &JobSearch{es: es, index: index}
}

// SearchJobHashes runs a multi_match over title/description/industry with a
// post_date floor and returns the matching job hashes by relevance.
func (s *JobSearch) SearchJobHashes(ctx context.Context, keywords string, postedAfter time.Time, size int) ([]string, error) {
	if strings.TrimSpace(keywords) == "" {
		return nil, nil
	}
	if size <= 0 {
		size = 200
	}

	queryBody := map[string]interface{}{
		"_source": []string{"job_hash"},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":  keywords,
							"fields": []string{"title^3", "description^2", "industry"},
							"type":   "best_fields",
						},
					},
				},
				"filter": []interface{}{
					map[string]interface{}{
						"range": map[string]interface{}{
							"post_date": map[string]interface{}{
								"gte": postedAfter.Format(time.RFC3339),
							},
						},
					},
				},
			},
		},
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.es)
	if err != nil {
		return nil, stderrors.NewSearchQueryFailedError(s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, stderrors.NewSearchQueryFailedError(s.index, fmt.Errorf("status %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source struct {
					JobHash string `json:"job_hash"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, stderrors.NewSearchQueryFailedError(s.index, err)
	}

	hashes := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		if hit.Source.JobHash != "" {
			hashes = append(hashes, hit.Source.JobHash)
		}
	}
	return hashes, nil
}
