package store

import (
	"strings"

	"github.com/blevesearch/bleve"
	"github.com/webpilot-ai/webpilot/internal/agent/core"
)

// SearchIndex is an in-memory full-text index over task records.
type SearchIndex struct {
	index bleve.Index
}

type taskDoc struct {
	Description string `json:"description"`
	Status      string `json:"status"`
	StepLog     string `json:"step_log"`
	Error       string `json:"error"`
}

func NewSearchIndex() (*SearchIndex, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	return &SearchIndex{index: idx}, nil
}

// Index adds or replaces a task document.
func (s *SearchIndex) Index(task core.Task) error {
	doc := taskDoc{
		Description: task.Description,
		Status:      string(task.Status),
		StepLog:     strings.Join(task.StepLog, "\n"),
		Error:       task.Error,
	}
	return s.index.Index(task.ID, doc)
}

// Search returns the IDs of the best-matching tasks.
func (s *SearchIndex) Search(q string, k int) ([]string, error) {
	if k <= 0 {
		k = 10
	}
	query := bleve.NewQueryStringQuery(q)
	req := bleve.NewSearchRequestOptions(query, k, 0, false)
	res, err := s.index.Search(req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
