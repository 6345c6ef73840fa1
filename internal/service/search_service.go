package service

import (
	"context"
	"encoding/json"
	"log"

	"anoa.com/homeboard/internal/model"
	"github.com/meilisearch/meilisearch-go"
)

// SearchService keeps feed posts searchable. It is optional: when no
// Meilisearch host is configured a nil service is wired and indexing is
// skipped.
type SearchService interface {
	IndexPost(post *model.Post) error
	DeletePost(id string) error
	Search(ctx context.Context, query string) ([]SearchHit, error)
}

type SearchHit struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	CreatedAt int64  `json:"created_at"`
}

type searchService struct {
	client meilisearch.ServiceManager
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{client: client}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	sortable := []string{"created_at"}
	if _, err := s.client.Index("posts").UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("failed to configure posts index: %v", err)
	}
}

func (s *searchService) IndexPost(post *model.Post) error {
	doc := SearchHit{
		ID:        post.ID.String(),
		Content:   post.Content,
		Author:    post.User.Username,
		CreatedAt: post.CreatedAt.Unix(),
	}

	primaryKey := "id"
	_, err := s.client.Index("posts").AddDocuments([]SearchHit{doc}, &primaryKey)
	return err
}

func (s *searchService) DeletePost(id string) error {
	_, err := s.client.Index("posts").DeleteDocument(id)
	return err
}

func (s *searchService) Search(ctx context.Context, query string) ([]SearchHit, error) {
	resp, err := s.client.Index("posts").SearchWithContext(ctx, query, &meilisearch.SearchRequest{
		Limit: 50,
		Sort:  []string{"created_at:desc"},
	})
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(resp.Hits))
	for _, raw := range resp.Hits {
		buf, err := json.Marshal(raw)
		if err != nil {
			continue
		}
		var hit SearchHit
		if err := json.Unmarshal(buf, &hit); err != nil {
			continue
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
