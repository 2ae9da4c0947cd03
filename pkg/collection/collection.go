// Package collection implements the model collection lookup endpoints.
package collection

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mlship/replicate-go/pkg/api"
	"github.com/mlship/replicate-go/pkg/client"
)

// Service is the stateless accessor for the collection endpoints.
type Service struct {
	requester client.Requester
}

// NewService builds a Service.
func NewService(requester client.Requester) *Service {
	return &Service{requester: requester}
}

// Get fetches a collection and its models by slug.
func (s *Service) Get(ctx context.Context, slug string) (*api.Collection, error) {
	url := fmt.Sprintf("%s/collections/%s", s.requester.BaseURL(), slug)
	data, err := s.requester.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	var c api.Collection
	if err := client.Decode(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// List fetches one page of collections.
func (s *Service) List(ctx context.Context) (*api.CollectionPage, error) {
	url := fmt.Sprintf("%s/collections", s.requester.BaseURL())
	data, err := s.requester.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	var page api.CollectionPage
	if err := client.Decode(data, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
