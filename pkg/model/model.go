// Package model implements the model and model-version lookup
// endpoints.
package model

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mlship/replicate-go/pkg/api"
	"github.com/mlship/replicate-go/pkg/client"
)

// Service is the stateless accessor for the model endpoints.
type Service struct {
	requester client.Requester
	versions  *VersionService
}

// NewService builds a Service.
func NewService(requester client.Requester) *Service {
	return &Service{
		requester: requester,
		versions:  &VersionService{requester: requester},
	}
}

// Get fetches a model's metadata by owner and name.
func (s *Service) Get(ctx context.Context, owner, name string) (*api.Model, error) {
	url := fmt.Sprintf("%s/models/%s/%s", s.requester.BaseURL(), owner, name)
	data, err := s.requester.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	var m api.Model
	if err := client.Decode(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Versions returns the accessor for the model's version endpoints.
func (s *Service) Versions() *VersionService { return s.versions }

// VersionService is the stateless accessor for the version endpoints.
type VersionService struct {
	requester client.Requester
}

// Get fetches one version of a model.
func (s *VersionService) Get(ctx context.Context, owner, name, versionID string) (*api.ModelVersion, error) {
	url := fmt.Sprintf("%s/models/%s/%s/versions/%s", s.requester.BaseURL(), owner, name, versionID)
	data, err := s.requester.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	var v api.ModelVersion
	if err := client.Decode(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// List fetches one page of a model's versions.
func (s *VersionService) List(ctx context.Context, owner, name string) (*api.ModelVersionPage, error) {
	url := fmt.Sprintf("%s/models/%s/%s/versions", s.requester.BaseURL(), owner, name)
	data, err := s.requester.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	var page api.ModelVersionPage
	if err := client.Decode(data, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
