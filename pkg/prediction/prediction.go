// Package prediction implements the prediction lifecycle: creation,
// status polling, cancellation and the paginated listing endpoints.
package prediction

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mlship/replicate-go/pkg/api"
	"github.com/mlship/replicate-go/pkg/client"
	"github.com/mlship/replicate-go/pkg/identifier"
	"github.com/mlship/replicate-go/pkg/retry"
)

// Request is the creation body of POST /predictions. Only the version
// part of a reference is sent; the model owner/name is not.
type Request struct {
	Version string         `json:"version"`
	Input   map[string]any `json:"input"`
}

// Service is the stateless accessor for the prediction endpoints.
type Service struct {
	requester client.Requester
	policy    retry.Policy
}

// NewService builds a Service. The retry policy is handed to every
// Handle created through it and drives their Wait loops.
func NewService(requester client.Requester, policy retry.Policy) *Service {
	return &Service{requester: requester, policy: policy}
}

// Create starts a prediction for the given "owner/name:version"
// reference and input mapping, and returns a Handle owning the created
// prediction's local state.
func (s *Service) Create(ctx context.Context, ref string, input map[string]any) (*Handle, error) {
	id, err := identifier.Parse(ref)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/predictions", s.requester.BaseURL())
	data, err := s.requester.Do(ctx, http.MethodPost, url, Request{Version: id.Version, Input: input})
	if err != nil {
		return nil, err
	}

	var p api.Prediction
	if err := client.Decode(data, &p); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"prediction": p.ID,
		"status":     p.Status,
	}).Debug("prediction created")

	return &Handle{requester: s.requester, policy: s.policy, entity: p}, nil
}

// Get fetches one prediction by id.
func (s *Service) Get(ctx context.Context, id string) (*api.Prediction, error) {
	url := fmt.Sprintf("%s/predictions/%s", s.requester.BaseURL(), id)
	data, err := s.requester.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	var p api.Prediction
	if err := client.Decode(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List fetches one page of the caller's predictions.
func (s *Service) List(ctx context.Context) (*api.PredictionPage, error) {
	url := fmt.Sprintf("%s/predictions", s.requester.BaseURL())
	data, err := s.requester.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	var page api.PredictionPage
	if err := client.Decode(data, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Attach fetches an existing prediction and wraps it in a Handle, so a
// prediction created elsewhere can be reloaded, canceled or waited on.
func (s *Service) Attach(ctx context.Context, id string) (*Handle, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Handle{requester: s.requester, policy: s.policy, entity: *p}, nil
}
