// Package training implements the training lifecycle endpoints. The
// shape mirrors predictions but no polling helper is provided.
package training

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mlship/replicate-go/pkg/api"
	"github.com/mlship/replicate-go/pkg/client"
)

// Options configure a new training run.
type Options struct {
	// Destination is the "owner/name" of the model the trained version
	// is pushed to.
	Destination string

	Input map[string]string

	Webhook             string
	WebhookEventsFilter []api.WebhookEvent
}

type createBody struct {
	Destination         string             `json:"destination"`
	Input               map[string]string  `json:"input"`
	Webhook             string             `json:"webhook"`
	WebhookEventsFilter []api.WebhookEvent `json:"webhook_events_filter,omitempty"`
}

// Service is the stateless accessor for the training endpoints.
type Service struct {
	requester client.Requester
}

// NewService builds a Service.
func NewService(requester client.Requester) *Service {
	return &Service{requester: requester}
}

// Create starts a training run for the given model version.
func (s *Service) Create(ctx context.Context, owner, name, versionID string, opts Options) (*api.Training, error) {
	url := fmt.Sprintf("%s/models/%s/%s/versions/%s/trainings", s.requester.BaseURL(), owner, name, versionID)
	body := createBody{
		Destination:         opts.Destination,
		Input:               opts.Input,
		Webhook:             opts.Webhook,
		WebhookEventsFilter: opts.WebhookEventsFilter,
	}
	data, err := s.requester.Do(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	var tr api.Training
	if err := client.Decode(data, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// Get fetches one training by id.
func (s *Service) Get(ctx context.Context, id string) (*api.Training, error) {
	url := fmt.Sprintf("%s/trainings/%s", s.requester.BaseURL(), id)
	data, err := s.requester.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	var tr api.Training
	if err := client.Decode(data, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// List fetches one page of the caller's trainings.
func (s *Service) List(ctx context.Context) (*api.TrainingPage, error) {
	url := fmt.Sprintf("%s/trainings", s.requester.BaseURL())
	data, err := s.requester.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	var page api.TrainingPage
	if err := client.Decode(data, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Cancel asks the server to cancel a training run.
func (s *Service) Cancel(ctx context.Context, id string) error {
	url := fmt.Sprintf("%s/trainings/%s/cancel", s.requester.BaseURL(), id)
	_, err := s.requester.Do(ctx, http.MethodPost, url, nil)
	return err
}
