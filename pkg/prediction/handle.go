package prediction

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mlship/replicate-go/pkg/api"
	"github.com/mlship/replicate-go/pkg/client"
	"github.com/mlship/replicate-go/pkg/retry"
)

// Handle owns one in-flight prediction's local state. The identifier is
// immutable after creation; every other field is replaced wholesale by
// Reload with whatever the server reports. The client never computes
// status transitions itself.
//
// A Handle is not safe for concurrent use. Canceling a prediction that
// another goroutine is waiting on is done by id through a separate
// Handle; server-side cancellation is idempotent.
type Handle struct {
	requester client.Requester
	policy    retry.Policy
	entity    api.Prediction
}

// Prediction returns a copy of the current local state.
func (h *Handle) Prediction() api.Prediction { return h.entity }

// ID returns the server-assigned identifier.
func (h *Handle) ID() string { return h.entity.ID }

// Status returns the last observed status.
func (h *Handle) Status() api.Status { return h.entity.Status }

// getURL prefers the server-provided self URL and falls back to
// rebuilding it from the base endpoint.
func (h *Handle) getURL() string {
	if h.entity.URLs.Get != "" {
		return h.entity.URLs.Get
	}
	return fmt.Sprintf("%s/predictions/%s", h.requester.BaseURL(), h.entity.ID)
}

func (h *Handle) cancelURL() string {
	if h.entity.URLs.Cancel != "" {
		return h.entity.URLs.Cancel
	}
	return fmt.Sprintf("%s/predictions/%s/cancel", h.requester.BaseURL(), h.entity.ID)
}

// Reload refetches the prediction and replaces every locally held field
// with the server's state.
func (h *Handle) Reload(ctx context.Context) error {
	data, err := h.requester.Do(ctx, http.MethodGet, h.getURL(), nil)
	if err != nil {
		return err
	}
	var p api.Prediction
	if err := client.Decode(data, &p); err != nil {
		return err
	}
	h.entity = p
	return nil
}

// Cancel asks the server to cancel the prediction, then reloads so the
// local state reflects the authoritative post-cancel status. Whichever
// of the two requests fails first is surfaced.
func (h *Handle) Cancel(ctx context.Context) error {
	if _, err := h.requester.Do(ctx, http.MethodPost, h.cancelURL(), nil); err != nil {
		return err
	}
	return h.Reload(ctx)
}

// Wait polls until the prediction reaches a terminal status and returns
// the final entity. Failed and canceled predictions are still returned
// with a nil error: inspect Status and Error on the entity. When the
// policy's attempt budget runs out first, Wait returns
// *api.ExhaustedError; a zero budget polls until terminal.
func (h *Handle) Wait(ctx context.Context) (*api.Prediction, error) {
	w := h.policy.Start()
	polls := 0

	for {
		if err := h.Reload(ctx); err != nil {
			return nil, err
		}
		polls++

		logrus.WithFields(logrus.Fields{
			"prediction": h.entity.ID,
			"status":     h.entity.Status,
			"poll":       polls,
		}).Debug("prediction polled")

		if h.entity.Status.Terminal() {
			final := h.entity
			return &final, nil
		}

		if h.policy.MaxAttempts > 0 && polls >= h.policy.MaxAttempts {
			return nil, &api.ExhaustedError{
				PredictionID: h.entity.ID,
				LastStatus:   h.entity.Status,
				Attempts:     polls,
			}
		}

		if err := w.Wait(ctx); err != nil {
			return nil, err
		}
	}
}
