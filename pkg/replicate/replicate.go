// Package replicate is the entry point of the client library. It
// composes the configuration and the per-resource accessors into one
// value and offers a synchronous Run convenience.
//
// Basic usage:
//
//	cfg, err := config.FromEnv()
//	if err != nil { ... }
//	rep, err := replicate.New(cfg)
//	if err != nil { ... }
//
//	out, err := rep.Run(ctx,
//		"stability-ai/stable-diffusion:27b93a2413e7f36cd83da926f3656280b2931564ff050bf9575f1fdf9bcd7478",
//		map[string]any{"prompt": "a 19th century portrait of a wombat gentleman"})
package replicate

import (
	"context"

	"github.com/mlship/replicate-go/pkg/api"
	"github.com/mlship/replicate-go/pkg/client"
	"github.com/mlship/replicate-go/pkg/collection"
	"github.com/mlship/replicate-go/pkg/config"
	"github.com/mlship/replicate-go/pkg/model"
	"github.com/mlship/replicate-go/pkg/prediction"
	"github.com/mlship/replicate-go/pkg/retry"
	"github.com/mlship/replicate-go/pkg/training"
)

// Replicate bundles the accessors for every supported endpoint group.
type Replicate struct {
	cfg config.Config

	Predictions *prediction.Service
	Models      *model.Service
	Trainings   *training.Service
	Collections *collection.Service
}

// New validates cfg and builds a client. A missing token is returned as
// an error here rather than aborting the process; exiting is a caller's
// decision.
func New(cfg config.Config) (*Replicate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	requester := client.New(cfg)
	policy := retry.NewPolicy(cfg.MaxPolls, retry.ConstantDelay(cfg.PollInterval))

	return &Replicate{
		cfg:         cfg,
		Predictions: prediction.NewService(requester, policy),
		Models:      model.NewService(requester),
		Trainings:   training.NewService(requester),
		Collections: collection.NewService(requester),
	}, nil
}

// Config returns a copy of the configuration the client was built with.
func (r *Replicate) Config() config.Config { return r.cfg }

// Run creates a prediction and blocks until it reaches a terminal
// status, returning the final entity. Failed and canceled runs come
// back with a nil error; inspect the entity's Status and Error fields.
func (r *Replicate) Run(ctx context.Context, ref string, input map[string]any) (*api.Prediction, error) {
	h, err := r.Predictions.Create(ctx, ref, input)
	if err != nil {
		return nil, err
	}
	return h.Wait(ctx)
}
