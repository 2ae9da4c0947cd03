// Package api defines the wire-level request and response structures of
// the Replicate HTTP API, documented at
// https://replicate.com/docs/reference/http, together with the error
// kinds every accessor surfaces.
package api

// PredictionURLs are the server-provided links for operating on a
// prediction or training.
type PredictionURLs struct {
	Get    string `json:"get"`
	Cancel string `json:"cancel"`
}

// Prediction is the full entity returned by POST /predictions and
// GET /predictions/{id}.
//
// Input is an arbitrary key/value mapping and Output an arbitrary JSON
// value; their shapes are decided by the model being invoked. Output and
// Error are mutually exclusive: check Status before reading either.
type Prediction struct {
	ID      string         `json:"id"`
	Version string         `json:"version"`
	URLs    PredictionURLs `json:"urls"`

	CreatedAt   string  `json:"created_at"`
	StartedAt   *string `json:"started_at,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty"`

	Source *Source `json:"source,omitempty"`
	Status Status  `json:"status"`

	Input  map[string]any `json:"input"`
	Output any            `json:"output,omitempty"`

	Error   *string        `json:"error,omitempty"`
	Logs    *string        `json:"logs,omitempty"`
	Metrics map[string]any `json:"metrics,omitempty"`
}

// PredictionSummary is one item of the paginated prediction list.
type PredictionSummary struct {
	ID      string         `json:"id"`
	Version string         `json:"version"`
	URLs    PredictionURLs `json:"urls"`

	CreatedAt   string  `json:"created_at"`
	StartedAt   string  `json:"started_at"`
	CompletedAt *string `json:"completed_at,omitempty"`

	Source *Source `json:"source,omitempty"`
	Status Status  `json:"status"`
}

// PredictionPage is the envelope of GET /predictions.
type PredictionPage struct {
	Previous *string             `json:"previous"`
	Next     *string             `json:"next"`
	Results  []PredictionSummary `json:"results"`
}

// Model is the entity returned by GET /models/{owner}/{name}.
type Model struct {
	URL string `json:"url"`

	Owner       string `json:"owner"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`

	GithubURL  *string `json:"github_url,omitempty"`
	PaperURL   *string `json:"paper_url,omitempty"`
	LicenseURL *string `json:"license_url,omitempty"`

	RunCount      *int    `json:"run_count,omitempty"`
	CoverImageURL *string `json:"cover_image_url,omitempty"`

	DefaultExample *Prediction   `json:"default_example,omitempty"`
	LatestVersion  *ModelVersion `json:"latest_version,omitempty"`
}

// ModelVersion is the entity returned by
// GET /models/{owner}/{name}/versions/{id}.
type ModelVersion struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`

	CogVersion string `json:"cog_version"`

	OpenAPISchema map[string]any `json:"openapi_schema"`
}

// ModelVersionPage is the envelope of GET /models/{owner}/{name}/versions.
type ModelVersionPage struct {
	Previous *string        `json:"previous"`
	Next     *string        `json:"next"`
	Results  []ModelVersion `json:"results"`
}

// Collection is the entity returned by GET /collections/{slug}.
type Collection struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Models      []Model `json:"models"`
}

// CollectionSummary is one item of the collection list.
type CollectionSummary struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// CollectionPage is the envelope of GET /collections.
type CollectionPage struct {
	Previous *string             `json:"previous"`
	Next     *string             `json:"next"`
	Results  []CollectionSummary `json:"results"`
}

// Training is the entity returned by the training endpoints. It shares
// the prediction status lifecycle but carries string-typed inputs and
// outputs.
type Training struct {
	ID      string `json:"id"`
	Version string `json:"version"`

	Status Status `json:"status"`

	Input  map[string]string `json:"input,omitempty"`
	Output map[string]string `json:"output,omitempty"`

	Error            *string `json:"error,omitempty"`
	Logs             *string `json:"logs,omitempty"`
	WebhookCompleted *string `json:"webhook_completed,omitempty"`

	CreatedAt   string  `json:"created_at"`
	StartedAt   *string `json:"started_at,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

// TrainingSummary is one item of the paginated training list.
type TrainingSummary struct {
	ID      string         `json:"id"`
	Version string         `json:"version"`
	URLs    PredictionURLs `json:"urls"`

	CreatedAt   string `json:"created_at"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at"`

	Source Source `json:"source"`
	Status Status `json:"status"`
}

// TrainingPage is the envelope of GET /trainings.
type TrainingPage struct {
	Previous *string           `json:"previous"`
	Next     *string           `json:"next"`
	Results  []TrainingSummary `json:"results"`
}
