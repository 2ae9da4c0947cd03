package api

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of a prediction or training as reported
// by the API. Transitions are server-owned and monotonic:
// starting -> processing -> {succeeded | failed | canceled}.
type Status string

const (
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// Terminal reports whether no further transitions can occur.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// UnmarshalJSON rejects tokens outside the closed set. The wire values
// are exact lowercase strings.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch Status(raw) {
	case StatusStarting, StatusProcessing, StatusSucceeded, StatusFailed, StatusCanceled:
		*s = Status(raw)
		return nil
	}
	return fmt.Errorf("unknown prediction status %q", raw)
}

// Source records where a prediction was created from.
type Source string

const (
	SourceAPI Source = "api"
	SourceWeb Source = "web"
)

func (s *Source) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch Source(raw) {
	case SourceAPI, SourceWeb:
		*s = Source(raw)
		return nil
	}
	return fmt.Errorf("unknown prediction source %q", raw)
}

// WebhookEvent is an event filter accepted by the training endpoints.
type WebhookEvent string

const (
	WebhookStart     WebhookEvent = "start"
	WebhookOutput    WebhookEvent = "output"
	WebhookLogs      WebhookEvent = "logs"
	WebhookCompleted WebhookEvent = "completed"
)
