package api

import "fmt"

// RequestError reports a transport-level failure: the request never
// produced an HTTP response (connection refused, timeout, bad URL).
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("failed to send the api request: %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ResponseError reports a non-2xx HTTP response. Body holds the raw
// response text for diagnostics; it is never parsed by the client.
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("received a non 2xx response from the api (status %d): %s", e.StatusCode, e.Body)
}

// DecodeError reports a response body that did not match the expected
// structure.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse the api response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// InvalidIdentifierError reports a malformed "owner/name:version"
// reference string.
type InvalidIdentifierError struct {
	Ref string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid version string: %q", e.Ref)
}

// ExhaustedError reports that a polling loop spent its attempt budget
// before the prediction reached a terminal status.
type ExhaustedError struct {
	PredictionID string
	LastStatus   Status
	Attempts     int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("prediction %s still %s after %d polls", e.PredictionID, e.LastStatus, e.Attempts)
}
