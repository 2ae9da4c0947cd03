package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlship/replicate-go/pkg/api"
	"github.com/mlship/replicate-go/pkg/client"
	"github.com/mlship/replicate-go/pkg/config"
	"github.com/mlship/replicate-go/pkg/retry"
)

func predictionBody(baseURL, id, status string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"version": "v1",
		"urls": {
			"get": "%s/predictions/%s",
			"cancel": "%s/predictions/%s/cancel"
		},
		"created_at": "2022-04-26T20:00:40.658234Z",
		"source": "api",
		"status": %q,
		"input": {"text": "world"}
	}`, id, baseURL, id, baseURL, id, status)
}

func newService(baseURL string, policy retry.Policy) *Service {
	cfg := config.Default()
	cfg.Token = "test"
	cfg.BaseURL = baseURL
	return NewService(client.New(cfg), policy)
}

func fastPolicy(maxAttempts int) retry.Policy {
	return retry.NewPolicy(maxAttempts, retry.ConstantDelay(10*time.Millisecond))
}

func TestCreate(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/predictions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, predictionBody("http://example.com", "p1", "starting"))
	}))
	defer server.Close()

	svc := newService(server.URL, fastPolicy(0))
	h, err := svc.Create(context.Background(), "test/model:v1", map[string]any{"text": "world"})
	require.NoError(t, err)

	assert.Equal(t, "p1", h.ID())
	assert.Equal(t, api.StatusStarting, h.Status())

	// Only the version part goes over the wire; the owner/name part is
	// discarded after validation.
	assert.Equal(t, "v1", gotBody["version"])
	assert.Equal(t, map[string]any{"text": "world"}, gotBody["input"])
}

func TestCreateInvalidReference(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	svc := newService(server.URL, fastPolicy(0))

	for _, ref := range []string{"no-colon", "noslash:v1", ""} {
		_, err := svc.Create(context.Background(), ref, nil)
		var invalid *api.InvalidIdentifierError
		require.True(t, errors.As(err, &invalid), "ref %q", ref)
	}
	assert.Zero(t, calls, "malformed references must not reach the server")
}

func TestCreateNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"Invalid token."}`)
	}))
	defer server.Close()

	svc := newService(server.URL, fastPolicy(0))
	_, err := svc.Create(context.Background(), "test/model:v1", nil)

	var respErr *api.ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, http.StatusUnauthorized, respErr.StatusCode)
	assert.Equal(t, `{"detail":"Invalid token."}`, respErr.Body)
}

// A reload against a server reporting unchanged state leaves the local
// entity equal in every field to the one returned by create.
func TestCreateThenReloadUnchanged(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, predictionBody(server.URL, "p1", "starting"))
	}))
	defer server.Close()

	svc := newService(server.URL, fastPolicy(0))
	h, err := svc.Create(context.Background(), "test/model:v1", map[string]any{"text": "world"})
	require.NoError(t, err)
	created := h.Prediction()

	require.NoError(t, h.Reload(context.Background()))

	if diff := cmp.Diff(created, h.Prediction()); diff != "" {
		t.Errorf("entity changed across reload (-created +reloaded):\n%s", diff)
	}
}

func TestWaitPollsUntilTerminal(t *testing.T) {
	statuses := []string{"starting", "processing", "succeeded"}
	gets := 0
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, predictionBody(server.URL, "p1", "starting"))
			return
		}
		status := statuses[gets]
		gets++
		fmt.Fprint(w, predictionBody(server.URL, "p1", status))
	}))
	defer server.Close()

	svc := newService(server.URL, fastPolicy(0))
	h, err := svc.Create(context.Background(), "test/model:v1", map[string]any{"text": "world"})
	require.NoError(t, err)

	final, err := h.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, gets, "one poll per observed status")
	assert.Equal(t, api.StatusSucceeded, final.Status)
	assert.Equal(t, api.StatusSucceeded, h.Status(), "local state tracks the last poll")
}

func TestWaitImmediateFailureSkipsDelay(t *testing.T) {
	gets := 0
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, predictionBody(server.URL, "p1", "starting"))
			return
		}
		gets++
		fmt.Fprint(w, predictionBody(server.URL, "p1", "failed"))
	}))
	defer server.Close()

	// A delay long enough that hitting it even once would blow the test
	// runtime proves the loop returned before its first wait step.
	policy := retry.NewPolicy(0, retry.ConstantDelay(time.Minute))
	svc := newService(server.URL, policy)
	h, err := svc.Create(context.Background(), "test/model:v1", nil)
	require.NoError(t, err)

	start := time.Now()
	final, err := h.Wait(context.Background())
	require.NoError(t, err, "failed is a terminal result, not an error")

	assert.Equal(t, 1, gets)
	assert.Equal(t, api.StatusFailed, final.Status)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestWaitBudgetExhausted(t *testing.T) {
	gets := 0
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, predictionBody(server.URL, "p1", "starting"))
			return
		}
		gets++
		fmt.Fprint(w, predictionBody(server.URL, "p1", "processing"))
	}))
	defer server.Close()

	svc := newService(server.URL, fastPolicy(2))
	h, err := svc.Create(context.Background(), "test/model:v1", nil)
	require.NoError(t, err)

	_, err = h.Wait(context.Background())
	var exhausted *api.ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 2, gets)
	assert.Equal(t, "p1", exhausted.PredictionID)
	assert.Equal(t, api.StatusProcessing, exhausted.LastStatus)
	assert.Equal(t, 2, exhausted.Attempts)
}

func TestWaitContextCancellation(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, predictionBody(server.URL, "p1", "starting"))
			return
		}
		fmt.Fprint(w, predictionBody(server.URL, "p1", "processing"))
	}))
	defer server.Close()

	policy := retry.NewPolicy(0, retry.ConstantDelay(time.Minute))
	svc := newService(server.URL, policy)
	h, err := svc.Create(context.Background(), "test/model:v1", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := h.Wait(ctx)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after context cancellation")
	}
}

func TestCancel(t *testing.T) {
	var cancelPosts, selfGets int
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/predictions":
			fmt.Fprint(w, predictionBody(server.URL, "p1", "starting"))
		case r.Method == http.MethodPost && r.URL.Path == "/predictions/p1/cancel":
			cancelPosts++
			fmt.Fprint(w, `{}`)
		case r.Method == http.MethodGet && r.URL.Path == "/predictions/p1":
			selfGets++
			fmt.Fprint(w, predictionBody(server.URL, "p1", "canceled"))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	svc := newService(server.URL, fastPolicy(0))
	h, err := svc.Create(context.Background(), "test/model:v1", nil)
	require.NoError(t, err)

	require.NoError(t, h.Cancel(context.Background()))

	assert.Equal(t, 1, cancelPosts)
	assert.Equal(t, 1, selfGets)
	assert.Equal(t, api.StatusCanceled, h.Status(), "local status matches the reload response")
}

func TestCancelSurvivesReload(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/predictions/p1/cancel" {
			fmt.Fprint(w, `{}`)
			return
		}
		if r.Method == http.MethodPost {
			fmt.Fprint(w, predictionBody(server.URL, "p1", "starting"))
			return
		}
		fmt.Fprint(w, predictionBody(server.URL, "p1", "canceled"))
	}))
	defer server.Close()

	svc := newService(server.URL, fastPolicy(0))
	h, err := svc.Create(context.Background(), "test/model:v1", nil)
	require.NoError(t, err)
	require.NoError(t, h.Cancel(context.Background()))

	// Reloading a canceled prediction never walks the status backward.
	require.NoError(t, h.Reload(context.Background()))
	assert.Equal(t, api.StatusCanceled, h.Status())
}

// The server-provided urls are preferred over rebuilding from the base
// endpoint; reconstruction is only the fallback when they are absent.
func TestHandleUsesServerProvidedURLs(t *testing.T) {
	var paths []string
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/predictions" {
			fmt.Fprintf(w, `{
				"id": "p1", "version": "v1", "status": "starting",
				"created_at": "2022-04-26T20:00:40.658234Z",
				"input": {},
				"urls": {"get": "%s/v2/self/p1", "cancel": "%s/v2/self/p1/cancel"}
			}`, server.URL, server.URL)
			return
		}
		fmt.Fprintf(w, `{
			"id": "p1", "version": "v1", "status": "canceled",
			"created_at": "2022-04-26T20:00:40.658234Z",
			"input": {},
			"urls": {"get": "%s/v2/self/p1", "cancel": "%s/v2/self/p1/cancel"}
		}`, server.URL, server.URL)
	}))
	defer server.Close()

	svc := newService(server.URL, fastPolicy(0))
	h, err := svc.Create(context.Background(), "test/model:v1", nil)
	require.NoError(t, err)

	require.NoError(t, h.Cancel(context.Background()))
	assert.Equal(t, []string{"/predictions", "/v2/self/p1/cancel", "/v2/self/p1"}, paths)
}

func TestHandleFallsBackToReconstructedURLs(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		fmt.Fprint(w, `{
			"id": "p1", "version": "v1", "status": "processing",
			"created_at": "2022-04-26T20:00:40.658234Z",
			"input": {},
			"urls": {"get": "", "cancel": ""}
		}`)
	}))
	defer server.Close()

	svc := newService(server.URL, fastPolicy(0))
	h, err := svc.Create(context.Background(), "test/model:v1", nil)
	require.NoError(t, err)

	require.NoError(t, h.Reload(context.Background()))
	assert.Equal(t, []string{"/predictions", "/predictions/p1"}, paths)
}

func TestGet(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predictions/p1", r.URL.Path)
		fmt.Fprint(w, predictionBody(server.URL, "p1", "succeeded"))
	}))
	defer server.Close()

	svc := newService(server.URL, fastPolicy(0))
	p, err := svc.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, api.StatusSucceeded, p.Status)
}

func TestList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predictions", r.URL.Path)
		fmt.Fprint(w, `{
			"next": "https://api.replicate.com/v1/predictions?cursor=cD0yMDIy",
			"previous": null,
			"results": [{
				"id": "jpzd7hm5gfcapbfyt4mqytarku",
				"version": "b21cbe271e65c1718f2999b038c18b45e21e4fba961181fbfae9342fc53b9e05",
				"urls": {
					"get": "https://api.replicate.com/v1/predictions/jpzd7hm5gfcapbfyt4mqytarku",
					"cancel": "https://api.replicate.com/v1/predictions/jpzd7hm5gfcapbfyt4mqytarku/cancel"
				},
				"created_at": "2022-04-26T20:00:40.658234Z",
				"started_at": "2022-04-26T20:01:04.583803Z",
				"completed_at": "2022-04-26T20:02:27.648305Z",
				"source": "web",
				"status": "succeeded"
			}]
		}`)
	}))
	defer server.Close()

	svc := newService(server.URL, fastPolicy(0))
	page, err := svc.List(context.Background())
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, "jpzd7hm5gfcapbfyt4mqytarku", page.Results[0].ID)
	require.NotNil(t, page.Next)
	assert.Nil(t, page.Previous)
}

func TestAttach(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, predictionBody(server.URL, "p9", "processing"))
	}))
	defer server.Close()

	svc := newService(server.URL, fastPolicy(0))
	h, err := svc.Attach(context.Background(), "p9")
	require.NoError(t, err)
	assert.Equal(t, "p9", h.ID())
	assert.Equal(t, api.StatusProcessing, h.Status())
}

func TestDecodeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>gateway error</html>`)
	}))
	defer server.Close()

	svc := newService(server.URL, fastPolicy(0))
	_, err := svc.Get(context.Background(), "p1")

	var decodeErr *api.DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}
