package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"thematica/internal/analysis"
	"thematica/internal/jobs"
)

func newTestServer(t *testing.T, runner jobs.Runner) (*httptest.Server, *jobs.Store) {
	t.Helper()
	store := jobs.NewStore(64, 0)
	queue := jobs.NewQueue(store, runner, 1, 16, zerolog.Nop())
	t.Cleanup(queue.Close)

	srv := httptest.NewServer(New(queue, store, zerolog.Nop()).Router())
	t.Cleanup(srv.Close)
	return srv, store
}

func okRunner(context.Context, analysis.Request) (analysis.Result, error) {
	return analysis.Result{
		ThemeCounts:    map[string]int{"t1": 1},
		SubThemeCounts: map[string]int{"s1-1": 1},
	}, nil
}

const validBody = `{
	"units": [{"id": "u1", "text": "it costs too much"}],
	"themes": [{"id": "t1", "name": "Costs", "subThemes": [{"id": "s1-1", "name": "Money"}]}]
}`

// submit posts a valid bulk request and returns the accepted job id.
func submit(baseURL string) (string, error) {
	resp, err := http.Post(baseURL+"/api/analysis/bulk", "application/json", bytes.NewBufferString(validBody))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var accepted struct {
		JobID string `json:"jobId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return "", err
	}
	return accepted.JobID, nil
}

func TestSubmitAndPoll(t *testing.T) {
	srv, _ := newTestServer(t, okRunner)

	resp, err := http.Post(srv.URL+"/api/analysis/bulk", "application/json", bytes.NewBufferString(validBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var accepted struct {
		JobID string `json:"jobId"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&accepted))
	require.NotEmpty(t, accepted.JobID)

	deadline := time.Now().Add(2 * time.Second)
	for {
		require.True(t, time.Now().Before(deadline), "job never completed")

		r, err := http.Get(srv.URL + "/api/jobs/" + accepted.JobID)
		require.NoError(t, err)
		var job jobs.Job
		require.NoError(t, json.NewDecoder(r.Body).Decode(&job))
		r.Body.Close()

		if job.Status == jobs.StatusCompleted {
			require.NotNil(t, job.Result)
			require.Equal(t, 1, job.Result.ThemeCounts["t1"])
			return
		}
		require.NotEqual(t, jobs.StatusFailed, job.Status)
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSubmitRejectsInvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t, okRunner)

	resp, err := http.Post(srv.URL+"/api/analysis/bulk", "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitRequiresUnitsAndThemes(t *testing.T) {
	srv, _ := newTestServer(t, okRunner)

	for _, body := range []string{
		`{}`,
		`{"units": [], "themes": []}`,
		`{"units": [{"id": "u1", "text": "x"}]}`,
		`{"themes": [{"id": "t1", "name": "Costs"}]}`,
	} {
		resp, err := http.Post(srv.URL+"/api/analysis/bulk", "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "body %s", body)
	}
}

func TestJobNotFound(t *testing.T) {
	srv, _ := newTestServer(t, okRunner)

	resp, err := http.Get(srv.URL + "/api/jobs/does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var e struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	require.Equal(t, "job not found", e.Error)
}

func TestFailedJobExposesErrorOnly(t *testing.T) {
	srv, _ := newTestServer(t, func(context.Context, analysis.Request) (analysis.Result, error) {
		return analysis.Result{}, context.DeadlineExceeded
	})

	resp, err := http.Post(srv.URL+"/api/analysis/bulk", "application/json", bytes.NewBufferString(validBody))
	require.NoError(t, err)
	var accepted struct {
		JobID string `json:"jobId"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&accepted))
	resp.Body.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		require.True(t, time.Now().Before(deadline), "job never failed")

		r, err := http.Get(srv.URL + "/api/jobs/" + accepted.JobID)
		require.NoError(t, err)
		var job jobs.Job
		require.NoError(t, json.NewDecoder(r.Body).Decode(&job))
		r.Body.Close()

		if job.Status == jobs.StatusFailed {
			require.NotEmpty(t, job.Error)
			require.Nil(t, job.Result)
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, okRunner)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
