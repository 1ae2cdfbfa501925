package apify

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

func responseFromFile(t *testing.T, name string) (*http.Response, error) {
	t.Helper()
	file, err := os.ReadFile("testdata/" + name)
	assert.NoError(t, err)

	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(bytes.NewBuffer(file)),
	}, nil
}

func newTestClient(httpClient HTTPClient) *Client {
	client := NewClient("test-token")
	client.SetHTTPClient(httpClient)
	client.SetPollInterval(time.Millisecond)
	return client
}

func Test_ApifyClient_FetchJobs_ShouldBeSuccessful(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodPost &&
			strings.Contains(req.URL.Path, "/acts/upwork-vibe~upwork-job-scraper/runs")
	})).Return(responseFromFile(t, "run_started.json")).Once()

	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodGet &&
			strings.Contains(req.URL.Path, "/actor-runs/run_abc123")
	})).Return(responseFromFile(t, "run_succeeded.json")).Once()

	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodGet &&
			strings.Contains(req.URL.Path, "/datasets/dataset_xyz789/items")
	})).Return(responseFromFile(t, "dataset_items.json")).Once()

	client := newTestClient(mockClient)

	jobs, err := client.FetchJobs(context.Background(), SearchParameters{
		Queries: []string{"workflow automation"},
		Limit:   50,
	})
	assert.NoError(err)
	assert.Len(jobs, 2)
	assert.Equal("Build an n8n automation workflow", jobs[0]["title"])
	assert.Equal("Zapier → Make migration", jobs[1]["title"])
	mockClient.AssertExpectations(t)
}

func Test_ApifyClient_FetchJobs_ShouldPollUntilTerminalState(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodPost
	})).Return(responseFromFile(t, "run_started.json")).Once()

	// each expectation carries its own response body; a shared one would be
	// drained by the first poll
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return strings.Contains(req.URL.Path, "/actor-runs/")
	})).Return(responseFromFile(t, "run_started.json")).Once()

	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return strings.Contains(req.URL.Path, "/actor-runs/")
	})).Return(responseFromFile(t, "run_started.json")).Once()

	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return strings.Contains(req.URL.Path, "/actor-runs/")
	})).Return(responseFromFile(t, "run_succeeded.json")).Once()

	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return strings.Contains(req.URL.Path, "/datasets/")
	})).Return(responseFromFile(t, "dataset_items.json")).Once()

	client := newTestClient(mockClient)

	jobs, err := client.FetchJobs(context.Background(), SearchParameters{
		Queries: []string{"automation"},
		Limit:   10,
	})
	assert.NoError(t, err)
	assert.Len(t, jobs, 2)
	mockClient.AssertExpectations(t)
}

func Test_ApifyClient_FetchJobs_WhenRunAborted_ShouldFail(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodPost
	})).Return(responseFromFile(t, "run_started.json")).Once()

	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return strings.Contains(req.URL.Path, "/actor-runs/")
	})).Return(responseFromFile(t, "run_aborted.json")).Once()

	client := newTestClient(mockClient)

	_, err := client.FetchJobs(context.Background(), SearchParameters{
		Queries: []string{"automation"},
		Limit:   10,
	})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunNotSucceeded))
}

func Test_ApifyClient_FetchJobs_ShouldRejectInvalidParameters(t *testing.T) {

	client := NewClient("test-token")

	_, err := client.FetchJobs(context.Background(), SearchParameters{Limit: 10})
	assert.ErrorIs(t, err, ErrNoQueries)

	_, err = client.FetchJobs(context.Background(), SearchParameters{
		Queries: []string{"automation"},
	})
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func Test_SearchParameters_ToRunInput_ShouldComputeDateWindow(t *testing.T) {

	now := time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC)
	input := SearchParameters{
		Queries:  []string{" workflow automation ", "", "web scraping"},
		Limit:    50,
		DaysBack: 3,
	}.toRunInput(now)

	assert.Equal(t, "2026-01-13", input.FromDate)
	assert.Equal(t, "2026-01-16", input.ToDate)
	assert.Equal(t, []string{"workflow automation", "web scraping"}, input.Keywords)
	assert.True(t, input.MatchTitle)
	assert.True(t, input.MatchDescription)
	assert.True(t, input.MatchSkills)
}
