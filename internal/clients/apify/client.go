package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/maxaizer/upwork-hunter/internal/domain/models"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	baseURL = "https://api.apify.com/v2"
	actorID = "upwork-vibe~upwork-job-scraper"
)

const (
	statusSucceeded = "SUCCEEDED"
	statusFailed    = "FAILED"
	statusAborted   = "ABORTED"
	statusTimedOut  = "TIMED-OUT"
)

// ErrRunNotSucceeded marks an actor run that reached a terminal state other
// than SUCCEEDED. Not retryable: the whole fetch has failed.
var ErrRunNotSucceeded = errors.New("actor run did not succeed")

const (
	maxAttempts = 3
	retryDelay  = 2 * time.Second
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client drives the Apify actor API: start a run, poll it to a terminal state
// and download the dataset it produced.
type Client struct {
	httpClient   HTTPClient
	token        string
	rateLimiter  *rate.Limiter
	pollInterval time.Duration
}

func NewClient(token string) *Client {
	return &Client{
		httpClient:   &http.Client{},
		token:        token,
		pollInterval: 5 * time.Second,
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

func (c *Client) SetPollInterval(interval time.Duration) {
	c.pollInterval = interval
}

type runData struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

type runResponse struct {
	Data runData `json:"data"`
}

// FetchJobs runs the actor for the given parameters and returns the raw job
// records it scraped. Any error is terminal for the whole run; the retry
// budget has already been spent by the time it surfaces.
func (c *Client) FetchJobs(ctx context.Context, parameters SearchParameters) ([]models.RawJob, error) {

	if err := parameters.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	run, err := c.startRun(ctx, parameters.toRunInput(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to start actor run: %w", err)
	}
	log.Infof("actor run started: %v", run.ID)

	status, err := c.pollRun(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	if status != statusSucceeded {
		return nil, errors.Wrapf(ErrRunNotSucceeded, "status %v", status)
	}

	return c.fetchDataset(ctx, run.DefaultDatasetID)
}

func (c *Client) startRun(ctx context.Context, input runInput) (runData, error) {

	encoded, err := json.Marshal(input)
	if err != nil {
		return runData{}, err
	}
	log.Infof("starting actor %v with input: %s", actorID, encoded)

	url := fmt.Sprintf("%s/acts/%s/runs?token=%s", baseURL, actorID, c.token)

	var body []byte
	_, _, err = lo.AttemptWhileWithDelay(maxAttempts, retryDelay, func(i int, _ time.Duration) (error, bool) {
		if i > 0 {
			log.Warnf("retrying actor run start, attempt %v", i+1)
		}
		body, err = c.sendRequest(ctx, http.MethodPost, url, bytes.NewReader(encoded))
		return err, err != nil && ctx.Err() == nil
	})
	if err != nil {
		return runData{}, err
	}

	var response runResponse
	if err = json.Unmarshal(body, &response); err != nil {
		return runData{}, fmt.Errorf("error decoding run response: %w", err)
	}
	return response.Data, nil
}

// pollRun blocks until the run reaches a terminal state. Transient poll
// errors are logged and retried on the next tick; only context cancellation
// aborts the wait.
func (c *Client) pollRun(ctx context.Context, runID string) (string, error) {

	url := fmt.Sprintf("%s/actor-runs/%s?token=%s", baseURL, runID, c.token)

	for {
		body, err := c.sendRequest(ctx, http.MethodGet, url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			log.Warnf("polling error: %v, retrying poll", err)
		} else {
			var response runResponse
			if err = json.Unmarshal(body, &response); err != nil {
				return "", fmt.Errorf("error decoding run status: %w", err)
			}

			status := response.Data.Status
			log.Infof("actor run %v status: %v", runID, status)

			switch status {
			case statusSucceeded, statusFailed, statusAborted, statusTimedOut:
				return status, nil
			}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) fetchDataset(ctx context.Context, datasetID string) ([]models.RawJob, error) {

	url := fmt.Sprintf("%s/datasets/%s/items?token=%s&format=json", baseURL, datasetID, c.token)

	var body []byte
	var err error
	_, _, err = lo.AttemptWhileWithDelay(maxAttempts, retryDelay, func(i int, _ time.Duration) (error, bool) {
		if i > 0 {
			log.Warnf("retrying dataset fetch, attempt %v", i+1)
		}
		body, err = c.sendRequest(ctx, http.MethodGet, url, nil)
		return err, err != nil && ctx.Err() == nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}

	var jobs []models.RawJob
	if err = json.Unmarshal(body, &jobs); err != nil {
		return nil, fmt.Errorf("error decoding dataset items: %w", err)
	}
	return jobs, nil
}

func (c *Client) sendRequest(ctx context.Context, method string, url string, body io.Reader) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("request failed with status %v, body: %v", resp.StatusCode, string(body))
	}

	return body, nil
}
