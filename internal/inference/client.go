package inference

import (
	"context"
	"time"

	"companymcp/internal/common"

	"github.com/go-resty/resty/v2"
)

const (
	generatePath = "/api/generate"
	tagsPath     = "/api/tags"
)

// Result is a completed inference call
type Result struct {
	Text     string
	Model    string
	Endpoint string
	Duration time.Duration
}

// Client performs single-attempt calls against an inference server. Every
// failure is returned as *common.InferenceFailure.
type Client interface {
	Generate(ctx context.Context, endpoint, model, prompt string) (*Result, error)
	ListModels(ctx context.Context, endpoint string) ([]string, error)
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type httpClient struct {
	client *resty.Client
}

// NewClient returns a client whose requests are bounded by timeout
func NewClient(timeout time.Duration) Client {
	return &httpClient{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

func (c *httpClient) Generate(ctx context.Context, endpoint, model, prompt string) (*Result, error) {
	start := time.Now()
	var payload generateResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(generateRequest{Model: model, Prompt: prompt, Stream: false}).
		SetResult(&payload).
		Post(endpoint + generatePath)
	if err != nil {
		return nil, &common.InferenceFailure{Endpoint: endpoint, Cause: err}
	}
	if !resp.IsSuccess() {
		return nil, &common.InferenceFailure{Endpoint: endpoint, StatusCode: resp.StatusCode()}
	}

	if payload.Model == "" {
		payload.Model = model
	}
	return &Result{
		Text:     payload.Response,
		Model:    payload.Model,
		Endpoint: endpoint,
		Duration: time.Since(start),
	}, nil
}

func (c *httpClient) ListModels(ctx context.Context, endpoint string) ([]string, error) {
	var payload tagsResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&payload).
		Get(endpoint + tagsPath)
	if err != nil {
		return nil, &common.InferenceFailure{Endpoint: endpoint, Cause: err}
	}
	if !resp.IsSuccess() {
		return nil, &common.InferenceFailure{Endpoint: endpoint, StatusCode: resp.StatusCode()}
	}

	names := make([]string, 0, len(payload.Models))
	for _, m := range payload.Models {
		names = append(names, m.Name)
	}
	return names, nil
}
