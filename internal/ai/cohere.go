package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	coherecore "github.com/cohere-ai/cohere-go/v2/core"
)

// cohereCompleter sends chat requests through the Cohere SDK. The preamble
// carries the system prompt.
type cohereCompleter struct {
	client *cohereclient.Client
	model  string
}

func newCohereCompleter(cfg Config) *cohereCompleter {
	opts := []coherecore.RequestOption{
		cohereclient.WithToken(cfg.APIKey),
		cohereclient.WithMaxAttempts(1),
		cohereclient.WithHTTPClient(singleAttemptClient{next: http.DefaultClient}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, cohereclient.WithBaseURL(cfg.BaseURL))
	}
	return &cohereCompleter{client: cohereclient.NewClient(opts...), model: cfg.ModelOrDefault()}
}

func (c *cohereCompleter) complete(ctx context.Context, system, prompt string) (string, error) {
	model, preamble := c.model, system
	temperature := 0.0
	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message:     prompt,
		Model:       &model,
		Preamble:    &preamble,
		Temperature: &temperature,
	})
	if err != nil {
		var apiErr *coherecore.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
			return "", &HTTPError{Status: apiErr.StatusCode, Message: err.Error()}
		}
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("%w: empty chat response", ErrMalformedReply)
	}
	return resp.Text, nil
}

// singleAttemptClient turns the statuses the SDK would retry after a backoff
// into an immediate *HTTPError.
type singleAttemptClient struct {
	next coherecore.HTTPClient
}

func (c singleAttemptClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.next.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests ||
		resp.StatusCode == http.StatusRequestTimeout ||
		resp.StatusCode >= http.StatusInternalServerError {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &HTTPError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return resp, nil
}
