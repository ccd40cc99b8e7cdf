package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/bz888/agent-relay/internal/config"
	"github.com/bz888/agent-relay/internal/logger"
	"github.com/pkg/errors"
)

// ErrUpstream marks failures of the upstream call itself: transport errors,
// non-2xx statuses, missing bodies and unreadable streams.
var ErrUpstream = errors.New("upstream failure")

const (
	minLineBytes      = 1 << 20
	lineEnvelopeBytes = 64 << 10
	maxErrorBodyBytes = 64 << 10
)

// lineLimit bounds one stream line so that a single delta carrying the whole
// allowed reply still fits, even with every byte JSON-escaped as \uXXXX.
func lineLimit(maxResponseBytes int) int {
	n := 6*maxResponseBytes + lineEnvelopeBytes
	if n < minLineBytes {
		return minLineBytes
	}
	return n
}

// OpenRouterClient represents a client for an OpenRouter-compatible
// chat-completion endpoint.
type OpenRouterClient struct {
	Client
	apiKey       string
	referer      string
	title        string
	maxLineBytes int
}

type ChatClientInterface interface {
	Chat(ctx context.Context, req *ChatCompletionRequest, fn func([]byte) error) error
}

// NewOpenRouterClient creates a client from the relay configuration.
func NewOpenRouterClient(cfg *config.Config, httpClient *http.Client) (*OpenRouterClient, error) {
	base, err := NewClient(ClientConfig{Endpoint: cfg.Endpoint, HTTPClient: httpClient})
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		logger.NewLogger("openrouter client").Warn("OPENROUTER_API_KEY is not set, upstream calls will be rejected")
	}
	return &OpenRouterClient{
		Client:       *base,
		apiKey:       cfg.APIKey,
		referer:      cfg.Referer,
		title:        cfg.AppTitle,
		maxLineBytes: lineLimit(cfg.MaxResponseBytes),
	}, nil
}

// Chat posts req and calls fn once per line of the streamed response body.
// A non-nil error from fn stops the read and is returned as is.
func (c *OpenRouterClient) Chat(ctx context.Context, req *ChatCompletionRequest, fn func([]byte) error) error {
	return c.stream(ctx, req, fn)
}

func (c *OpenRouterClient) stream(ctx context.Context, data *ChatCompletionRequest, fn func([]byte) error) error {
	localLogger := logger.NewLogger("openrouter stream chat")

	bts, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "failed to marshal chat request")
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.GetChatURL(), bytes.NewBuffer(bts))
	if err != nil {
		return errors.Wrap(err, "failed to create chat request")
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "text/event-stream")
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("HTTP-Referer", c.referer)
	request.Header.Set("X-Title", c.title)

	response, err := c.http.Do(request)
	if err != nil {
		return errors.Wrapf(ErrUpstream, "request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		errorMessage := decodeErrorMessage(response.Body)
		localLogger.With("status", response.StatusCode).Error("Received error response: ", errorMessage)
		return errors.Wrapf(ErrUpstream, "received non-2xx response: %d, error: %s", response.StatusCode, errorMessage)
	}
	if response.Body == http.NoBody {
		return errors.Wrap(ErrUpstream, "response has no body")
	}

	scanner := bufio.NewScanner(response.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), c.maxLineBytes)
	for scanner.Scan() {
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(ErrUpstream, "scanner error: %v", err)
	}

	return nil
}

// decodeErrorMessage pulls error.message out of an upstream error body,
// falling back to the raw (truncated) body.
func decodeErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil || len(raw) == 0 {
		return "unknown error"
	}

	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return string(bytes.TrimSpace(raw))
}
