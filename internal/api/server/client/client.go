package client

import (
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client holds the transport shared by upstream clients.
type Client struct {
	http    *http.Client
	chatUrl *url.URL
}

// ClientConfig holds the configuration for the client
type ClientConfig struct {
	Endpoint string
	// HTTPClient is optional. The default has no overall timeout; callers
	// bound a turn through its context.
	HTTPClient *http.Client
}

// NewClient creates a new API client for a complete chat endpoint URL.
func NewClient(config ClientConfig) (*Client, error) {
	chatUrl, err := url.Parse(config.Endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid endpoint %q", config.Endpoint)
	}
	if chatUrl.Scheme != "http" && chatUrl.Scheme != "https" {
		return nil, errors.Errorf("invalid endpoint %q: scheme must be http or https", config.Endpoint)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		http:    httpClient,
		chatUrl: chatUrl,
	}, nil
}

func (c *Client) GetChatURL() string {
	return c.chatUrl.String()
}
