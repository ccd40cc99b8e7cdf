package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/bz888/agent-relay/internal/api/server/relay"
	"github.com/bz888/agent-relay/internal/config"
	"github.com/bz888/agent-relay/internal/logger"
	"github.com/pkg/errors"
)

// Client is the widget's side of the relay: one POST per turn.
type Client struct {
	url      string
	userName string
	userID   string
	version  string
	http     *http.Client
	log      *logger.Logger
}

func NewClient(cfg *config.Config) *Client {
	// the relay buffers the whole generation before answering
	timeout := cfg.StreamTimeout + 10*time.Second
	return &Client{
		url:      cfg.RelayURL,
		userName: cfg.UserName,
		userID:   cfg.UserID,
		version:  cfg.Version,
		http:     &http.Client{Timeout: timeout},
		log:      logger.NewLogger("api client"),
	}
}

// SendTurn posts content to the relay and returns the reply text.
func (c *Client) SendTurn(ctx context.Context, content string) (string, error) {
	if content == "" {
		c.log.Warn("No content parsed")
		return "", errors.New("empty message")
	}

	clientReq := relay.ChatTurnRequest{
		Text:     content,
		UserName: c.userName,
		UserID:   c.userID,
		Version:  c.version,
	}
	c.log.Debug("Input request: ", clientReq.Text)

	requestData, err := json.Marshal(clientReq)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(requestData))
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to send request")
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Err(err).Error("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
			return "", errors.Errorf("relay returned %s", resp.Status)
		}
		return "", errors.Errorf("relay returned %s: %s", resp.Status, errResp.Error)
	}

	var turns []relay.ChatTurnResponse
	if err := json.NewDecoder(resp.Body).Decode(&turns); err != nil {
		return "", errors.Wrap(err, "failed to decode response")
	}
	if len(turns) == 0 {
		return "", errors.New("relay returned no turns")
	}
	return turns[0].Text, nil
}
