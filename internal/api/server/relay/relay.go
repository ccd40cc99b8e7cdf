package relay

import (
	"context"
	"time"

	"github.com/bz888/agent-relay/internal/api/server/client"
	"github.com/bz888/agent-relay/internal/api/server/stream"
	"github.com/bz888/agent-relay/internal/config"
	"github.com/bz888/agent-relay/internal/logger"
	"github.com/pkg/errors"
)

type turnIDKey struct{}

// WithTurnID tags ctx with the id used to correlate a turn's log lines.
func WithTurnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, turnIDKey{}, id)
}

func TurnIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(turnIDKey{}).(string)
	return id
}

// Relay turns one chat turn into one upstream streamed call and folds the
// stream back into a single reply.
type Relay struct {
	cfg    *config.Config
	client client.ChatClientInterface
}

func New(cfg *config.Config, chatClient client.ChatClientInterface) *Relay {
	return &Relay{
		cfg:    cfg,
		client: chatClient,
	}
}

// HandleChatTurn returns the reply as a one-element slice. Malformed stream
// lines are logged and skipped; every other failure is returned.
func (r *Relay) HandleChatTurn(ctx context.Context, req ChatTurnRequest) ([]ChatTurnResponse, error) {
	localLogger := logger.NewLogger("relay").With("turn", TurnIDFrom(ctx))
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.StreamTimeout)
	defer cancel()

	temperature := r.cfg.Temperature
	apiReq := &client.ChatCompletionRequest{
		Model:       r.cfg.Model,
		Messages:    BuildPrompt(r.cfg.Persona, req),
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: &temperature,
		Stream:      true,
	}

	acc := stream.NewAccumulator(r.cfg.MaxResponseBytes)
	err := r.client.Chat(ctx, apiReq, func(line []byte) error {
		err := acc.Fold(line)
		if errors.Is(err, stream.ErrMalformedFragment) {
			localLogger.Err(err).Error("Error parsing chunk")
			return nil
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "chat turn failed")
	}

	localLogger.
		With("fragments", acc.Fragments()).
		With("skipped", acc.Skipped()).
		With("bytes", len(acc.Text())).
		With("elapsed", time.Since(started).String()).
		Info("Completed chat turn")

	return []ChatTurnResponse{{
		Text:   acc.Text(),
		Action: ActionChat,
	}}, nil
}
