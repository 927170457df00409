package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// ChatCompleter relays a single message upstream. Satisfied by *chatbot.Client.
type ChatCompleter interface {
	Complete(ctx context.Context, message string) (string, error)
}

// ChatUsecase defines the interface for the chat relay.
type ChatUsecase interface {
	Chat(ctx context.Context, message string) (string, error)
}

var (
	ErrEmptyMessage = errors.New("message is required")
	ErrChatRelay    = errors.New("failed to get response from chat provider")
)

type chatUsecase struct {
	completer ChatCompleter
	logger    *zerolog.Logger
}

func NewChatUsecase(completer ChatCompleter, logger *zerolog.Logger) ChatUsecase {
	return &chatUsecase{
		completer: completer,
		logger:    logger,
	}
}

// Chat rejects empty input before anything reaches the upstream API and
// returns the first reply verbatim otherwise.
func (u *chatUsecase) Chat(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	reply, err := u.completer.Complete(ctx, message)
	if err != nil {
		u.logger.Error().Err(err).Msg("chat completion request failed")
		return "", ErrChatRelay
	}

	return reply, nil
}
