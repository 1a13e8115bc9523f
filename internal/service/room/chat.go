package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/mkstudico/kinaflix-TV/internal/repository/chat"
	"github.com/mkstudico/kinaflix-TV/internal/repository/connection"
)

type SendChatMessageParams struct {
	SenderId string
	Text     string
}

type SendChatMessageResponse struct {
	Message Message
	Conns   []*websocket.Conn
}

// SendChatMessage appends a user message to the bounded log. Any role may
// chat; submissions pass the per-connection sliding-window limiter first.
func (s *service) SendChatMessage(ctx context.Context, params *SendChatMessageParams) (SendChatMessageResponse, error) {
	member, err := s.connRepo.GetById(params.SenderId)
	if err != nil {
		return SendChatMessageResponse{}, ErrMemberNotFound
	}

	if !s.chatLimiter.Allow(params.SenderId) {
		return SendChatMessageResponse{}, ErrRateLimited
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	message, err := s.chatRepo.Append(&chat.AppendParams{
		AuthorName: member.Username,
		Text:       params.Text,
		IsAdmin:    member.Role == connection.RoleAdmin,
		Kind:       chat.KindUser,
	})
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			return SendChatMessageResponse{}, ErrEmptyMessage
		}
		return SendChatMessageResponse{}, fmt.Errorf("failed to append message: %w", err)
	}

	return SendChatMessageResponse{
		Message: messageModel(message),
		Conns:   s.connRepo.Conns(),
	}, nil
}
