// Package inmemory keeps the bounded chat log. The log is volatile and
// scoped to the process lifetime.
package inmemory

import (
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mkstudico/kinaflix-TV/internal/repository/chat"
)

type repo struct {
	mu            sync.RWMutex
	messages      []chat.Message
	historyLimit  int
	maxTextLength int
}

func NewRepo(historyLimit, maxTextLength int) *repo {
	return &repo{
		historyLimit:  historyLimit,
		maxTextLength: maxTextLength,
	}
}

// Append trims and length-caps the text, then appends a message, evicting
// the oldest entries beyond the history limit. Text that is empty after
// trimming yields ErrEmptyMessage.
func (r *repo) Append(params *chat.AppendParams) (chat.Message, error) {
	text := strings.TrimSpace(params.Text)
	if text == "" {
		return chat.Message{}, chat.ErrEmptyMessage
	}

	if runes := []rune(text); len(runes) > r.maxTextLength {
		text = string(runes[:r.maxTextLength])
	}

	message := chat.Message{
		Id:         ulid.Make().String(),
		AuthorName: params.AuthorName,
		Text:       text,
		IsAdmin:    params.IsAdmin,
		Kind:       params.Kind,
		CreatedAt:  time.Now().Unix(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, message)
	if len(r.messages) > r.historyLimit {
		r.messages = r.messages[len(r.messages)-r.historyLimit:]
	}

	return message, nil
}

// List returns the log oldest first.
func (r *repo) List() []chat.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := make([]chat.Message, len(r.messages))
	copy(messages, r.messages)

	return messages
}
