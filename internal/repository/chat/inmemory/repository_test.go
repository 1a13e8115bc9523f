package inmemory

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkstudico/kinaflix-TV/internal/repository/chat"
)

func TestAppendTrimsAndRejectsEmpty(t *testing.T) {
	r := NewRepo(100, 500)

	_, err := r.Append(&chat.AppendParams{AuthorName: "user", Text: "   \t  ", Kind: chat.KindUser})
	assert.ErrorIs(t, err, chat.ErrEmptyMessage)

	message, err := r.Append(&chat.AppendParams{AuthorName: "user", Text: "  hello  ", Kind: chat.KindUser})
	require.NoError(t, err)
	assert.Equal(t, "hello", message.Text)
	assert.NotEmpty(t, message.Id)
	assert.NotZero(t, message.CreatedAt)
}

func TestAppendTruncatesLongText(t *testing.T) {
	r := NewRepo(100, 500)

	message, err := r.Append(&chat.AppendParams{AuthorName: "user", Text: strings.Repeat("x", 600), Kind: chat.KindUser})
	require.NoError(t, err)
	assert.Len(t, message.Text, 500, "text must be truncated, not rejected")
}

func TestHistoryEviction(t *testing.T) {
	r := NewRepo(100, 500)

	for i := 0; i < 101; i++ {
		_, err := r.Append(&chat.AppendParams{AuthorName: "user", Text: fmt.Sprintf("message %d", i), Kind: chat.KindUser})
		require.NoError(t, err)
	}

	messages := r.List()
	require.Len(t, messages, 100)
	assert.Equal(t, "message 1", messages[0].Text, "oldest message must be evicted")
	assert.Equal(t, "message 100", messages[99].Text, "order must be preserved")
}
