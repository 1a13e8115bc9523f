package chat

import "errors"

var ErrEmptyMessage = errors.New("empty message")

type Kind string

const (
	KindUser   Kind = "user"
	KindSystem Kind = "system"
)

// Message is immutable once created.
type Message struct {
	Id         string `json:"id"`
	AuthorName string `json:"author_name"`
	Text       string `json:"text"`
	IsAdmin    bool   `json:"is_admin"`
	Kind       Kind   `json:"kind"`
	CreatedAt  int64  `json:"created_at"`
}

type AppendParams struct {
	AuthorName string
	Text       string
	IsAdmin    bool
	Kind       Kind
}
