package connection

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Member is one live connection. Role is fixed at admission and immutable
// for the connection lifetime.
type Member struct {
	Id       string
	Username string
	Role     Role
	JoinedAt time.Time
	Conn     *websocket.Conn
}

type AddParams struct {
	MemberId string
	Username string
	Role     Role
	Conn     *websocket.Conn
}
