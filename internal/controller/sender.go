package controller

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// connLocks hands out one write mutex per connection. Gorilla allows a
// single concurrent writer of data frames per conn, so every outbound
// frame from any handler goroutine must hold the conn's lock.
type connLocks struct {
	locks sync.Map
}

func (l *connLocks) get(conn *websocket.Conn) *sync.Mutex {
	lock, _ := l.locks.LoadOrStore(conn, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (l *connLocks) drop(conn *websocket.Conn) {
	l.locks.Delete(conn)
}

func (c controller) writeToConn(ctx context.Context, conn *websocket.Conn, output *Output) error {
	lock := c.connLocks.get(conn)
	lock.Lock()
	defer lock.Unlock()

	return conn.WriteJSON(output)
}

// broadcast is fire-and-forget per connection: a failed write is logged
// and does not stop delivery to the remaining connections.
func (c controller) broadcast(ctx context.Context, conns []*websocket.Conn, output *Output) {
	for _, conn := range conns {
		if err := c.writeToConn(ctx, conn, output); err != nil {
			c.logger.DebugContext(ctx, "failed to write to conn", "error", err)
		}
	}
}

func (c controller) writeError(ctx context.Context, conn *websocket.Conn, err error) {
	if writeErr := c.writeToConn(ctx, conn, &Output{
		Type: "ERROR",
		Payload: map[string]any{
			"message": err.Error(),
		},
	}); writeErr != nil {
		c.logger.DebugContext(ctx, "failed to write error to conn", "error", writeErr)
	}
}
