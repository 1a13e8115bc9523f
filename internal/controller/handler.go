package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mkstudico/kinaflix-TV/internal/service/room"
)

func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	adminToken := r.URL.Query().Get("admin-token")

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()
	defer c.connLocks.drop(conn)

	joinRoomResponse, err := c.roomService.JoinRoom(r.Context(), &room.JoinRoomParams{
		Conn:       conn,
		Username:   username,
		AdminToken: adminToken,
	})
	if err != nil {
		if errors.Is(err, room.ErrViewerLimitReached) {
			// tell the client why before dropping the transport
			c.writeToConn(r.Context(), conn, &Output{
				Type: "ROOM_FULL",
				Payload: map[string]any{
					"message": "viewer limit reached",
				},
			})
		}
		c.logger.DebugContext(r.Context(), "failed to join room", "error", err)
		return
	}
	defer c.disconnect(conn)

	if err := c.writeToConn(r.Context(), conn, &Output{
		Type: "JOINED_ROOM",
		Payload: map[string]any{
			"joined_member": joinRoomResponse.JoinedMember,
			"room":          joinRoomResponse.Room,
		},
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write json", "error", err)
		return
	}

	c.broadcast(r.Context(), joinRoomResponse.Conns, &Output{
		Type: "MEMBER_JOINED",
		Payload: map[string]any{
			"joined_member": joinRoomResponse.JoinedMember,
			"members":       joinRoomResponse.Room.Members,
		},
	})
	if joinRoomResponse.JoinedMember.IsAdmin {
		c.broadcast(r.Context(), joinRoomResponse.Conns, &Output{
			Type: "ADMIN_ONLINE",
			Payload: map[string]any{
				"online": true,
			},
		})
	}
	if joinRoomResponse.SystemMessage != nil {
		c.broadcast(r.Context(), joinRoomResponse.Conns, &Output{
			Type: "CHAT_MESSAGE",
			Payload: map[string]any{
				"message": joinRoomResponse.SystemMessage,
			},
		})
	}

	ctx := context.WithValue(r.Context(), memberIdCtxKey, joinRoomResponse.JoinedMember.Id)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(r.Context(), "conn closed", "error", err)
	}
}

// disconnect removes the member from the registry and notifies the rest
// of the room. Runs whenever the serve loop ends, whatever the cause.
func (c controller) disconnect(conn *websocket.Conn) {
	ctx := context.Background()

	disconnectResponse, err := c.roomService.DisconnectMember(ctx, &room.DisconnectMemberParams{
		Conn: conn,
	})
	if err != nil {
		c.logger.DebugContext(ctx, "failed to disconnect member", "error", err)
		return
	}

	c.broadcast(ctx, disconnectResponse.Conns, &Output{
		Type: "MEMBER_DISCONNECTED",
		Payload: map[string]any{
			"disconnected_member": disconnectResponse.DisconnectedMember,
			"members":             disconnectResponse.Members,
		},
	})
	if disconnectResponse.WasAdmin {
		c.broadcast(ctx, disconnectResponse.Conns, &Output{
			Type: "ADMIN_ONLINE",
			Payload: map[string]any{
				"online": false,
			},
		})
	}
	if disconnectResponse.SystemMessage != nil {
		c.broadcast(ctx, disconnectResponse.Conns, &Output{
			Type: "CHAT_MESSAGE",
			Payload: map[string]any{
				"message": disconnectResponse.SystemMessage,
			},
		})
	}
}
