package controller

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"

	"github.com/mkstudico/kinaflix-TV/pkg/wsrouter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsRequestIdWSMw())
	mux.Use(c.loggerWSMw())

	mux.NotFound(func(ctx context.Context, conn *websocket.Conn, _ json.RawMessage) error {
		c.writeError(ctx, conn, errUnknownMessageType)
		return nil
	})

	mux.Handle("ALIVE", c.handleAlive)

	// player
	mux.Handle("PLAY", typedHandler(c, c.handlePlay))
	mux.Handle("PAUSE", typedHandler(c, c.handlePause))
	mux.Handle("SEEK", typedHandler(c, c.handleSeek))
	mux.Handle("NEXT_VIDEO", typedHandler(c, c.handleNextVideo))
	mux.Handle("PREVIOUS_VIDEO", typedHandler(c, c.handlePreviousVideo))
	mux.Handle("SELECT_VIDEO", typedHandler(c, c.handleSelectVideo))
	mux.Handle("TOGGLE_SUBTITLES", typedHandler(c, c.handleToggleSubtitles))
	mux.Handle("SYNC_REQUEST", typedHandler(c, c.handleSyncRequest))

	// playlist
	mux.Handle("REMOVE_VIDEO", typedHandler(c, c.handleRemoveVideo))
	mux.Handle("REORDER_PLAYLIST", typedHandler(c, c.handleReorderPlaylist))
	mux.Handle("CLEAR_PLAYLIST", typedHandler(c, c.handleClearPlaylist))

	// chat
	mux.Handle("CHAT_MESSAGE", typedHandler(c, c.handleChatMessage))

	// member
	mux.Handle("KICK_MEMBER", typedHandler(c, c.handleKickMember))
	mux.Handle("REQUEST_MEMBER_LIST", typedHandler(c, c.handleRequestMemberList))

	return mux
}
