package controller

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mkstudico/kinaflix-TV/internal/repository/storage"
	"github.com/mkstudico/kinaflix-TV/internal/service/room"
	"github.com/mkstudico/kinaflix-TV/pkg/validator"
	"github.com/mkstudico/kinaflix-TV/pkg/wsrouter"
)

type iRoomService interface {
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	DisconnectMember(context.Context, *room.DisconnectMemberParams) (room.DisconnectMemberResponse, error)
	SyncRequest(context.Context, *room.SyncRequestParams) (room.SyncRequestResponse, error)
	GetStats(context.Context) room.Stats
	Play(context.Context, *room.PlayParams) (room.PlayResponse, error)
	Pause(context.Context, *room.PauseParams) (room.PauseResponse, error)
	Seek(context.Context, *room.SeekParams) (room.SeekResponse, error)
	Advance(context.Context, *room.AdvanceParams) (room.AdvanceResponse, error)
	SelectVideo(context.Context, *room.SelectVideoParams) (room.SelectVideoResponse, error)
	ToggleSubtitles(context.Context, *room.ToggleSubtitlesParams) (room.ToggleSubtitlesResponse, error)
	UploadVideo(context.Context, *room.UploadVideoParams) (room.UploadVideoResponse, error)
	RemoveVideo(context.Context, *room.RemoveVideoParams) (room.RemoveVideoResponse, error)
	ReorderPlaylist(context.Context, *room.ReorderPlaylistParams) (room.ReorderPlaylistResponse, error)
	ClearPlaylist(context.Context, *room.ClearPlaylistParams) (room.ClearPlaylistResponse, error)
	UploadSubtitles(context.Context, *room.UploadSubtitlesParams) (room.UploadSubtitlesResponse, error)
	OpenVideo(ctx context.Context, fileId string) (io.ReadSeekCloser, storage.StoredFile, error)
	KickMember(context.Context, *room.KickMemberParams) (room.KickMemberResponse, error)
	GetMemberList(context.Context, *room.GetMemberListParams) (room.GetMemberListResponse, error)
	SendChatMessage(context.Context, *room.SendChatMessageParams) (room.SendChatMessageResponse, error)
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	logger      *slog.Logger
	wsmux       *wsrouter.WSRouter
	connLocks   *connLocks
}

func NewController(roomService iRoomService, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		validate:    validator.NewValidator(),
		logger:      logger,
		connLocks:   &connLocks{},
	}
	c.wsmux = c.getWSRouter()

	return c
}
