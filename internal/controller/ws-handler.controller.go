package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	roomRepo "github.com/mkstudico/kinaflix-TV/internal/repository/room"
	"github.com/mkstudico/kinaflix-TV/internal/service/room"
	"github.com/mkstudico/kinaflix-TV/pkg/wsrouter"
)

// kickGraceDelay is how long a kicked connection gets to display the
// notice before the transport is force-closed.
const kickGraceDelay = 2 * time.Second

var (
	errInvalidPayload     = errors.New("invalid payload")
	errUnknownMessageType = errors.New("unknown message type")
)

// typedHandler adapts a handler taking a decoded input struct to the
// raw-payload signature the router dispatches on. Handler errors are
// reported to the sending connection only, never broadcast.
func typedHandler[T any](c *controller, fn func(context.Context, *websocket.Conn, T) error) wsrouter.HandlerFunc {
	return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		var input T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &input); err != nil {
				c.writeError(ctx, conn, errInvalidPayload)
				return fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		if err := fn(ctx, conn, input); err != nil {
			c.writeError(ctx, conn, err)
			return err
		}

		return nil
	}
}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ json.RawMessage) error {
	return nil
}

type EmptyInput struct{}

func (c controller) handlePlay(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	playResponse, err := c.roomService.Play(ctx, &room.PlayParams{
		SenderId: c.getMemberIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}

	c.broadcast(ctx, playResponse.Conns, &Output{
		Type: "PLAYER_PLAYED",
		Payload: map[string]any{
			"current_time": playResponse.Player.CurrentTime,
		},
	})

	return nil
}

func (c controller) handlePause(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	pauseResponse, err := c.roomService.Pause(ctx, &room.PauseParams{
		SenderId: c.getMemberIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}

	c.broadcast(ctx, pauseResponse.Conns, &Output{
		Type: "PLAYER_PAUSED",
		Payload: map[string]any{
			"current_time": pauseResponse.Player.CurrentTime,
		},
	})

	return nil
}

type SeekInput struct {
	CurrentTime float64 `json:"current_time" validate:"gte=0"`
}

func (c controller) handleSeek(ctx context.Context, conn *websocket.Conn, input SeekInput) error {
	if _, ok := c.validate.Validate(input); !ok {
		return errInvalidPayload
	}

	seekResponse, err := c.roomService.Seek(ctx, &room.SeekParams{
		SenderId:    c.getMemberIdFromCtx(ctx),
		CurrentTime: input.CurrentTime,
	})
	if err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	c.broadcast(ctx, seekResponse.Conns, &Output{
		Type: "PLAYER_SEEKED",
		Payload: map[string]any{
			"current_time": seekResponse.Player.CurrentTime,
		},
	})

	return nil
}

func (c controller) handleNextVideo(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return c.advance(ctx, roomRepo.DirectionNext)
}

func (c controller) handlePreviousVideo(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return c.advance(ctx, roomRepo.DirectionPrevious)
}

func (c controller) advance(ctx context.Context, direction roomRepo.Direction) error {
	advanceResponse, err := c.roomService.Advance(ctx, &room.AdvanceParams{
		SenderId:  c.getMemberIdFromCtx(ctx),
		Direction: direction,
	})
	if err != nil {
		return fmt.Errorf("failed to advance: %w", err)
	}

	c.broadcastVideoChanged(ctx, advanceResponse.Conns, advanceResponse.ChangedVideo, advanceResponse.Player)

	return nil
}

// broadcastVideoChanged emits the video switch followed by the playback
// restart from offset zero, in that order.
func (c controller) broadcastVideoChanged(ctx context.Context, conns []*websocket.Conn, video room.Video, player room.Player) {
	c.broadcast(ctx, conns, &Output{
		Type: "VIDEO_CHANGED",
		Payload: map[string]any{
			"video": video,
		},
	})
	c.broadcast(ctx, conns, &Output{
		Type: "PLAYER_PLAYED",
		Payload: map[string]any{
			"current_time": player.CurrentTime,
		},
	})
}

type SelectVideoInput struct {
	VideoId string `json:"video_id" validate:"required"`
}

func (c controller) handleSelectVideo(ctx context.Context, _ *websocket.Conn, input SelectVideoInput) error {
	if _, ok := c.validate.Validate(input); !ok {
		return errInvalidPayload
	}

	selectVideoResponse, err := c.roomService.SelectVideo(ctx, &room.SelectVideoParams{
		SenderId: c.getMemberIdFromCtx(ctx),
		VideoId:  input.VideoId,
	})
	if err != nil {
		return fmt.Errorf("failed to select video: %w", err)
	}

	c.broadcastVideoChanged(ctx, selectVideoResponse.Conns, selectVideoResponse.ChangedVideo, selectVideoResponse.Player)

	return nil
}

type ToggleSubtitlesInput struct {
	Enabled bool `json:"enabled"`
}

func (c controller) handleToggleSubtitles(ctx context.Context, _ *websocket.Conn, input ToggleSubtitlesInput) error {
	toggleResponse, err := c.roomService.ToggleSubtitles(ctx, &room.ToggleSubtitlesParams{
		SenderId: c.getMemberIdFromCtx(ctx),
		Enabled:  input.Enabled,
	})
	if err != nil {
		return fmt.Errorf("failed to toggle subtitles: %w", err)
	}

	c.broadcast(ctx, toggleResponse.Conns, &Output{
		Type: "SUBTITLES_TOGGLED",
		Payload: map[string]any{
			"subtitles": toggleResponse.Subtitles,
		},
	})

	return nil
}

func (c controller) handleSyncRequest(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	syncResponse, err := c.roomService.SyncRequest(ctx, &room.SyncRequestParams{
		SenderId: c.getMemberIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to sync: %w", err)
	}

	if err := c.writeToConn(ctx, conn, &Output{
		Type:    "SYNC_STATE",
		Payload: syncResponse,
	}); err != nil {
		return fmt.Errorf("failed to write sync state: %w", err)
	}

	return nil
}

type RemoveVideoInput struct {
	VideoId string `json:"video_id" validate:"required"`
}

func (c controller) handleRemoveVideo(ctx context.Context, _ *websocket.Conn, input RemoveVideoInput) error {
	if _, ok := c.validate.Validate(input); !ok {
		return errInvalidPayload
	}

	removeResponse, err := c.roomService.RemoveVideo(ctx, &room.RemoveVideoParams{
		SenderId: c.getMemberIdFromCtx(ctx),
		VideoId:  input.VideoId,
	})
	if err != nil {
		return fmt.Errorf("failed to remove video: %w", err)
	}

	c.broadcast(ctx, removeResponse.Conns, &Output{
		Type: "PLAYLIST_UPDATED",
		Payload: map[string]any{
			"playlist":         removeResponse.Playlist,
			"removed_video_id": removeResponse.RemovedVideoId,
		},
	})

	if removeResponse.CurrentChanged {
		c.broadcast(ctx, removeResponse.Conns, &Output{
			Type: "VIDEO_CHANGED",
			Payload: map[string]any{
				"video": removeResponse.ChangedVideo,
			},
		})
		c.broadcast(ctx, removeResponse.Conns, &Output{
			Type: "PLAYER_UPDATED",
			Payload: map[string]any{
				"player": removeResponse.Player,
			},
		})
	}

	return nil
}

type ReorderPlaylistInput struct {
	VideoIds []string `json:"video_ids" validate:"required"`
}

func (c controller) handleReorderPlaylist(ctx context.Context, _ *websocket.Conn, input ReorderPlaylistInput) error {
	if _, ok := c.validate.Validate(input); !ok {
		return errInvalidPayload
	}

	reorderResponse, err := c.roomService.ReorderPlaylist(ctx, &room.ReorderPlaylistParams{
		SenderId: c.getMemberIdFromCtx(ctx),
		VideoIds: input.VideoIds,
	})
	if err != nil {
		return fmt.Errorf("failed to reorder playlist: %w", err)
	}

	c.broadcast(ctx, reorderResponse.Conns, &Output{
		Type: "PLAYLIST_UPDATED",
		Payload: map[string]any{
			"playlist": reorderResponse.Playlist,
		},
	})

	return nil
}

func (c controller) handleClearPlaylist(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	clearResponse, err := c.roomService.ClearPlaylist(ctx, &room.ClearPlaylistParams{
		SenderId: c.getMemberIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to clear playlist: %w", err)
	}

	c.broadcast(ctx, clearResponse.Conns, &Output{
		Type: "PLAYLIST_UPDATED",
		Payload: map[string]any{
			"playlist": []room.Video{},
		},
	})
	c.broadcast(ctx, clearResponse.Conns, &Output{
		Type: "VIDEO_CHANGED",
		Payload: map[string]any{
			"video": nil,
		},
	})

	return nil
}

type ChatMessageInput struct {
	Message string `json:"message" validate:"required"`
}

func (c controller) handleChatMessage(ctx context.Context, _ *websocket.Conn, input ChatMessageInput) error {
	chatResponse, err := c.roomService.SendChatMessage(ctx, &room.SendChatMessageParams{
		SenderId: c.getMemberIdFromCtx(ctx),
		Text:     input.Message,
	})
	if err != nil {
		if errors.Is(err, room.ErrEmptyMessage) {
			// dropped without a reply, same as an empty submit in the UI
			return nil
		}
		return fmt.Errorf("failed to send chat message: %w", err)
	}

	c.broadcast(ctx, chatResponse.Conns, &Output{
		Type: "CHAT_MESSAGE",
		Payload: map[string]any{
			"message": chatResponse.Message,
		},
	})

	return nil
}

type KickMemberInput struct {
	MemberId string `json:"member_id" validate:"required"`
}

func (c controller) handleKickMember(ctx context.Context, _ *websocket.Conn, input KickMemberInput) error {
	if _, ok := c.validate.Validate(input); !ok {
		return errInvalidPayload
	}

	kickResponse, err := c.roomService.KickMember(ctx, &room.KickMemberParams{
		SenderId:       c.getMemberIdFromCtx(ctx),
		KickedMemberId: input.MemberId,
	})
	if err != nil {
		return fmt.Errorf("failed to kick member: %w", err)
	}

	if err := c.writeToConn(ctx, kickResponse.KickedConn, &Output{
		Type: "KICKED",
		Payload: map[string]any{
			"member_id": kickResponse.KickedMember.Id,
		},
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to write kick notice", "error", err)
	}

	if kickResponse.SystemMessage != nil {
		c.broadcast(ctx, kickResponse.Conns, &Output{
			Type: "CHAT_MESSAGE",
			Payload: map[string]any{
				"message": kickResponse.SystemMessage,
			},
		})
	}

	// the registry entry is cleaned up by the disconnect path once the
	// close lands
	conn := kickResponse.KickedConn
	time.AfterFunc(kickGraceDelay, func() {
		deadline := time.Now().Add(time.Second)
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "kicked"),
			deadline,
		)
		conn.Close()
	})

	return nil
}

func (c controller) handleRequestMemberList(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	memberListResponse, err := c.roomService.GetMemberList(ctx, &room.GetMemberListParams{
		SenderId: c.getMemberIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to get member list: %w", err)
	}

	if err := c.writeToConn(ctx, conn, &Output{
		Type: "MEMBER_LIST",
		Payload: map[string]any{
			"members": memberListResponse.Members,
		},
	}); err != nil {
		return fmt.Errorf("failed to write member list: %w", err)
	}

	return nil
}
