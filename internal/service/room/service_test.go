package room

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogRedis "github.com/mkstudico/kinaflix-TV/internal/repository/catalog/redis"
	chatInmemory "github.com/mkstudico/kinaflix-TV/internal/repository/chat/inmemory"
	connInmemory "github.com/mkstudico/kinaflix-TV/internal/repository/connection/inmemory"
	roomInmemory "github.com/mkstudico/kinaflix-TV/internal/repository/room/inmemory"
	storageDisk "github.com/mkstudico/kinaflix-TV/internal/repository/storage/disk"
)

const testSecret = "test-secret"

func newTestService(t *testing.T, cfg *Config) *service {
	t.Helper()

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})

	storageRepo, err := storageDisk.NewRepo(t.TempDir())
	require.NoError(t, err)

	return newTestServiceWith(t, rc, storageRepo, cfg)
}

func newTestServiceWith(t *testing.T, rc *redis.Client, storageRepo iStorageRepo, cfg *Config) *service {
	t.Helper()

	if cfg == nil {
		cfg = &Config{
			ViewersLimit:    80,
			PlaylistLimit:   25,
			Secret:          testSecret,
			RetentionMaxAge: 24 * time.Hour,
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewService(
		roomInmemory.NewRepo(),
		connInmemory.NewRepo(),
		chatInmemory.NewRepo(100, 500),
		catalogRedis.NewRepo(rc),
		storageRepo,
		logger,
		cfg,
	)
}

func joinAdmin(t *testing.T, svc *service) Member {
	t.Helper()
	resp, err := svc.JoinRoom(context.Background(), &JoinRoomParams{
		Conn:       &websocket.Conn{},
		Username:   "admin",
		AdminToken: testSecret,
	})
	require.NoError(t, err)
	require.True(t, resp.JoinedMember.IsAdmin)
	return resp.JoinedMember
}

func joinViewer(t *testing.T, svc *service, username string) Member {
	t.Helper()
	resp, err := svc.JoinRoom(context.Background(), &JoinRoomParams{
		Conn:     &websocket.Conn{},
		Username: username,
	})
	require.NoError(t, err)
	require.False(t, resp.JoinedMember.IsAdmin)
	return resp.JoinedMember
}

func uploadVideo(t *testing.T, svc *service, senderId, name string) Video {
	t.Helper()
	resp, err := svc.UploadVideo(context.Background(), &UploadVideoParams{
		SenderId: senderId,
		Name:     name,
		Content:  strings.NewReader("video content"),
	})
	require.NoError(t, err)
	return resp.AddedVideo
}

func TestJoinRoomCapacity(t *testing.T) {
	svc := newTestService(t, &Config{
		ViewersLimit:    2,
		PlaylistLimit:   25,
		Secret:          testSecret,
		RetentionMaxAge: 24 * time.Hour,
	})
	ctx := context.Background()

	joinViewer(t, svc, "viewer-1")
	joinViewer(t, svc, "viewer-2")

	_, err := svc.JoinRoom(ctx, &JoinRoomParams{Conn: &websocket.Conn{}, Username: "viewer-3"})
	assert.ErrorIs(t, err, ErrViewerLimitReached)

	stats := svc.GetStats(ctx)
	assert.Equal(t, 2, stats.Viewers, "rejected admission must not register a connection")

	// admins bypass the viewer capacity check
	joinAdmin(t, svc)
	assert.Equal(t, 1, svc.GetStats(ctx).Admins)
}

func TestJoinRoomGeneratesUsername(t *testing.T) {
	svc := newTestService(t, nil)

	resp, err := svc.JoinRoom(context.Background(), &JoinRoomParams{Conn: &websocket.Conn{}, Username: "   "})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.JoinedMember.Username, "guest-"))
}

func TestJoinRoomSnapshot(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	admin := joinAdmin(t, svc)
	video := uploadVideo(t, svc, admin.Id, "movie.mp4")

	_, err := svc.SendChatMessage(ctx, &SendChatMessageParams{SenderId: admin.Id, Text: "hello"})
	require.NoError(t, err)

	resp, err := svc.JoinRoom(ctx, &JoinRoomParams{Conn: &websocket.Conn{}, Username: "late-viewer"})
	require.NoError(t, err)

	require.NotNil(t, resp.Room.Player.VideoId)
	assert.Equal(t, video.Id, *resp.Room.Player.VideoId)
	assert.Len(t, resp.Room.Playlist, 1)
	assert.Len(t, resp.Room.Members, 2)
	assert.NotEmpty(t, resp.Room.Messages, "snapshot must include the chat history")
	assert.NotNil(t, resp.Room.StreamStartedAt)
	assert.Len(t, resp.Conns, 2)
}

func TestRoleGating(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	admin := joinAdmin(t, svc)
	uploadVideo(t, svc, admin.Id, "movie.mp4")
	viewer := joinViewer(t, svc, "viewer")

	before := svc.GetStats(ctx)

	_, err := svc.Play(ctx, &PlayParams{SenderId: viewer.Id})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Seek(ctx, &SeekParams{SenderId: viewer.Id, CurrentTime: 42})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Advance(ctx, &AdvanceParams{SenderId: viewer.Id, Direction: "next"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.UploadVideo(ctx, &UploadVideoParams{SenderId: viewer.Id, Name: "x.mp4", Content: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.ClearPlaylist(ctx, &ClearPlaylistParams{SenderId: viewer.Id})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.KickMember(ctx, &KickMemberParams{SenderId: viewer.Id, KickedMemberId: admin.Id})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.GetMemberList(ctx, &GetMemberListParams{SenderId: viewer.Id})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	after := svc.GetStats(ctx)
	assert.Equal(t, before.Player, after.Player, "rejected commands must not mutate the player")
	assert.Equal(t, before.PlaylistLength, after.PlaylistLength)
}

func TestUnknownSender(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Play(context.Background(), &PlayParams{SenderId: "ghost"})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestSeekValidation(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	admin := joinAdmin(t, svc)

	_, err := svc.Seek(ctx, &SeekParams{SenderId: admin.Id, CurrentTime: 10})
	assert.ErrorIs(t, err, ErrEmptyPlaylist)

	uploadVideo(t, svc, admin.Id, "movie.mp4")

	_, err = svc.Seek(ctx, &SeekParams{SenderId: admin.Id, CurrentTime: -1})
	assert.ErrorIs(t, err, ErrInvalidCurrentTime)

	resp, err := svc.Seek(ctx, &SeekParams{SenderId: admin.Id, CurrentTime: 12.5})
	require.NoError(t, err)
	assert.Equal(t, 12.5, resp.Player.CurrentTime)
}

func TestChatRateLimit(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	joinAdmin(t, svc)
	viewer := joinViewer(t, svc, "viewer")

	for i := 0; i < 5; i++ {
		resp, err := svc.SendChatMessage(ctx, &SendChatMessageParams{
			SenderId: viewer.Id,
			Text:     fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
		assert.Equal(t, "viewer", resp.Message.AuthorName)
		assert.Len(t, resp.Conns, 2)
	}

	_, err := svc.SendChatMessage(ctx, &SendChatMessageParams{SenderId: viewer.Id, Text: "flooding"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestChatEmptyMessage(t *testing.T) {
	svc := newTestService(t, nil)

	viewer := joinViewer(t, svc, "viewer")

	_, err := svc.SendChatMessage(context.Background(), &SendChatMessageParams{SenderId: viewer.Id, Text: "  \t "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestKickMember(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	admin := joinAdmin(t, svc)
	viewer := joinViewer(t, svc, "viewer")

	resp, err := svc.KickMember(ctx, &KickMemberParams{SenderId: admin.Id, KickedMemberId: viewer.Id})
	require.NoError(t, err)
	assert.Equal(t, viewer.Id, resp.KickedMember.Id)
	assert.NotNil(t, resp.KickedConn)
	require.NotNil(t, resp.SystemMessage)
	assert.Equal(t, "viewer was kicked", resp.SystemMessage.Text)

	// the registry entry survives until the transport actually closes
	assert.Equal(t, 1, svc.GetStats(ctx).Viewers)

	_, err = svc.KickMember(ctx, &KickMemberParams{SenderId: admin.Id, KickedMemberId: admin.Id})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.KickMember(ctx, &KickMemberParams{SenderId: admin.Id, KickedMemberId: "ghost"})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestGetMemberList(t *testing.T) {
	svc := newTestService(t, nil)

	admin := joinAdmin(t, svc)
	joinViewer(t, svc, "viewer-1")
	joinViewer(t, svc, "viewer-2")

	resp, err := svc.GetMemberList(context.Background(), &GetMemberListParams{SenderId: admin.Id})
	require.NoError(t, err)
	require.Len(t, resp.Members, 3)
	assert.Equal(t, "admin", resp.Members[0].Username, "roster must preserve join order")
	for _, member := range resp.Members {
		assert.GreaterOrEqual(t, member.WatchTime, int64(0))
	}
}

func TestDisconnectMember(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	conn := &websocket.Conn{}
	resp, err := svc.JoinRoom(ctx, &JoinRoomParams{Conn: conn, Username: "admin", AdminToken: testSecret})
	require.NoError(t, err)

	joinViewer(t, svc, "viewer")

	disconnectResp, err := svc.DisconnectMember(ctx, &DisconnectMemberParams{Conn: conn})
	require.NoError(t, err)
	assert.True(t, disconnectResp.WasAdmin)
	assert.Equal(t, resp.JoinedMember.Id, disconnectResp.DisconnectedMember.Id)
	assert.Len(t, disconnectResp.Members, 1)
	require.NotNil(t, disconnectResp.SystemMessage)
	assert.Equal(t, "admin left", disconnectResp.SystemMessage.Text)

	// idempotent at the engine level: a second disconnect is a no-op error
	_, err = svc.DisconnectMember(ctx, &DisconnectMemberParams{Conn: conn})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
