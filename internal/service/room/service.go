package room

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mkstudico/kinaflix-TV/internal/repository/catalog"
	"github.com/mkstudico/kinaflix-TV/internal/repository/chat"
	"github.com/mkstudico/kinaflix-TV/internal/repository/connection"
	"github.com/mkstudico/kinaflix-TV/internal/repository/room"
	"github.com/mkstudico/kinaflix-TV/internal/repository/storage"
	"github.com/mkstudico/kinaflix-TV/pkg/randstr"
	"github.com/mkstudico/kinaflix-TV/pkg/slidingwindow"
)

var (
	ErrPermissionDenied     = errors.New("permission denied")
	ErrMemberNotFound       = errors.New("member not found")
	ErrVideoNotFound        = errors.New("video not found")
	ErrEmptyPlaylist        = errors.New("empty playlist")
	ErrInvalidCurrentTime   = errors.New("invalid current time")
	ErrViewerLimitReached   = errors.New("viewer limit reached")
	ErrPlaylistLimitReached = errors.New("playlist limit reached")
	ErrRateLimited          = errors.New("rate limited")
	ErrEmptyMessage         = errors.New("empty message")
)

const (
	chatRateWindow      = 10 * time.Second
	chatRateLimit       = 5
	chatRateIdleHorizon = time.Minute
)

type iRoomStateRepo interface {
	SetPlaying(isPlaying bool) (room.Player, error)
	Seek(currentTime float64) (room.Player, error)
	Advance(direction room.Direction) (room.Video, error)
	SelectVideo(videoId string) (room.Video, error)
	AddVideo(params *room.AddVideoParams) (room.Video, error)
	RemoveVideo(videoId string) (room.RemoveVideoResult, error)
	ReorderPlaylist(videos []room.Video)
	ClearPlaylist()
	ToggleSubtitles(enabled bool) room.Subtitles
	SetSubtitleFile(fileURL string) room.Subtitles
	GetPlayer() room.Player
	GetVideo(videoId string) (room.Video, error)
	GetPlaylist() []room.Video
	PlaylistLength() int
	Snapshot() room.State
}

type iConnRepo interface {
	Add(params *connection.AddParams) (connection.Member, error)
	RemoveByConn(conn *websocket.Conn) (connection.Member, error)
	GetById(memberId string) (connection.Member, error)
	List() []connection.Member
	Count(role connection.Role) int
	Conns() []*websocket.Conn
}

type iChatRepo interface {
	Append(params *chat.AppendParams) (chat.Message, error)
	List() []chat.Message
}

type iCatalogRepo interface {
	Append(ctx context.Context, params *catalog.AppendParams) error
	Remove(ctx context.Context, videoId string) error
	List(ctx context.Context) ([]catalog.Video, error)
}

type iStorageRepo interface {
	Store(fileId, name string, content io.Reader) (storage.StoredFile, error)
	Open(fileId string) (io.ReadSeekCloser, storage.StoredFile, error)
	Remove(fileId string) error
	OlderThan(cutoff time.Time) ([]string, error)
}

type iChatLimiter interface {
	Allow(key string) bool
	Forget(key string)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	ViewersLimit    int
	PlaylistLimit   int
	Secret          string
	RetentionMaxAge time.Duration
}

// service is the sync protocol engine. All state mutations go through it
// and are serialized by mu; every mutating operation validates the
// sender's role before touching any state.
type service struct {
	mu sync.Mutex

	roomRepo    iRoomStateRepo
	connRepo    iConnRepo
	chatRepo    iChatRepo
	catalogRepo iCatalogRepo
	storageRepo iStorageRepo
	chatLimiter iChatLimiter
	generator   iGenerator
	logger      *slog.Logger

	viewersLimit    int
	playlistLimit   int
	secret          string
	retentionMaxAge time.Duration
}

func NewService(
	roomRepo iRoomStateRepo,
	connRepo iConnRepo,
	chatRepo iChatRepo,
	catalogRepo iCatalogRepo,
	storageRepo iStorageRepo,
	logger *slog.Logger,
	cfg *Config,
) *service {
	s := service{
		roomRepo:        roomRepo,
		connRepo:        connRepo,
		chatRepo:        chatRepo,
		catalogRepo:     catalogRepo,
		storageRepo:     storageRepo,
		logger:          logger,
		viewersLimit:    cfg.ViewersLimit,
		playlistLimit:   cfg.PlaylistLimit,
		secret:          cfg.Secret,
		retentionMaxAge: cfg.RetentionMaxAge,
	}

	s.chatLimiter = slidingwindow.New(chatRateWindow, chatRateLimit, chatRateIdleHorizon)

	letterBytes := []byte("abcdefghijklmnopqrstuvwxyz0123456789")
	s.generator = randstr.New(letterBytes)

	return &s
}
