package room

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mkstudico/kinaflix-TV/internal/repository/catalog"
	"github.com/mkstudico/kinaflix-TV/internal/repository/room"
	"github.com/mkstudico/kinaflix-TV/internal/repository/storage"
)

type UploadVideoParams struct {
	SenderId string
	Name     string
	Content  io.Reader
}

type UploadVideoResponse struct {
	AddedVideo Video
	Playlist   []Video
	Conns      []*websocket.Conn
}

// UploadVideo stores the blob, appends the descriptor to the persistent
// catalog and to the playlist. A catalog failure rolls the stored file
// and the playlist entry back, so a failed upload has no side effects.
func (s *service) UploadVideo(ctx context.Context, params *UploadVideoParams) (UploadVideoResponse, error) {
	if err := s.checkIfMemberAdmin(params.SenderId); err != nil {
		return UploadVideoResponse{}, err
	}

	videoId := uuid.NewString()
	stored, err := s.storageRepo.Store(videoId, params.Name, params.Content)
	if err != nil {
		return UploadVideoResponse{}, fmt.Errorf("failed to store video: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// checked under the lock so concurrent uploads cannot both slip past
	// the limit
	if s.roomRepo.PlaylistLength() >= s.playlistLimit {
		s.storageRepo.Remove(videoId)
		return UploadVideoResponse{}, ErrPlaylistLimitReached
	}

	video, err := s.roomRepo.AddVideo(&room.AddVideoParams{
		VideoId: videoId,
		Name:    params.Name,
		URL:     streamPath(videoId),
		Size:    stored.Size,
	})
	if err != nil {
		s.storageRepo.Remove(videoId)
		return UploadVideoResponse{}, fmt.Errorf("failed to add video: %w", err)
	}

	if err := s.catalogRepo.Append(ctx, &catalog.AppendParams{
		VideoId: video.Id,
		Name:    video.Name,
		URL:     video.URL,
		Size:    video.Size,
		AddedAt: video.AddedAt,
	}); err != nil {
		s.roomRepo.RemoveVideo(videoId)
		s.storageRepo.Remove(videoId)
		return UploadVideoResponse{}, fmt.Errorf("failed to append video to catalog: %w", err)
	}

	return UploadVideoResponse{
		AddedVideo: videoModel(video),
		Playlist:   playlistModel(s.roomRepo.GetPlaylist()),
		Conns:      s.connRepo.Conns(),
	}, nil
}

type RemoveVideoParams struct {
	SenderId string
	VideoId  string
}

type RemoveVideoResponse struct {
	RemovedVideoId string
	Playlist       []Video
	CurrentChanged bool
	Player         Player
	ChangedVideo   *Video
	Conns          []*websocket.Conn
}

func (s *service) RemoveVideo(ctx context.Context, params *RemoveVideoParams) (RemoveVideoResponse, error) {
	if err := s.checkIfMemberAdmin(params.SenderId); err != nil {
		return RemoveVideoResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.roomRepo.RemoveVideo(params.VideoId)
	if err != nil {
		if errors.Is(err, room.ErrVideoNotFound) {
			return RemoveVideoResponse{}, ErrVideoNotFound
		}
		return RemoveVideoResponse{}, fmt.Errorf("failed to remove video: %w", err)
	}

	if err := s.storageRepo.Remove(params.VideoId); err != nil && !errors.Is(err, storage.ErrFileNotFound) {
		s.logger.WarnContext(ctx, "failed to remove stored video", "video_id", params.VideoId, "error", err)
	}
	if err := s.catalogRepo.Remove(ctx, params.VideoId); err != nil && !errors.Is(err, catalog.ErrVideoNotFound) {
		s.logger.WarnContext(ctx, "failed to remove video from catalog", "video_id", params.VideoId, "error", err)
	}

	response := RemoveVideoResponse{
		RemovedVideoId: params.VideoId,
		Playlist:       playlistModel(s.roomRepo.GetPlaylist()),
		CurrentChanged: result.CurrentChanged,
		Player:         playerModel(s.roomRepo.GetPlayer()),
		Conns:          s.connRepo.Conns(),
	}

	if result.CurrentChanged && response.Player.VideoId != nil {
		if video, err := s.roomRepo.GetVideo(*response.Player.VideoId); err == nil {
			changedVideo := videoModel(video)
			response.ChangedVideo = &changedVideo
		}
	}

	return response, nil
}

type ReorderPlaylistParams struct {
	SenderId string
	VideoIds []string
}

type ReorderPlaylistResponse struct {
	Playlist []Video
	Conns    []*websocket.Conn
}

// ReorderPlaylist replaces the playlist with the entries named by
// VideoIds in that order. The admin client is trusted to send a
// permutation; unknown ids are dropped and entries left unnamed are
// removed from the playlist.
func (s *service) ReorderPlaylist(ctx context.Context, params *ReorderPlaylistParams) (ReorderPlaylistResponse, error) {
	if err := s.checkIfMemberAdmin(params.SenderId); err != nil {
		return ReorderPlaylistResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.roomRepo.GetPlaylist()
	byId := make(map[string]room.Video, len(current))
	for _, video := range current {
		byId[video.Id] = video
	}

	reordered := make([]room.Video, 0, len(params.VideoIds))
	for _, videoId := range params.VideoIds {
		if video, ok := byId[videoId]; ok {
			reordered = append(reordered, video)
		}
	}

	s.roomRepo.ReorderPlaylist(reordered)

	return ReorderPlaylistResponse{
		Playlist: playlistModel(s.roomRepo.GetPlaylist()),
		Conns:    s.connRepo.Conns(),
	}, nil
}

type ClearPlaylistParams struct {
	SenderId string
}

type ClearPlaylistResponse struct {
	Player Player
	Conns  []*websocket.Conn
}

// ClearPlaylist empties the playlist and the catalog. Stored files are
// left for the retention sweep.
func (s *service) ClearPlaylist(ctx context.Context, params *ClearPlaylistParams) (ClearPlaylistResponse, error) {
	if err := s.checkIfMemberAdmin(params.SenderId); err != nil {
		return ClearPlaylistResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, video := range s.roomRepo.GetPlaylist() {
		if err := s.catalogRepo.Remove(ctx, video.Id); err != nil && !errors.Is(err, catalog.ErrVideoNotFound) {
			s.logger.WarnContext(ctx, "failed to remove video from catalog", "video_id", video.Id, "error", err)
		}
	}

	s.roomRepo.ClearPlaylist()

	return ClearPlaylistResponse{
		Player: playerModel(s.roomRepo.GetPlayer()),
		Conns:  s.connRepo.Conns(),
	}, nil
}

type UploadSubtitlesParams struct {
	SenderId string
	Name     string
	Content  io.Reader
}

type UploadSubtitlesResponse struct {
	Subtitles Subtitles
	Conns     []*websocket.Conn
}

func (s *service) UploadSubtitles(ctx context.Context, params *UploadSubtitlesParams) (UploadSubtitlesResponse, error) {
	if err := s.checkIfMemberAdmin(params.SenderId); err != nil {
		return UploadSubtitlesResponse{}, err
	}

	fileId := "subtitles-" + uuid.NewString()
	if _, err := s.storageRepo.Store(fileId, params.Name, params.Content); err != nil {
		return UploadSubtitlesResponse{}, fmt.Errorf("failed to store subtitles: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	subtitles := s.roomRepo.SetSubtitleFile(streamPath(fileId))

	return UploadSubtitlesResponse{
		Subtitles: subtitlesModel(subtitles),
		Conns:     s.connRepo.Conns(),
	}, nil
}

// OpenVideo opens a stored file for streaming. No role is required.
func (s *service) OpenVideo(ctx context.Context, fileId string) (io.ReadSeekCloser, storage.StoredFile, error) {
	f, info, err := s.storageRepo.Open(fileId)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, storage.StoredFile{}, ErrVideoNotFound
		}
		return nil, storage.StoredFile{}, fmt.Errorf("failed to open video: %w", err)
	}

	return f, info, nil
}
