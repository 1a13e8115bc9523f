package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/mkstudico/kinaflix-TV/internal/repository/room"
)

type PlayParams struct {
	SenderId string
}

type PlayResponse struct {
	Player Player
	Conns  []*websocket.Conn
}

func (s *service) Play(ctx context.Context, params *PlayParams) (PlayResponse, error) {
	if err := s.checkIfMemberAdmin(params.SenderId); err != nil {
		return PlayResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.roomRepo.SetPlaying(true)
	if err != nil {
		if errors.Is(err, room.ErrEmptyPlaylist) {
			return PlayResponse{}, ErrEmptyPlaylist
		}
		return PlayResponse{}, fmt.Errorf("failed to set playing: %w", err)
	}

	return PlayResponse{
		Player: playerModel(player),
		Conns:  s.connRepo.Conns(),
	}, nil
}

type PauseParams struct {
	SenderId string
}

type PauseResponse struct {
	Player Player
	Conns  []*websocket.Conn
}

func (s *service) Pause(ctx context.Context, params *PauseParams) (PauseResponse, error) {
	if err := s.checkIfMemberAdmin(params.SenderId); err != nil {
		return PauseResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.roomRepo.SetPlaying(false)
	if err != nil {
		if errors.Is(err, room.ErrEmptyPlaylist) {
			return PauseResponse{}, ErrEmptyPlaylist
		}
		return PauseResponse{}, fmt.Errorf("failed to set playing: %w", err)
	}

	return PauseResponse{
		Player: playerModel(player),
		Conns:  s.connRepo.Conns(),
	}, nil
}

type SeekParams struct {
	SenderId    string
	CurrentTime float64
}

type SeekResponse struct {
	Player Player
	Conns  []*websocket.Conn
}

func (s *service) Seek(ctx context.Context, params *SeekParams) (SeekResponse, error) {
	if err := s.checkIfMemberAdmin(params.SenderId); err != nil {
		return SeekResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.roomRepo.Seek(params.CurrentTime)
	if err != nil {
		switch {
		case errors.Is(err, room.ErrNegativeTime):
			return SeekResponse{}, ErrInvalidCurrentTime
		case errors.Is(err, room.ErrEmptyPlaylist):
			return SeekResponse{}, ErrEmptyPlaylist
		}
		return SeekResponse{}, fmt.Errorf("failed to seek: %w", err)
	}

	return SeekResponse{
		Player: playerModel(player),
		Conns:  s.connRepo.Conns(),
	}, nil
}

type AdvanceParams struct {
	SenderId  string
	Direction room.Direction
}

type AdvanceResponse struct {
	ChangedVideo Video
	Player       Player
	Conns        []*websocket.Conn
}

// Advance steps the current video through the playlist with wraparound
// and starts playback from offset zero.
func (s *service) Advance(ctx context.Context, params *AdvanceParams) (AdvanceResponse, error) {
	if err := s.checkIfMemberAdmin(params.SenderId); err != nil {
		return AdvanceResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	video, err := s.roomRepo.Advance(params.Direction)
	if err != nil {
		if errors.Is(err, room.ErrEmptyPlaylist) {
			return AdvanceResponse{}, ErrEmptyPlaylist
		}
		return AdvanceResponse{}, fmt.Errorf("failed to advance: %w", err)
	}

	return AdvanceResponse{
		ChangedVideo: videoModel(video),
		Player:       playerModel(s.roomRepo.GetPlayer()),
		Conns:        s.connRepo.Conns(),
	}, nil
}

type SelectVideoParams struct {
	SenderId string
	VideoId  string
}

type SelectVideoResponse struct {
	ChangedVideo Video
	Player       Player
	Conns        []*websocket.Conn
}

func (s *service) SelectVideo(ctx context.Context, params *SelectVideoParams) (SelectVideoResponse, error) {
	if err := s.checkIfMemberAdmin(params.SenderId); err != nil {
		return SelectVideoResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	video, err := s.roomRepo.SelectVideo(params.VideoId)
	if err != nil {
		if errors.Is(err, room.ErrVideoNotFound) {
			return SelectVideoResponse{}, ErrVideoNotFound
		}
		return SelectVideoResponse{}, fmt.Errorf("failed to select video: %w", err)
	}

	return SelectVideoResponse{
		ChangedVideo: videoModel(video),
		Player:       playerModel(s.roomRepo.GetPlayer()),
		Conns:        s.connRepo.Conns(),
	}, nil
}

type ToggleSubtitlesParams struct {
	SenderId string
	Enabled  bool
}

type ToggleSubtitlesResponse struct {
	Subtitles Subtitles
	Conns     []*websocket.Conn
}

func (s *service) ToggleSubtitles(ctx context.Context, params *ToggleSubtitlesParams) (ToggleSubtitlesResponse, error) {
	if err := s.checkIfMemberAdmin(params.SenderId); err != nil {
		return ToggleSubtitlesResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	subtitles := s.roomRepo.ToggleSubtitles(params.Enabled)

	return ToggleSubtitlesResponse{
		Subtitles: subtitlesModel(subtitles),
		Conns:     s.connRepo.Conns(),
	}, nil
}
