// Package inmemory holds the authoritative room state. The state is
// process-lifetime scoped and reconstructed empty on restart.
package inmemory

import (
	"sync"
	"time"

	"github.com/mkstudico/kinaflix-TV/internal/repository/room"
)

type repo struct {
	mu    sync.RWMutex
	state room.State
}

func NewRepo() *repo {
	return &repo{}
}

func (r *repo) SetPlaying(isPlaying bool) (room.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.state.Playlist) == 0 {
		return room.Player{}, room.ErrEmptyPlaylist
	}

	r.state.Player.IsPlaying = isPlaying

	return r.state.Player, nil
}

func (r *repo) Seek(currentTime float64) (room.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if currentTime < 0 {
		return room.Player{}, room.ErrNegativeTime
	}
	if len(r.state.Playlist) == 0 {
		return room.Player{}, room.ErrEmptyPlaylist
	}

	r.state.Player.CurrentTime = currentTime

	return r.state.Player, nil
}

// Advance moves the current video one step through the playlist with
// wraparound, resets the offset and starts playback.
func (r *repo) Advance(direction room.Direction) (room.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.state.Playlist) == 0 {
		return room.Video{}, room.ErrEmptyPlaylist
	}

	currentIndex := r.currentIndexLocked()
	step := 1
	if direction == room.DirectionPrevious {
		step = -1
	}
	nextIndex := (currentIndex + step + len(r.state.Playlist)) % len(r.state.Playlist)

	video := r.state.Playlist[nextIndex]
	r.setCurrentLocked(video.Id)

	return video, nil
}

func (r *repo) SelectVideo(videoId string) (room.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, video := range r.state.Playlist {
		if video.Id == videoId {
			r.setCurrentLocked(videoId)
			return video, nil
		}
	}

	return room.Video{}, room.ErrVideoNotFound
}

func (r *repo) AddVideo(params *room.AddVideoParams) (room.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	video := room.Video{
		Id:      params.VideoId,
		Name:    params.Name,
		URL:     params.URL,
		Size:    params.Size,
		AddedAt: time.Now().Unix(),
	}
	r.state.Playlist = append(r.state.Playlist, video)

	if r.state.StreamStartedAt == nil {
		startedAt := time.Now().Unix()
		r.state.StreamStartedAt = &startedAt
	}

	// the first entry becomes current without starting playback
	if len(r.state.Playlist) == 1 {
		videoId := video.Id
		r.state.Player.VideoId = &videoId
		r.state.Player.CurrentTime = 0
		r.state.Player.IsPlaying = false
	}

	return video, nil
}

func (r *repo) RemoveVideo(videoId string) (room.RemoveVideoResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, video := range r.state.Playlist {
		if video.Id != videoId {
			continue
		}

		r.state.Playlist = append(r.state.Playlist[:i], r.state.Playlist[i+1:]...)

		result := room.RemoveVideoResult{Removed: video}
		if r.state.Player.VideoId != nil && *r.state.Player.VideoId == videoId {
			result.CurrentChanged = true
			r.resetCurrentLocked()
		}

		return result, nil
	}

	return room.RemoveVideoResult{}, room.ErrVideoNotFound
}

// ReorderPlaylist replaces the playlist wholesale. The caller is trusted
// to supply a permutation of the existing entries; a current video that
// does not survive the replacement is reassigned, never left dangling.
func (r *repo) ReorderPlaylist(videos []room.Video) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.Playlist = make([]room.Video, len(videos))
	copy(r.state.Playlist, videos)

	if r.state.Player.VideoId == nil {
		if len(r.state.Playlist) > 0 {
			r.resetCurrentLocked()
		}
		return
	}

	for _, video := range r.state.Playlist {
		if video.Id == *r.state.Player.VideoId {
			return
		}
	}

	r.resetCurrentLocked()
}

func (r *repo) ClearPlaylist() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.Playlist = nil
	r.state.Player = room.Player{}
}

func (r *repo) ToggleSubtitles(enabled bool) room.Subtitles {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.Subtitles.Enabled = enabled

	return r.state.Subtitles
}

func (r *repo) SetSubtitleFile(fileURL string) room.Subtitles {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.Subtitles.FileURL = &fileURL

	return r.state.Subtitles
}

func (r *repo) GetPlayer() room.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state.Player
}

func (r *repo) GetVideo(videoId string) (room.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, video := range r.state.Playlist {
		if video.Id == videoId {
			return video, nil
		}
	}

	return room.Video{}, room.ErrVideoNotFound
}

func (r *repo) GetPlaylist() []room.Video {
	r.mu.RLock()
	defer r.mu.RUnlock()

	playlist := make([]room.Video, len(r.state.Playlist))
	copy(playlist, r.state.Playlist)

	return playlist
}

func (r *repo) PlaylistLength() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.state.Playlist)
}

// Snapshot returns a read-only copy of the full room state.
func (r *repo) Snapshot() room.State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state := r.state
	state.Playlist = make([]room.Video, len(r.state.Playlist))
	copy(state.Playlist, r.state.Playlist)

	if r.state.Player.VideoId != nil {
		videoId := *r.state.Player.VideoId
		state.Player.VideoId = &videoId
	}
	if r.state.Subtitles.FileURL != nil {
		fileURL := *r.state.Subtitles.FileURL
		state.Subtitles.FileURL = &fileURL
	}
	if r.state.StreamStartedAt != nil {
		startedAt := *r.state.StreamStartedAt
		state.StreamStartedAt = &startedAt
	}

	return state
}

func (r *repo) currentIndexLocked() int {
	if r.state.Player.VideoId == nil {
		return 0
	}

	for i, video := range r.state.Playlist {
		if video.Id == *r.state.Player.VideoId {
			return i
		}
	}

	return 0
}

func (r *repo) setCurrentLocked(videoId string) {
	r.state.Player.VideoId = &videoId
	r.state.Player.CurrentTime = 0
	r.state.Player.IsPlaying = true
}

// resetCurrentLocked reassigns the current video to the first playlist
// entry, or clears the player if the playlist is empty.
func (r *repo) resetCurrentLocked() {
	if len(r.state.Playlist) == 0 {
		r.state.Player = room.Player{}
		return
	}

	videoId := r.state.Playlist[0].Id
	r.state.Player = room.Player{VideoId: &videoId}
}
