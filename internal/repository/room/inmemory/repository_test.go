package inmemory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkstudico/kinaflix-TV/internal/repository/room"
)

func addVideo(t *testing.T, r *repo, id string) room.Video {
	t.Helper()
	video, err := r.AddVideo(&room.AddVideoParams{VideoId: id, Name: id + ".mp4", URL: "/videos/" + id})
	require.NoError(t, err)
	return video
}

func TestEmptyPlaylistInvariant(t *testing.T) {
	r := NewRepo()

	_, err := r.SetPlaying(true)
	assert.ErrorIs(t, err, room.ErrEmptyPlaylist)

	_, err = r.Seek(10)
	assert.ErrorIs(t, err, room.ErrEmptyPlaylist)

	_, err = r.Advance(room.DirectionNext)
	assert.ErrorIs(t, err, room.ErrEmptyPlaylist)

	state := r.Snapshot()
	assert.Nil(t, state.Player.VideoId)
	assert.False(t, state.Player.IsPlaying)
}

func TestSeekNegativeTime(t *testing.T) {
	r := NewRepo()
	addVideo(t, r, "a")

	_, err := r.Seek(-1)
	assert.ErrorIs(t, err, room.ErrNegativeTime)
}

func TestFirstVideoBecomesCurrent(t *testing.T) {
	r := NewRepo()
	addVideo(t, r, "a")

	state := r.Snapshot()
	require.NotNil(t, state.Player.VideoId)
	assert.Equal(t, "a", *state.Player.VideoId)
	assert.False(t, state.Player.IsPlaying, "adding a video must not start playback")
	require.NotNil(t, state.StreamStartedAt)

	startedAt := *state.StreamStartedAt
	addVideo(t, r, "b")
	state = r.Snapshot()
	assert.Equal(t, startedAt, *state.StreamStartedAt, "stream started timestamp must be set once")
	assert.Equal(t, "a", *state.Player.VideoId, "later additions must not steal the current video")
}

func TestAdvanceWraparound(t *testing.T) {
	r := NewRepo()
	addVideo(t, r, "a")
	addVideo(t, r, "b")
	addVideo(t, r, "c")

	_, err := r.SelectVideo("c")
	require.NoError(t, err)

	video, err := r.Advance(room.DirectionNext)
	require.NoError(t, err)
	assert.Equal(t, "a", video.Id, "next from the last entry must wrap to the first")

	video, err = r.Advance(room.DirectionPrevious)
	require.NoError(t, err)
	assert.Equal(t, "c", video.Id, "previous from the first entry must wrap to the last")

	player := r.GetPlayer()
	assert.True(t, player.IsPlaying)
	assert.Zero(t, player.CurrentTime)
}

func TestSelectVideoNotFound(t *testing.T) {
	r := NewRepo()
	addVideo(t, r, "a")

	_, err := r.SelectVideo("missing")
	assert.ErrorIs(t, err, room.ErrVideoNotFound)
}

func TestRemoveCurrentVideoReassigns(t *testing.T) {
	r := NewRepo()
	addVideo(t, r, "a")
	addVideo(t, r, "b")

	_, err := r.SetPlaying(true)
	require.NoError(t, err)

	result, err := r.RemoveVideo("a")
	require.NoError(t, err)
	assert.True(t, result.CurrentChanged)

	state := r.Snapshot()
	require.NotNil(t, state.Player.VideoId)
	assert.Equal(t, "b", *state.Player.VideoId)
	assert.False(t, state.Player.IsPlaying)
	assert.Zero(t, state.Player.CurrentTime)
}

func TestRemoveLastVideoClearsPlayer(t *testing.T) {
	r := NewRepo()
	addVideo(t, r, "a")

	result, err := r.RemoveVideo("a")
	require.NoError(t, err)
	assert.True(t, result.CurrentChanged)

	state := r.Snapshot()
	assert.Empty(t, state.Playlist)
	assert.Nil(t, state.Player.VideoId)
	assert.False(t, state.Player.IsPlaying)
}

func TestReorderKeepsCurrentWhenPresent(t *testing.T) {
	r := NewRepo()
	a := addVideo(t, r, "a")
	b := addVideo(t, r, "b")
	c := addVideo(t, r, "c")

	_, err := r.SelectVideo("b")
	require.NoError(t, err)

	r.ReorderPlaylist([]room.Video{c, b, a})

	state := r.Snapshot()
	require.NotNil(t, state.Player.VideoId)
	assert.Equal(t, "b", *state.Player.VideoId)
	assert.Equal(t, []string{"c", "b", "a"}, playlistIds(state.Playlist))
}

func TestReorderDroppingCurrentReassigns(t *testing.T) {
	r := NewRepo()
	a := addVideo(t, r, "a")
	addVideo(t, r, "b")

	_, err := r.SelectVideo("b")
	require.NoError(t, err)

	r.ReorderPlaylist([]room.Video{a})

	state := r.Snapshot()
	require.NotNil(t, state.Player.VideoId)
	assert.Equal(t, "a", *state.Player.VideoId, "dropped current must be reassigned, never dangling")
}

func TestClearPlaylist(t *testing.T) {
	r := NewRepo()
	addVideo(t, r, "a")
	addVideo(t, r, "b")

	r.ClearPlaylist()

	state := r.Snapshot()
	assert.Empty(t, state.Playlist)
	assert.Nil(t, state.Player.VideoId)
	assert.False(t, state.Player.IsPlaying)
	assert.NotNil(t, state.StreamStartedAt, "clearing the playlist must not reset the stream start")
}

func playlistIds(playlist []room.Video) []string {
	ids := make([]string, 0, len(playlist))
	for _, video := range playlist {
		ids = append(ids, video.Id)
	}
	return ids
}
