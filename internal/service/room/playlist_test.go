package room

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageDisk "github.com/mkstudico/kinaflix-TV/internal/repository/storage/disk"
)

func TestUploadVideo(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	admin := joinAdmin(t, svc)

	resp, err := svc.UploadVideo(ctx, &UploadVideoParams{
		SenderId: admin.Id,
		Name:     "first.mp4",
		Content:  strings.NewReader("aaaa"),
	})
	require.NoError(t, err)
	assert.Equal(t, "first.mp4", resp.AddedVideo.Name)
	assert.Equal(t, int64(4), resp.AddedVideo.Size)
	require.Len(t, resp.Playlist, 1)

	// the first upload becomes current but does not start playback
	sync, err := svc.SyncRequest(ctx, &SyncRequestParams{SenderId: admin.Id})
	require.NoError(t, err)
	require.NotNil(t, sync.Player.VideoId)
	assert.Equal(t, resp.AddedVideo.Id, *sync.Player.VideoId)
	assert.False(t, sync.Player.IsPlaying)

	// the blob is streamable right away
	f, info, err := svc.OpenVideo(ctx, resp.AddedVideo.Id)
	require.NoError(t, err)
	defer f.Close()
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "aaaa", string(content))
	assert.Equal(t, int64(4), info.Size)
}

func TestUploadVideoPlaylistLimit(t *testing.T) {
	svc := newTestService(t, &Config{
		ViewersLimit:    80,
		PlaylistLimit:   2,
		Secret:          testSecret,
		RetentionMaxAge: 24 * time.Hour,
	})

	admin := joinAdmin(t, svc)
	uploadVideo(t, svc, admin.Id, "one.mp4")
	uploadVideo(t, svc, admin.Id, "two.mp4")

	_, err := svc.UploadVideo(context.Background(), &UploadVideoParams{
		SenderId: admin.Id,
		Name:     "three.mp4",
		Content:  strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, ErrPlaylistLimitReached)
}

func TestConcurrentUploadsRespectPlaylistLimit(t *testing.T) {
	svc := newTestService(t, &Config{
		ViewersLimit:    80,
		PlaylistLimit:   1,
		Secret:          testSecret,
		RetentionMaxAge: 24 * time.Hour,
	})
	ctx := context.Background()

	admin := joinAdmin(t, svc)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.UploadVideo(ctx, &UploadVideoParams{
				SenderId: admin.Id,
				Name:     fmt.Sprintf("video-%d.mp4", i),
				Content:  strings.NewReader("frames"),
			})
		}(i)
	}
	wg.Wait()

	rejected := 0
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, ErrPlaylistLimitReached)
			rejected++
		}
	}
	assert.Equal(t, 1, rejected, "exactly one upload must be rejected")
	assert.Equal(t, 1, svc.GetStats(ctx).PlaylistLength)
}

func TestAdvanceWraparound(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	admin := joinAdmin(t, svc)
	first := uploadVideo(t, svc, admin.Id, "one.mp4")
	second := uploadVideo(t, svc, admin.Id, "two.mp4")

	resp, err := svc.Advance(ctx, &AdvanceParams{SenderId: admin.Id, Direction: "next"})
	require.NoError(t, err)
	assert.Equal(t, second.Id, resp.ChangedVideo.Id)
	assert.True(t, resp.Player.IsPlaying, "advancing starts playback")
	assert.Equal(t, float64(0), resp.Player.CurrentTime)

	// next from the last entry wraps to the first
	resp, err = svc.Advance(ctx, &AdvanceParams{SenderId: admin.Id, Direction: "next"})
	require.NoError(t, err)
	assert.Equal(t, first.Id, resp.ChangedVideo.Id)

	// previous from the first entry wraps to the last
	resp, err = svc.Advance(ctx, &AdvanceParams{SenderId: admin.Id, Direction: "previous"})
	require.NoError(t, err)
	assert.Equal(t, second.Id, resp.ChangedVideo.Id)
}

func TestAdvanceEmptyPlaylist(t *testing.T) {
	svc := newTestService(t, nil)

	admin := joinAdmin(t, svc)

	_, err := svc.Advance(context.Background(), &AdvanceParams{SenderId: admin.Id, Direction: "next"})
	assert.ErrorIs(t, err, ErrEmptyPlaylist)
}

func TestSelectVideo(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	admin := joinAdmin(t, svc)
	uploadVideo(t, svc, admin.Id, "one.mp4")
	second := uploadVideo(t, svc, admin.Id, "two.mp4")

	resp, err := svc.SelectVideo(ctx, &SelectVideoParams{SenderId: admin.Id, VideoId: second.Id})
	require.NoError(t, err)
	assert.Equal(t, second.Id, resp.ChangedVideo.Id)
	assert.True(t, resp.Player.IsPlaying)

	_, err = svc.SelectVideo(ctx, &SelectVideoParams{SenderId: admin.Id, VideoId: "missing"})
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestRemoveCurrentVideo(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	admin := joinAdmin(t, svc)
	first := uploadVideo(t, svc, admin.Id, "one.mp4")
	second := uploadVideo(t, svc, admin.Id, "two.mp4")

	resp, err := svc.RemoveVideo(ctx, &RemoveVideoParams{SenderId: admin.Id, VideoId: first.Id})
	require.NoError(t, err)
	assert.True(t, resp.CurrentChanged)
	require.NotNil(t, resp.ChangedVideo)
	assert.Equal(t, second.Id, resp.ChangedVideo.Id)
	require.Len(t, resp.Playlist, 1)

	// the backing file is gone with the playlist entry
	_, _, err = svc.OpenVideo(ctx, first.Id)
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestReorderPlaylist(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	admin := joinAdmin(t, svc)
	first := uploadVideo(t, svc, admin.Id, "one.mp4")
	second := uploadVideo(t, svc, admin.Id, "two.mp4")
	third := uploadVideo(t, svc, admin.Id, "three.mp4")

	resp, err := svc.ReorderPlaylist(ctx, &ReorderPlaylistParams{
		SenderId: admin.Id,
		VideoIds: []string{third.Id, first.Id, second.Id, "unknown"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Playlist, 3, "unknown ids are dropped")
	assert.Equal(t, third.Id, resp.Playlist[0].Id)
	assert.Equal(t, first.Id, resp.Playlist[1].Id)
	assert.Equal(t, second.Id, resp.Playlist[2].Id)

	// the current video survives a reorder
	sync, err := svc.SyncRequest(ctx, &SyncRequestParams{SenderId: admin.Id})
	require.NoError(t, err)
	require.NotNil(t, sync.Player.VideoId)
	assert.Equal(t, first.Id, *sync.Player.VideoId)
}

func TestClearPlaylist(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	admin := joinAdmin(t, svc)
	uploadVideo(t, svc, admin.Id, "one.mp4")
	uploadVideo(t, svc, admin.Id, "two.mp4")

	resp, err := svc.ClearPlaylist(ctx, &ClearPlaylistParams{SenderId: admin.Id})
	require.NoError(t, err)
	assert.Nil(t, resp.Player.VideoId)

	stats := svc.GetStats(ctx)
	assert.Equal(t, 0, stats.PlaylistLength)
	assert.NotNil(t, stats.StreamStartedAt, "clearing keeps the stream start timestamp")
}

func TestUploadSubtitles(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	admin := joinAdmin(t, svc)

	resp, err := svc.UploadSubtitles(ctx, &UploadSubtitlesParams{
		SenderId: admin.Id,
		Name:     "movie.vtt",
		Content:  strings.NewReader("WEBVTT"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Subtitles.FileURL)
	assert.Contains(t, *resp.Subtitles.FileURL, "subtitles-")

	toggled, err := svc.ToggleSubtitles(ctx, &ToggleSubtitlesParams{SenderId: admin.Id, Enabled: true})
	require.NoError(t, err)
	assert.True(t, toggled.Subtitles.Enabled)
}

func TestRestorePlaylist(t *testing.T) {
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})

	dir := t.TempDir()
	storageRepo, err := storageDisk.NewRepo(dir)
	require.NoError(t, err)

	svc := newTestServiceWith(t, rc, storageRepo, nil)
	ctx := context.Background()

	admin := joinAdmin(t, svc)
	first := uploadVideo(t, svc, admin.Id, "one.mp4")
	uploadVideo(t, svc, admin.Id, "two.mp4")

	// a fresh engine over the same catalog picks the playlist back up
	restored := newTestServiceWith(t, rc, storageRepo, nil)
	require.NoError(t, restored.RestorePlaylist(ctx))

	stats := restored.GetStats(ctx)
	assert.Equal(t, 2, stats.PlaylistLength)
	require.NotNil(t, stats.Player.VideoId)
	assert.Equal(t, first.Id, *stats.Player.VideoId)

	// restore is a no-op when the playlist is already populated
	require.NoError(t, restored.RestorePlaylist(ctx))
	assert.Equal(t, 2, restored.GetStats(ctx).PlaylistLength)
}

func TestSweepStorage(t *testing.T) {
	// a negative retention age makes every stored file a sweep candidate
	svc := newTestService(t, &Config{
		ViewersLimit:    80,
		PlaylistLimit:   25,
		Secret:          testSecret,
		RetentionMaxAge: -time.Hour,
	})
	ctx := context.Background()

	admin := joinAdmin(t, svc)
	kept := uploadVideo(t, svc, admin.Id, "kept.mp4")
	orphan := uploadVideo(t, svc, admin.Id, "orphan.mp4")

	_, err := svc.UploadSubtitles(ctx, &UploadSubtitlesParams{
		SenderId: admin.Id,
		Name:     "movie.vtt",
		Content:  strings.NewReader("WEBVTT"),
	})
	require.NoError(t, err)

	_, err = svc.RemoveVideo(ctx, &RemoveVideoParams{SenderId: admin.Id, VideoId: orphan.Id})
	require.NoError(t, err)

	// re-store the orphan blob directly, simulating a file left behind
	_, _, err = svc.OpenVideo(ctx, orphan.Id)
	require.ErrorIs(t, err, ErrVideoNotFound)
	_, err = svc.storageRepo.Store(orphan.Id, "orphan.mp4", strings.NewReader("leftover"))
	require.NoError(t, err)

	removed, err := svc.SweepStorage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// playlist entries and the active subtitle file survive the sweep
	_, _, err = svc.OpenVideo(ctx, kept.Id)
	assert.NoError(t, err)
	_, _, err = svc.OpenVideo(ctx, orphan.Id)
	assert.ErrorIs(t, err, ErrVideoNotFound)
}
