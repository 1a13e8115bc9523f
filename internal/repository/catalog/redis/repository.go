package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mkstudico/kinaflix-TV/internal/repository/catalog"
)

const videoListKey = "catalog:videos"

type repo struct {
	rc *redis.Client
}

func NewRepo(rc *redis.Client) *repo {
	return &repo{rc: rc}
}

func (r *repo) getVideoKey(videoId string) string {
	return "catalog:video:" + videoId
}

func (r *repo) Append(ctx context.Context, params *catalog.AppendParams) error {
	video := catalog.Video{
		Id:      params.VideoId,
		Name:    params.Name,
		URL:     params.URL,
		Size:    params.Size,
		AddedAt: params.AddedAt,
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, r.getVideoKey(params.VideoId), video)
	pipe.RPush(ctx, videoListKey, params.VideoId)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append video to catalog: %w", err)
	}

	return nil
}

func (r *repo) Remove(ctx context.Context, videoId string) error {
	pipe := r.rc.TxPipeline()
	removedCmd := pipe.LRem(ctx, videoListKey, 1, videoId)
	pipe.Del(ctx, r.getVideoKey(videoId))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove video from catalog: %w", err)
	}

	if removedCmd.Val() == 0 {
		return catalog.ErrVideoNotFound
	}

	return nil
}

func (r *repo) GetVideo(ctx context.Context, videoId string) (catalog.Video, error) {
	videoKey := r.getVideoKey(videoId)

	exists, err := r.rc.Exists(ctx, videoKey).Result()
	if err != nil {
		return catalog.Video{}, fmt.Errorf("failed to check if video exists: %w", err)
	}
	if exists == 0 {
		return catalog.Video{}, catalog.ErrVideoNotFound
	}

	var video catalog.Video
	if err := r.rc.HGetAll(ctx, videoKey).Scan(&video); err != nil {
		return catalog.Video{}, fmt.Errorf("failed to get video: %w", err)
	}

	return video, nil
}

// List returns all catalog videos in insertion order.
func (r *repo) List(ctx context.Context) ([]catalog.Video, error) {
	videoIds, err := r.rc.LRange(ctx, videoListKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get video ids: %w", err)
	}

	videos := make([]catalog.Video, 0, len(videoIds))
	for _, videoId := range videoIds {
		video, err := r.GetVideo(ctx, videoId)
		if err != nil {
			return nil, err
		}

		videos = append(videos, video)
	}

	return videos, nil
}
