package room

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkstudico/kinaflix-TV/internal/repository/catalog"
	"github.com/mkstudico/kinaflix-TV/internal/repository/room"
)

// RestorePlaylist rebuilds the playlist from the persistent catalog.
// Called once at startup, before any connection is accepted.
func (s *service) RestorePlaylist(ctx context.Context) error {
	if s.roomRepo.PlaylistLength() > 0 {
		return nil
	}

	videos, err := s.catalogRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list catalog: %w", err)
	}

	for _, video := range videos {
		if _, err := s.roomRepo.AddVideo(&room.AddVideoParams{
			VideoId: video.Id,
			Name:    video.Name,
			URL:     video.URL,
			Size:    video.Size,
		}); err != nil {
			return fmt.Errorf("failed to restore video %s: %w", video.Id, err)
		}
	}

	s.logger.InfoContext(ctx, "playlist restored from catalog", "videos", len(videos))

	return nil
}

// SweepStorage removes stored files older than the retention age that are
// no longer referenced by the playlist or the current subtitle file, and
// drops their catalog entries. Returns the number of files removed.
func (s *service) SweepStorage(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.retentionMaxAge)

	fileIds, err := s.storageRepo.OlderThan(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stored files: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.roomRepo.Snapshot()
	referenced := make(map[string]struct{}, len(state.Playlist)+1)
	for _, video := range state.Playlist {
		referenced[video.Id] = struct{}{}
	}

	removed := 0
	for _, fileId := range fileIds {
		if _, ok := referenced[fileId]; ok {
			continue
		}
		if state.Subtitles.FileURL != nil && strings.Contains(*state.Subtitles.FileURL, fileId) {
			continue
		}

		if err := s.storageRepo.Remove(fileId); err != nil {
			s.logger.WarnContext(ctx, "failed to remove stored file", "file_id", fileId, "error", err)
			continue
		}
		if err := s.catalogRepo.Remove(ctx, fileId); err != nil && !errors.Is(err, catalog.ErrVideoNotFound) {
			s.logger.WarnContext(ctx, "failed to remove catalog entry", "file_id", fileId, "error", err)
		}

		removed++
	}

	return removed, nil
}
