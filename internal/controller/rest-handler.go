package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkstudico/kinaflix-TV/internal/service/room"
	"github.com/mkstudico/kinaflix-TV/pkg/rest"
)

// maxUploadBytes bounds a single multipart upload.
const maxUploadBytes = 2 << 30

func (c controller) getStats(w http.ResponseWriter, r *http.Request) {
	stats := c.roomService.GetStats(r.Context())

	if err := rest.WriteJSON(w, http.StatusOK, rest.Envelope{"stats": stats}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write response", "error", err)
	}
}

func (c controller) uploadVideo(w http.ResponseWriter, r *http.Request) {
	memberId, err := c.mustHeader(r, "Member-Id")
	if err != nil {
		rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": err.Error()})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("video")
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "video file is required"})
		return
	}
	defer file.Close()

	uploadResponse, err := c.roomService.UploadVideo(r.Context(), &room.UploadVideoParams{
		SenderId: memberId,
		Name:     header.Filename,
		Content:  file,
	})
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to upload video", "error", err)
		rest.WriteJSON(w, errStatus(err), rest.Envelope{"error": err.Error()})
		return
	}

	c.broadcast(r.Context(), uploadResponse.Conns, &Output{
		Type: "PLAYLIST_UPDATED",
		Payload: map[string]any{
			"playlist":    uploadResponse.Playlist,
			"added_video": uploadResponse.AddedVideo,
		},
	})

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"video": uploadResponse.AddedVideo})
}

func (c controller) deleteVideo(w http.ResponseWriter, r *http.Request) {
	memberId, err := c.mustHeader(r, "Member-Id")
	if err != nil {
		rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": err.Error()})
		return
	}

	removeResponse, err := c.roomService.RemoveVideo(r.Context(), &room.RemoveVideoParams{
		SenderId: memberId,
		VideoId:  chi.URLParam(r, "video-id"),
	})
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to remove video", "error", err)
		rest.WriteJSON(w, errStatus(err), rest.Envelope{"error": err.Error()})
		return
	}

	c.broadcast(r.Context(), removeResponse.Conns, &Output{
		Type: "PLAYLIST_UPDATED",
		Payload: map[string]any{
			"playlist":         removeResponse.Playlist,
			"removed_video_id": removeResponse.RemovedVideoId,
		},
	})
	if removeResponse.CurrentChanged {
		c.broadcast(r.Context(), removeResponse.Conns, &Output{
			Type: "VIDEO_CHANGED",
			Payload: map[string]any{
				"video": removeResponse.ChangedVideo,
			},
		})
		c.broadcast(r.Context(), removeResponse.Conns, &Output{
			Type: "PLAYER_UPDATED",
			Payload: map[string]any{
				"player": removeResponse.Player,
			},
		})
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"removed_video_id": removeResponse.RemovedVideoId})
}

// streamVideo serves a stored blob with range support. No role check:
// the stream URL only circulates inside the room.
func (c controller) streamVideo(w http.ResponseWriter, r *http.Request) {
	fileId := chi.URLParam(r, "video-id")

	f, info, err := c.roomService.OpenVideo(r.Context(), fileId)
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to open video", "video_id", fileId, "error", err)
		rest.WriteJSON(w, errStatus(err), rest.Envelope{"error": err.Error()})
		return
	}
	defer f.Close()

	http.ServeContent(w, r, info.Name, info.StoredAt, f)
}

func (c controller) uploadSubtitles(w http.ResponseWriter, r *http.Request) {
	memberId, err := c.mustHeader(r, "Member-Id")
	if err != nil {
		rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": err.Error()})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("subtitles")
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "subtitles file is required"})
		return
	}
	defer file.Close()

	uploadResponse, err := c.roomService.UploadSubtitles(r.Context(), &room.UploadSubtitlesParams{
		SenderId: memberId,
		Name:     header.Filename,
		Content:  file,
	})
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to upload subtitles", "error", err)
		rest.WriteJSON(w, errStatus(err), rest.Envelope{"error": err.Error()})
		return
	}

	c.broadcast(r.Context(), uploadResponse.Conns, &Output{
		Type: "SUBTITLE_FILE_UPDATED",
		Payload: map[string]any{
			"subtitles": uploadResponse.Subtitles,
		},
	})

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"subtitles": uploadResponse.Subtitles})
}
