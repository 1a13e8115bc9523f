package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/mkstudico/kinaflix-TV/internal/service/room"
)

const (
	headerPrefix = "Kf-"
)

func (c controller) mustHeader(r *http.Request, key string) (string, error) {
	value := r.Header.Get(headerPrefix + key)
	if value == "" {
		return "", fmt.Errorf("%s was not provided", key)
	}

	return value, nil
}

func (c controller) generateTimeBasedId() string {
	return ulid.Make().String()
}

// errStatus maps service errors onto HTTP status codes for the REST
// surface. Unknown errors are internal.
func errStatus(err error) int {
	switch {
	case errors.Is(err, room.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, room.ErrMemberNotFound), errors.Is(err, room.ErrVideoNotFound):
		return http.StatusNotFound
	case errors.Is(err, room.ErrEmptyPlaylist), errors.Is(err, room.ErrInvalidCurrentTime), errors.Is(err, room.ErrEmptyMessage):
		return http.StatusUnprocessableEntity
	case errors.Is(err, room.ErrViewerLimitReached), errors.Is(err, room.ErrPlaylistLimitReached):
		return http.StatusConflict
	case errors.Is(err, room.ErrRateLimited):
		return http.StatusTooManyRequests
	}

	return http.StatusInternalServerError
}
