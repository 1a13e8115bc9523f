package room

import "errors"

var (
	ErrVideoNotFound = errors.New("video not found")
	ErrEmptyPlaylist = errors.New("empty playlist")
	ErrNegativeTime  = errors.New("negative current time")
)
