package catalog

import "errors"

var ErrVideoNotFound = errors.New("video not found")

// Video is a persisted descriptor of an uploaded video. The catalog
// outlives the in-memory room state and rebuilds the playlist on startup.
type Video struct {
	Id      string `redis:"id" json:"id"`
	Name    string `redis:"name" json:"name"`
	URL     string `redis:"url" json:"url"`
	Size    int64  `redis:"size" json:"size"`
	AddedAt int64  `redis:"added_at" json:"added_at"`
}

type AppendParams struct {
	VideoId string
	Name    string
	URL     string
	Size    int64
	AddedAt int64
}
