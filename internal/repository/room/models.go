package room

type Video struct {
	Id      string `json:"id" redis:"id"`
	Name    string `json:"name" redis:"name"`
	URL     string `json:"url" redis:"url"`
	Size    int64  `json:"size" redis:"size"`
	AddedAt int64  `json:"added_at" redis:"added_at"`
}

type Player struct {
	VideoId     *string `json:"video_id"`
	IsPlaying   bool    `json:"is_playing"`
	CurrentTime float64 `json:"current_time"`
}

type Subtitles struct {
	Enabled bool    `json:"enabled"`
	FileURL *string `json:"file_url"`
}

// State is the full room state. StreamStartedAt is a unix timestamp set
// once, when the first video is ever added.
type State struct {
	Player          Player    `json:"player"`
	Playlist        []Video   `json:"playlist"`
	Subtitles       Subtitles `json:"subtitles"`
	StreamStartedAt *int64    `json:"stream_started_at"`
}

type Direction string

const (
	DirectionNext     Direction = "next"
	DirectionPrevious Direction = "previous"
)
