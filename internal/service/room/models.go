package room

type Member struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type MemberListItem struct {
	Id        string `json:"id"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	WatchTime int64  `json:"watch_time_seconds"`
}

type Video struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
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

type Message struct {
	Id         string `json:"id"`
	AuthorName string `json:"author_name"`
	Text       string `json:"text"`
	IsAdmin    bool   `json:"is_admin"`
	Kind       string `json:"kind"`
	CreatedAt  int64  `json:"created_at"`
}

// Room is the full snapshot sent to a connection on (re)join.
type Room struct {
	Player          Player    `json:"player"`
	Playlist        []Video   `json:"playlist"`
	Subtitles       Subtitles `json:"subtitles"`
	Members         []Member  `json:"members"`
	Messages        []Message `json:"messages"`
	StreamStartedAt *int64    `json:"stream_started_at"`
}

type Stats struct {
	Viewers         int    `json:"viewers"`
	Admins          int    `json:"admins"`
	Player          Player `json:"player"`
	PlaylistLength  int    `json:"playlist_length"`
	StreamStartedAt *int64 `json:"stream_started_at"`
}
