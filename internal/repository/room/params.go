package room

type AddVideoParams struct {
	VideoId string
	Name    string
	URL     string
	Size    int64
}

type RemoveVideoResult struct {
	Removed        Video
	CurrentChanged bool
}
