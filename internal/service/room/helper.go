package room

import (
	"fmt"

	"github.com/mkstudico/kinaflix-TV/internal/repository/chat"
	"github.com/mkstudico/kinaflix-TV/internal/repository/connection"
	"github.com/mkstudico/kinaflix-TV/internal/repository/room"
)

func streamPath(fileId string) string {
	return fmt.Sprintf("/api/v1/videos/%s/stream", fileId)
}

func (s *service) checkIfMemberAdmin(senderId string) error {
	member, err := s.connRepo.GetById(senderId)
	if err != nil {
		return ErrMemberNotFound
	}

	if member.Role != connection.RoleAdmin {
		return ErrPermissionDenied
	}

	return nil
}

func (s *service) getMembers() []Member {
	list := s.connRepo.List()

	members := make([]Member, 0, len(list))
	for _, member := range list {
		members = append(members, Member{
			Id:       member.Id,
			Username: member.Username,
			IsAdmin:  member.Role == connection.RoleAdmin,
		})
	}

	return members
}

func (s *service) appendSystemMessage(text string) *Message {
	message, err := s.chatRepo.Append(&chat.AppendParams{
		AuthorName: "system",
		Text:       text,
		Kind:       chat.KindSystem,
	})
	if err != nil {
		return nil
	}

	m := messageModel(message)

	return &m
}

func playerModel(player room.Player) Player {
	return Player{
		VideoId:     player.VideoId,
		IsPlaying:   player.IsPlaying,
		CurrentTime: player.CurrentTime,
	}
}

func videoModel(video room.Video) Video {
	return Video{
		Id:   video.Id,
		Name: video.Name,
		URL:  video.URL,
		Size: video.Size,
	}
}

func playlistModel(playlist []room.Video) []Video {
	videos := make([]Video, 0, len(playlist))
	for _, video := range playlist {
		videos = append(videos, videoModel(video))
	}

	return videos
}

func subtitlesModel(subtitles room.Subtitles) Subtitles {
	return Subtitles{
		Enabled: subtitles.Enabled,
		FileURL: subtitles.FileURL,
	}
}

func messageModel(message chat.Message) Message {
	return Message{
		Id:         message.Id,
		AuthorName: message.AuthorName,
		Text:       message.Text,
		IsAdmin:    message.IsAdmin,
		Kind:       string(message.Kind),
		CreatedAt:  message.CreatedAt,
	}
}

func messagesModel(messages []chat.Message) []Message {
	result := make([]Message, 0, len(messages))
	for _, message := range messages {
		result = append(result, messageModel(message))
	}

	return result
}
