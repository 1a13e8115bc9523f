package room

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mkstudico/kinaflix-TV/internal/repository/connection"
)

type JoinRoomParams struct {
	Conn       *websocket.Conn
	Username   string
	AdminToken string
}

type JoinRoomResponse struct {
	JoinedMember  Member
	Room          Room
	Conns         []*websocket.Conn
	SystemMessage *Message
}

// JoinRoom admits a connection. A caller presenting the server secret is
// admitted as admin and bypasses the viewer capacity check; everyone else
// joins as viewer and is rejected with ErrViewerLimitReached when the
// room is full.
func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	role := connection.RoleViewer
	if s.secret != "" && params.AdminToken == s.secret {
		role = connection.RoleAdmin
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if role == connection.RoleViewer && s.connRepo.Count(connection.RoleViewer) >= s.viewersLimit {
		return JoinRoomResponse{}, ErrViewerLimitReached
	}

	username := strings.TrimSpace(params.Username)
	if username == "" {
		username = "guest-" + s.generator.GenerateRandomString(6)
	}

	memberId := uuid.NewString()
	member, err := s.connRepo.Add(&connection.AddParams{
		MemberId: memberId,
		Username: username,
		Role:     role,
		Conn:     params.Conn,
	})
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to add connection: %w", err)
	}

	systemMessage := s.appendSystemMessage(username + " joined")

	state := s.roomRepo.Snapshot()

	return JoinRoomResponse{
		JoinedMember: Member{
			Id:       member.Id,
			Username: member.Username,
			IsAdmin:  role == connection.RoleAdmin,
		},
		Room: Room{
			Player:          playerModel(state.Player),
			Playlist:        playlistModel(state.Playlist),
			Subtitles:       subtitlesModel(state.Subtitles),
			Members:         s.getMembers(),
			Messages:        messagesModel(s.chatRepo.List()),
			StreamStartedAt: state.StreamStartedAt,
		},
		Conns:         s.connRepo.Conns(),
		SystemMessage: systemMessage,
	}, nil
}

type DisconnectMemberParams struct {
	Conn *websocket.Conn
}

type DisconnectMemberResponse struct {
	DisconnectedMember Member
	WasAdmin           bool
	Members            []Member
	Conns              []*websocket.Conn
	SystemMessage      *Message
}

func (s *service) DisconnectMember(ctx context.Context, params *DisconnectMemberParams) (DisconnectMemberResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, err := s.connRepo.RemoveByConn(params.Conn)
	if err != nil {
		return DisconnectMemberResponse{}, ErrMemberNotFound
	}

	s.chatLimiter.Forget(member.Id)

	systemMessage := s.appendSystemMessage(member.Username + " left")

	return DisconnectMemberResponse{
		DisconnectedMember: Member{
			Id:       member.Id,
			Username: member.Username,
			IsAdmin:  member.Role == connection.RoleAdmin,
		},
		WasAdmin:      member.Role == connection.RoleAdmin,
		Members:       s.getMembers(),
		Conns:         s.connRepo.Conns(),
		SystemMessage: systemMessage,
	}, nil
}

type SyncRequestParams struct {
	SenderId string
}

type SyncRequestResponse struct {
	Player    Player    `json:"player"`
	Subtitles Subtitles `json:"subtitles"`
}

// SyncRequest returns the playback baseline for the requesting connection
// only. Reading requires no role.
func (s *service) SyncRequest(ctx context.Context, params *SyncRequestParams) (SyncRequestResponse, error) {
	if _, err := s.connRepo.GetById(params.SenderId); err != nil {
		return SyncRequestResponse{}, ErrMemberNotFound
	}

	state := s.roomRepo.Snapshot()

	return SyncRequestResponse{
		Player:    playerModel(state.Player),
		Subtitles: subtitlesModel(state.Subtitles),
	}, nil
}

func (s *service) GetStats(ctx context.Context) Stats {
	state := s.roomRepo.Snapshot()

	return Stats{
		Viewers:         s.connRepo.Count(connection.RoleViewer),
		Admins:          s.connRepo.Count(connection.RoleAdmin),
		Player:          playerModel(state.Player),
		PlaylistLength:  len(state.Playlist),
		StreamStartedAt: state.StreamStartedAt,
	}
}
