package room

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mkstudico/kinaflix-TV/internal/repository/connection"
)

type KickMemberParams struct {
	SenderId       string
	KickedMemberId string
}

type KickMemberResponse struct {
	KickedMember  Member
	KickedConn    *websocket.Conn
	Conns         []*websocket.Conn
	SystemMessage *Message
}

// KickMember resolves the target connection for a forced disconnect. The
// registry entry is not removed here: removal happens through the normal
// disconnect path once the transport is closed.
func (s *service) KickMember(ctx context.Context, params *KickMemberParams) (KickMemberResponse, error) {
	if err := s.checkIfMemberAdmin(params.SenderId); err != nil {
		return KickMemberResponse{}, err
	}

	if params.SenderId == params.KickedMemberId {
		return KickMemberResponse{}, ErrPermissionDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	member, err := s.connRepo.GetById(params.KickedMemberId)
	if err != nil {
		return KickMemberResponse{}, ErrMemberNotFound
	}

	systemMessage := s.appendSystemMessage(member.Username + " was kicked")

	return KickMemberResponse{
		KickedMember: Member{
			Id:       member.Id,
			Username: member.Username,
			IsAdmin:  member.Role == connection.RoleAdmin,
		},
		KickedConn:    member.Conn,
		Conns:         s.connRepo.Conns(),
		SystemMessage: systemMessage,
	}, nil
}

type GetMemberListParams struct {
	SenderId string
}

type GetMemberListResponse struct {
	Members []MemberListItem
}

// GetMemberList returns the roster with watch time derived from each
// member's join timestamp. Admin only, sent to the caller alone.
func (s *service) GetMemberList(ctx context.Context, params *GetMemberListParams) (GetMemberListResponse, error) {
	if err := s.checkIfMemberAdmin(params.SenderId); err != nil {
		return GetMemberListResponse{}, err
	}

	list := s.connRepo.List()
	members := make([]MemberListItem, 0, len(list))
	for _, member := range list {
		members = append(members, MemberListItem{
			Id:        member.Id,
			Username:  member.Username,
			IsAdmin:   member.Role == connection.RoleAdmin,
			WatchTime: int64(time.Since(member.JoinedAt).Seconds()),
		})
	}

	return GetMemberListResponse{Members: members}, nil
}
