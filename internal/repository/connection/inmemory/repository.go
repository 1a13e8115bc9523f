package inmemory

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mkstudico/kinaflix-TV/internal/repository/connection"
)

type repo struct {
	mu      sync.RWMutex
	byId    map[string]*connection.Member
	byConn  map[*websocket.Conn]string
	ordered []string
}

func NewRepo() *repo {
	return &repo{
		byId:   make(map[string]*connection.Member),
		byConn: make(map[*websocket.Conn]string),
	}
}

func (r *repo) Add(params *connection.AddParams) (connection.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byId[params.MemberId]; ok {
		return connection.Member{}, connection.ErrAlreadyExists
	}
	if _, ok := r.byConn[params.Conn]; ok {
		return connection.Member{}, connection.ErrAlreadyExists
	}

	member := &connection.Member{
		Id:       params.MemberId,
		Username: params.Username,
		Role:     params.Role,
		JoinedAt: time.Now(),
		Conn:     params.Conn,
	}
	r.byId[params.MemberId] = member
	r.byConn[params.Conn] = params.MemberId
	r.ordered = append(r.ordered, params.MemberId)

	return *member, nil
}

func (r *repo) RemoveByConn(conn *websocket.Conn) (connection.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	memberId, ok := r.byConn[conn]
	if !ok {
		return connection.Member{}, connection.ErrNotFound
	}
	member := r.byId[memberId]

	r.removeLocked(member)

	return *member, nil
}

func (r *repo) GetById(memberId string) (connection.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	member, ok := r.byId[memberId]
	if !ok {
		return connection.Member{}, connection.ErrNotFound
	}

	return *member, nil
}

// List returns all members in insertion order.
func (r *repo) List() []connection.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]connection.Member, 0, len(r.ordered))
	for _, memberId := range r.ordered {
		members = append(members, *r.byId[memberId])
	}

	return members
}

func (r *repo) Count(role connection.Role) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, member := range r.byId {
		if member.Role == role {
			count++
		}
	}

	return count
}

func (r *repo) Conns() []*websocket.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*websocket.Conn, 0, len(r.ordered))
	for _, memberId := range r.ordered {
		conns = append(conns, r.byId[memberId].Conn)
	}

	return conns
}

func (r *repo) removeLocked(member *connection.Member) {
	delete(r.byId, member.Id)
	delete(r.byConn, member.Conn)

	for i, memberId := range r.ordered {
		if memberId == member.Id {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
}
