package app

import (
	"fmt"
	"maps"
	"sync"
	"unicode/utf8"

	"github.com/dkeye/canvas/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	MaxRoomIDLen   = 64
	MaxRoomNameLen = 64
)

// RoomManager is the room registry. It owns room metadata only;
// notifying clients is up to the caller.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.Room

	// OwnerOnlyInvites rejects invitations from anyone but the owner.
	OwnerOnlyInvites bool
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[domain.RoomID]*domain.Room)}
}

// truncateName cuts name to at most max bytes without splitting a rune.
func truncateName(name domain.RoomName, max int) domain.RoomName {
	if len(name) <= max {
		return name
	}
	i := max
	for i > 0 && !utf8.RuneStart(name[i]) {
		i--
	}
	return name[:i]
}

func (m *RoomManager) Create(id domain.RoomID, name domain.RoomName, owner domain.ConnID, private, personal bool) (domain.Room, error) {
	if id == "" || len(id) > MaxRoomIDLen {
		return domain.Room{}, fmt.Errorf("%w: room id must be 1..%d bytes", domain.ErrInvalidPayload, MaxRoomIDLen)
	}
	if private && personal {
		return domain.Room{}, fmt.Errorf("%w: a room cannot be both private and personal", domain.ErrInvalidPayload)
	}
	if name == "" {
		name = domain.RoomName(id)
	}
	name = truncateName(name, MaxRoomNameLen)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; ok {
		return domain.Room{}, domain.ErrDuplicateRoom
	}
	room := domain.NewRoom(id, name, owner, private, personal)
	m.rooms[id] = room
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("owner", string(owner)).
		Bool("private", private).Bool("personal", personal).Msg("room created")
	return room.Clone(), nil
}

// Invite adds target to the invitation set. Repeated invites are no-ops.
func (m *RoomManager) Invite(id domain.RoomID, caller, target domain.ConnID) (domain.Room, error) {
	if target == "" || len(target) > MaxRoomIDLen {
		return domain.Room{}, fmt.Errorf("%w: invitee id must be 1..%d bytes", domain.ErrInvalidPayload, MaxRoomIDLen)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	if m.OwnerOnlyInvites && caller != room.Owner {
		return domain.Room{}, domain.ErrNotOwner
	}
	if room.Invite(target) {
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("target", string(target)).Msg("invited")
	}
	return room.Clone(), nil
}

// Join adds caller to the member set once the visibility gate passes.
func (m *RoomManager) Join(id domain.RoomID, caller domain.ConnID) (domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	if !room.CanJoin(caller) {
		return domain.Room{}, domain.ErrNotInvited
	}
	if room.AddMember(caller) {
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("sid", string(caller)).Msg("member joined")
	}
	return room.Clone(), nil
}

// Leave removes caller from the member set. The bool is false when the room
// does not exist.
func (m *RoomManager) Leave(id domain.RoomID, caller domain.ConnID) (domain.Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, false
	}
	if room.RemoveMember(caller) {
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("sid", string(caller)).Msg("member left")
	}
	return room.Clone(), true
}

// Evict removes sid from every room it is a member of and returns those rooms.
func (m *RoomManager) Evict(sid domain.ConnID) []domain.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Room
	for _, room := range m.rooms {
		if room.RemoveMember(sid) {
			out = append(out, room.Clone())
		}
	}
	return out
}

// Delete removes the room and returns its last state.
func (m *RoomManager) Delete(id domain.RoomID, caller domain.ConnID) (domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	if caller != room.Owner {
		return domain.Room{}, domain.ErrNotOwner
	}
	delete(m.rooms, id)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Int("members", len(room.Members)).Msg("room deleted")
	return room.Clone(), nil
}

func (m *RoomManager) GetRoom(id domain.RoomID) (domain.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, false
	}
	return room.Clone(), true
}

// List returns a snapshot of every room keyed by id.
func (m *RoomManager) List() map[domain.RoomID]domain.Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[domain.RoomID]domain.Room, len(m.rooms))
	for id, room := range maps.All(m.rooms) {
		out[id] = room.Clone()
	}
	return out
}

func (m *RoomManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
