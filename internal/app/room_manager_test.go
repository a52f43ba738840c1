package app

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dkeye/canvas/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomManagerCreateDuplicate(t *testing.T) {
	t.Parallel()

	m := NewRoomManager()
	first, err := m.Create("r1", "Room1", "A", false, false)
	require.NoError(t, err)
	assert.Equal(t, []domain.ConnID{"A"}, first.Members)
	assert.Empty(t, first.Invited)

	_, err = m.Create("r1", "Other", "B", true, false)
	assert.ErrorIs(t, err, domain.ErrDuplicateRoom)

	after, ok := m.GetRoom("r1")
	require.True(t, ok)
	assert.Equal(t, first, after)
}

func TestRoomManagerCreateValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		id       domain.RoomID
		private  bool
		personal bool
	}{
		{name: "empty id", id: ""},
		{name: "long id", id: domain.RoomID(make([]byte, MaxRoomIDLen+1))},
		{name: "private and personal", id: "r1", private: true, personal: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewRoomManager().Create(tc.id, "n", "A", tc.private, tc.personal)
			assert.ErrorIs(t, err, domain.ErrInvalidPayload)
		})
	}
}

func TestRoomManagerCreateTruncatesName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   domain.RoomName
		want domain.RoomName
	}{
		{name: "empty defaults to id", in: "", want: "r1"},
		{name: "ascii cut at limit", in: domain.RoomName(strings.Repeat("a", MaxRoomNameLen+10)), want: domain.RoomName(strings.Repeat("a", MaxRoomNameLen))},
		{name: "multibyte cut at rune boundary", in: domain.RoomName(strings.Repeat("お絵かき", 6)), want: domain.RoomName(strings.Repeat("お絵かき", 5) + "お")},
		{name: "short kept", in: "お絵かき", want: "お絵かき"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			room, err := NewRoomManager().Create("r1", tc.in, "A", false, false)
			require.NoError(t, err)
			assert.Equal(t, tc.want, room.Name)
			assert.True(t, utf8.ValidString(string(room.Name)))
			assert.LessOrEqual(t, len(room.Name), MaxRoomNameLen)
		})
	}
}

func TestRoomManagerInviteRejectsBadTarget(t *testing.T) {
	t.Parallel()

	m := NewRoomManager()
	_, err := m.Create("r1", "Room1", "A", true, false)
	require.NoError(t, err)

	_, err = m.Invite("r1", "A", domain.ConnID(strings.Repeat("x", MaxRoomIDLen+1)))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	_, err = m.Invite("r1", "A", "")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	room, ok := m.GetRoom("r1")
	require.True(t, ok)
	assert.Empty(t, room.Invited)
}

func TestRoomManagerPrivateJoinRequiresInvite(t *testing.T) {
	t.Parallel()

	m := NewRoomManager()
	_, err := m.Create("r1", "Room1", "A", true, false)
	require.NoError(t, err)

	_, err = m.Join("r1", "B")
	assert.ErrorIs(t, err, domain.ErrNotInvited)

	_, err = m.Invite("r1", "A", "B")
	require.NoError(t, err)
	room, err := m.Invite("r1", "A", "B")
	require.NoError(t, err)
	assert.Equal(t, []domain.ConnID{"B"}, room.Invited)

	room, err = m.Join("r1", "B")
	require.NoError(t, err)
	assert.Equal(t, []domain.ConnID{"A", "B"}, room.Members)

	room, err = m.Join("r1", "B")
	require.NoError(t, err)
	assert.Equal(t, []domain.ConnID{"A", "B"}, room.Members)
}

func TestRoomManagerPersonalRoomAdmitsOnlyOwner(t *testing.T) {
	t.Parallel()

	m := NewRoomManager()
	_, err := m.Create("me", "Mine", "A", false, true)
	require.NoError(t, err)
	_, err = m.Invite("me", "A", "B")
	require.NoError(t, err)

	_, err = m.Join("me", "B")
	assert.ErrorIs(t, err, domain.ErrNotInvited)

	m.Leave("me", "A")
	room, err := m.Join("me", "A")
	require.NoError(t, err)
	assert.Equal(t, []domain.ConnID{"A"}, room.Members)
}

func TestRoomManagerInviteUnknownRoom(t *testing.T) {
	t.Parallel()

	_, err := NewRoomManager().Invite("nope", "A", "B")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	_, err = NewRoomManager().Join("nope", "A")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRoomManagerOwnerOnlyInvites(t *testing.T) {
	t.Parallel()

	m := NewRoomManager()
	m.OwnerOnlyInvites = true
	_, err := m.Create("r1", "Room1", "A", true, false)
	require.NoError(t, err)

	_, err = m.Invite("r1", "C", "B")
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	_, err = m.Invite("r1", "A", "B")
	assert.NoError(t, err)
}

func TestRoomManagerLeaveKeepsEmptyRoom(t *testing.T) {
	t.Parallel()

	m := NewRoomManager()
	_, err := m.Create("r1", "Room1", "A", false, false)
	require.NoError(t, err)

	room, ok := m.Leave("r1", "A")
	require.True(t, ok)
	assert.Empty(t, room.Members)
	assert.Equal(t, 1, m.Count())

	_, ok = m.Leave("missing", "A")
	assert.False(t, ok)
}

func TestRoomManagerDelete(t *testing.T) {
	t.Parallel()

	m := NewRoomManager()
	_, err := m.Create("r1", "Room1", "A", false, false)
	require.NoError(t, err)
	_, err = m.Join("r1", "B")
	require.NoError(t, err)

	_, err = m.Delete("r1", "C")
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	room, _ := m.GetRoom("r1")
	assert.Equal(t, []domain.ConnID{"A", "B"}, room.Members)

	removed, err := m.Delete("r1", "A")
	require.NoError(t, err)
	assert.Equal(t, []domain.ConnID{"A", "B"}, removed.Members)
	assert.Empty(t, m.List())

	_, err = m.Delete("r1", "A")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRoomManagerEvict(t *testing.T) {
	t.Parallel()

	m := NewRoomManager()
	_, _ = m.Create("r1", "", "A", false, false)
	_, _ = m.Create("r2", "", "B", false, false)
	_, _ = m.Join("r2", "A")

	rooms := m.Evict("A")
	assert.Len(t, rooms, 2)
	for _, r := range m.List() {
		assert.NotContains(t, r.Members, domain.ConnID("A"))
	}
}

func TestRoomManagerListIsSnapshot(t *testing.T) {
	t.Parallel()

	m := NewRoomManager()
	_, _ = m.Create("r1", "", "A", false, false)
	list := m.List()
	_, _ = m.Join("r1", "B")

	assert.Equal(t, domain.RoomName("r1"), list["r1"].Name)
	assert.Equal(t, []domain.ConnID{"A"}, list["r1"].Members)
}
