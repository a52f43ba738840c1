package app

import (
	"testing"

	"github.com/dkeye/canvas/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSignal struct{}

func (nopSignal) TrySend(core.Frame) error { return nil }
func (nopSignal) Close()                   {}

func TestRegistryLifecycle(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.Register("tok", nopSignal{})
	b := r.Register("tok", nopSignal{})

	require.NotEqual(t, a.Meta().ID, b.Meta().ID)
	assert.Equal(t, "tok", a.Meta().ClientToken)
	assert.Equal(t, 2, r.Count())
	assert.True(t, r.Exists(a.Meta().ID))

	_, ok := r.Unregister(a.Meta().ID)
	assert.True(t, ok)
	assert.False(t, r.Exists(a.Meta().ID))
	assert.Equal(t, 1, r.Count())

	_, ok = r.Unregister(a.Meta().ID)
	assert.False(t, ok)
}

func TestRegistryRooms(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.Register("", nopSignal{}).Meta().ID
	b := r.Register("", nopSignal{}).Meta().ID

	assert.True(t, r.UpdateRoom(a, "r1"))
	room, ok := r.RoomOf(a)
	require.True(t, ok)
	assert.EqualValues(t, "r1", room)

	assert.Len(t, r.InRoom("r1"), 1)
	assert.Len(t, r.InRoom(""), 1)
	assert.Equal(t, b, r.InRoom("")[0].Meta().ID)

	r.RemoveRoom(a)
	_, ok = r.RoomOf(a)
	assert.False(t, ok)
	assert.Len(t, r.All(), 2)

	assert.False(t, r.UpdateRoom("ghost", "r1"))
}
