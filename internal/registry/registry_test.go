package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinCreatesRoomOnce(t *testing.T) {
	r := New()

	res, err := r.Join("c1", "room-1", "alice")
	require.NoError(t, err)
	assert.True(t, res.NewRoom)
	assert.True(t, res.NewMember)
	assert.Equal(t, []string{"alice"}, res.Users)

	res, err = r.Join("c2", "room-1", "bob")
	require.NoError(t, err)
	assert.False(t, res.NewRoom)
	assert.True(t, res.NewMember)
	assert.Equal(t, []string{"alice", "bob"}, res.Users)
}

func TestJoinIsIdempotentPerConnection(t *testing.T) {
	r := New()

	_, err := r.Join("c1", "room-1", "alice")
	require.NoError(t, err)

	res, err := r.Join("c1", "room-1", "alice")
	require.NoError(t, err)
	assert.False(t, res.NewRoom)
	assert.False(t, res.NewMember)
	assert.Equal(t, []string{"alice"}, res.Users)
}

func TestJoinNormalizesRoomName(t *testing.T) {
	r := New()

	res, err := r.Join("c1", "General ", "alice")
	require.NoError(t, err)
	assert.Equal(t, "general", res.Room)

	res, err = r.Join("c2", "general", "bob")
	require.NoError(t, err)
	assert.False(t, res.NewRoom)
	assert.Equal(t, []string{"general"}, r.Rooms())
	assert.ElementsMatch(t, []string{"c1", "c2"}, r.Members("general"))
}

func TestJoinRejectsBlankRoomName(t *testing.T) {
	r := New()

	_, err := r.Join("c1", "   ", "alice")
	assert.ErrorIs(t, err, ErrEmptyRoomName)
	assert.Empty(t, r.Rooms())
}

func TestDuplicateDisplayNamesShareOneEntry(t *testing.T) {
	r := New()

	_, err := r.Join("c1", "room-1", "alice")
	require.NoError(t, err)

	// Second connection with the same display name is a member without a
	// second user-joined.
	res, err := r.Join("c2", "room-1", "alice")
	require.NoError(t, err)
	assert.False(t, res.NewMember)
	assert.Equal(t, []string{"alice"}, res.Users)

	// The name survives until the last connection holding it leaves.
	deps := r.Leave("c1")
	require.Len(t, deps, 1)
	assert.False(t, deps[0].UserLeft)
	assert.Equal(t, []string{"alice"}, r.Users("room-1"))

	deps = r.Leave("c2")
	require.Len(t, deps, 1)
	assert.True(t, deps[0].UserLeft)
	assert.True(t, deps[0].Emptied)
}

func TestLeaveCascadesAcrossRooms(t *testing.T) {
	r := New()

	_, err := r.Join("c1", "room-1", "alice")
	require.NoError(t, err)
	_, err = r.Join("c1", "room-2", "alice")
	require.NoError(t, err)
	_, err = r.Join("c2", "room-1", "bob")
	require.NoError(t, err)

	deps := r.Leave("c1")
	require.Len(t, deps, 2)

	byRoom := make(map[string]Departure, len(deps))
	for _, d := range deps {
		byRoom[d.Room] = d
	}

	require.Contains(t, byRoom, "room-1")
	assert.True(t, byRoom["room-1"].UserLeft)
	assert.False(t, byRoom["room-1"].Emptied)
	assert.Equal(t, []string{"bob"}, byRoom["room-1"].Users)

	require.Contains(t, byRoom, "room-2")
	assert.True(t, byRoom["room-2"].UserLeft)
	assert.True(t, byRoom["room-2"].Emptied)

	assert.Equal(t, []string{"room-1"}, r.Rooms())
}

func TestLeaveUnknownConnection(t *testing.T) {
	r := New()
	assert.Nil(t, r.Leave("ghost"))
}

func TestEnsureRoomCreatesWithoutMembers(t *testing.T) {
	r := New()

	created, err := r.EnsureRoom("Lobby")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = r.EnsureRoom("lobby ")
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, []string{"lobby"}, r.Rooms())
	assert.Empty(t, r.Users("lobby"))
	assert.Empty(t, r.Members("lobby"))
}

func TestEnsureRoomRejectsBlankName(t *testing.T) {
	r := New()
	_, err := r.EnsureRoom(" ")
	assert.ErrorIs(t, err, ErrEmptyRoomName)
}

func TestRoomsSorted(t *testing.T) {
	r := New()
	for _, name := range []string{"zulu", "alpha", "mike"} {
		_, err := r.EnsureRoom(name)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"alpha", "mike", "zulu"}, r.Rooms())
	assert.Equal(t, 3, r.RoomCount())
}

func TestUsersSnapshotIsACopy(t *testing.T) {
	r := New()
	_, err := r.Join("c1", "room-1", "alice")
	require.NoError(t, err)

	users := r.Users("room-1")
	users[0] = "mallory"
	assert.Equal(t, []string{"alice"}, r.Users("room-1"))
}
