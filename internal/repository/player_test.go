package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/mister-white/internal/errors"
	"github.com/wfunc/mister-white/internal/models"
)

func seedRoomWithPlayers(t *testing.T, rooms RoomRepository, players PlayerRepository, names ...string) *models.Room {
	t.Helper()
	ctx := context.Background()

	room := newTestRoom("SEED01")
	require.NoError(t, rooms.Create(ctx, room))

	for i, name := range names {
		player := &models.Player{
			RoomID:   room.ID,
			PlayerID: "id-" + name,
			Name:     name,
			IsHost:   i == 0,
			IsAlive:  true,
		}
		require.NoError(t, players.Create(ctx, player))
	}
	return room
}

func TestPlayerRepository_CreateAndFind(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	rooms := NewRoomRepository(db)
	players := NewPlayerRepository(db)
	ctx := context.Background()

	room := seedRoomWithPlayers(t, rooms, players, "Ana", "Bruno")

	found, err := players.FindByPlayerID(ctx, room.ID, "id-Ana")
	require.NoError(t, err)
	assert.Equal(t, "Ana", found.Name)
	assert.True(t, found.IsHost)

	list, err := players.FindByRoomID(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ana", list[0].Name)

	count, err := players.CountByRoomID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestPlayerRepository_FindByPlayerIDNotFound(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	players := NewPlayerRepository(db)

	_, err := players.FindByPlayerID(context.Background(), 1, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPlayerNotFound))
}

func TestPlayerRepository_NameExists(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	rooms := NewRoomRepository(db)
	players := NewPlayerRepository(db)
	ctx := context.Background()

	room := seedRoomWithPlayers(t, rooms, players, "Ana")

	// 大小写不敏感
	exists, err := players.NameExists(ctx, room.ID, "ANA")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = players.NameExists(ctx, room.ID, "Bruno")
	require.NoError(t, err)
	assert.False(t, exists)

	// 名称只在本房间内独占
	exists, err = players.NameExists(ctx, room.ID+1, "Ana")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPlayerRepository_BatchUpdate(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	rooms := NewRoomRepository(db)
	players := NewPlayerRepository(db)
	ctx := context.Background()

	room := seedRoomWithPlayers(t, rooms, players, "Ana", "Bruno", "Carla")

	list, err := players.FindByRoomID(ctx, room.ID)
	require.NoError(t, err)
	for _, p := range list {
		p.Description = "统一描述"
		p.IsAlive = false
	}
	require.NoError(t, players.BatchUpdate(ctx, list))

	reloaded, err := players.FindByRoomID(ctx, room.ID)
	require.NoError(t, err)
	for _, p := range reloaded {
		assert.Equal(t, "统一描述", p.Description)
		assert.False(t, p.IsAlive)
	}
}

func TestPlayerRepository_DeleteByRoomID(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	rooms := NewRoomRepository(db)
	players := NewPlayerRepository(db)
	ctx := context.Background()

	room := seedRoomWithPlayers(t, rooms, players, "Ana", "Bruno")
	require.NoError(t, players.DeleteByRoomID(ctx, room.ID))

	count, err := players.CountByRoomID(ctx, room.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
