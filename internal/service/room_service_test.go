package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wfunc/mister-white/internal/config"
	"github.com/wfunc/mister-white/internal/errors"
	"github.com/wfunc/mister-white/internal/game"
	"github.com/wfunc/mister-white/internal/models"
	"github.com/wfunc/mister-white/internal/repository"
	"github.com/wfunc/mister-white/internal/websocket"
)

// publishedEvent 测试捕获的事件
type publishedEvent struct {
	RoomCode string
	Event    string
	Payload  interface{}
}

// fakePublisher 记录所有发布的事件
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) PublishToRoom(roomCode, event string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{RoomCode: roomCode, Event: event, Payload: payload})
	return nil
}

func (f *fakePublisher) PublishGlobal(event string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Event: event, Payload: payload})
	return nil
}

func (f *fakePublisher) eventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.events))
	for _, e := range f.events {
		names = append(names, e.Event)
	}
	return names
}

func testGameConfig() *config.GameConfig {
	return &config.GameConfig{
		MinPlayers:        3,
		MaxOnlinePlayers:  8,
		WordBatchSize:     5,
		DefaultDifficulty: "easy",
		RetryTimes:        1,
		RetryInterval:     time.Millisecond,
		// 定时器在测试中关闭，超时路径单独验证
		DescribeTimeout: 0,
		VoteTimeout:     0,
	}
}

func setupService(t *testing.T) (RoomService, *fakePublisher, *repository.Manager) {
	t.Helper()
	db := repository.SetupTestDB()
	t.Cleanup(func() { repository.CleanupTestDB(db) })
	repository.SeedTestWords(db)

	manager := repository.NewManager(db)
	publisher := &fakePublisher{}
	svc := NewRoomService(manager, publisher, testGameConfig(), zap.NewNop())
	return svc, publisher, manager
}

// createStartedRoom 建房、补满三人并开始游戏
func createStartedRoom(t *testing.T, svc RoomService) (code string, playerIDs map[string]string) {
	t.Helper()
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, &CreateRoomRequest{HostName: "Ana"})
	require.NoError(t, err)

	playerIDs = map[string]string{"Ana": created.PlayerID}
	for _, name := range []string{"Bruno", "Carla"} {
		joined, err := svc.JoinRoom(ctx, created.RoomCode, name)
		require.NoError(t, err)
		playerIDs[name] = joined.PlayerID
	}

	_, err = svc.StartGame(ctx, created.RoomCode, created.PlayerID)
	require.NoError(t, err)
	return created.RoomCode, playerIDs
}

func TestCreateRoom(t *testing.T) {
	svc, publisher, manager := setupService(t)
	ctx := context.Background()

	resp, err := svc.CreateRoom(ctx, &CreateRoomRequest{HostName: "Ana"})
	require.NoError(t, err)
	assert.Len(t, resp.RoomCode, 6)
	assert.NotEmpty(t, resp.PlayerID)

	room, err := manager.Room().FindByCodeWithPlayers(ctx, resp.RoomCode)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusWaiting, room.Status)
	require.Len(t, room.Players, 1)
	assert.True(t, room.Players[0].IsHost)

	assert.Contains(t, publisher.eventNames(), websocket.EventRoomCreated)
}

func TestCreateRoomInvalidDifficulty(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.CreateRoom(context.Background(), &CreateRoomRequest{
		HostName:   "Ana",
		Difficulty: "nightmare",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidDifficulty))
}

func TestJoinRoom(t *testing.T) {
	svc, publisher, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, &CreateRoomRequest{HostName: "Ana"})
	require.NoError(t, err)

	joined, err := svc.JoinRoom(ctx, created.RoomCode, "Bruno")
	require.NoError(t, err)
	assert.NotEmpty(t, joined.PlayerID)
	assert.Contains(t, publisher.eventNames(), websocket.EventPlayerJoined)

	// 名称重复（大小写不敏感）
	_, err = svc.JoinRoom(ctx, created.RoomCode, "bruno")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDuplicateName))

	// 房间不存在
	_, err = svc.JoinRoom(ctx, "NOPE22", "Diego")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRoomNotFound))
}

func TestJoinRoomFull(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, &CreateRoomRequest{HostName: "Host1", MaxPlayers: 3})
	require.NoError(t, err)

	for _, name := range []string{"Ana", "Bruno"} {
		_, err := svc.JoinRoom(ctx, created.RoomCode, name)
		require.NoError(t, err)
	}

	_, err = svc.JoinRoom(ctx, created.RoomCode, "Carla")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRoomFull))
}

func TestStartGame(t *testing.T) {
	svc, publisher, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, &CreateRoomRequest{HostName: "Ana"})
	require.NoError(t, err)

	// 人数不足
	_, err = svc.StartGame(ctx, created.RoomCode, created.PlayerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotEnoughPlayers))

	joined, err := svc.JoinRoom(ctx, created.RoomCode, "Bruno")
	require.NoError(t, err)
	_, err = svc.JoinRoom(ctx, created.RoomCode, "Carla")
	require.NoError(t, err)

	// 只有房主能开始
	_, err = svc.StartGame(ctx, created.RoomCode, joined.PlayerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotHost))

	view, err := svc.StartGame(ctx, created.RoomCode, created.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusPlaying, view.Status)
	assert.Equal(t, string(game.PhaseDescribing), view.Phase)
	assert.Contains(t, publisher.eventNames(), websocket.EventGameStarted)

	// 不能重复开始
	_, err = svc.StartGame(ctx, created.RoomCode, created.PlayerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGameAlreadyStarted))

	// 开始后不能再加入
	_, err = svc.JoinRoom(ctx, created.RoomCode, "Diego")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGameAlreadyStarted))
}

func TestGetPlayerWord(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	code, playerIDs := createStartedRoom(t, svc)

	// 每名玩家能看到自己的词，简单难度带分类
	words := make(map[string]bool)
	for name, id := range playerIDs {
		private, err := svc.GetPlayerWord(ctx, code, id)
		require.NoError(t, err)
		assert.Equal(t, name, private.Name)
		assert.NotEmpty(t, private.Word)
		assert.NotEmpty(t, private.Category)
		words[private.Word] = true
	}

	// 三人局有白板，场上至少两种词面
	assert.GreaterOrEqual(t, len(words), 2)

	_, err := svc.GetPlayerWord(ctx, code, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPlayerNotFound))
}

func TestGetRoomHidesSecrets(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	code, playerIDs := createStartedRoom(t, svc)

	view, err := svc.GetRoom(ctx, code)
	require.NoError(t, err)
	require.Len(t, view.Players, 3)

	// 公开视图不含描述（描述阶段）
	for _, p := range view.Players {
		assert.Empty(t, p.Description)
		assert.False(t, p.HasDescribed)
	}

	// 提交描述后投票阶段才公开描述
	for _, id := range playerIDs {
		_, err := svc.SubmitDescription(ctx, code, id, "我的描述")
		require.NoError(t, err)
	}
	view, err = svc.GetRoom(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, string(game.PhaseVoting), view.Phase)
	for _, p := range view.Players {
		assert.Equal(t, "我的描述", p.Description)
	}
}

func TestFullRound(t *testing.T) {
	svc, publisher, manager := setupService(t)
	ctx := context.Background()
	code, playerIDs := createStartedRoom(t, svc)

	for _, id := range playerIDs {
		_, err := svc.SubmitDescription(ctx, code, id, "描述")
		require.NoError(t, err)
	}

	// 进入投票阶段后不能再提交描述
	_, err := svc.SubmitDescription(ctx, code, playerIDs["Ana"], "重复描述")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrWrongPhase))

	// Ana 和 Carla 投 Bruno，Bruno 投 Ana
	_, err = svc.SubmitVote(ctx, code, playerIDs["Ana"], "Bruno")
	require.NoError(t, err)
	_, err = svc.SubmitVote(ctx, code, playerIDs["Bruno"], "Ana")
	require.NoError(t, err)
	view, err := svc.SubmitVote(ctx, code, playerIDs["Carla"], "Bruno")
	require.NoError(t, err)

	assert.Equal(t, string(game.PhaseResults), view.Phase)
	assert.Equal(t, models.RoomStatusFinished, view.Status)
	require.NotNil(t, view.Result)
	assert.Equal(t, "Bruno", view.Result.Eliminated)

	names := publisher.eventNames()
	assert.Contains(t, names, websocket.EventPlayerEliminated)
	assert.Contains(t, names, websocket.EventGameEnded)

	// 淘汰已落库
	room, err := manager.Room().FindByCodeWithPlayers(ctx, code)
	require.NoError(t, err)
	for _, p := range room.Players {
		if p.Name == "Bruno" {
			assert.False(t, p.IsAlive)
		} else {
			assert.True(t, p.IsAlive)
		}
	}
}

func TestNextRound(t *testing.T) {
	svc, publisher, _ := setupService(t)
	ctx := context.Background()
	code, playerIDs := createStartedRoom(t, svc)

	// 结果阶段之前不能开下一回合
	_, err := svc.NextRound(ctx, code, playerIDs["Ana"])
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrWrongPhase))

	for _, id := range playerIDs {
		_, err := svc.SubmitDescription(ctx, code, id, "描述")
		require.NoError(t, err)
	}
	_, err = svc.SubmitVote(ctx, code, playerIDs["Ana"], "Bruno")
	require.NoError(t, err)
	_, err = svc.SubmitVote(ctx, code, playerIDs["Bruno"], "Ana")
	require.NoError(t, err)
	_, err = svc.SubmitVote(ctx, code, playerIDs["Carla"], "Bruno")
	require.NoError(t, err)

	// 只有房主能开下一回合
	_, err = svc.NextRound(ctx, code, playerIDs["Bruno"])
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotHost))

	view, err := svc.NextRound(ctx, code, playerIDs["Ana"])
	require.NoError(t, err)
	assert.Equal(t, 2, view.Round)
	assert.Equal(t, string(game.PhaseDescribing), view.Phase)
	assert.Equal(t, 1, view.StartIndex)

	// 回合独立：所有人复活
	for _, p := range view.Players {
		assert.True(t, p.IsAlive)
		assert.False(t, p.HasDescribed)
		assert.False(t, p.HasVoted)
	}

	assert.Contains(t, publisher.eventNames(), websocket.EventRoundStarted)
}

func TestLeaveRoomHostHandoff(t *testing.T) {
	svc, publisher, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, &CreateRoomRequest{HostName: "Ana"})
	require.NoError(t, err)
	_, err = svc.JoinRoom(ctx, created.RoomCode, "Bruno")
	require.NoError(t, err)

	// 房主离开后房主移交给最早加入的玩家
	require.NoError(t, svc.LeaveRoom(ctx, created.RoomCode, created.PlayerID))

	view, err := svc.GetRoom(ctx, created.RoomCode)
	require.NoError(t, err)
	require.Len(t, view.Players, 1)
	assert.Equal(t, "Bruno", view.Players[0].Name)
	assert.True(t, view.Players[0].IsHost)

	assert.Contains(t, publisher.eventNames(), websocket.EventHostChanged)
}

func TestLeaveRoomLastPlayerDeletesRoom(t *testing.T) {
	svc, publisher, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, &CreateRoomRequest{HostName: "Ana"})
	require.NoError(t, err)
	require.NoError(t, svc.LeaveRoom(ctx, created.RoomCode, created.PlayerID))

	_, err = svc.GetRoom(ctx, created.RoomCode)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRoomNotFound))
	assert.Contains(t, publisher.eventNames(), websocket.EventRoomDeleted)
}

func TestDeleteRoomRequiresHost(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, &CreateRoomRequest{HostName: "Ana"})
	require.NoError(t, err)
	joined, err := svc.JoinRoom(ctx, created.RoomCode, "Bruno")
	require.NoError(t, err)

	err = svc.DeleteRoom(ctx, created.RoomCode, joined.PlayerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotHost))

	require.NoError(t, svc.DeleteRoom(ctx, created.RoomCode, created.PlayerID))
	_, err = svc.GetRoom(ctx, created.RoomCode)
	require.Error(t, err)
}

func TestListRooms(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateRoom(ctx, &CreateRoomRequest{HostName: "Ana"})
	require.NoError(t, err)
	_, err = svc.JoinRoom(ctx, created.RoomCode, "Bruno")
	require.NoError(t, err)

	rooms, total, err := svc.ListRooms(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rooms, 1)
	assert.Equal(t, created.RoomCode, rooms[0].Code)
	assert.Equal(t, 2, rooms[0].PlayerCount)
}

func TestCategories(t *testing.T) {
	svc, _, _ := setupService(t)

	categories, err := svc.Categories(context.Background(), "easy")
	require.NoError(t, err)
	assert.Contains(t, categories, "食物")
	assert.Contains(t, categories, "动物")
}

// 进程重启后从行数据恢复进行中的对局
func TestGameRecoveryFromRows(t *testing.T) {
	svc, _, manager := setupService(t)
	ctx := context.Background()
	code, playerIDs := createStartedRoom(t, svc)

	_, err := svc.SubmitDescription(ctx, code, playerIDs["Ana"], "已提交的描述")
	require.NoError(t, err)

	// 新服务实例共享同一存储，模拟进程重启
	restarted := NewRoomService(manager, &fakePublisher{}, testGameConfig(), zap.NewNop())

	view, err := restarted.GetRoom(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, string(game.PhaseDescribing), view.Phase)

	// 恢复的对局保留已提交的描述，并能继续推进
	for name, id := range playerIDs {
		if name == "Ana" {
			continue
		}
		_, err := restarted.SubmitDescription(ctx, code, id, "描述")
		require.NoError(t, err)
	}
	view, err = restarted.GetRoom(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, string(game.PhaseVoting), view.Phase)

	// 私有词面也恢复
	private, err := restarted.GetPlayerWord(ctx, code, playerIDs["Ana"])
	require.NoError(t, err)
	assert.NotEmpty(t, private.Word)
}

// 阶段超时为缺席者自动补提交
func TestDeadlineAutoComplete(t *testing.T) {
	svc, publisher, _ := setupService(t)
	ctx := context.Background()
	code, playerIDs := createStartedRoom(t, svc)

	_, err := svc.SubmitDescription(ctx, code, playerIDs["Ana"], "唯一的描述")
	require.NoError(t, err)

	impl := svc.(*roomService)
	impl.onDeadline(code, game.PhaseDescribing)

	view, err := svc.GetRoom(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, string(game.PhaseVoting), view.Phase)

	// 缺席者补了占位描述，已提交的不被覆盖
	for _, p := range view.Players {
		if p.Name == "Ana" {
			assert.Equal(t, "唯一的描述", p.Description)
		} else {
			assert.Equal(t, "...", p.Description)
		}
	}

	// 投票超时补随机合法票，直接进入结果
	impl.onDeadline(code, game.PhaseVoting)

	view, err = svc.GetRoom(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, string(game.PhaseResults), view.Phase)
	require.NotNil(t, view.Result)
	assert.Contains(t, publisher.eventNames(), websocket.EventGameEnded)
}

// 对局推进后过期的超时不再生效
func TestStaleDeadlineIgnored(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	code, playerIDs := createStartedRoom(t, svc)

	for _, id := range playerIDs {
		_, err := svc.SubmitDescription(ctx, code, id, "描述")
		require.NoError(t, err)
	}

	// 已进入投票阶段，描述阶段的超时应被丢弃
	impl := svc.(*roomService)
	impl.onDeadline(code, game.PhaseDescribing)

	view, err := svc.GetRoom(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, string(game.PhaseVoting), view.Phase)
	for _, p := range view.Players {
		assert.False(t, p.HasVoted)
	}
}
