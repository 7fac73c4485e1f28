package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wfunc/mister-white/internal/config"
	"github.com/wfunc/mister-white/internal/errors"
	"github.com/wfunc/mister-white/internal/game"
	"github.com/wfunc/mister-white/internal/models"
	"github.com/wfunc/mister-white/internal/repository"
	"github.com/wfunc/mister-white/internal/utils"
	"github.com/wfunc/mister-white/internal/websocket"
)

// roomService 房间服务实现。
// 进行中的对局在内存中持有权威状态，数据库行是它的镜像；
// 进程重启后从行数据重建对局。
type roomService struct {
	repo      *repository.Manager
	publisher EventPublisher
	cfg       *config.GameConfig
	log       *zap.Logger

	// 房间码到进行中对局的映射
	gamesMu sync.Mutex
	games   map[string]*game.Instance

	// 阶段超时定时器，对局推进时取消重排
	timers map[string]*time.Timer
}

// NewRoomService 创建房间服务
func NewRoomService(repo *repository.Manager, publisher EventPublisher, cfg *config.GameConfig, log *zap.Logger) RoomService {
	return &roomService{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		games:     make(map[string]*game.Instance),
		timers:    make(map[string]*time.Timer),
	}
}

// withRetry 带指数退避的重试执行，只重试可恢复错误
func (s *roomService) withRetry(ctx context.Context, fn func() error) error {
	attempts := s.cfg.RetryTimes
	if attempts <= 0 {
		attempts = 1
	}
	interval := s.cfg.RetryInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if !errors.IsRetryable(err) {
			return err
		}
		if i < attempts-1 {
			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), errors.ErrCanceled)
			}
			interval *= 2
		}
	}
	return err
}

// CreateRoom 创建房间并让房主入座
func (s *roomService) CreateRoom(ctx context.Context, req *CreateRoomRequest) (*CreateRoomResponse, error) {
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = s.cfg.DefaultDifficulty
	}
	if _, err := game.ParseDifficulty(difficulty); err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = game.CategoryAll
	}

	misterWhiteCount := req.MisterWhiteCount
	if misterWhiteCount < 1 {
		misterWhiteCount = 1
	}

	maxPlayers := req.MaxPlayers
	if maxPlayers <= 0 || maxPlayers > s.cfg.MaxOnlinePlayers {
		maxPlayers = s.cfg.MaxOnlinePlayers
	}

	useDatabase := true
	if req.UseDatabase != nil {
		useDatabase = *req.UseDatabase
	}

	code, err := s.generateUniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	room := &models.Room{
		Code:              code,
		Status:            models.RoomStatusWaiting,
		Round:             1,
		Difficulty:        difficulty,
		Category:          category,
		IncludeUndercover: req.IncludeUndercover,
		MisterWhiteCount:  misterWhiteCount,
		MaxPlayers:        maxPlayers,
		UseDatabase:       useDatabase,
	}

	host := &models.Player{
		PlayerID: uuid.New().String(),
		Name:     req.HostName,
		IsHost:   true,
		IsAlive:  true,
	}

	err = s.repo.WithTransaction(ctx, func(tx *repository.Tx) error {
		if err := tx.Room().Create(ctx, room); err != nil {
			return err
		}
		host.RoomID = room.ID
		return tx.Player().Create(ctx, host)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("房间已创建",
		zap.String("room_code", code),
		zap.String("host", req.HostName))
	s.publish("", websocket.EventRoomCreated, map[string]interface{}{
		"room_code":  code,
		"difficulty": difficulty,
	})

	return &CreateRoomResponse{RoomCode: code, PlayerID: host.PlayerID}, nil
}

// generateUniqueCode 生成未被占用的房间码
func (s *roomService) generateUniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < 10; i++ {
		code, err := utils.GenerateRoomCode()
		if err != nil {
			return "", errors.Wrap(err, errors.ErrUnknown)
		}

		var exists bool
		err = s.withRetry(ctx, func() error {
			var e error
			exists, e = s.repo.Room().CodeExists(ctx, code)
			return e
		})
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New(errors.ErrUnknown, "房间码生成冲突次数过多")
}

// JoinRoom 加入等待中的房间
func (s *roomService) JoinRoom(ctx context.Context, code, name string) (*JoinRoomResponse, error) {
	code = utils.NormalizeRoomCode(code)

	room, err := s.findRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Status != models.RoomStatusWaiting {
		return nil, errors.New(errors.ErrGameAlreadyStarted)
	}

	count, err := s.repo.Player().CountByRoomID(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	if int(count) >= room.MaxPlayers {
		return nil, errors.Newf(errors.ErrRoomFull, "上限: %d", room.MaxPlayers)
	}

	taken, err := s.repo.Player().NameExists(ctx, room.ID, name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errors.Newf(errors.ErrDuplicateName, "名称: %s", name)
	}

	player := &models.Player{
		RoomID:   room.ID,
		PlayerID: uuid.New().String(),
		Name:     name,
		IsAlive:  true,
	}
	if err := s.repo.Player().Create(ctx, player); err != nil {
		return nil, err
	}

	s.publish(code, websocket.EventPlayerJoined, map[string]interface{}{
		"name": name,
	})

	return &JoinRoomResponse{RoomCode: code, PlayerID: player.PlayerID}, nil
}

// LeaveRoom 离开等待中的房间。
// 房主离开时把房主移交给最早加入的其他玩家；
// 最后一人离开时删除房间
func (s *roomService) LeaveRoom(ctx context.Context, code, playerID string) error {
	code = utils.NormalizeRoomCode(code)

	room, err := s.findRoom(ctx, code)
	if err != nil {
		return err
	}
	if room.Status != models.RoomStatusWaiting {
		return errors.New(errors.ErrWrongPhase, "游戏进行中不能离开房间")
	}

	leaving, err := s.repo.Player().FindByPlayerID(ctx, room.ID, playerID)
	if err != nil {
		return err
	}

	players, err := s.repo.Player().FindByRoomID(ctx, room.ID)
	if err != nil {
		return err
	}

	if len(players) == 1 {
		return s.deleteRoomRows(ctx, room, code)
	}

	var newHost *models.Player
	if leaving.IsHost {
		for _, p := range players {
			if p.PlayerID != playerID {
				newHost = p
				break
			}
		}
	}

	err = s.repo.WithTransaction(ctx, func(tx *repository.Tx) error {
		if err := tx.Player().Delete(ctx, leaving.ID); err != nil {
			return err
		}
		if newHost != nil {
			newHost.IsHost = true
			return tx.Player().Update(ctx, newHost)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(code, websocket.EventPlayerLeft, map[string]interface{}{
		"name": leaving.Name,
	})
	if newHost != nil {
		s.publish(code, websocket.EventHostChanged, map[string]interface{}{
			"name": newHost.Name,
		})
	}
	return nil
}

// DeleteRoom 房主解散房间
func (s *roomService) DeleteRoom(ctx context.Context, code, playerID string) error {
	code = utils.NormalizeRoomCode(code)

	room, err := s.findRoom(ctx, code)
	if err != nil {
		return err
	}

	player, err := s.repo.Player().FindByPlayerID(ctx, room.ID, playerID)
	if err != nil {
		return err
	}
	if !player.IsHost {
		return errors.New(errors.ErrNotHost)
	}

	return s.deleteRoomRows(ctx, room, code)
}

// deleteRoomRows 删除房间及其玩家并广播
func (s *roomService) deleteRoomRows(ctx context.Context, room *models.Room, code string) error {
	err := s.repo.WithTransaction(ctx, func(tx *repository.Tx) error {
		if err := tx.Player().DeleteByRoomID(ctx, room.ID); err != nil {
			return err
		}
		return tx.Room().Delete(ctx, room.ID)
	})
	if err != nil {
		return err
	}

	s.dropGame(code)
	s.publish(code, websocket.EventRoomDeleted, map[string]interface{}{
		"room_code": code,
	})
	return nil
}

// ListRooms 大厅房间列表
func (s *roomService) ListRooms(ctx context.Context, page, pageSize int) ([]*RoomSummary, int64, error) {
	pagination := repository.NewPagination(page, pageSize)

	var rooms []*models.Room
	err := s.withRetry(ctx, func() error {
		var e error
		rooms, e = s.repo.Room().ListOpen(ctx, pagination)
		return e
	})
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]*RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		count, err := s.repo.Player().CountByRoomID(ctx, room.ID)
		if err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, &RoomSummary{
			Code:        room.Code,
			Status:      room.Status,
			Difficulty:  room.Difficulty,
			PlayerCount: int(count),
			MaxPlayers:  room.MaxPlayers,
		})
	}
	return summaries, pagination.Total, nil
}

// GetRoom 房间公开视图
func (s *roomService) GetRoom(ctx context.Context, code string) (*RoomView, error) {
	code = utils.NormalizeRoomCode(code)

	room, err := s.findRoomWithPlayers(ctx, code)
	if err != nil {
		return nil, err
	}

	if room.Status == models.RoomStatusWaiting {
		return s.waitingView(room), nil
	}

	inst, err := s.loadGame(ctx, code, room)
	if err != nil {
		return nil, err
	}
	return s.playingView(room, inst), nil
}

// GetPlayerWord 玩家私有视图：本人的词（及简单难度的分类）
func (s *roomService) GetPlayerWord(ctx context.Context, code, playerID string) (*PlayerPrivateView, error) {
	code = utils.NormalizeRoomCode(code)

	room, err := s.findRoomWithPlayers(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Status == models.RoomStatusWaiting {
		return nil, errors.New(errors.ErrGameNotStarted)
	}

	inst, err := s.loadGame(ctx, code, room)
	if err != nil {
		return nil, err
	}

	p := inst.FindPlayer(playerID)
	if p == nil {
		return nil, errors.Newf(errors.ErrPlayerNotFound, "玩家: %s", playerID)
	}

	return &PlayerPrivateView{
		PlayerID: p.ID,
		Name:     p.Name,
		Word:     p.Word,
		Category: inst.VisibleCategory(),
	}, nil
}

// Categories 可用分类列表
func (s *roomService) Categories(ctx context.Context, difficulty string) ([]string, error) {
	selector := game.NewWordSelector(NewWordSource(s.repo.Word()), true, s.log)
	return selector.Categories(ctx, game.Difficulty(difficulty))
}

// StartGame 房主开始游戏：预取词条、分配角色、镜像到数据库
func (s *roomService) StartGame(ctx context.Context, code, playerID string) (*RoomView, error) {
	code = utils.NormalizeRoomCode(code)

	room, err := s.findRoomWithPlayers(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Status != models.RoomStatusWaiting {
		return nil, errors.New(errors.ErrGameAlreadyStarted)
	}

	host := findRowByPlayerID(room.Players, playerID)
	if host == nil {
		return nil, errors.Newf(errors.ErrPlayerNotFound, "玩家: %s", playerID)
	}
	if !host.IsHost {
		return nil, errors.New(errors.ErrNotHost)
	}
	if len(room.Players) < s.cfg.MinPlayers {
		return nil, errors.Newf(errors.ErrNotEnoughPlayers, "至少需要 %d 人", s.cfg.MinPlayers)
	}

	difficulty, err := game.ParseDifficulty(room.Difficulty)
	if err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	selector := game.NewWordSelector(NewWordSource(s.repo.Word()), room.UseDatabase, s.log)
	batch, err := selector.PrefetchBatch(ctx, difficulty, room.Category, s.cfg.WordBatchSize, seed)
	if err != nil {
		return nil, err
	}

	cfg := game.Config{
		Difficulty:        difficulty,
		Category:          room.Category,
		IncludeUndercover: room.IncludeUndercover,
		MisterWhiteCount:  room.MisterWhiteCount,
		UseDatabase:       room.UseDatabase,
	}

	names := make([]string, len(room.Players))
	for i, p := range room.Players {
		names[i] = p.Name
	}

	inst, err := game.NewInstance(cfg, names, batch, seed)
	if err != nil {
		return nil, err
	}

	// 对局内的玩家身份沿用加入时分配的稳定标识
	for i, row := range room.Players {
		inst.Players[i].ID = row.PlayerID
		inst.Players[i].IsHost = row.IsHost
	}

	room.Status = models.RoomStatusPlaying
	if err := s.mirrorGame(ctx, room, inst); err != nil {
		return nil, err
	}
	s.storeGame(code, inst)

	s.log.Info("游戏开始",
		zap.String("room_code", code),
		zap.Int("players", len(names)),
		zap.String("difficulty", string(difficulty)))
	s.publish(code, websocket.EventGameStarted, map[string]interface{}{
		"round": inst.Round,
	})
	s.scheduleDeadline(code, game.PhaseDescribing)

	return s.playingView(room, inst), nil
}

// SubmitDescription 提交描述并广播
func (s *roomService) SubmitDescription(ctx context.Context, code, playerID, text string) (*RoomView, error) {
	return s.advance(ctx, code, websocket.EventDescriptionSubmitted, func(inst *game.Instance) error {
		return inst.SubmitDescription(playerID, text)
	})
}

// SubmitVote 提交投票并广播
func (s *roomService) SubmitVote(ctx context.Context, code, playerID, targetName string) (*RoomView, error) {
	return s.advance(ctx, code, websocket.EventVoteSubmitted, func(inst *game.Instance) error {
		return inst.SubmitVote(playerID, targetName)
	})
}

// advance 执行一次对局操作，然后镜像、结算、广播、重排定时器
func (s *roomService) advance(ctx context.Context, code, event string, op func(inst *game.Instance) error) (*RoomView, error) {
	code = utils.NormalizeRoomCode(code)

	room, err := s.findRoomWithPlayers(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Status == models.RoomStatusWaiting {
		return nil, errors.New(errors.ErrGameNotStarted)
	}

	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()

	inst, err := s.loadGameLocked(ctx, code, room)
	if err != nil {
		return nil, err
	}

	before := inst.Phase()
	if err := op(inst); err != nil {
		return nil, err
	}

	if err := s.afterAdvanceLocked(ctx, code, room, inst, before); err != nil {
		return nil, err
	}
	s.publish(code, event, map[string]interface{}{
		"phase": string(inst.Phase()),
	})

	return s.playingView(room, inst), nil
}

// afterAdvanceLocked 对局推进后的收尾：结算、落库、阶段事件、定时器
func (s *roomService) afterAdvanceLocked(ctx context.Context, code string, room *models.Room, inst *game.Instance, before game.Phase) error {
	after := inst.Phase()

	// 进入结果阶段时立即结算并应用淘汰
	if after == game.PhaseResults {
		result, err := inst.Resolve()
		if err != nil {
			return err
		}
		room.Status = models.RoomStatusFinished
		if err := s.mirrorGame(ctx, room, inst); err != nil {
			return err
		}

		if result.Eliminated != "" {
			s.publish(code, websocket.EventPlayerEliminated, map[string]interface{}{
				"name": result.Eliminated,
				"role": string(result.EliminatedRole),
			})
		}
		s.publish(code, websocket.EventGameEnded, map[string]interface{}{
			"winner": string(result.Winner),
			"reason": result.Reason,
		})
		s.cancelDeadlineLocked(code)
		return nil
	}

	if err := s.mirrorGame(ctx, room, inst); err != nil {
		return err
	}

	if after != before {
		s.publish(code, websocket.EventPhaseChanged, map[string]interface{}{
			"phase": string(after),
		})
		s.scheduleDeadlineLocked(code, after)
	}
	return nil
}

// NextRound 房主开启下一回合
func (s *roomService) NextRound(ctx context.Context, code, playerID string) (*RoomView, error) {
	code = utils.NormalizeRoomCode(code)

	room, err := s.findRoomWithPlayers(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Status == models.RoomStatusWaiting {
		return nil, errors.New(errors.ErrGameNotStarted)
	}

	host := findRowByPlayerID(room.Players, playerID)
	if host == nil {
		return nil, errors.Newf(errors.ErrPlayerNotFound, "玩家: %s", playerID)
	}
	if !host.IsHost {
		return nil, errors.New(errors.ErrNotHost)
	}

	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()

	prev, err := s.loadGameLocked(ctx, code, room)
	if err != nil {
		return nil, err
	}
	if prev.Phase() != game.PhaseResults {
		return nil, errors.Newf(errors.ErrWrongPhase, "当前阶段: %s", prev.Phase())
	}

	next, err := game.Rotate(prev)
	if err != nil {
		return nil, err
	}

	room.Status = models.RoomStatusPlaying
	if err := s.mirrorGame(ctx, room, next); err != nil {
		return nil, err
	}
	s.games[code] = next

	s.log.Info("新回合开始",
		zap.String("room_code", code),
		zap.Int("round", next.Round))
	s.publish(code, websocket.EventRoundStarted, map[string]interface{}{
		"round": next.Round,
	})
	s.scheduleDeadlineLocked(code, game.PhaseDescribing)

	return s.playingView(room, next), nil
}

// findRoom 带重试的房间查询
func (s *roomService) findRoom(ctx context.Context, code string) (*models.Room, error) {
	var room *models.Room
	err := s.withRetry(ctx, func() error {
		var e error
		room, e = s.repo.Room().FindByCode(ctx, code)
		return e
	})
	return room, err
}

// findRoomWithPlayers 带重试的房间加玩家查询
func (s *roomService) findRoomWithPlayers(ctx context.Context, code string) (*models.Room, error) {
	var room *models.Room
	err := s.withRetry(ctx, func() error {
		var e error
		room, e = s.repo.Room().FindByCodeWithPlayers(ctx, code)
		return e
	})
	return room, err
}

// findRowByPlayerID 在玩家行中按稳定标识查找
func findRowByPlayerID(players []models.Player, playerID string) *models.Player {
	for i := range players {
		if players[i].PlayerID == playerID {
			return &players[i]
		}
	}
	return nil
}

// publish 发布事件，失败只记日志
func (s *roomService) publish(roomCode, event string, payload interface{}) {
	if s.publisher == nil {
		return
	}

	var err error
	if roomCode == "" {
		err = s.publisher.PublishGlobal(event, payload)
	} else {
		err = s.publisher.PublishToRoom(roomCode, event, payload)
	}
	if err != nil {
		s.log.Warn("事件发布失败",
			zap.String("room_code", roomCode),
			zap.String("event", event),
			zap.Error(err))
	}
}
