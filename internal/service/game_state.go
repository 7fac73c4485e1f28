package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wfunc/mister-white/internal/errors"
	"github.com/wfunc/mister-white/internal/game"
	"github.com/wfunc/mister-white/internal/models"
	"github.com/wfunc/mister-white/internal/repository"
	"github.com/wfunc/mister-white/internal/websocket"
)

// storeGame 登记进行中的对局
func (s *roomService) storeGame(code string, inst *game.Instance) {
	s.gamesMu.Lock()
	s.games[code] = inst
	s.gamesMu.Unlock()
}

// dropGame 清除对局和定时器
func (s *roomService) dropGame(code string) {
	s.gamesMu.Lock()
	delete(s.games, code)
	s.cancelDeadlineLocked(code)
	s.gamesMu.Unlock()
}

// loadGame 取进行中的对局，不在内存时从行数据重建
func (s *roomService) loadGame(ctx context.Context, code string, room *models.Room) (*game.Instance, error) {
	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	return s.loadGameLocked(ctx, code, room)
}

func (s *roomService) loadGameLocked(ctx context.Context, code string, room *models.Room) (*game.Instance, error) {
	if inst, ok := s.games[code]; ok {
		return inst, nil
	}

	inst, err := s.instanceFromRows(room)
	if err != nil {
		return nil, err
	}
	s.games[code] = inst
	s.log.Info("从存储恢复对局",
		zap.String("room_code", code),
		zap.Int("round", inst.Round))
	return inst, nil
}

// instanceFromRows 从数据库行重建对局内存状态。
// 进程重启后恢复进行中的游戏用，阶段照常由玩家数据推导
func (s *roomService) instanceFromRows(room *models.Room) (*game.Instance, error) {
	if len(room.Players) == 0 {
		return nil, errors.New(errors.ErrGameNotStarted, "房间没有玩家数据")
	}

	players := make([]*game.PlayerState, len(room.Players))
	for i, row := range room.Players {
		players[i] = &game.PlayerState{
			ID:          row.PlayerID,
			Name:        row.Name,
			Role:        game.Role(row.Role),
			Word:        row.Word,
			IsHost:      row.IsHost,
			Alive:       row.IsAlive,
			Revealed:    true, // 在线模式没有亮牌阶段
			Description: row.Description,
			VotedFor:    row.VotedFor,
		}
	}

	return &game.Instance{
		Players: players,
		Words: game.WordPair{
			Civilian:   room.CivilianWord,
			Undercover: room.UndercoverWord,
			Category:   room.Category,
		},
		Round:      room.Round,
		StartIndex: room.StartIndex,
		Seed:       room.Seed,
		Config: game.Config{
			Difficulty:        game.Difficulty(room.Difficulty),
			Category:          room.Category,
			IncludeUndercover: room.IncludeUndercover,
			MisterWhiteCount:  room.MisterWhiteCount,
			UseDatabase:       room.UseDatabase,
		},
	}, nil
}

// mirrorGame 把对局内存状态镜像到数据库行
func (s *roomService) mirrorGame(ctx context.Context, room *models.Room, inst *game.Instance) error {
	room.Round = inst.Round
	room.StartIndex = inst.StartIndex
	room.CivilianWord = inst.Words.Civilian
	room.UndercoverWord = inst.Words.Undercover
	room.Seed = inst.Seed

	return s.repo.WithTransaction(ctx, func(tx *repository.Tx) error {
		if err := tx.Room().Update(ctx, room); err != nil {
			return err
		}

		for i := range room.Players {
			row := &room.Players[i]
			p := inst.FindPlayer(row.PlayerID)
			if p == nil {
				continue
			}
			row.Role = string(p.Role)
			row.Word = p.Word
			row.IsAlive = p.Alive
			row.IsHost = p.IsHost
			row.Description = p.Description
			row.VotedFor = p.VotedFor
			if err := tx.Player().Update(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
}

// waitingView 等待阶段的房间视图
func (s *roomService) waitingView(room *models.Room) *RoomView {
	players := make([]PlayerView, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, PlayerView{
			Name:    p.Name,
			IsHost:  p.IsHost,
			IsAlive: true,
		})
	}

	return &RoomView{
		Code:       room.Code,
		Status:     room.Status,
		Round:      room.Round,
		Difficulty: room.Difficulty,
		MaxPlayers: room.MaxPlayers,
		Players:    players,
	}
}

// playingView 进行中的房间视图。
// 角色和词不出现在公开视图里，描述在投票阶段后才可见
func (s *roomService) playingView(room *models.Room, inst *game.Instance) *RoomView {
	phase := inst.Phase()

	players := make([]PlayerView, 0, len(inst.Players))
	for _, p := range inst.Players {
		view := PlayerView{
			Name:         p.Name,
			IsHost:       p.IsHost,
			IsAlive:      p.Alive,
			HasDescribed: p.Description != "",
			HasVoted:     p.VotedFor != "",
		}
		// 描述在所有人提交后公开，避免后手照抄先手
		if phase == game.PhaseVoting || phase == game.PhaseResults {
			view.Description = p.Description
		}
		players = append(players, view)
	}

	view := &RoomView{
		Code:       room.Code,
		Status:     room.Status,
		Round:      inst.Round,
		Phase:      string(phase),
		StartIndex: inst.StartIndex,
		Difficulty: string(inst.Config.Difficulty),
		Category:   inst.VisibleCategory(),
		MaxPlayers: room.MaxPlayers,
		Players:    players,
	}

	if phase == game.PhaseResults {
		if result, err := inst.Resolve(); err == nil {
			view.Result = result
		}
	}
	return view
}

// scheduleDeadline 为当前阶段排一个超时定时器
func (s *roomService) scheduleDeadline(code string, phase game.Phase) {
	s.gamesMu.Lock()
	s.scheduleDeadlineLocked(code, phase)
	s.gamesMu.Unlock()
}

func (s *roomService) scheduleDeadlineLocked(code string, phase game.Phase) {
	s.cancelDeadlineLocked(code)

	var timeout time.Duration
	switch phase {
	case game.PhaseDescribing:
		timeout = s.cfg.DescribeTimeout
	case game.PhaseVoting:
		timeout = s.cfg.VoteTimeout
	default:
		return
	}
	if timeout <= 0 {
		return
	}

	s.timers[code] = time.AfterFunc(timeout, func() {
		s.onDeadline(code, phase)
	})
}

func (s *roomService) cancelDeadlineLocked(code string) {
	if timer, ok := s.timers[code]; ok {
		timer.Stop()
		delete(s.timers, code)
	}
}

// onDeadline 阶段超时：为缺席者自动补提交，然后照常推进。
// 定时器从不直接改阶段，阶段仍由玩家数据推导
func (s *roomService) onDeadline(code string, phase game.Phase) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	room, err := s.findRoomWithPlayers(ctx, code)
	if err != nil {
		s.log.Warn("阶段超时处理失败",
			zap.String("room_code", code),
			zap.Error(err))
		return
	}
	if room.Status != models.RoomStatusPlaying {
		return
	}

	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()

	inst, err := s.loadGameLocked(ctx, code, room)
	if err != nil {
		return
	}
	// 对局已经推进过了，超时失效
	if inst.Phase() != phase {
		return
	}

	var filled int
	switch phase {
	case game.PhaseDescribing:
		filled = inst.AutoCompleteDescriptions("...")
	case game.PhaseVoting:
		filled = inst.AutoCompleteVotes(game.FoldSeed(inst.Seed, inst.Round+100))
	}
	if filled == 0 {
		return
	}

	s.log.Info("阶段超时，自动补提交",
		zap.String("room_code", code),
		zap.String("phase", string(phase)),
		zap.Int("filled", filled))

	if err := s.afterAdvanceLocked(ctx, code, room, inst, phase); err != nil {
		s.log.Error("超时推进失败",
			zap.String("room_code", code),
			zap.Error(err))
	}
	s.publish(code, websocket.EventPhaseChanged, map[string]interface{}{
		"phase": string(inst.Phase()),
	})
}
