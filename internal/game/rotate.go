package game

import (
	"strings"

	"github.com/wfunc/mister-white/internal/errors"
)

// FoldSeed 把回合数折进种子，保证相邻回合的词对和角色分布不同
func FoldSeed(seed int64, round int) int64 {
	return seed*31 + int64(round)
}

// Rotate 用同一批玩家和原配置开启下一回合。
// 回合数加一，起始玩家按 (上轮起始+1)%人数 轮转，
// 重新分配角色并换一组词；所有玩家复活，描述与投票清空。
// 预取批次中还有剩余词对时推进游标，不再请求远程词库。
func Rotate(prev *Instance) (*Instance, error) {
	if prev == nil {
		return nil, errors.New(errors.ErrGameNotStarted)
	}

	round := prev.Round + 1
	seed := FoldSeed(prev.Seed, round)

	names := make([]string, len(prev.Players))
	for i, p := range prev.Players {
		names[i] = p.Name
	}

	roles, err := AllocateRoles(len(names), prev.Config.RoleConfig(), seed)
	if err != nil {
		return nil, err
	}

	// 优先消费预取批次，用尽后回退内置词表
	var pair WordPair
	cursor := prev.Cursor
	if cursor < len(prev.Batch) {
		pair = prev.Batch[cursor]
		cursor++
	} else {
		pair, err = FallbackPair(prev.Config.Difficulty, prev.Config.Category, seed)
		if err != nil {
			return nil, err
		}
	}

	players := make([]*PlayerState, len(prev.Players))
	for i, old := range prev.Players {
		players[i] = &PlayerState{
			ID:     old.ID,
			Name:   strings.TrimSpace(old.Name),
			Role:   roles[i],
			Word:   WordForRole(roles[i], pair),
			IsHost: old.IsHost,
			Alive:  true,
		}
	}

	return &Instance{
		Players:    players,
		Words:      pair,
		Round:      round,
		StartIndex: (prev.StartIndex + 1) % len(players),
		Seed:       seed,
		Config:     prev.Config,
		Batch:      prev.Batch,
		Cursor:     cursor,
	}, nil
}
