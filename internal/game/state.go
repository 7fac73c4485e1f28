package game

import (
	"math/rand"
	"strings"

	"github.com/wfunc/mister-white/internal/errors"
	"github.com/google/uuid"
)

// Phase 回合内的阶段
type Phase string

const (
	PhaseRoleReveal Phase = "role_reveal" // 依次亮牌（仅本地模式）
	PhaseDescribing Phase = "describing"  // 描述阶段
	PhaseVoting     Phase = "voting"      // 投票阶段
	PhaseResults    Phase = "results"     // 结果阶段（回合终态）
)

// PlayerState 一名玩家在当前回合内的完整状态
type PlayerState struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        Role   `json:"role"`
	Word        string `json:"word"`
	IsHost      bool   `json:"is_host"`
	Alive       bool   `json:"alive"`
	Revealed    bool   `json:"revealed"` // 本地模式下是否已确认看过角色
	Description string `json:"description"`
	VotedFor    string `json:"voted_for"`
}

// Instance 一局游戏的权威内存状态。
// 阶段不单独存储，每次从玩家数据推导，
// 重复通知下的重算天然幂等，复制延迟下各端最终收敛。
type Instance struct {
	Players    []*PlayerState `json:"players"`
	Words      WordPair       `json:"words"`
	Round      int            `json:"round"`
	StartIndex int            `json:"start_index"`
	Seed       int64          `json:"seed"`
	Config     Config         `json:"config"`

	// 预取的词对批次和游标，跨回合复用
	Batch  []WordPair `json:"batch,omitempty"`
	Cursor int        `json:"cursor"`

	// 结果只计算一次，重复推导不会重复生效
	result *Result
}

// NewInstance 从校验过的配置创建新的一局。
// batch 为预取的词对批次，至少包含一组；首组作为本回合用词。
func NewInstance(cfg Config, names []string, batch []WordPair, seed int64) (*Instance, error) {
	if err := cfg.Validate(names); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, errors.New(errors.ErrNoWordsAvailable, "词对批次为空")
	}

	roles, err := AllocateRoles(len(names), cfg.RoleConfig(), seed)
	if err != nil {
		return nil, err
	}

	pair := batch[0]
	players := make([]*PlayerState, len(names))
	for i, name := range names {
		players[i] = &PlayerState{
			ID:     uuid.New().String(),
			Name:   strings.TrimSpace(name),
			Role:   roles[i],
			Word:   WordForRole(roles[i], pair),
			IsHost: i == 0, // 创建者即房主
			Alive:  true,
		}
	}

	return &Instance{
		Players:    players,
		Words:      pair,
		Round:      1,
		StartIndex: 0,
		Seed:       seed,
		Config:     cfg,
		Batch:      batch,
		Cursor:     1,
	}, nil
}

// Phase 从玩家数据推导当前阶段（纯投影，无副作用）
func (g *Instance) Phase() Phase {
	if g.Config.LocalMode {
		for _, p := range g.Players {
			if !p.Revealed {
				return PhaseRoleReveal
			}
		}
	}

	for _, p := range g.Players {
		if p.Alive && p.Description == "" {
			return PhaseDescribing
		}
	}

	for _, p := range g.Players {
		if p.Alive && p.VotedFor == "" {
			return PhaseVoting
		}
	}

	return PhaseResults
}

// FindPlayer 按ID查找玩家
func (g *Instance) FindPlayer(id string) *PlayerState {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// FindPlayerByName 按名称查找玩家（大小写不敏感）
func (g *Instance) FindPlayerByName(name string) *PlayerState {
	for _, p := range g.Players {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// AlivePlayers 存活玩家列表
func (g *Instance) AlivePlayers() []*PlayerState {
	var alive []*PlayerState
	for _, p := range g.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// Reveal 玩家确认已看过自己的角色。幂等：重复确认无额外效果。
func (g *Instance) Reveal(playerID string) error {
	p := g.FindPlayer(playerID)
	if p == nil {
		return errors.Newf(errors.ErrPlayerNotFound, "玩家: %s", playerID)
	}
	p.Revealed = true
	return nil
}

// SubmitDescription 提交描述。
// 每名玩家只写自己的记录，单字段覆盖写不产生跨端冲突。
func (g *Instance) SubmitDescription(playerID, text string) error {
	if phase := g.Phase(); phase != PhaseDescribing {
		return errors.Newf(errors.ErrWrongPhase, "当前阶段: %s", phase)
	}

	p := g.FindPlayer(playerID)
	if p == nil {
		return errors.Newf(errors.ErrPlayerNotFound, "玩家: %s", playerID)
	}
	if !p.Alive {
		return errors.New(errors.ErrWrongPhase, "已出局玩家不能描述")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New(errors.ErrInvalidParam, "描述不能为空")
	}

	p.Description = text
	return nil
}

// SubmitVote 提交投票。禁止投自己和已出局玩家。
func (g *Instance) SubmitVote(playerID, targetName string) error {
	if phase := g.Phase(); phase != PhaseVoting {
		return errors.Newf(errors.ErrWrongPhase, "当前阶段: %s", phase)
	}

	p := g.FindPlayer(playerID)
	if p == nil {
		return errors.Newf(errors.ErrPlayerNotFound, "玩家: %s", playerID)
	}
	if !p.Alive {
		return errors.New(errors.ErrWrongPhase, "已出局玩家不能投票")
	}

	target := g.FindPlayerByName(targetName)
	if target == nil {
		return errors.Newf(errors.ErrInvalidVoteTarget, "目标不存在: %s", targetName)
	}
	if !target.Alive {
		return errors.Newf(errors.ErrInvalidVoteTarget, "目标已出局: %s", targetName)
	}
	if target.ID == p.ID {
		return errors.New(errors.ErrInvalidVoteTarget, "不能投票给自己")
	}

	p.VotedFor = target.Name
	return nil
}

// AutoCompleteDescriptions 描述阶段超时处理：为未提交的存活玩家
// 填入占位描述，使阶段可以关闭。只补空位，不覆盖已有提交。
func (g *Instance) AutoCompleteDescriptions(placeholder string) int {
	if placeholder == "" {
		placeholder = "..."
	}

	count := 0
	for _, p := range g.Players {
		if p.Alive && p.Description == "" {
			p.Description = placeholder
			count++
		}
	}
	return count
}

// AutoCompleteVotes 投票阶段超时处理：为未投票的存活玩家
// 随机选择一个合法目标（存活且非本人）。
func (g *Instance) AutoCompleteVotes(seed int64) int {
	rng := rand.New(rand.NewSource(seed))

	count := 0
	for _, p := range g.Players {
		if !p.Alive || p.VotedFor != "" {
			continue
		}

		var candidates []*PlayerState
		for _, t := range g.Players {
			if t.Alive && t.ID != p.ID {
				candidates = append(candidates, t)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		p.VotedFor = candidates[rng.Intn(len(candidates))].Name
		count++
	}
	return count
}

// Resolve 结算本回合。只在结果阶段可用；结果缓存，
// 重复调用返回同一结果，不会重复生效。
func (g *Instance) Resolve() (*Result, error) {
	if g.result != nil {
		return g.result, nil
	}

	if phase := g.Phase(); phase != PhaseResults {
		return nil, errors.Newf(errors.ErrWrongPhase, "当前阶段: %s", phase)
	}

	result := ResolveVotes(g.Players)
	g.result = result

	// 应用淘汰
	if result.Eliminated != "" {
		if p := g.FindPlayerByName(result.Eliminated); p != nil {
			p.Alive = false
		}
	}

	return result, nil
}

// VisibleCategory 返回可以向玩家展示的分类名。
// 中等与困难难度的分类仅在服务端用于过滤，不渲染给玩家。
func (g *Instance) VisibleCategory() string {
	if g.Config.Difficulty.ShowsCategory() {
		return g.Words.Category
	}
	return ""
}
