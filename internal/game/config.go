package game

import (
	"strings"
	"unicode/utf8"

	"github.com/wfunc/mister-white/internal/errors"
)

// 玩家名称长度限制
const (
	MinNameLength = 2
	MaxNameLength = 20
)

// Config 一局游戏的完整配置。
// 边界处统一校验，拒绝非法值，替代自由格式的配置对象。
type Config struct {
	Difficulty        Difficulty `json:"difficulty"`
	Category          string     `json:"category"` // 分类名或 "all"
	IncludeUndercover bool       `json:"include_undercover"`
	MisterWhiteCount  int        `json:"mister_white_count"`
	UseDatabase       bool       `json:"use_database"`
	LocalMode         bool       `json:"local_mode"` // 本地同屏模式，带亮牌阶段
}

// Validate 校验配置和玩家名单，一次性返回所有校验消息。
// 校验失败时不产生任何部分生效的状态。
func (c *Config) Validate(names []string) error {
	v := &errors.ValidationErrors{}

	if _, err := ParseDifficulty(string(c.Difficulty)); err != nil {
		v.Add("无效的难度: %s", c.Difficulty)
	}

	playerCount := len(names)
	if playerCount < MinPlayers || playerCount > MaxPlayers {
		v.Add("玩家人数必须在 %d 到 %d 之间, 实际: %d", MinPlayers, MaxPlayers, playerCount)
	}

	if c.MisterWhiteCount < 1 {
		v.Add("白板数量至少为 1, 实际: %d", c.MisterWhiteCount)
	}

	// 名称长度与大小写不敏感的唯一性
	seen := make(map[string]string, playerCount)
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		length := utf8.RuneCountInString(trimmed)
		if length < MinNameLength || length > MaxNameLength {
			v.Add("名称 %q 长度必须在 %d 到 %d 个字符之间", name, MinNameLength, MaxNameLength)
			continue
		}
		key := strings.ToLower(trimmed)
		if prev, ok := seen[key]; ok {
			v.Add("名称 %q 与 %q 重复", name, prev)
			continue
		}
		seen[key] = trimmed
	}

	if v.HasErrors() {
		return v.AsAppError()
	}
	return nil
}

// RoleConfig 提取角色分配所需的子配置
func (c *Config) RoleConfig() RoleConfig {
	return RoleConfig{
		IncludeUndercover: c.IncludeUndercover,
		MisterWhiteCount:  c.MisterWhiteCount,
	}
}
