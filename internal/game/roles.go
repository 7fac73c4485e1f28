package game

import (
	"math/rand"

	"github.com/wfunc/mister-white/internal/errors"
)

// Role 玩家角色
type Role string

const (
	RoleCivilian    Role = "civilian"     // 平民：知道真词
	RoleMisterWhite Role = "mister_white" // 白板：不知道任何词
	RoleUndercover  Role = "undercover"   // 卧底：拿到相近的另一个词
	RoleClown       Role = "clown"        // 小丑：拿平民词，但目标是被投出去
)

// 玩家人数限制
const (
	MinPlayers = 3
	MaxPlayers = 20

	// 达到该人数后自动启用小丑角色，不可手动关闭
	ClownThreshold = 8
)

// MisterWhiteWord 白板玩家看到的占位词
const MisterWhiteWord = "你是白板"

// RoleConfig 角色分配配置
type RoleConfig struct {
	IncludeUndercover bool `json:"include_undercover"`
	MisterWhiteCount  int  `json:"mister_white_count"`
}

// IncludeClown 小丑是否启用由人数推导，不可配置
func IncludeClown(playerCount int) bool {
	return playerCount >= ClownThreshold
}

// ClampMisterWhiteCount 收缩白板数量，保证至少留下一名平民。
// 人数减少导致请求的白板数超限时自动下调而不是报错。
func ClampMisterWhiteCount(playerCount int, cfg RoleConfig) int {
	count := cfg.MisterWhiteCount
	if count < 1 {
		count = 1
	}

	specials := 0
	if cfg.IncludeUndercover {
		specials++
	}
	if IncludeClown(playerCount) {
		specials++
	}

	// 特殊角色总数必须严格小于玩家数
	for count+specials >= playerCount && count > 1 {
		count--
	}
	if count+specials >= playerCount {
		count = playerCount - specials - 1
	}
	if count < 1 {
		count = 1
	}
	return count
}

// AllocateRoles 按配置为 playerCount 名玩家分配角色。
// 返回的切片下标对应玩家在名单中的位置。
// 洗牌后按固定优先级填充：卧底、小丑、白板，其余为平民，
// 固定顺序保证同一种子下结果可复现。
func AllocateRoles(playerCount int, cfg RoleConfig, seed int64) ([]Role, error) {
	if playerCount < MinPlayers || playerCount > MaxPlayers {
		return nil, errors.Newf(errors.ErrInvalidConfiguration,
			"玩家人数必须在 %d 到 %d 之间, 实际: %d", MinPlayers, MaxPlayers, playerCount)
	}

	includeClown := IncludeClown(playerCount)
	whiteCount := ClampMisterWhiteCount(playerCount, cfg)

	roles := make([]Role, playerCount)
	for i := range roles {
		roles[i] = RoleCivilian
	}

	rng := rand.New(rand.NewSource(seed))
	order := shuffledIndexes(playerCount, rng)

	cursor := 0
	if cfg.IncludeUndercover {
		roles[order[cursor]] = RoleUndercover
		cursor++
	}
	if includeClown {
		roles[order[cursor]] = RoleClown
		cursor++
	}
	for i := 0; i < whiteCount; i++ {
		roles[order[cursor]] = RoleMisterWhite
		cursor++
	}

	return roles, nil
}

// WordForRole 根据角色返回玩家应看到的词
func WordForRole(role Role, pair WordPair) string {
	switch role {
	case RoleMisterWhite:
		return MisterWhiteWord
	case RoleUndercover:
		return pair.Undercover
	default:
		// 平民与小丑都拿真词
		return pair.Civilian
	}
}

// shuffledIndexes 生成 [0, n) 的随机排列
func shuffledIndexes(n int, rng *rand.Rand) []int {
	indexes := make([]int, n)
	for i := range indexes {
		indexes[i] = i
	}
	rng.Shuffle(n, func(i, j int) {
		indexes[i], indexes[j] = indexes[j], indexes[i]
	})
	return indexes
}
