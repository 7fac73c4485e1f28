package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/mister-white/internal/errors"
)

func countRoles(roles []Role) map[Role]int {
	counts := make(map[Role]int)
	for _, r := range roles {
		counts[r]++
	}
	return counts
}

func TestAllocateRoles(t *testing.T) {
	tests := []struct {
		name        string
		playerCount int
		cfg         RoleConfig
		want        map[Role]int
	}{
		{
			name:        "5人无卧底",
			playerCount: 5,
			cfg:         RoleConfig{IncludeUndercover: false, MisterWhiteCount: 1},
			want:        map[Role]int{RoleMisterWhite: 1, RoleCivilian: 4},
		},
		{
			name:        "5人带卧底",
			playerCount: 5,
			cfg:         RoleConfig{IncludeUndercover: true, MisterWhiteCount: 1},
			want:        map[Role]int{RoleMisterWhite: 1, RoleUndercover: 1, RoleCivilian: 3},
		},
		{
			name:        "9人自动带小丑",
			playerCount: 9,
			cfg:         RoleConfig{IncludeUndercover: false, MisterWhiteCount: 1},
			want:        map[Role]int{RoleMisterWhite: 1, RoleClown: 1, RoleCivilian: 7},
		},
		{
			name:        "3人最小局",
			playerCount: 3,
			cfg:         RoleConfig{IncludeUndercover: false, MisterWhiteCount: 1},
			want:        map[Role]int{RoleMisterWhite: 1, RoleCivilian: 2},
		},
		{
			name:        "白板数超限时自动收缩",
			playerCount: 4,
			cfg:         RoleConfig{IncludeUndercover: true, MisterWhiteCount: 5},
			want:        map[Role]int{RoleMisterWhite: 2, RoleUndercover: 1, RoleCivilian: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roles, err := AllocateRoles(tt.playerCount, tt.cfg, 42)
			require.NoError(t, err)
			assert.Len(t, roles, tt.playerCount)
			assert.Equal(t, tt.want, countRoles(roles))
		})
	}
}

func TestAllocateRolesInvalidPlayerCount(t *testing.T) {
	for _, count := range []int{0, 1, 2, 21, 100} {
		_, err := AllocateRoles(count, RoleConfig{MisterWhiteCount: 1}, 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidConfiguration))
	}
}

// 全量扫描合法人数区间，检查不变式
func TestAllocateRolesInvariants(t *testing.T) {
	configs := []RoleConfig{
		{IncludeUndercover: false, MisterWhiteCount: 1},
		{IncludeUndercover: true, MisterWhiteCount: 1},
		{IncludeUndercover: true, MisterWhiteCount: 3},
		{IncludeUndercover: false, MisterWhiteCount: 19},
	}

	for _, cfg := range configs {
		for count := MinPlayers; count <= MaxPlayers; count++ {
			roles, err := AllocateRoles(count, cfg, int64(count))
			require.NoError(t, err)
			require.Len(t, roles, count)

			got := countRoles(roles)

			// 至少一名平民
			assert.Greater(t, got[RoleCivilian], 0,
				"人数=%d 配置=%+v 没有平民", count, cfg)

			// 特殊角色总数严格小于玩家数
			specials := got[RoleMisterWhite] + got[RoleUndercover] + got[RoleClown]
			assert.Less(t, specials, count)

			// 小丑由人数推导
			if count >= ClownThreshold {
				assert.Equal(t, 1, got[RoleClown], "人数=%d 应有小丑", count)
			} else {
				assert.Zero(t, got[RoleClown], "人数=%d 不应有小丑", count)
			}

			// 卧底按配置启用
			if cfg.IncludeUndercover {
				assert.Equal(t, 1, got[RoleUndercover])
			} else {
				assert.Zero(t, got[RoleUndercover])
			}
		}
	}
}

// 同一种子分配结果可复现
func TestAllocateRolesDeterministic(t *testing.T) {
	cfg := RoleConfig{IncludeUndercover: true, MisterWhiteCount: 2}

	first, err := AllocateRoles(10, cfg, 7)
	require.NoError(t, err)
	second, err := AllocateRoles(10, cfg, 7)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// 不同种子大概率产生不同排列（固定种子下断言确定结果）
	other, err := AllocateRoles(10, cfg, 8)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestClampMisterWhiteCount(t *testing.T) {
	// 8人局带卧底带小丑：最多 8-2-1=5 名白板
	got := ClampMisterWhiteCount(8, RoleConfig{IncludeUndercover: true, MisterWhiteCount: 10})
	assert.Equal(t, 5, got)

	// 不足1时提升到1
	got = ClampMisterWhiteCount(5, RoleConfig{MisterWhiteCount: 0})
	assert.Equal(t, 1, got)

	// 合法值原样保留
	got = ClampMisterWhiteCount(10, RoleConfig{IncludeUndercover: true, MisterWhiteCount: 2})
	assert.Equal(t, 2, got)
}

func TestWordForRole(t *testing.T) {
	pair := WordPair{Civilian: "苹果", Undercover: "梨", Category: "食物"}

	assert.Equal(t, "苹果", WordForRole(RoleCivilian, pair))
	assert.Equal(t, "苹果", WordForRole(RoleClown, pair))
	assert.Equal(t, "梨", WordForRole(RoleUndercover, pair))
	assert.Equal(t, MisterWhiteWord, WordForRole(RoleMisterWhite, pair))
}
