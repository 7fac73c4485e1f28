package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateRoomCode()
		require.NoError(t, err)
		assert.Len(t, code, RoomCodeLength)
		assert.True(t, IsValidRoomCode(code), code)
		seen[code] = true
	}

	// 100次生成不应全部相同
	assert.Greater(t, len(seen), 1)
}

func TestIsValidRoomCode(t *testing.T) {
	assert.True(t, IsValidRoomCode("ABC234"))
	assert.False(t, IsValidRoomCode("abc234"))  // 小写
	assert.False(t, IsValidRoomCode("ABC23"))   // 太短
	assert.False(t, IsValidRoomCode("ABC2345")) // 太长
	assert.False(t, IsValidRoomCode("ABC10O"))  // 易混淆字符
	assert.False(t, IsValidRoomCode(""))
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "ABC234", NormalizeRoomCode("  abc234 "))
	assert.Equal(t, "XYZ789", NormalizeRoomCode("xyz789"))
}
