package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// 房间码字符集，去掉了易混淆的 0/O/1/I
const roomCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RoomCodeLength 房间码长度
const RoomCodeLength = 6

// GenerateRoomCode 生成6位大写房间码。
// 使用加密随机源，避免房间码可预测
func GenerateRoomCode() (string, error) {
	var builder strings.Builder
	builder.Grow(RoomCodeLength)

	max := big.NewInt(int64(len(roomCodeCharset)))
	for i := 0; i < RoomCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(roomCodeCharset[n.Int64()])
	}

	return builder.String(), nil
}

// IsValidRoomCode 校验房间码格式
func IsValidRoomCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(roomCodeCharset, rune(code[i])) {
			return false
		}
	}
	return true
}

// NormalizeRoomCode 规整用户输入的房间码
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
