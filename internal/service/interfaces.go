package service

import (
	"context"

	"github.com/wfunc/mister-white/internal/game"
)

// EventPublisher 实时事件发布接口（websocket.Hub 实现）。
// 事件只作提醒用，不携带权威状态，客户端收到后重新拉取房间。
type EventPublisher interface {
	PublishToRoom(roomCode, event string, payload interface{}) error
	PublishGlobal(event string, payload interface{}) error
}

// RoomService 房间服务接口
type RoomService interface {
	// 房间生命周期
	CreateRoom(ctx context.Context, req *CreateRoomRequest) (*CreateRoomResponse, error)
	JoinRoom(ctx context.Context, code, name string) (*JoinRoomResponse, error)
	LeaveRoom(ctx context.Context, code, playerID string) error
	DeleteRoom(ctx context.Context, code, playerID string) error
	ListRooms(ctx context.Context, page, pageSize int) ([]*RoomSummary, int64, error)

	// 状态查询
	GetRoom(ctx context.Context, code string) (*RoomView, error)
	GetPlayerWord(ctx context.Context, code, playerID string) (*PlayerPrivateView, error)
	Categories(ctx context.Context, difficulty string) ([]string, error)

	// 游戏操作
	StartGame(ctx context.Context, code, playerID string) (*RoomView, error)
	SubmitDescription(ctx context.Context, code, playerID, text string) (*RoomView, error)
	SubmitVote(ctx context.Context, code, playerID, targetName string) (*RoomView, error)
	NextRound(ctx context.Context, code, playerID string) (*RoomView, error)
}

// CreateRoomRequest 创建房间请求
type CreateRoomRequest struct {
	HostName          string `json:"host_name" binding:"required"`
	Difficulty        string `json:"difficulty"`
	Category          string `json:"category"`
	IncludeUndercover bool   `json:"include_undercover"`
	MisterWhiteCount  int    `json:"mister_white_count"`
	UseDatabase       *bool  `json:"use_database"` // 为空时默认启用
	MaxPlayers        int    `json:"max_players"`
}

// CreateRoomResponse 创建房间响应
type CreateRoomResponse struct {
	RoomCode string `json:"room_code"`
	PlayerID string `json:"player_id"`
}

// JoinRoomResponse 加入房间响应
type JoinRoomResponse struct {
	RoomCode string `json:"room_code"`
	PlayerID string `json:"player_id"`
}

// RoomSummary 大厅列表中的房间摘要
type RoomSummary struct {
	Code        string `json:"code"`
	Status      string `json:"status"`
	Difficulty  string `json:"difficulty"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
}

// PlayerView 对外可见的玩家状态，不含角色和词
type PlayerView struct {
	Name         string `json:"name"`
	IsHost       bool   `json:"is_host"`
	IsAlive      bool   `json:"is_alive"`
	HasDescribed bool   `json:"has_described"`
	HasVoted     bool   `json:"has_voted"`
	Description  string `json:"description,omitempty"`
}

// RoomView 房间的公开视图
type RoomView struct {
	Code       string       `json:"code"`
	Status     string       `json:"status"`
	Round      int          `json:"round"`
	Phase      string       `json:"phase,omitempty"` // 游戏进行中时的阶段
	StartIndex int          `json:"start_index"`
	Difficulty string       `json:"difficulty"`
	Category   string       `json:"category,omitempty"` // 仅简单难度返回
	MaxPlayers int          `json:"max_players"`
	Players    []PlayerView `json:"players"`
	Result     *game.Result `json:"result,omitempty"` // 回合结算后返回
}

// PlayerPrivateView 玩家私有视图。
// 只含本人的词，不泄露角色：白板从词面（"你是白板"）自行得知身份
type PlayerPrivateView struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Word     string `json:"word"`
	Category string `json:"category,omitempty"` // 仅简单难度返回
}
