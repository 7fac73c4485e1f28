package models

// 房间状态
const (
	RoomStatusWaiting  = "waiting"  // 等待玩家加入
	RoomStatusPlaying  = "playing"  // 游戏进行中
	RoomStatusFinished = "finished" // 本轮已结束
)

// Room 房间表
type Room struct {
	BaseModel
	Code              string  `gorm:"uniqueIndex;size:6;not null" json:"code"` // 6位大写房间码
	Status            string  `gorm:"size:20;default:'waiting'" json:"status"` // waiting, playing, finished
	Round             int     `gorm:"default:1" json:"round"`
	StartIndex        int     `gorm:"default:0" json:"start_index"` // 本轮起始玩家下标
	Difficulty        string  `gorm:"size:10;not null" json:"difficulty"` // easy, medium, hard
	Category          string  `gorm:"size:50" json:"category"`
	CivilianWord      string  `gorm:"size:100" json:"-"`
	UndercoverWord    string  `gorm:"size:100" json:"-"`
	IncludeUndercover bool    `gorm:"default:true" json:"include_undercover"`
	MisterWhiteCount  int     `gorm:"default:1" json:"mister_white_count"`
	MaxPlayers        int     `gorm:"default:8" json:"max_players"`
	UseDatabase       bool    `gorm:"default:true" json:"use_database"`
	Seed              int64   `json:"-"` // 本轮随机种子
	Config            JSONMap `gorm:"type:json" json:"config"`

	// 关联
	Players []Player `gorm:"foreignKey:RoomID" json:"players,omitempty"`
}

// Player 玩家表
type Player struct {
	BaseModel
	RoomID      uint   `gorm:"not null;index" json:"room_id"`
	PlayerID    string `gorm:"size:64;not null;index" json:"player_id"` // 游戏内稳定标识
	Name        string `gorm:"size:20;not null" json:"name"`
	Role        string `gorm:"size:20" json:"-"` // civilian, mister_white, undercover, clown
	Word        string `gorm:"size:100" json:"-"`
	IsHost      bool   `gorm:"default:false" json:"is_host"`
	IsAlive     bool   `gorm:"default:true" json:"is_alive"`
	Description string `gorm:"size:500" json:"description"`
	VotedFor    string `gorm:"size:20" json:"voted_for"` // 被投玩家名称

	// 关联
	Room Room `gorm:"foreignKey:RoomID" json:"-"`
}

// HasDescribed 是否已提交描述
func (p *Player) HasDescribed() bool {
	return p.Description != ""
}

// HasVoted 是否已投票
func (p *Player) HasVoted() bool {
	return p.VotedFor != ""
}
