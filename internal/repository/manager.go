package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Manager 仓储管理器，提供所有仓储的统一访问接口
type Manager struct {
	db *gorm.DB

	// 仓储实例（使用懒加载）
	roomOnce sync.Once
	room     RoomRepository

	playerOnce sync.Once
	player     PlayerRepository

	wordOnce sync.Once
	word     WordRepository
}

// NewManager 创建仓储管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// GetDB 获取数据库实例
func (m *Manager) GetDB() *gorm.DB {
	return m.db
}

// Room 获取房间仓储
func (m *Manager) Room() RoomRepository {
	m.roomOnce.Do(func() {
		m.room = NewRoomRepository(m.db)
	})
	return m.room
}

// Player 获取玩家仓储
func (m *Manager) Player() PlayerRepository {
	m.playerOnce.Do(func() {
		m.player = NewPlayerRepository(m.db)
	})
	return m.player
}

// Word 获取词库仓储
func (m *Manager) Word() WordRepository {
	m.wordOnce.Do(func() {
		m.word = NewWordRepository(m.db)
	})
	return m.word
}

// Tx 事务中的仓储集合
type Tx struct {
	db     *gorm.DB
	room   RoomRepository
	player PlayerRepository
	word   WordRepository
}

// Room 获取事务中的房间仓储
func (t *Tx) Room() RoomRepository {
	if t.room == nil {
		t.room = &roomRepo{BaseRepo: &BaseRepo{db: t.db}}
	}
	return t.room
}

// Player 获取事务中的玩家仓储
func (t *Tx) Player() PlayerRepository {
	if t.player == nil {
		t.player = &playerRepo{BaseRepo: &BaseRepo{db: t.db}}
	}
	return t.player
}

// Word 获取事务中的词库仓储
func (t *Tx) Word() WordRepository {
	if t.word == nil {
		t.word = &wordRepo{BaseRepo: &BaseRepo{db: t.db}}
	}
	return t.word
}

// WithTransaction 在事务中执行操作，
// fn 返回错误时整体回滚
func (m *Manager) WithTransaction(ctx context.Context, fn func(tx *Tx) error) error {
	return m.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&Tx{db: db})
	})
}
