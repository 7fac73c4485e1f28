package database

import (
	"fmt"

	"github.com/wfunc/mister-white/internal/game"
	"github.com/wfunc/mister-white/internal/logger"
	"github.com/wfunc/mister-white/internal/models"
	"go.uber.org/zap"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	// 清理过期锁文件
	CleanupStaleLocks()

	// 获取迁移锁，避免多个进程同时迁移
	dbPath := getDBPath()
	if dbPath != "" {
		lockFile, err := acquireMigrationLock(dbPath)
		if err != nil {
			logger.Error("无法获取迁移锁", zap.Error(err))
			return fmt.Errorf("获取迁移锁失败: %w", err)
		}
		defer releaseMigrationLock(lockFile)
	}

	migrationModels := []interface{}{
		&models.Room{},
		&models.Player{},
		&models.WordPair{},
	}

	logger.Info("开始数据库迁移...")

	// SQLite 下重建表时先关外键约束
	if DB.Dialector.Name() == "sqlite" {
		DB.Exec("PRAGMA foreign_keys = OFF")
		defer DB.Exec("PRAGMA foreign_keys = ON")
	}

	for _, model := range migrationModels {
		if err := DB.AutoMigrate(model); err != nil {
			logger.Error("迁移失败",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return err
		}
		logger.Debug("迁移成功", zap.String("model", fmt.Sprintf("%T", model)))
	}

	// 创建索引
	if err := createIndexes(); err != nil {
		return err
	}

	logger.Info("数据库迁移完成")
	return nil
}

// createIndexes 创建数据库索引
func createIndexes() error {
	// 房间表索引
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_rooms_status ON rooms(status)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_rooms_status"), zap.Error(err))
	}

	// 玩家表索引
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_players_room_id ON players(room_id)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_players_room_id"), zap.Error(err))
	}

	// 词条表索引
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_word_pairs_difficulty_category ON word_pairs(difficulty, category)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_word_pairs_difficulty_category"), zap.Error(err))
	}

	logger.Info("数据库索引创建完成")
	return nil
}

// SeedWordPairs 把内置词表写入数据库。
// 词条表已有数据时跳过，重复启动不会产生重复行。
func SeedWordPairs() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	var count int64
	if err := DB.Model(&models.WordPair{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Debug("词条表已有数据，跳过播种", zap.Int64("count", count))
		return nil
	}

	var pairs []models.WordPair
	for difficulty, table := range game.BundledWordPairs() {
		for _, pair := range table {
			pairs = append(pairs, models.WordPair{
				Difficulty:     string(difficulty),
				Category:       pair.Category,
				CivilianWord:   pair.Civilian,
				UndercoverWord: pair.Undercover,
			})
		}
	}

	if err := DB.CreateInBatches(&pairs, 100).Error; err != nil {
		logger.Error("词条播种失败", zap.Error(err))
		return err
	}

	logger.Info("词条播种完成", zap.Int("count", len(pairs)))
	return nil
}
