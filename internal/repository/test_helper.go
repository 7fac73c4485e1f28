package repository

import (
	"github.com/wfunc/mister-white/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 为测试套件设置测试数据库
func SetupTestDB() *gorm.DB {
	// 使用内存数据库进行测试（更快，不需要文件系统，在所有环境中都能工作）
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// 自动迁移所有模型
	// 注意：顺序很重要，先迁移被外键引用的表
	err = db.AutoMigrate(
		&models.Room{},
		&models.Player{},
		&models.WordPair{},
	)
	if err != nil {
		panic(err)
	}

	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(db *gorm.DB) {
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SeedTestWords 写入一批测试词条
func SeedTestWords(db *gorm.DB) []*models.WordPair {
	pairs := []*models.WordPair{
		{Difficulty: "easy", Category: "食物", CivilianWord: "苹果", UndercoverWord: "梨"},
		{Difficulty: "easy", Category: "食物", CivilianWord: "包子", UndercoverWord: "饺子"},
		{Difficulty: "easy", Category: "动物", CivilianWord: "猫", UndercoverWord: "狗"},
		{Difficulty: "medium", Category: "职业", CivilianWord: "医生", UndercoverWord: "护士"},
		{Difficulty: "hard", Category: "抽象", CivilianWord: "习惯", UndercoverWord: "爱好"},
	}
	if err := db.Create(&pairs).Error; err != nil {
		panic(err)
	}
	return pairs
}
