package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestWordRepository_BatchCreateAndCount(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	repo := NewWordRepository(db)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	SeedTestWords(db)

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	// 空批次不报错
	assert.NoError(t, repo.BatchCreate(ctx, nil))
}

func TestWordRepository_FindRandom(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	repo := NewWordRepository(db)
	ctx := context.Background()
	SeedTestWords(db)

	pairs, err := repo.FindRandom(ctx, "easy", "all", 10)
	require.NoError(t, err)
	assert.Len(t, pairs, 3)
	for _, pair := range pairs {
		assert.Equal(t, "easy", pair.Difficulty)
	}

	// 分类过滤
	pairs, err = repo.FindRandom(ctx, "easy", "动物", 10)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "猫", pairs[0].CivilianWord)

	// 无匹配时返回空集而不是错误
	pairs, err = repo.FindRandom(ctx, "hard", "食物", 10)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestWordRepository_FindRandomLimit(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	repo := NewWordRepository(db)
	ctx := context.Background()
	SeedTestWords(db)

	pairs, err := repo.FindRandom(ctx, "easy", "all", 2)
	require.NoError(t, err)
	assert.Len(t, pairs, 2)

	// limit<=0 时按1处理
	pairs, err = repo.FindRandom(ctx, "easy", "all", 0)
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
}

// MySQL 没有 RANDOM()，必须按方言切换随机排序函数
func TestWordRepository_RandomOrderDialect(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)

	sqliteRepo := &wordRepo{BaseRepo: NewBaseRepo(db)}
	assert.Equal(t, "RANDOM()", sqliteRepo.randomOrder())

	mysqlDB := &gorm.DB{Config: &gorm.Config{Dialector: mysql.Open("user@tcp(localhost:3306)/words")}}
	mysqlRepo := &wordRepo{BaseRepo: NewBaseRepo(mysqlDB)}
	assert.Equal(t, "RAND()", mysqlRepo.randomOrder())
}

func TestWordRepository_FindCategories(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	repo := NewWordRepository(db)
	ctx := context.Background()
	SeedTestWords(db)

	categories, err := repo.FindCategories(ctx, "easy")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"食物", "动物"}, categories)

	// 不指定难度时跨难度去重
	all, err := repo.FindCategories(ctx, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"食物", "动物", "职业", "抽象"}, all)
}

func TestManagerWithTransaction(t *testing.T) {
	db := SetupTestDB()
	defer CleanupTestDB(db)
	manager := NewManager(db)
	ctx := context.Background()

	// 出错时整体回滚
	err := manager.WithTransaction(ctx, func(tx *Tx) error {
		if err := tx.Room().Create(ctx, newTestRoom("TX0001")); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	exists, err := manager.Room().CodeExists(ctx, "TX0001")
	require.NoError(t, err)
	assert.False(t, exists)

	// 正常提交
	err = manager.WithTransaction(ctx, func(tx *Tx) error {
		return tx.Room().Create(ctx, newTestRoom("TX0002"))
	})
	require.NoError(t, err)

	exists, err = manager.Room().CodeExists(ctx, "TX0002")
	require.NoError(t, err)
	assert.True(t, exists)
}
