package repository

import (
	"context"

	"github.com/wfunc/mister-white/internal/errors"
	"github.com/wfunc/mister-white/internal/models"
	"gorm.io/gorm"
)

// WordRepository 词库仓储接口
type WordRepository interface {
	BaseRepository
	Create(ctx context.Context, pair *models.WordPair) error
	BatchCreate(ctx context.Context, pairs []*models.WordPair) error
	Count(ctx context.Context) (int64, error)
	FindRandom(ctx context.Context, difficulty, category string, limit int) ([]*models.WordPair, error)
	FindCategories(ctx context.Context, difficulty string) ([]string, error)
}

// wordRepo 词库仓储实现
type wordRepo struct {
	*BaseRepo
}

// NewWordRepository 创建词库仓储
func NewWordRepository(db *gorm.DB) WordRepository {
	return &wordRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建词条
func (r *wordRepo) Create(ctx context.Context, pair *models.WordPair) error {
	if err := r.db.WithContext(ctx).Create(pair).Error; err != nil {
		return errors.Wrap(err, errors.ErrDatabaseInsert)
	}
	return nil
}

// BatchCreate 批量创建词条
func (r *wordRepo) BatchCreate(ctx context.Context, pairs []*models.WordPair) error {
	if len(pairs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(pairs, 100).Error; err != nil {
		return errors.Wrap(err, errors.ErrDatabaseInsert)
	}
	return nil
}

// Count 词条总数
func (r *wordRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WordPair{}).Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return count, nil
}

// randomOrder 按方言返回随机排序表达式。
// SQLite/Postgres 用 RANDOM()，MySQL 用 RAND()，
// gorm 不翻译裸 Order SQL，必须在这里自己切换
func (r *wordRepo) randomOrder() string {
	if r.db.Dialector.Name() == "mysql" {
		return "RAND()"
	}
	return "RANDOM()"
}

// FindRandom 随机抽取指定难度的词条。
// category 为空或 "all" 时不过滤分类。
func (r *wordRepo) FindRandom(ctx context.Context, difficulty, category string, limit int) ([]*models.WordPair, error) {
	if limit <= 0 {
		limit = 1
	}

	query := r.db.WithContext(ctx).
		Model(&models.WordPair{}).
		Where("difficulty = ?", difficulty)
	if category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}

	var pairs []*models.WordPair
	err := query.Order(r.randomOrder()).Limit(limit).Find(&pairs).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return pairs, nil
}

// FindCategories 查询指定难度下的全部分类（去重）。
// difficulty 为空时跨难度返回。
func (r *wordRepo) FindCategories(ctx context.Context, difficulty string) ([]string, error) {
	query := r.db.WithContext(ctx).
		Model(&models.WordPair{}).
		Distinct("category").
		Where("category <> ''")
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var categories []string
	err := query.Order("category ASC").Pluck("category", &categories).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return categories, nil
}

// WithTx 使用事务
func (r *wordRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &wordRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
