package repository

import (
	"context"

	"github.com/wfunc/mister-white/internal/errors"
	"github.com/wfunc/mister-white/internal/models"
	"gorm.io/gorm"
)

// RoomRepository 房间仓储接口
type RoomRepository interface {
	BaseRepository
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	FindByCode(ctx context.Context, code string) (*models.Room, error)
	FindByCodeWithPlayers(ctx context.Context, code string) (*models.Room, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListOpen(ctx context.Context, pagination *Pagination) ([]*models.Room, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
}

// roomRepo 房间仓储实现
type roomRepo struct {
	*BaseRepo
}

// NewRoomRepository 创建房间仓储
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建房间
func (r *roomRepo) Create(ctx context.Context, room *models.Room) error {
	if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
		return errors.Wrap(err, errors.ErrDatabaseInsert)
	}
	return nil
}

// Update 更新房间
func (r *roomRepo) Update(ctx context.Context, room *models.Room) error {
	if err := r.db.WithContext(ctx).Save(room).Error; err != nil {
		return errors.Wrap(err, errors.ErrDatabaseUpdate)
	}
	return nil
}

// Delete 删除房间（软删除）
func (r *roomRepo) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Room{}, id).Error; err != nil {
		return errors.Wrap(err, errors.ErrDatabaseDelete)
	}
	return nil
}

// FindByID 根据ID查找房间
func (r *roomRepo) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.Newf(errors.ErrRoomNotFound, "id=%d", id)
		}
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return &room, nil
}

// FindByCode 根据房间码查找
func (r *roomRepo) FindByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&room).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.Newf(errors.ErrRoomNotFound, "code=%s", code)
		}
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return &room, nil
}

// FindByCodeWithPlayers 根据房间码查找并预加载玩家列表，
// 玩家按加入顺序返回
func (r *roomRepo) FindByCodeWithPlayers(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("code = ?", code).
		First(&room).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.Newf(errors.ErrRoomNotFound, "code=%s", code)
		}
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return &room, nil
}

// CodeExists 房间码是否已被占用
func (r *roomRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return count > 0, nil
}

// ListOpen 获取等待中的房间（分页，新房间在前）
func (r *roomRepo) ListOpen(ctx context.Context, pagination *Pagination) ([]*models.Room, error) {
	var rooms []*models.Room
	query := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("status = ?", models.RoomStatusWaiting)

	var total int64
	query.Count(&total)
	pagination.Total = total

	err := query.
		Scopes(Paginate(pagination)).
		Order("created_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return rooms, nil
}

// UpdateStatus 更新房间状态
func (r *roomRepo) UpdateStatus(ctx context.Context, id uint, status string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabaseUpdate)
	}
	return nil
}

// WithTx 使用事务
func (r *roomRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &roomRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
