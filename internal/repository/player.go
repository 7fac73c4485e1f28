package repository

import (
	"context"

	"github.com/wfunc/mister-white/internal/errors"
	"github.com/wfunc/mister-white/internal/models"
	"gorm.io/gorm"
)

// PlayerRepository 玩家仓储接口
type PlayerRepository interface {
	BaseRepository
	Create(ctx context.Context, player *models.Player) error
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*models.Player, error)
	FindByPlayerID(ctx context.Context, roomID uint, playerID string) (*models.Player, error)
	FindByRoomID(ctx context.Context, roomID uint) ([]*models.Player, error)
	CountByRoomID(ctx context.Context, roomID uint) (int64, error)
	NameExists(ctx context.Context, roomID uint, name string) (bool, error)
	BatchUpdate(ctx context.Context, players []*models.Player) error
	DeleteByRoomID(ctx context.Context, roomID uint) error
}

// playerRepo 玩家仓储实现
type playerRepo struct {
	*BaseRepo
}

// NewPlayerRepository 创建玩家仓储
func NewPlayerRepository(db *gorm.DB) PlayerRepository {
	return &playerRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建玩家
func (r *playerRepo) Create(ctx context.Context, player *models.Player) error {
	if err := r.db.WithContext(ctx).Create(player).Error; err != nil {
		return errors.Wrap(err, errors.ErrDatabaseInsert)
	}
	return nil
}

// Update 更新玩家
func (r *playerRepo) Update(ctx context.Context, player *models.Player) error {
	if err := r.db.WithContext(ctx).Save(player).Error; err != nil {
		return errors.Wrap(err, errors.ErrDatabaseUpdate)
	}
	return nil
}

// Delete 删除玩家
func (r *playerRepo) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Player{}, id).Error; err != nil {
		return errors.Wrap(err, errors.ErrDatabaseDelete)
	}
	return nil
}

// FindByID 根据ID查找玩家
func (r *playerRepo) FindByID(ctx context.Context, id uint) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).First(&player, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.Newf(errors.ErrPlayerNotFound, "id=%d", id)
		}
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return &player, nil
}

// FindByPlayerID 根据房间和游戏内标识查找玩家
func (r *playerRepo) FindByPlayerID(ctx context.Context, roomID uint, playerID string) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND player_id = ?", roomID, playerID).
		First(&player).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.Newf(errors.ErrPlayerNotFound, "player_id=%s", playerID)
		}
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return &player, nil
}

// FindByRoomID 获取房间内全部玩家，按加入顺序返回
func (r *playerRepo) FindByRoomID(ctx context.Context, roomID uint) ([]*models.Player, error) {
	var players []*models.Player
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("id ASC").
		Find(&players).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return players, nil
}

// CountByRoomID 统计房间人数
func (r *playerRepo) CountByRoomID(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return count, nil
}

// NameExists 房间内名称是否已被占用（大小写不敏感）
func (r *playerRepo) NameExists(ctx context.Context, roomID uint, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("room_id = ? AND LOWER(name) = LOWER(?)", roomID, name).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return count > 0, nil
}

// BatchUpdate 在同一事务中批量保存玩家
func (r *playerRepo) BatchUpdate(ctx context.Context, players []*models.Player) error {
	return r.Transaction(ctx, func(tx *gorm.DB) error {
		for _, player := range players {
			if err := tx.Save(player).Error; err != nil {
				return errors.Wrap(err, errors.ErrDatabaseUpdate)
			}
		}
		return nil
	})
}

// DeleteByRoomID 删除房间内全部玩家
func (r *playerRepo) DeleteByRoomID(ctx context.Context, roomID uint) error {
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Delete(&models.Player{}).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabaseDelete)
	}
	return nil
}

// WithTx 使用事务
func (r *playerRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &playerRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
