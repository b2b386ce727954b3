package repository

import (
	"context"
	"fmt"
	"time"

	"studybuddy_backend/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FriendshipRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
	ctx   context.Context
}

func NewFriendshipRepository(db *gorm.DB, rdb *redis.Client) *FriendshipRepository {
	return &FriendshipRepository{
		DB:    db,
		Redis: rdb,
		ctx:   context.Background(),
	}
}

// CreateRegister 按无序用户对条件写入登记。pair_key 撞唯一索引时不报错，
// 改为读回已存在的记录，返回值第二项表示本次是否真的新建了。
func (r *FriendshipRepository) CreateRegister(reg *model.FriendRegister) (*model.FriendRegister, bool, error) {
	reg.PairKey = model.PairKey(reg.RequesterID, reg.AcceptorID)
	if reg.ID == "" {
		reg.ID = model.GenerateUUID()
	}

	res := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pair_key"}},
		DoNothing: true,
	}).Create(reg)
	if res.Error != nil {
		return nil, false, res.Error
	}

	if res.RowsAffected == 0 {
		existing, err := r.FindByPair(reg.RequesterID, reg.AcceptorID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	r.invalidateFriendCache(reg.RequesterID, reg.AcceptorID)
	return reg, true, nil
}

// FindByPair 查无序用户对的登记。不存在返回 (nil, nil)。
func (r *FriendshipRepository) FindByPair(userA, userB uint) (*model.FriendRegister, error) {
	var reg model.FriendRegister
	err := r.DB.Where("pair_key = ?", model.PairKey(userA, userB)).First(&reg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *FriendshipRepository) GetRegister(id string) (*model.FriendRegister, error) {
	var reg model.FriendRegister
	err := r.DB.First(&reg, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// UpdateStatus 单字段状态更新，blockedBy 只在 BLOCKED 时有意义，其余状态清零。
func (r *FriendshipRepository) UpdateStatus(id string, status model.FriendStatus, blockedBy uint) error {
	err := r.DB.Model(&model.FriendRegister{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"blocked_by": blockedBy,
		}).Error
	if err == nil {
		r.invalidateRegisterCache(id)
	}
	return err
}

// DeleteRegister 取消好友申请时整条删除，不做状态转移。
// 预读失败直接返回错误，不在缓存失效没法执行的情况下删行。
func (r *FriendshipRepository) DeleteRegister(id string) error {
	reg, err := r.GetRegister(id)
	if err != nil {
		return err
	}
	err = r.DB.Unscoped().Where("id = ?", id).Delete(&model.FriendRegister{}).Error
	if err == nil && reg != nil {
		r.invalidateFriendCache(reg.RequesterID, reg.AcceptorID)
	}
	return err
}

// ListPending 待当前用户处理的申请，按存储返回顺序，不额外排序。
func (r *FriendshipRepository) ListPending(userID uint) ([]model.FriendRegister, error) {
	var regs []model.FriendRegister
	err := r.DB.Where("acceptor_id = ? AND status = ?", userID, model.FriendPending).Find(&regs).Error
	return regs, err
}

func (r *FriendshipRepository) ListAccepted(userID uint) ([]model.FriendRegister, error) {
	var regs []model.FriendRegister
	err := r.DB.Where("(requester_id = ? OR acceptor_id = ?) AND status = ?",
		userID, userID, model.FriendAccepted).Find(&regs).Error
	return regs, err
}

// GetFriendIDs 已接受好友的对端 ID 列表
func (r *FriendshipRepository) GetFriendIDs(userID uint) ([]uint, error) {
	regs, err := r.ListAccepted(userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(regs))
	for _, reg := range regs {
		id, _ := reg.Counterpart(userID)
		ids = append(ids, id)
	}
	return ids, nil
}

// GetFriendIDsCached 好友 ID 列表 (带缓存)
func (r *FriendshipRepository) GetFriendIDsCached(userID uint) ([]uint, error) {
	if r.Redis == nil {
		return r.GetFriendIDs(userID)
	}

	key := fmt.Sprintf("chat:relation:friends:%d", userID)
	cached, err := r.Redis.SMembers(r.ctx, key).Result()
	if err == nil && len(cached) > 0 {
		var ids []uint
		for _, s := range cached {
			var id uint
			fmt.Sscanf(s, "%d", &id)
			if id > 0 {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}

	// 缓存失效，回源数据库
	ids, err := r.GetFriendIDs(userID)
	if err == nil && len(ids) > 0 {
		pipe := r.Redis.Pipeline()
		for _, id := range ids {
			pipe.SAdd(r.ctx, key, id)
		}
		pipe.Expire(r.ctx, key, 24*time.Hour)
		pipe.Exec(r.ctx)
	} else if err == nil {
		// 防止缓存穿透
		r.Redis.SAdd(r.ctx, key, 0)
		r.Redis.Expire(r.ctx, key, 5*time.Minute)
	}
	return ids, err
}

func (r *FriendshipRepository) invalidateRegisterCache(id string) {
	if r.Redis == nil {
		return
	}
	reg, err := r.GetRegister(id)
	if err != nil || reg == nil {
		return
	}
	r.invalidateFriendCache(reg.RequesterID, reg.AcceptorID)
}

func (r *FriendshipRepository) invalidateFriendCache(userIDs ...uint) {
	if r.Redis == nil {
		return
	}
	for _, id := range userIDs {
		r.Redis.Del(r.ctx, fmt.Sprintf("chat:relation:friends:%d", id))
	}
}
