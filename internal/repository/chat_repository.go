package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"studybuddy_backend/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxCacheMessages = 50 // 每个频道缓存最近50条消息

type ChatRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
	ctx   context.Context
}

func NewChatRepository(db *gorm.DB, rdb *redis.Client) *ChatRepository {
	return &ChatRepository{
		DB:    db,
		Redis: rdb,
		ctx:   context.Background(),
	}
}

// EnsureRoom 返回无序用户对的唯一私聊房间，没有则创建。
// 创建走 pair_key 唯一索引上的条件写入：两端并发同时调用也只会留下一个房间，
// 撞索引的一方读回对方刚建好的那条。
func (r *ChatRepository) EnsureRoom(userA, userB uint) (*model.ChatRoom, bool, error) {
	a, b := userA, userB
	if a > b {
		a, b = b, a
	}
	room := &model.ChatRoom{
		UUIDBase: model.UUIDBase{ID: model.GenerateUUID()},
		PairKey:  model.PairKey(userA, userB),
		UserAID:  a,
		UserBID:  b,
	}

	res := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pair_key"}},
		DoNothing: true,
	}).Create(room)
	if res.Error != nil {
		return nil, false, res.Error
	}

	if res.RowsAffected == 0 {
		existing, err := r.FindRoomByPair(userA, userB)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, fmt.Errorf("chat room for pair %s vanished after conflict", room.PairKey)
		}
		return existing, false, nil
	}

	return room, true, nil
}

// FindRoomByPair 不存在返回 (nil, nil)。
func (r *ChatRepository) FindRoomByPair(userA, userB uint) (*model.ChatRoom, error) {
	var room model.ChatRoom
	err := r.DB.Where("pair_key = ?", model.PairKey(userA, userB)).First(&room).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *ChatRepository) GetRoom(id string) (*model.ChatRoom, error) {
	var room model.ChatRoom
	err := r.DB.First(&room, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *ChatRepository) CreateMessage(msg *model.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = model.GenerateUUID()
	}
	if msg.Date == 0 {
		msg.Date = time.Now().UnixMilli()
	}
	if msg.Status == "" {
		msg.Status = model.MessageSent
	}

	if err := r.DB.Create(msg).Error; err != nil {
		return err
	}

	if r.Redis != nil {
		go r.cacheMessage(msg)
	}
	return nil
}

func (r *ChatRepository) cacheMessage(msg *model.ChatMessage) {
	key := fmt.Sprintf("chat:cache:%s", msg.ChannelID)
	data, _ := json.Marshal(msg)

	pipe := r.Redis.Pipeline()
	pipe.LPush(r.ctx, key, data)
	pipe.LTrim(r.ctx, key, 0, maxCacheMessages-1)
	pipe.Expire(r.ctx, key, 24*time.Hour)
	pipe.Exec(r.ctx)
}

// GetMessages 返回频道最新 limit 条消息，按时间正序。offset 从最新往回翻页。
// 首页请求先走缓存，不够再回源，两条路径取的都是最新一页。
func (r *ChatRepository) GetMessages(channelID string, limit, offset int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = maxCacheMessages
	}

	if offset == 0 && r.Redis != nil {
		key := fmt.Sprintf("chat:cache:%s", channelID)
		cached, err := r.Redis.LRange(r.ctx, key, 0, int64(limit-1)).Result()
		if err == nil && len(cached) >= limit {
			// 缓存是 LPush 的，最新在前
			msgs := make([]model.ChatMessage, 0, len(cached))
			for _, raw := range cached {
				var m model.ChatMessage
				if err := json.Unmarshal([]byte(raw), &m); err == nil {
					msgs = append(msgs, m)
				}
			}
			return newestFirstToAscending(msgs), nil
		}
	}

	var msgs []model.ChatMessage
	err := r.DB.Where("channel_id = ?", channelID).
		Order("date DESC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return newestFirstToAscending(msgs), nil
}

// newestFirstToAscending 把最新在前的一页原地反转成时间正序。
func newestFirstToAscending(msgs []model.ChatMessage) []model.ChatMessage {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs
}

// LatestMessage 频道最后一条消息，没有返回 (nil, nil)。
func (r *ChatRepository) LatestMessage(channelID string) (*model.ChatMessage, error) {
	var msg model.ChatMessage
	err := r.DB.Where("channel_id = ?", channelID).
		Order("date DESC").
		First(&msg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkReceived 读取方进入会话时，把对端发来的 SENT 消息批量置为 RECEIVED。
func (r *ChatRepository) MarkReceived(channelID string, readerID uint) error {
	err := r.DB.Model(&model.ChatMessage{}).
		Where("channel_id = ? AND sender_id != ? AND status = ?", channelID, readerID, model.MessageSent).
		Update("status", model.MessageReceived).Error
	if err == nil && r.Redis != nil {
		// 状态变了，缓存作废，下次拉取回源重建
		r.Redis.Del(r.ctx, fmt.Sprintf("chat:cache:%s", channelID))
	}
	return err
}
