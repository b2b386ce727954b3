package model

import (
	"fmt"
	"time"
)

type FriendStatus string

const (
	FriendPending  FriendStatus = "PENDING"
	FriendAccepted FriendStatus = "ACCEPTED"
	FriendBlocked  FriendStatus = "BLOCKED"
)

// FriendRegister 好友关系登记表。每对用户最多一条记录（pair_key 唯一索引保证），
// 取消申请时整条删除而不是改状态。
type FriendRegister struct {
	UUIDBase
	PairKey        string       `gorm:"size:50;uniqueIndex;not null" json:"-"`
	RequesterID    uint         `gorm:"index;not null" json:"requesterId"`
	RequesterEmail string       `gorm:"size:100" json:"requesterEmail"`
	AcceptorID     uint         `gorm:"index;not null" json:"acceptorId"`
	AcceptorEmail  string       `gorm:"size:100" json:"acceptorEmail"`
	ChatRoomID     string       `gorm:"type:varchar(36);not null" json:"chatRoomId"`
	Status         FriendStatus `gorm:"type:enum('PENDING','ACCEPTED','BLOCKED');default:'PENDING'" json:"status"`
	// 拉黑发起方，用于判断解除拉黑时当前用户是拉黑者还是被拉黑者
	BlockedBy uint `gorm:"default:0" json:"blockedBy"`
}

func (FriendRegister) TableName() string {
	return "friend_registers"
}

// Counterpart 返回相对 userID 的对端用户 ID 和邮箱。
func (r *FriendRegister) Counterpart(userID uint) (uint, string) {
	if r.RequesterID == userID {
		return r.AcceptorID, r.AcceptorEmail
	}
	return r.RequesterID, r.RequesterEmail
}

// PairKey 生成无序用户对的规范键，两个方向得到同一个值。
func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// FriendListRow 好友列表行投影，不落库。
type FriendListRow struct {
	ChatRoomID  string      `json:"chatRoomId"`
	RegisterID  string      `json:"registerId"`
	UserID      uint        `json:"userId"`
	UserEmail   string      `json:"userEmail"`
	UserName    string      `json:"userName"`
	AvatarURL   string      `json:"userPictureUrl"`
	LastMessage ChatMessage `json:"lastMessage"`
	JoinedAt    time.Time   `json:"-"`
}
