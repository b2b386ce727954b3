package model

type MessageStatus string

const (
	MessageSent     MessageStatus = "SENT"
	MessageReceived MessageStatus = "RECEIVED"
)

// ChatRoom 私聊房间，按无序用户对惰性创建。pair_key 唯一索引保证
// 并发双方同时发起时也只会留下一个房间。
type ChatRoom struct {
	UUIDBase
	PairKey string `gorm:"size:50;uniqueIndex;not null" json:"-"`
	UserAID uint   `gorm:"index;not null" json:"userAId"`
	UserBID uint   `gorm:"index;not null" json:"userBId"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// ChatMessage 消息记录。ChannelID 是私聊房间 UUID 或课程频道代码，
// 消息创建后不再修改。
type ChatMessage struct {
	UUIDBase
	ChannelID string        `gorm:"index:idx_channel_date;type:varchar(50);not null" json:"channelId"`
	SenderID  uint          `gorm:"index" json:"profileUUID"`
	Content   string        `gorm:"type:text" json:"message"`
	Date      int64         `gorm:"index:idx_channel_date;not null" json:"date"` // epoch millis
	Status    MessageStatus `gorm:"type:enum('SENT','RECEIVED');default:'SENT'" json:"status"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
