package model

import "time"

// Event 学习活动。作者信息在创建时由会话注入，不信任客户端提交。
type Event struct {
	UUIDBase
	Title       string  `gorm:"size:200" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	Course      string  `gorm:"size:50;index" json:"course"`
	Date        string  `gorm:"size:20" json:"date"`
	StartTime   float32 `gorm:"default:8" json:"startTime"`
	EndTime     float32 `gorm:"default:20" json:"endTime"`
	AuthorID    uint    `gorm:"index" json:"authorId"`
	AuthorEmail string  `gorm:"size:100" json:"authorUsername"`
	Location    string  `gorm:"size:255" json:"location"`
	Latitude    float64 `gorm:"default:0" json:"latitude"`
	Longitude   float64 `gorm:"default:0" json:"longitude"`
}

func (Event) TableName() string {
	return "events"
}

// CalendarEntry 用户个人日历条目，一个用户对同一活动只存一条。
type CalendarEntry struct {
	UserID  uint      `gorm:"primaryKey" json:"userId"`
	EventID string    `gorm:"primaryKey;type:varchar(36)" json:"eventId"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"addedAt"`
}

func (CalendarEntry) TableName() string {
	return "user_calendars"
}
