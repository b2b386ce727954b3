package model

import (
	"time"
)

type UserStatus string

const (
	StatusOnline  UserStatus = "ONLINE"
	StatusOffline UserStatus = "OFFLINE"
	StatusBusy    UserStatus = "BUSY"
	StatusAway    UserStatus = "AWAY"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// User 个人资料表。客户端注册时创建，资料编辑时部分更新，不做物理删除。
type User struct {
	BaseModel
	Name        string     `gorm:"size:100" json:"userName"`
	SurName     string     `gorm:"size:100" json:"userSurName"`
	Email       string     `gorm:"size:100;unique;not null" json:"userEmail"`
	Password    string     `gorm:"size:100;not null" json:"-"`
	Bio         string     `gorm:"size:255" json:"userBio"`
	PhoneNumber string     `gorm:"size:30" json:"userPhoneNumber"`
	AvatarURL   string     `gorm:"size:255" json:"userProfilePictureUrl"`
	Status      UserStatus `gorm:"type:enum('ONLINE','OFFLINE','BUSY','AWAY');default:'OFFLINE'" json:"status"`
	Role        UserRole   `gorm:"type:enum('student','admin');default:'student'" json:"role"`
	LastLogin   time.Time  `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen    time.Time  `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

// Enrollment 用户已选课程集合，以课程代码为键。
type Enrollment struct {
	UserID     uint      `gorm:"primaryKey" json:"userId"`
	CourseCode string    `gorm:"primaryKey;size:50" json:"courseCode"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
