package repository

import (
	"time"

	"studybuddy_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

// FindByEmail 按邮箱查找用户。查无此人返回 (nil, nil)，后端故障才返回 error，
// 调用方必须区分这三种结果。
func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// UpdateProfile 部分更新资料：只写入非空字段，status 固定置为 ONLINE。
func (r *UserRepository) UpdateProfile(userID uint, profile *model.User) error {
	updates := map[string]interface{}{
		"status": model.StatusOnline,
	}
	if profile.Name != "" {
		updates["name"] = profile.Name
	}
	if profile.SurName != "" {
		updates["sur_name"] = profile.SurName
	}
	if profile.Bio != "" {
		updates["bio"] = profile.Bio
	}
	if profile.PhoneNumber != "" {
		updates["phone_number"] = profile.PhoneNumber
	}
	if profile.AvatarURL != "" {
		updates["avatar_url"] = profile.AvatarURL
	}
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (r *UserRepository) UpdateName(userID uint, name string) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("name", name).Error
}

func (r *UserRepository) UpdateStatus(userID uint, status model.UserStatus) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("status", status).Error
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("last_seen", time.Now()).Error
}

// SetEnrolledCourses 整体替换用户的选课集合。
func (r *UserRepository) SetEnrolledCourses(userID uint, courseCodes []string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}
		for _, code := range courseCodes {
			e := model.Enrollment{UserID: userID, CourseCode: code}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&e).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) GetEnrolledCourses(userID uint) ([]string, error) {
	var codes []string
	err := r.DB.Table("enrollments").
		Where("user_id = ?", userID).
		Order("course_code ASC").
		Pluck("course_code", &codes).Error
	return codes, err
}
