package service

import (
	"errors"

	"studybuddy_backend/internal/model"
	"studybuddy_backend/internal/repository"
	"studybuddy_backend/internal/util"
	"studybuddy_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile 资料编辑：只覆盖非空字段，在线状态由服务端统一置 ONLINE。
func (s *UserService) UpdateProfile(userID uint, profile *model.User) (*model.User, error) {
	if err := s.UserRepo.UpdateProfile(userID, profile); err != nil {
		return nil, err
	}
	return s.UserRepo.FindByID(userID)
}

func (s *UserService) UpdateName(userID uint, name string) error {
	return s.UserRepo.UpdateName(userID, name)
}

func (s *UserService) SetEnrolledCourses(userID uint, courseCodes []string) error {
	return s.UserRepo.SetEnrolledCourses(userID, courseCodes)
}

func (s *UserService) GetEnrolledCourses(userID uint) ([]string, error) {
	return s.UserRepo.GetEnrolledCourses(userID)
}

// DeleteAccount 账号删除目前是占位实现：客户端有入口，后端不动数据。
func (s *UserService) DeleteAccount(userID uint) error {
	logger.Log.Info("delete account requested, not implemented", zap.Uint("userId", userID))
	return nil
}
